// Package sensor is a driver for a single UART-attached SST Sensing LuminOx
// O2 sensor. It encodes the sensor's short ASCII command frames, transmits
// them over an injected Transport, and parses the fixed-grammar ASCII
// responses into cached readings.
package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/marelab/luminox/lox"
)

// ResponseBufferSize is the capacity of the response buffer, sized to the
// sensor module's own UART buffer.
const ResponseBufferSize = 128

// Sensor is a driver handle for one physical LuminOx sensor.
//
// The driver is a strict single-in-flight request/response protocol: one
// command may be outstanding at a time, and the Sensor performs no internal
// locking of its cached readings. Callers issuing requests or reading
// cached values from multiple goroutines must serialize access themselves.
type Sensor struct {
	// transport is the byte stream to the sensor (serial, TCP, fake).
	transport Transport
	logger    *zap.Logger
	// responseTimeout bounds the wait for each response when the caller's
	// context has no deadline.
	responseTimeout time.Duration

	closed      bool
	loopRunning bool

	// Cached state, valid only after the corresponding response has been
	// parsed. The mode reflects the last observed mode echo, never the
	// last requested mode.
	mode        lox.Mode
	ppO2        float64
	o2          float64
	temperature float64
	pressure    float64
	status      string

	// respBuf holds the most recent complete response, overwritten
	// wholesale on each update.
	respBuf [ResponseBufferSize]byte
	respLen int

	// scanner is the single line tokenizer over the transport. It is used
	// by the direct init path first and by the Loop's reader afterwards,
	// never both at once.
	scanner *bufio.Scanner

	// pendingLine holds a single-line read whose caller gave up waiting.
	// The next direct request, or the Loop's reader, adopts it instead of
	// starting a second read on the scanner.
	pendingLine chan lineResult

	// reports receives measurement lines the sensor emits unsolicited in
	// streaming mode.
	reports chan Reading
	// commands queues requests for the Loop to transmit.
	commands chan *commandRequest

	loopCtx    context.Context
	loopCancel context.CancelFunc
}

// commandRequest is one encoded command frame waiting for its response
// line.
type commandRequest struct {
	frame    []byte
	respChan chan commandResponse
	ctx      context.Context
}

type commandResponse struct {
	line string
	err  error
}

// lineResult is the outcome of one single-line read off the scanner.
type lineResult struct {
	line string
	err  error
}

// New dials the transport, runs the sensor startup sequence and returns a
// ready driver. The startup sequence settles the sensor into polling mode,
// probes its date of manufacture, serial number and software version, then
// settles it into the default (off) mode and resets all cached readings.
//
// Returns an error if the transport cannot be established or the sensor
// does not answer the startup sequence.
func New(ctx context.Context, config Config) (*Sensor, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}

	s := &Sensor{
		transport:       transport,
		logger:          config.logger,
		responseTimeout: config.responseTimeout,
		mode:            lox.ModeDefault,
		reports:         make(chan Reading, 16), // Buffered so bursts of streaming lines are not lost
		// No queue for commands
		commands: make(chan *commandRequest),
	}
	if transport != nil {
		s.scanner = bufio.NewScanner(transport)
		s.scanner.Split(lox.Splitter)
	}

	// Prepare context for Loop (but don't start it yet)
	s.loopCtx, s.loopCancel = context.WithCancel(ctx)

	initCtx := ctx
	if config.initTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, config.initTimeout)
		defer cancel()
	}

	if err := s.init(initCtx); err != nil {
		if s.transport != nil {
			transport.Close()
		}
		return nil, fmt.Errorf("initialize sensor: %w", err)
	}

	return s, nil
}

// init performs the startup sequence: enter polling mode so the sensor
// answers requests, probe the three info records in fixed order, settle
// into the default mode, then reset all cached state. It runs over the
// direct transport path because the Loop is not up yet.
func (s *Sensor) init(ctx context.Context) error {
	if err := s.setModeDirect(ctx, lox.ModePolling); err != nil {
		return fmt.Errorf("enter polling mode: %w", err)
	}

	// A sensor that answers measurements but not info probes is still
	// usable, so these are logged rather than fatal.
	for _, info := range []lox.Info{lox.InfoDateOfMfg, lox.InfoSerialNumber, lox.InfoSoftwareVersion} {
		if err := s.requestInfoDirect(ctx, info); err != nil {
			s.logger.Warn("sensor info probe failed",
				zap.Stringer("info", info), zap.Error(err))
		}
	}

	if err := s.setModeDirect(ctx, lox.ModeDefault); err != nil {
		return fmt.Errorf("enter default mode: %w", err)
	}

	s.ppO2 = 0
	s.o2 = 0
	s.temperature = 0
	s.pressure = 0
	s.status = ""
	s.respBuf = [ResponseBufferSize]byte{}
	s.respLen = 0

	return nil
}

func (s *Sensor) setModeDirect(ctx context.Context, mode lox.Mode) error {
	frame, err := lox.SetModeCommand(mode)
	if err != nil {
		return err
	}
	return s.requestDirect(ctx, frame)
}

func (s *Sensor) requestInfoDirect(ctx context.Context, info lox.Info) error {
	frame, err := lox.InfoCommand(info)
	if err != nil {
		return err
	}
	return s.requestDirect(ctx, frame)
}

// requestDirect runs one full command cycle on the direct transport path:
// transmit, wait for the complete response line, store it, parse it.
func (s *Sensor) requestDirect(ctx context.Context, frame []byte) error {
	line, err := s.execDirect(ctx, frame)
	if err != nil {
		return err
	}
	if err := s.UpdateResponse([]byte(line + lox.CRLF)); err != nil {
		return err
	}
	return s.ProcessResponse()
}

// execDirect writes a command frame and reads response lines straight off
// the transport, without the Loop's channel mechanism. It is used during
// initialization, before the Loop runs.
//
// WARNING: once Loop is running, all requests must go through exec; two
// readers on one transport lose bytes.
func (s *Sensor) execDirect(ctx context.Context, frame []byte) (string, error) {
	if s.closed {
		return "", ErrAlreadyClosed
	}
	if s.transport == nil {
		return "", ErrNotInitialized
	}

	if _, ok := ctx.Deadline(); !ok && s.responseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.responseTimeout)
		defer cancel()
	}

	if _, err := s.transport.Write(frame); err != nil {
		return "", fmt.Errorf("write command %q: %w", frame, err)
	}

	// Scan in a goroutine so the deadline holds even while the transport
	// blocks in Read. One line per read; an abandoned read is kept in
	// pendingLine for the next caller rather than left racing the scanner.
	result := s.pendingLine
	if result == nil {
		result = make(chan lineResult, 1)
		go s.readLine(result)
	}

	select {
	case res := <-result:
		s.pendingLine = nil
		if res.err != nil {
			return "", res.err
		}
		return res.line, nil
	case <-ctx.Done():
		s.pendingLine = result
		return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
}

// readLine scans one non-empty line off the transport and delivers it into
// result, which must be buffered. The scanner unblocks when the transport
// closes.
func (s *Sensor) readLine(result chan lineResult) {
	for s.scanner.Scan() {
		if line := s.scanner.Text(); line != "" {
			result <- lineResult{line: line}
			return
		}
	}
	if err := s.scanner.Err(); err != nil {
		result <- lineResult{err: fmt.Errorf("read response: %w", err)}
		return
	}
	result <- lineResult{err: io.EOF}
}

// Loop is the main event loop that owns all transport I/O after
// construction. It must be called exactly once after New() and before any
// request operations. The Loop:
//
// 1. Transmits command frames submitted by request operations
// 2. Reads and tokenizes response lines from the transport
// 3. Hands each response to the request waiting for it
// 4. Dispatches unsolicited streaming-mode lines to Reports() subscribers
//
// The Loop runs until the provided context is cancelled. It is the ONLY
// goroutine that reads from the transport, so streaming lines are never
// lost to a competing reader.
//
// Usage:
//
//	sens, err := sensor.New(ctx, config)
//	if err != nil { return err }
//
//	// Start the loop (typically in a goroutine)
//	go sens.Loop(ctx)
//
//	// Now request operations will work
//	err = sens.RequestPpO2(ctx)
func (s *Sensor) Loop(ctx context.Context) error {
	if s.loopRunning {
		return ErrLoopRunning
	}
	s.loopRunning = true
	defer func() {
		s.loopRunning = false
	}()

	// Channels for lines and errors from the reader goroutine
	lines := make(chan string, 10)
	scanErrs := make(chan error, 1)

	// A read the init path abandoned still owns the scanner until its line
	// arrives; the reader takes it over instead of scanning alongside it.
	pending := s.pendingLine
	s.pendingLine = nil

	go func() {
		defer close(lines)
		if pending != nil {
			res := <-pending
			if res.err != nil {
				if !errors.Is(res.err, io.EOF) {
					select {
					case scanErrs <- res.err:
					case <-ctx.Done():
					}
				}
				return
			}
			select {
			case lines <- res.line:
			case <-ctx.Done():
				return
			}
		}
		for s.scanner.Scan() {
			line := s.scanner.Text()
			if line == "" {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		// Scanner stopped - check if there was an error
		if err := s.scanner.Err(); err != nil {
			select {
			case scanErrs <- err:
			case <-ctx.Done():
			}
		}
	}()

	// Command currently waiting for its response line
	var current *commandRequest

	for {
		select {
		case <-ctx.Done():
			if current != nil {
				current.respChan <- commandResponse{err: ctx.Err()}
			}
			return ctx.Err()

		case <-s.loopCtx.Done():
			// Close() was called.
			if current != nil {
				current.respChan <- commandResponse{err: s.loopCtx.Err()}
			}
			return s.loopCtx.Err()

		case req := <-s.commands:
			current = req
			if _, err := s.transport.Write(req.frame); err != nil {
				req.respChan <- commandResponse{err: fmt.Errorf("write command %q: %w", req.frame, err)}
				current = nil
				continue
			}

		case line, ok := <-lines:
			if !ok {
				// Line channel closed - reader stopped
				if current != nil {
					current.respChan <- commandResponse{err: io.EOF}
					current = nil
				}
				return io.EOF
			}

			// A caller that already timed out no longer wants this line;
			// let it flow to Reports() instead of a dead channel.
			if current != nil && current.ctx.Err() != nil {
				current.respChan <- commandResponse{err: fmt.Errorf("command timeout: %w", current.ctx.Err())}
				current = nil
			}

			if current != nil {
				// One command, one response line.
				current.respChan <- commandResponse{line: line}
				current = nil
				continue
			}

			// No command in flight: this is streaming-mode output.
			s.dispatchReport(line)

		case err := <-scanErrs:
			if current != nil {
				current.respChan <- commandResponse{err: fmt.Errorf("read error: %w", err)}
				current = nil
			}
			return fmt.Errorf("scanner error: %w", err)
		}

		// Drop a command whose caller has already given up waiting.
		if current != nil {
			select {
			case <-current.ctx.Done():
				current.respChan <- commandResponse{err: fmt.Errorf("command timeout: %w", current.ctx.Err())}
				current = nil
			default:
			}
		}
	}
}

// dispatchReport parses an unsolicited line and delivers it to Reports().
// Reports are dropped, with a warning, if nobody is consuming them fast
// enough.
func (s *Sensor) dispatchReport(line string) {
	if lox.Classify(line) != lox.TypeMeasurement {
		s.logger.Debug("ignoring unsolicited line", zap.String("line", line))
		return
	}

	reading, err := ParseReading([]byte(line))
	if err != nil {
		s.logger.Warn("malformed streaming report",
			zap.String("line", line), zap.Error(err))
		return
	}

	select {
	case s.reports <- reading:
	default:
		s.logger.Warn("reports channel full, dropping reading")
	}
}

// Reports returns a read-only channel carrying the measurement lines a
// sensor in streaming mode emits on its own. The channel is buffered, but
// readings may be dropped if not consumed fast enough.
func (s *Sensor) Reports() <-chan Reading {
	return s.reports
}

// exec submits one command frame to the Loop and waits for its response to
// be parsed. The Loop must be running before calling this.
func (s *Sensor) exec(ctx context.Context, frame []byte) error {
	if s.closed {
		return ErrAlreadyClosed
	}
	if s.transport == nil {
		return ErrNotInitialized
	}

	// Apply per-command timeout if context has none
	if _, ok := ctx.Deadline(); !ok && s.responseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.responseTimeout)
		defer cancel()
	}

	req := &commandRequest{
		frame:    frame,
		respChan: make(chan commandResponse, 1), // Buffered to prevent blocking
		ctx:      ctx,
	}

	select {
	case s.commands <- req:
	case <-ctx.Done():
		return fmt.Errorf("command cancelled before sending: %w", ctx.Err())
	}

	select {
	case resp := <-req.respChan:
		if resp.err != nil {
			return resp.err
		}
		if err := s.UpdateResponse([]byte(resp.line + lox.CRLF)); err != nil {
			return err
		}
		return s.ProcessResponse()
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
}

// Close shuts down the driver and releases the transport. After Close the
// Sensor cannot be reused.
func (s *Sensor) Close() error {
	if s.closed {
		return ErrAlreadyClosed
	}
	s.closed = true

	if s.loopCancel != nil {
		s.loopCancel()
	}

	if s.transport != nil {
		return s.transport.Close()
	}
	return nil
}
