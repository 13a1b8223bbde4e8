package sensor

import (
	"context"
	"io"
	"sync"
)

// TestTransport is a test helper that simulates a blocking transport using
// channels. This is needed because the Loop's reader goroutine continuously
// reads from the transport, and reads must block until data is available,
// like a real serial port would.
//
// Every frame written to the transport is also delivered on Writes, so
// tests can wait for a command before queueing its response.
type TestTransport struct {
	mu        sync.Mutex
	readChan  chan []byte
	writeChan chan []byte
	closed    bool
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan:  make(chan []byte, 10),
		writeChan: make(chan []byte, 10),
	}
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	frame := make([]byte, len(p))
	copy(frame, p)
	select {
	case t.writeChan <- frame:
	default:
		// Nobody is watching writes; don't block the driver.
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	data, ok := <-t.readChan
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendData queues data to be read by the transport. This simulates the
// sensor transmitting a response.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// Writes returns the channel carrying every frame written to the transport.
func (t *TestTransport) Writes() <-chan []byte {
	return t.writeChan
}

// TestDialer is a Dialer that hands out a prepared TestTransport.
type TestDialer struct {
	Transport *TestTransport
}

func (d TestDialer) Dial(ctx context.Context) (Transport, error) {
	return d.Transport, nil
}
