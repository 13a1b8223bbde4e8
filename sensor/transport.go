package sensor

import (
	"context"
	"errors"
	"io"

	"go.bug.st/serial"
)

// Transport represents an established, bidirectional byte stream to a
// LuminOx sensor.
//
// A Transport is assumed to be already connected and ready for use. It
// provides the low-level I/O primitives required to send command frames and
// receive responses. Typical implementations include serial ports, TCP
// connections to emulators, or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a LuminOx sensor.
//
// Dialer abstracts how the sensor connection is created (for example, via a
// serial port, TCP-based emulator, or test double) and is intended to be
// used during sensor construction only. Once a Transport is obtained, the
// Dialer is no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport.
	// It may perform blocking operations and should respect cancellation and
	// deadlines provided by the context. Dial returns an error if the
	// transport cannot be established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a LuminOx sensor over a serial port using
// go.bug.st/serial.
type SerialDialer struct {
	// PortName is the serial device to open, e.g. "/dev/ttyUSB0".
	PortName string
	// Mode overrides the serial parameters. The LuminOx UART runs at
	// 9600 8N1, which is what a nil Mode gets.
	Mode *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("luminox: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("luminox: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{
			BaudRate: 9600,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}
