package sensor

import "errors"

var (
	// ErrNoDialer is returned when a Sensor is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the sensor.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a
	// Sensor that has not been successfully initialized.
	//
	// This can occur if initialization failed or if the Sensor was not
	// created via New.
	ErrNotInitialized = errors.New("sensor not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Sensor that
	// has already been closed.
	ErrAlreadyClosed = errors.New("sensor already closed")

	// ErrLoopRunning is returned when Loop is called while another Loop is
	// already running.
	ErrLoopRunning = errors.New("loop already running")

	// ErrTimeout is returned when no complete response arrived within the
	// response timeout. The sensor may be in off mode, or not wired up at
	// all. No retry is attempted; that decision belongs to the caller.
	ErrTimeout = errors.New("response timeout")

	// ErrResponseTooLong is returned by UpdateResponse when a message
	// exceeds the response buffer capacity.
	//
	// This typically indicates malformed input, unexpected binary data,
	// or a framing error upstream.
	ErrResponseTooLong = errors.New("response exceeds buffer capacity")

	// ErrShortResponse is returned when a response ends in the middle of a
	// fixed-width field. The truncated message is discarded; cached
	// readings keep their previous values.
	ErrShortResponse = errors.New("response truncated mid-field")
)
