package lox

import "errors"

// Local validation errors, raised before anything is transmitted.
var (
	// ErrInvalidMode is returned when a mode outside the defined set is
	// passed to SetModeCommand.
	ErrInvalidMode = errors.New("lox: invalid output mode")

	// ErrInvalidInfo is returned when an info kind outside the defined set
	// is passed to InfoCommand.
	ErrInvalidInfo = errors.New("lox: invalid sensor info kind")
)

// Sensor-reported errors, decoded from an "E" response line.
var (
	// ErrRxOverflow means the sensor's receiver overflowed before it saw a
	// terminator. Check the UART setup and command termination.
	ErrRxOverflow = errors.New("lox: sensor receiver overflow")

	// ErrInvalidCommand means the sensor did not recognize the command
	// byte. Commands are case sensitive ('M', not 'm').
	ErrInvalidCommand = errors.New("lox: invalid command")

	// ErrInvalidFrame means the sensor rejected the frame separator.
	ErrInvalidFrame = errors.New("lox: invalid frame")

	// ErrInvalidArgument means the sensor rejected an argument as out of
	// range or malformed.
	ErrInvalidArgument = errors.New("lox: invalid argument")

	// ErrSensor is the generic error for an "E" response whose subcode is
	// not one of the defined values.
	ErrSensor = errors.New("lox: sensor error")
)

// ErrorFromSubcode decodes the subcode digit of an "E" response.
func ErrorFromSubcode(d byte) error {
	switch d {
	case '0':
		return ErrRxOverflow
	case '1':
		return ErrInvalidCommand
	case '2':
		return ErrInvalidFrame
	case '3':
		return ErrInvalidArgument
	}
	return ErrSensor
}
