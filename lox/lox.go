// Package lox implements the ASCII wire protocol of the SST Sensing LuminOx
// family of optical oxygen sensors. It knows the command frames, the tag
// bytes and fixed field widths of response lines, and the sensor's error
// subcodes, but performs no I/O itself.
package lox

const (
	// Terminal control
	CRLF       = "\r\n"
	Terminator = '\n'
	Separator  = ' '
)

// Tag bytes. The first byte of a response field identifies its content.
const (
	TagMode        = 'M'
	TagPpO2        = 'O'
	TagO2          = '%'
	TagTemperature = 'T'
	TagPressure    = 'P'
	TagAll         = 'A'
	TagStatus      = 'e'
	TagInfo        = '#'
	TagError       = 'E'
)

// Fixed field widths of the response grammar, in bytes. Every value field
// follows its tag byte and a single separator.
const (
	PpO2FieldLen        = 6 // "xxxx.x", ppO2 in mbar
	O2FieldLen          = 6 // "xxx.xx", O2 in percent
	TemperatureFieldLen = 5 // "yxx.x", signed, degrees C
	PressureFieldLen    = 4 // "xxxx", mbar, or "----" if not fitted
	StatusFieldLen      = 4 // "xxxx", "0000" means good
)

// StatusGood is the status word a healthy sensor reports.
const StatusGood = "0000"

// Argumentless request commands, each the bare tag byte plus terminator.
const (
	CmdPpO2        = string(TagPpO2) + CRLF
	CmdO2          = string(TagO2) + CRLF
	CmdTemperature = string(TagTemperature) + CRLF
	CmdPressure    = string(TagPressure) + CRLF
	CmdStatus      = string(TagStatus) + CRLF
	CmdAll         = string(TagAll) + CRLF
)

// Mode selects the sensor output behaviour.
type Mode int

const (
	// ModeStreaming makes the sensor emit a full measurement line once a
	// second without being asked.
	ModeStreaming Mode = iota
	// ModePolling makes the sensor answer individual requests only.
	ModePolling
	// ModeOff stops all measurement output.
	ModeOff
)

// ModeDefault is the mode the sensor is settled into after initialization.
const ModeDefault = ModeOff

func (m Mode) String() string {
	switch m {
	case ModeStreaming:
		return "streaming"
	case ModePolling:
		return "polling"
	case ModeOff:
		return "off"
	}
	return "unknown"
}

// Info identifies a sensor information record.
type Info int

const (
	InfoDateOfMfg Info = iota
	InfoSerialNumber
	InfoSoftwareVersion
)

func (i Info) String() string {
	switch i {
	case InfoDateOfMfg:
		return "date of manufacture"
	case InfoSerialNumber:
		return "serial number"
	case InfoSoftwareVersion:
		return "software version"
	}
	return "unknown"
}

// Wire digits for the argument-carrying commands. Kept as explicit tables so
// out-of-range enum values fail before anything is transmitted.
var modeDigits = map[Mode]byte{
	ModeStreaming: '0',
	ModePolling:   '1',
	ModeOff:       '2',
}

var infoDigits = map[Info]byte{
	InfoDateOfMfg:       '0',
	InfoSerialNumber:    '1',
	InfoSoftwareVersion: '2',
}

// SetModeCommand builds the "M <digit>" command frame for the given mode.
// An undefined mode yields ErrInvalidMode and no frame.
func SetModeCommand(m Mode) ([]byte, error) {
	d, ok := modeDigits[m]
	if !ok {
		return nil, ErrInvalidMode
	}
	return []byte{TagMode, Separator, d, '\r', '\n'}, nil
}

// InfoCommand builds the "# <digit>" command frame for the given info
// record. An undefined info kind yields ErrInvalidInfo and no frame.
func InfoCommand(i Info) ([]byte, error) {
	d, ok := infoDigits[i]
	if !ok {
		return nil, ErrInvalidInfo
	}
	return []byte{TagInfo, Separator, d, '\r', '\n'}, nil
}

// ModeFromDigit maps a mode echo digit back to its Mode.
func ModeFromDigit(d byte) (Mode, bool) {
	switch d {
	case '0':
		return ModeStreaming, true
	case '1':
		return ModePolling, true
	case '2':
		return ModeOff, true
	}
	return 0, false
}
