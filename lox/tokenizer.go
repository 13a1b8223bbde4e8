package lox

import (
	"bufio"
	"bytes"
)

// Splitter tokenizes the sensor's byte stream into complete response lines.
// It has the signature of bufio.SplitFunc so it can be used directly with
// bufio.Scanner.
//
// Responses are CRLF terminated. The terminator is stripped from the token.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + len(CRLF), data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// LineType identifies the nature of a response line by its leading tag.
type LineType int

const (
	TypeUnknown     LineType = iota
	TypeError                // "E" error report
	TypeMode                 // "M" mode echo
	TypeMeasurement          // value or status line (O, %, T, P, e)
	TypeInfo                 // "#" sensor information
)

// Classify identifies a response line. Measurement lines are the ones a
// sensor in streaming mode emits unsolicited.
func Classify(line string) LineType {
	if line == "" {
		return TypeUnknown
	}
	switch line[0] {
	case TagError:
		return TypeError
	case TagMode:
		return TypeMode
	case TagPpO2, TagO2, TagTemperature, TagPressure, TagStatus:
		return TypeMeasurement
	case TagInfo:
		return TypeInfo
	}
	return TypeUnknown
}
