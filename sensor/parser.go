package sensor

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/marelab/luminox/lox"
)

// Reading is one set of measurements parsed from a sensor response line.
// The Has flags say which fields the line actually carried; a line answering
// a single-value request fills exactly one of them, a streaming or "A"
// response line fills all of them.
type Reading struct {
	PpO2        float64 // mbar
	O2          float64 // percent
	Temperature float64 // degrees C
	Pressure    float64 // mbar, 0 when the sensor is not fitted with one
	Status      string  // 4-digit status word, lox.StatusGood when healthy

	HasPpO2        bool
	HasO2          bool
	HasTemperature bool
	HasPressure    bool
	HasStatus      bool
}

// Good reports whether the line carried a status word and it was the
// all-clear value.
func (r Reading) Good() bool {
	return r.HasStatus && r.Status == lox.StatusGood
}

// parseResult is the full outcome of one response scan: measurements plus an
// observed mode echo, if any.
type parseResult struct {
	Reading
	mode    lox.Mode
	hasMode bool
}

// ParseReading parses a measurement line into a standalone Reading without
// touching any driver state. This is how streaming-mode output is decoded,
// and it is available to callers that do their own framing.
func ParseReading(p []byte) (Reading, error) {
	res, err := parseResponse(p)
	if err != nil {
		return Reading{}, err
	}
	return res.Reading, nil
}

// parseResponse scans one complete response in a single left-to-right pass,
// keyed on tag bytes. The scan ends at the terminator, at the end of the
// buffer, or early on an error report or mode echo. Every fixed-width field
// read is clamped to the buffer; a field cut short yields ErrShortResponse
// rather than a read past the end.
func parseResponse(buf []byte) (parseResult, error) {
	var res parseResult

	i := 0
	for i < len(buf) && buf[i] != lox.Terminator {
		switch buf[i] {
		case lox.TagError:
			// The subcode digit sits at absolute offset 3 of the message.
			if len(buf) < 4 {
				return res, ErrShortResponse
			}
			return res, lox.ErrorFromSubcode(buf[3])

		case lox.TagMode:
			// Mode echo "M xx"; the digit that matters is the second one.
			if i+3 >= len(buf) {
				return res, ErrShortResponse
			}
			if mode, ok := lox.ModeFromDigit(buf[i+3]); ok {
				res.mode = mode
				res.hasMode = true
			}
			return res, nil

		case lox.TagPpO2:
			v, next, err := fixedField(buf, i+2, lox.PpO2FieldLen)
			if err != nil {
				return res, err
			}
			res.PpO2, res.HasPpO2 = v, true
			i = next

		case lox.TagO2:
			v, next, err := fixedField(buf, i+2, lox.O2FieldLen)
			if err != nil {
				return res, err
			}
			res.O2, res.HasO2 = v, true
			i = next

		case lox.TagTemperature:
			v, next, err := fixedField(buf, i+2, lox.TemperatureFieldLen)
			if err != nil {
				return res, err
			}
			res.Temperature, res.HasTemperature = v, true
			i = next

		case lox.TagPressure:
			v, next, err := fixedField(buf, i+2, lox.PressureFieldLen)
			if err != nil {
				return res, err
			}
			res.Pressure, res.HasPressure = v, true
			i = next

		case lox.TagStatus:
			// Status word "e xxxx". A bare tag with nothing after it is
			// recognized but records nothing.
			if i+2+lox.StatusFieldLen <= len(buf) {
				res.Status = string(buf[i+2 : i+2+lox.StatusFieldLen])
				res.HasStatus = true
				i += 2 + lox.StatusFieldLen
			} else {
				i++
			}

		case lox.TagInfo, lox.Separator:
			// Info payloads are free text for the log, not structured
			// fields. Separators just move the scan along.
			i++

		default:
			i++
		}
	}

	return res, nil
}

// fixedField reads a fixed-width ASCII numeric field starting at off and
// returns its value together with the index one past the field.
func fixedField(buf []byte, off, width int) (float64, int, error) {
	if off+width > len(buf) {
		return 0, 0, ErrShortResponse
	}
	return numericValue(buf[off : off+width]), off + width, nil
}

// numericValue converts an ASCII field to a float. Sensors without the
// optional pressure transducer fill that field with dashes; those, like any
// other non-numeric content, read as zero rather than failing the message.
func numericValue(field []byte) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(field)), 64)
	if err != nil {
		return 0
	}
	return v
}

// UpdateResponse copies one complete response message into the response
// buffer, replacing the previous contents wholesale. Callers running their
// own framing call this exactly once per complete message, then
// ProcessResponse.
func (s *Sensor) UpdateResponse(p []byte) error {
	if len(p) > ResponseBufferSize {
		return ErrResponseTooLong
	}
	s.respLen = copy(s.respBuf[:], p)
	return nil
}

// ProcessResponse parses the message currently in the response buffer and
// folds it into the cached state. Parsing is idempotent: the same buffer
// contents produce the same state every time. A sensor-reported error or a
// truncated field stops the scan and leaves all cached readings untouched.
func (s *Sensor) ProcessResponse() error {
	buf := s.respBuf[:s.respLen]

	res, err := parseResponse(buf)
	if err != nil {
		s.logger.Warn("sensor response failed",
			zap.ByteString("response", buf), zap.Error(err))
		return err
	}

	if res.hasMode {
		s.mode = res.mode
		s.logger.Debug("sensor mode changed", zap.Stringer("mode", res.mode))
	}
	if res.HasPpO2 {
		s.ppO2 = res.PpO2
		s.logger.Debug("ppO2 reading", zap.Float64("mbar", res.PpO2))
	}
	if res.HasO2 {
		s.o2 = res.O2
		s.logger.Debug("O2 reading", zap.Float64("percent", res.O2))
	}
	if res.HasTemperature {
		s.temperature = res.Temperature
		s.logger.Debug("temperature reading", zap.Float64("celsius", res.Temperature))
	}
	if res.HasPressure {
		s.pressure = res.Pressure
		s.logger.Debug("pressure reading", zap.Float64("mbar", res.Pressure))
	}
	if res.HasStatus {
		s.status = res.Status
		if res.Status != lox.StatusGood {
			s.logger.Warn("sensor status not good", zap.String("status", res.Status))
		}
	}
	if len(buf) > 0 && buf[0] == lox.TagInfo {
		// Info payloads are not parsed into fields; the line itself is the
		// useful artifact.
		s.logger.Info("sensor info", zap.ByteString("line", buf))
	}

	return nil
}
