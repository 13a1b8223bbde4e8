package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marelab/luminox/lox"
)

func newBareSensor() *Sensor {
	return &Sensor{logger: zap.NewNop()}
}

func feed(t *testing.T, s *Sensor, response string) error {
	t.Helper()
	require.NoError(t, s.UpdateResponse([]byte(response)))
	return s.ProcessResponse()
}

func TestProcessResponseValues(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, s *Sensor)
	}{
		{
			name:     "ppO2 value",
			response: "O 1013.2\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Equal(t, 1013.2, s.PpO2())
			},
		},
		{
			name:     "O2 value",
			response: "% 20.95\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Equal(t, 20.95, s.O2())
			},
		},
		{
			name:     "positive temperature",
			response: "T +23.5\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Equal(t, 23.5, s.Temperature())
			},
		},
		{
			name:     "negative temperature",
			response: "T -05.2\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Equal(t, -5.2, s.Temperature())
			},
		},
		{
			name:     "pressure value",
			response: "P 0979\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Equal(t, 979.0, s.BarometricPressure())
			},
		},
		{
			name:     "pressure placeholder for sensors without transducer",
			response: "P ----\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Equal(t, 0.0, s.BarometricPressure())
			},
		},
		{
			name:     "status word",
			response: "e 0000\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Equal(t, lox.StatusGood, s.Status())
			},
		},
		{
			name:     "combined A response fills everything",
			response: "O 0213.4 T +21.3 P 0979 % 020.31 e 0000\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Equal(t, 213.4, s.PpO2())
				assert.Equal(t, 21.3, s.Temperature())
				assert.Equal(t, 979.0, s.BarometricPressure())
				assert.Equal(t, 20.31, s.O2())
				assert.Equal(t, lox.StatusGood, s.Status())
			},
		},
		{
			name:     "info line records nothing",
			response: "# 00123 45678\r\n",
			check: func(t *testing.T, s *Sensor) {
				assert.Zero(t, s.PpO2())
				assert.Zero(t, s.O2())
				assert.Empty(t, s.Status())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newBareSensor()
			require.NoError(t, feed(t, s, tt.response))
			tt.check(t, s)
		})
	}
}

func TestProcessResponseModeEcho(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     lox.Mode
	}{
		{name: "streaming echo", response: "M 00\r\n", want: lox.ModeStreaming},
		{name: "polling echo", response: "M 01\r\n", want: lox.ModePolling},
		{name: "off echo", response: "M 02\r\n", want: lox.ModeOff},
		// The digit that matters sits at tag offset+3 regardless of what
		// precedes it.
		{name: "digit at offset three", response: "M x0\r\n", want: lox.ModeStreaming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newBareSensor()
			s.mode = lox.ModePolling
			require.NoError(t, feed(t, s, tt.response))
			assert.Equal(t, tt.want, s.Mode())
		})
	}

	t.Run("unknown digit leaves mode unchanged", func(t *testing.T) {
		s := newBareSensor()
		s.mode = lox.ModePolling
		require.NoError(t, feed(t, s, "M 09\r\n"))
		assert.Equal(t, lox.ModePolling, s.Mode())
	})
}

func TestProcessResponseErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     error
	}{
		{name: "receiver overflow", response: "E 00\r\n", want: lox.ErrRxOverflow},
		{name: "invalid command", response: "E 01\r\n", want: lox.ErrInvalidCommand},
		{name: "invalid frame", response: "E 02\r\n", want: lox.ErrInvalidFrame},
		{name: "invalid argument", response: "E 03\r\n", want: lox.ErrInvalidArgument},
		{name: "unknown subcode", response: "E 09\r\n", want: lox.ErrSensor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newBareSensor()
			err := feed(t, s, tt.response)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("error response leaves cached readings untouched", func(t *testing.T) {
		s := newBareSensor()
		require.NoError(t, feed(t, s, "O 1013.2\r\n"))
		require.Equal(t, 1013.2, s.PpO2())

		assert.ErrorIs(t, feed(t, s, "E 01\r\n"), lox.ErrInvalidCommand)
		assert.Equal(t, 1013.2, s.PpO2())
	})
}

func TestProcessResponseTruncated(t *testing.T) {
	// Fields are fixed width; a message ending mid-field must fail cleanly
	// instead of reading past the buffer.
	tests := []struct {
		name     string
		response string
	}{
		{name: "ppO2 field cut short", response: "O 1.2"},
		{name: "O2 field cut short", response: "% 20"},
		{name: "temperature field cut short", response: "T +2"},
		{name: "pressure field cut short", response: "P 09"},
		{name: "bare error tag", response: "E 0"},
		{name: "bare mode tag", response: "M 0"},
		{name: "combined line cut mid-field", response: "O 0213.4 T +2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newBareSensor()
			err := feed(t, s, tt.response)
			assert.ErrorIs(t, err, ErrShortResponse)
			assert.Zero(t, s.PpO2())
			assert.Zero(t, s.Temperature())
		})
	}
}

func TestProcessResponseIdempotent(t *testing.T) {
	s := newBareSensor()

	require.NoError(t, feed(t, s, "O 0213.4 T +21.3 P 0979 % 020.31 e 0000\r\n"))
	first := *s

	require.NoError(t, s.ProcessResponse())
	assert.Equal(t, first.ppO2, s.ppO2)
	assert.Equal(t, first.o2, s.o2)
	assert.Equal(t, first.temperature, s.temperature)
	assert.Equal(t, first.pressure, s.pressure)
	assert.Equal(t, first.status, s.status)
	assert.Equal(t, first.mode, s.mode)
}

func TestUpdateResponse(t *testing.T) {
	t.Run("overwrites previous contents wholesale", func(t *testing.T) {
		s := newBareSensor()
		require.NoError(t, s.UpdateResponse([]byte("O 1013.2\r\n")))
		require.NoError(t, s.UpdateResponse([]byte("T +23.5\r\n")))

		require.NoError(t, s.ProcessResponse())
		assert.Equal(t, 23.5, s.Temperature())
		assert.Zero(t, s.PpO2())
	})

	t.Run("rejects messages over capacity", func(t *testing.T) {
		s := newBareSensor()
		long := make([]byte, ResponseBufferSize+1)
		assert.ErrorIs(t, s.UpdateResponse(long), ErrResponseTooLong)
	})

	t.Run("accepts a message at exactly capacity", func(t *testing.T) {
		s := newBareSensor()
		exact := make([]byte, ResponseBufferSize)
		assert.NoError(t, s.UpdateResponse(exact))
	})
}

func TestParseReading(t *testing.T) {
	t.Run("streaming line", func(t *testing.T) {
		r, err := ParseReading([]byte("O 0213.4 T +21.3 P 0979 % 020.31 e 0000"))
		require.NoError(t, err)

		assert.True(t, r.HasPpO2)
		assert.True(t, r.HasO2)
		assert.True(t, r.HasTemperature)
		assert.True(t, r.HasPressure)
		assert.True(t, r.HasStatus)
		assert.Equal(t, 213.4, r.PpO2)
		assert.Equal(t, 20.31, r.O2)
		assert.Equal(t, 21.3, r.Temperature)
		assert.Equal(t, 979.0, r.Pressure)
		assert.True(t, r.Good())
	})

	t.Run("single value line", func(t *testing.T) {
		r, err := ParseReading([]byte("O 1013.2\r\n"))
		require.NoError(t, err)

		assert.True(t, r.HasPpO2)
		assert.False(t, r.HasO2)
		assert.False(t, r.HasStatus)
		assert.False(t, r.Good())
	})

	t.Run("error line", func(t *testing.T) {
		_, err := ParseReading([]byte("E 02\r\n"))
		assert.ErrorIs(t, err, lox.ErrInvalidFrame)
	})
}
