package sensor

import (
	"context"

	"github.com/marelab/luminox/lox"
)

// SetMode asks the sensor to switch its output behaviour and waits for the
// mode echo. The cached mode changes only once the echo has been parsed; a
// request that fails or times out leaves it alone. An undefined mode fails
// with lox.ErrInvalidMode before anything is transmitted.
func (s *Sensor) SetMode(ctx context.Context, mode lox.Mode) error {
	frame, err := lox.SetModeCommand(mode)
	if err != nil {
		return err
	}
	return s.exec(ctx, frame)
}

// RequestPpO2 asks the sensor for the current ppO2 and caches the parsed
// value. Read it with PpO2.
func (s *Sensor) RequestPpO2(ctx context.Context) error {
	return s.exec(ctx, []byte(lox.CmdPpO2))
}

// RequestO2 asks the sensor for the current O2 percentage and caches the
// parsed value. Read it with O2.
func (s *Sensor) RequestO2(ctx context.Context) error {
	return s.exec(ctx, []byte(lox.CmdO2))
}

// RequestTemperature asks the sensor for its internal temperature and
// caches the parsed value. Read it with Temperature.
func (s *Sensor) RequestTemperature(ctx context.Context) error {
	return s.exec(ctx, []byte(lox.CmdTemperature))
}

// RequestBarometricPressure asks the sensor for the barometric pressure and
// caches the parsed value. Sensors without the optional pressure transducer
// answer with a dashed placeholder, which caches as zero. Read it with
// BarometricPressure.
func (s *Sensor) RequestBarometricPressure(ctx context.Context) error {
	return s.exec(ctx, []byte(lox.CmdPressure))
}

// RequestStatus asks the sensor for its 4-digit status word and caches it.
// Read it with Status; lox.StatusGood means healthy.
func (s *Sensor) RequestStatus(ctx context.Context) error {
	return s.exec(ctx, []byte(lox.CmdStatus))
}

// RequestAll asks the sensor for ppO2, temperature, pressure, O2 and status
// in one exchange and caches all of them.
func (s *Sensor) RequestAll(ctx context.Context) error {
	return s.exec(ctx, []byte(lox.CmdAll))
}

// RequestInfo asks the sensor for one of its information records (date of
// manufacture, serial number, software version). The payload is logged, not
// parsed into fields. An undefined info kind fails with lox.ErrInvalidInfo
// before anything is transmitted.
func (s *Sensor) RequestInfo(ctx context.Context, info lox.Info) error {
	frame, err := lox.InfoCommand(info)
	if err != nil {
		return err
	}
	return s.exec(ctx, frame)
}

// Mode returns the last observed output mode. It reflects mode echoes the
// parser has seen, not requests in flight.
func (s *Sensor) Mode() lox.Mode {
	return s.mode
}

// PpO2 returns the cached ppO2 in mbar. The value may be stale; call
// RequestPpO2 first.
func (s *Sensor) PpO2() float64 {
	return s.ppO2
}

// O2 returns the cached O2 percentage. The value may be stale; call
// RequestO2 first.
func (s *Sensor) O2() float64 {
	return s.o2
}

// Temperature returns the cached sensor temperature in degrees C. The value
// may be stale; call RequestTemperature first.
func (s *Sensor) Temperature() float64 {
	return s.temperature
}

// BarometricPressure returns the cached barometric pressure in mbar. The
// value may be stale; call RequestBarometricPressure first.
func (s *Sensor) BarometricPressure() float64 {
	return s.pressure
}

// Status returns the last cached 4-digit status word, or the empty string
// if none has been observed since initialization.
func (s *Sensor) Status() string {
	return s.status
}
