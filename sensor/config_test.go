package sensor_test

import (
	"testing"
	"time"

	"github.com/marelab/luminox/sensor"
)

func TestConfig(t *testing.T) {
	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		_, err := sensor.NewConfigBuilder().Build()

		if err != sensor.ErrNoDialer {
			t.Errorf("expected ErrNoDialer, got: %v", err)
		}
	})

	t.Run("Builds with a dialer and options", func(t *testing.T) {
		_, err := sensor.NewConfigBuilder().
			WithDialer(sensor.TestDialer{Transport: sensor.NewTestTransport()}).
			WithResponseTimeout(time.Second).
			WithInitTimeout(10 * time.Second).
			Build()

		if err != nil {
			t.Errorf("unexpected error from Build(): %v", err)
		}
	})
}
