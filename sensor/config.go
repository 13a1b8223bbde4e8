package sensor

import (
	"time"

	"go.uber.org/zap"
)

// Config carries the construction-time settings of a Sensor. Build one with
// NewConfigBuilder.
type Config struct {
	dialer          Dialer
	responseTimeout time.Duration
	initTimeout     time.Duration
	logger          *zap.Logger
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.responseTimeout == 0 {
		c.responseTimeout = 5 * time.Second
	}
	if c.initTimeout == 0 {
		c.initTimeout = 30 * time.Second
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	cfg Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets the Dialer used to open the sensor transport. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.cfg.dialer = d
	return b
}

// WithResponseTimeout bounds the wait for a single response. Applied to
// every request whose context carries no deadline of its own.
func (b *ConfigBuilder) WithResponseTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.responseTimeout = d
	return b
}

// WithInitTimeout bounds the whole startup sequence.
func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.initTimeout = d
	return b
}

// WithLogger sets the logger the driver reports parsed values and protocol
// trouble to. Defaults to a no-op logger.
func (b *ConfigBuilder) WithLogger(l *zap.Logger) *ConfigBuilder {
	b.cfg.logger = l
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	cfg := b.cfg
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
