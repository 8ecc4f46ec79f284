package config

import (
	"encoding/json"
	"time"

	"adcvolt/core"
)

// Config describes one sampling setup.
type Config struct {
	Channels       []uint8 `json:"channels"`
	ResolutionBits int     `json:"resolution_bits"`
	ReferenceVolts float64 `json:"reference_volts"`

	IntervalMs    int `json:"interval_ms"`     // delay between samples
	MaxPolls      int `json:"max_polls"`       // 0 = bounded by TimeoutMs only
	PollBackoffUs int `json:"poll_backoff_us"` // 0 = yield between polls
	TimeoutMs     int `json:"timeout_ms"`      // per-conversion deadline
}

// LoadConfig parses a JSON configuration over DefaultConfig and validates
// it. Keys present in the JSON replace the defaults even when zero.
func LoadConfig(jsonData []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the setup of the reference board: one channel
// (pin 16), 14-bit conversions against a 1.5 V reference, every 100 ms
func DefaultConfig() *Config {
	return &Config{
		Channels:       []uint8{16},
		ResolutionBits: 14,
		ReferenceVolts: 1.5,
		IntervalMs:     100,
		TimeoutMs:      1000,
	}
}

// Validate checks every field without building anything.
func (c *Config) Validate() error {
	chs, err := c.ChannelSet()
	if err != nil {
		return err
	}
	if chs.Empty() {
		return core.ErrConfig
	}
	if _, err := c.Converter(); err != nil {
		return err
	}
	if c.IntervalMs <= 0 || c.MaxPolls < 0 || c.PollBackoffUs < 0 || c.TimeoutMs < 0 {
		return core.ErrConfig
	}
	return nil
}

// ChannelSet returns the configured channels as a set.
func (c *Config) ChannelSet() (core.ChannelSet, error) {
	return core.ParseChannels(c.Channels)
}

// Converter returns the validated converter parameters.
func (c *Config) Converter() (core.ConverterConfig, error) {
	return core.NewConverterConfig(c.ResolutionBits, c.ReferenceVolts)
}

// PollPolicy returns the per-cycle poll bound.
func (c *Config) PollPolicy() core.PollPolicy {
	return core.PollPolicy{
		MaxPolls: c.MaxPolls,
		Backoff:  time.Duration(c.PollBackoffUs) * time.Microsecond,
	}
}

// Interval returns the delay between samples.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Timeout returns the per-conversion deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
