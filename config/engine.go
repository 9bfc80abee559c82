package config

import (
	"fmt"
	"time"

	"github.com/kbukum/widgetkit/dispatch"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/observability"
	"github.com/kbukum/widgetkit/resilience"
	"github.com/kbukum/widgetkit/security"
	"github.com/kbukum/widgetkit/state"
	"github.com/kbukum/widgetkit/validation"
)

// Allocator kinds.
const (
	AllocatorSequence = "sequence"
	AllocatorUUID     = "uuid"
)

// EngineConfig holds engine-wide defaults shared by all instances.
type EngineConfig struct {
	IDPrefix        string                 `yaml:"id_prefix" mapstructure:"id_prefix"`
	Allocator       string                 `yaml:"allocator" mapstructure:"allocator"`
	CloseDelay      time.Duration          `yaml:"close_delay" mapstructure:"close_delay"`
	DefaultLanguage string                 `yaml:"default_language" mapstructure:"default_language"`
	ContainerPrefix string                 `yaml:"container_prefix" mapstructure:"container_prefix"`
	InitialScreen   string                 `yaml:"initial_screen" mapstructure:"initial_screen"`
	AsyncTimeout    time.Duration          `yaml:"async_timeout" mapstructure:"async_timeout"`
	Retry           resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	APITimeout      time.Duration          `yaml:"api_timeout" mapstructure:"api_timeout"`
	TLS             security.TLSConfig     `yaml:"tls" mapstructure:"tls"`
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	var c EngineConfig
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields.
func (c *EngineConfig) ApplyDefaults() {
	d := dispatch.DefaultConfig()
	if c.IDPrefix == "" {
		c.IDPrefix = "lock"
	}
	if c.Allocator == "" {
		c.Allocator = AllocatorSequence
	}
	if c.CloseDelay == 0 {
		c.CloseDelay = d.CloseDelay
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = d.Defaults.Language
	}
	if c.ContainerPrefix == "" {
		c.ContainerPrefix = d.Defaults.ContainerPrefix
	}
	if c.InitialScreen == "" {
		c.InitialScreen = d.Defaults.InitialScreen
	}
	if c.AsyncTimeout == 0 {
		c.AsyncTimeout = 30 * time.Second
	}
	if c.APITimeout == 0 {
		c.APITimeout = 10 * time.Second
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 1
	}
	c.Retry.ApplyDefaults()
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	v := validation.New().
		OneOf("allocator", c.Allocator, []string{AllocatorSequence, AllocatorUUID}).
		Custom(c.CloseDelay >= 0, "close_delay", "must not be negative").
		Custom(c.AsyncTimeout >= 0, "async_timeout", "must not be negative").
		Custom(c.Retry.Jitter >= 0 && c.Retry.Jitter <= 1, "retry.jitter", "must be between 0 and 1").
		Required("container_prefix", c.ContainerPrefix)
	if err := c.TLS.Validate(); err != nil {
		v.AddError("tls", err.Error())
	}
	return v.Validate()
}

// NewAllocator builds the configured identity allocator.
func (c *EngineConfig) NewAllocator() ident.Allocator {
	if c.Allocator == AllocatorUUID {
		return ident.NewUUID(c.IDPrefix)
	}
	return ident.NewSequence(c.IDPrefix)
}

// Dispatch converts the configuration into dispatcher settings.
func (c *EngineConfig) Dispatch() dispatch.Config {
	return dispatch.Config{
		CloseDelay:   c.CloseDelay,
		AsyncTimeout: c.AsyncTimeout,
		Retry:        c.Retry,
		Defaults: state.Defaults{
			ContainerPrefix: c.ContainerPrefix,
			Language:        c.DefaultLanguage,
			InitialScreen:   c.InitialScreen,
		},
	}
}

// ObservabilityConfig configures OTLP export of traces and metrics.
type ObservabilityConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills unset fields.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate validates the observability configuration.
func (c *ObservabilityConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	return nil
}

// Tracer returns the tracer settings for service.
func (c *ObservabilityConfig) Tracer(service, version, env string) observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    env,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
	}
}

// Meter returns the meter settings for service.
func (c *ObservabilityConfig) Meter(service, version, env string) observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    env,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.MetricInterval,
	}
}
