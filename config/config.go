package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/dashcache/cache"
	"github.com/jonwraymond/dashcache/datasource"
	"github.com/jonwraymond/dashcache/observe"
	"github.com/jonwraymond/dashcache/secret"
	"github.com/jonwraymond/dashcache/tracker"
)

// Config is the configuration file.
type Config struct {
	Cache   Cache   `yaml:"cache"`
	Store   Store   `yaml:"store"`
	Tracker Tracker `yaml:"tracker"`
	Observe Observe `yaml:"observe"`
	Secrets Secrets `yaml:"secrets"`
	Serve   Serve   `yaml:"serve"`
}

// Cache configures the cache engine.
type Cache struct {
	TTL     Duration `yaml:"ttl"`
	MaxSize int      `yaml:"max_size"`
	MaxTTL  Duration `yaml:"max_ttl"`

	// SweepInterval enables the background sweeper when positive.
	SweepInterval Duration `yaml:"sweep_interval"`

	// Coalesce shares one load between concurrent misses on a key.
	Coalesce bool `yaml:"coalesce"`
}

// Store configures the document store client. An empty BaseURL selects the
// in-memory demo store.
type Store struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`

	// Token is a static bearer token. Ignored when SigningKey is set.
	Token string `yaml:"token"`

	// SigningKey enables HS256 service tokens.
	SigningKey string   `yaml:"signing_key"`
	Issuer     string   `yaml:"issuer"`
	Subject    string   `yaml:"subject"`
	Audience   string   `yaml:"audience"`
	TokenTTL   Duration `yaml:"token_ttl"`

	Timeout          Duration `yaml:"timeout"`
	MaxConcurrent    int      `yaml:"max_concurrent"`
	MaxAttempts      int      `yaml:"max_attempts"`
	RetryDelay       Duration `yaml:"retry_delay"`
	FailureThreshold int      `yaml:"failure_threshold"`
	ResetTimeout     Duration `yaml:"reset_timeout"`
}

// Tracker configures the accessor service.
type Tracker struct {
	// CallRateWarning is the accessor calls per second above which a warning
	// is logged. Zero disables it.
	CallRateWarning int `yaml:"call_rate_warning"`
	Fanout          int `yaml:"fanout"`
}

// Observe configures telemetry.
type Observe struct {
	ServiceName string `yaml:"service_name"`
	Version     string `yaml:"version"`
	Tracing     struct {
		Enabled   bool    `yaml:"enabled"`
		Exporter  string  `yaml:"exporter"`
		SamplePct float64 `yaml:"sample_pct"`
	} `yaml:"tracing"`
	Metrics struct {
		Enabled  bool   `yaml:"enabled"`
		Exporter string `yaml:"exporter"`
	} `yaml:"metrics"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Secrets configures secret resolution.
type Secrets struct {
	// Lenient allows secret references to resolve to "".
	Lenient bool `yaml:"lenient"`

	// FileDir is the base directory for secretref:file: references.
	FileDir string `yaml:"file_dir"`
}

// Serve configures the HTTP server of `dashcache serve`.
type Serve struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Cache.TTL = Duration(cache.DefaultTTL)
	c.Tracker.CallRateWarning = tracker.DefaultCallRate
	c.Tracker.Fanout = tracker.DefaultFanout
	c.Observe.ServiceName = "dashcache"
	c.Observe.Tracing.Exporter = "none"
	c.Observe.Tracing.SamplePct = 1
	c.Observe.Metrics.Exporter = "prometheus"
	c.Observe.Logging.Level = "info"
	c.Serve.Addr = "127.0.0.1:8080"
	return c
}

// Load reads path. An empty path returns Default.
func Load(ctx context.Context, path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(ctx, data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default, resolves credentials and validates the
// result. Unknown keys are rejected.
func Parse(ctx context.Context, data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.resolve(ctx); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolve(ctx context.Context) error {
	registry := secret.NewDefaultRegistry()
	resolver := secret.NewResolver(!c.Secrets.Lenient)
	for _, name := range registry.List() {
		p, err := registry.Create(name, map[string]any{"dir": c.Secrets.FileDir})
		if err != nil {
			return fmt.Errorf("config: secrets: %w", err)
		}
		resolver.Register(p)
	}
	defer func() { _ = resolver.Close() }()

	fields := []struct {
		name string
		ptr  *string
	}{
		{"store.base_url", &c.Store.BaseURL},
		{"store.token", &c.Store.Token},
		{"store.signing_key", &c.Store.SigningKey},
		{"store.issuer", &c.Store.Issuer},
		{"store.subject", &c.Store.Subject},
		{"store.audience", &c.Store.Audience},
		{"observe.service_name", &c.Observe.ServiceName},
		{"observe.version", &c.Observe.Version},
	}
	for _, f := range fields {
		if *f.ptr == "" {
			continue
		}
		v, err := resolver.ResolveValue(ctx, *f.ptr)
		if err != nil {
			return fmt.Errorf("config: %s: %w", f.name, err)
		}
		*f.ptr = v
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.CacheConfig().Validate(); err != nil {
		return fmt.Errorf("config: cache: %w", err)
	}
	if c.Tracker.CallRateWarning < 0 || c.Tracker.Fanout < 0 {
		return fmt.Errorf("%w: tracker values must not be negative", ErrInvalidValue)
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("%w: cache.sweep_interval is negative", ErrInvalidValue)
	}
	oc := c.ObserveConfig(io.Discard)
	if err := oc.Validate(); err != nil {
		return fmt.Errorf("config: observe: %w", err)
	}
	return nil
}

// UsesRemoteStore reports whether a store base URL is configured.
func (c Config) UsesRemoteStore() bool {
	return c.Store.BaseURL != ""
}

// CacheConfig builds the engine configuration.
func (c Config) CacheConfig() cache.Config {
	return cache.Config{
		TTL:     c.Cache.TTL.Std(),
		MaxSize: c.Cache.MaxSize,
		MaxTTL:  c.Cache.MaxTTL.Std(),
	}
}

// HTTPConfig builds the document store client configuration.
func (c Config) HTTPConfig() (datasource.HTTPConfig, error) {
	s := c.Store
	hc := datasource.HTTPConfig{
		BaseURL:          s.BaseURL,
		UserAgent:        s.UserAgent,
		Timeout:          s.Timeout.Std(),
		MaxConcurrent:    s.MaxConcurrent,
		MaxAttempts:      s.MaxAttempts,
		RetryDelay:       s.RetryDelay.Std(),
		FailureThreshold: s.FailureThreshold,
		ResetTimeout:     s.ResetTimeout.Std(),
	}

	switch {
	case s.SigningKey != "":
		tok, err := datasource.NewServiceToken(datasource.ServiceTokenConfig{
			Issuer:     s.Issuer,
			Subject:    s.Subject,
			Audience:   s.Audience,
			SigningKey: []byte(s.SigningKey),
			TTL:        s.TokenTTL.Std(),
		})
		if err != nil {
			return datasource.HTTPConfig{}, fmt.Errorf("config: store: %w", err)
		}
		hc.Token = tok
	case s.Token != "":
		hc.Token = datasource.StaticToken(s.Token)
	}
	return hc, nil
}

// ObserveConfig builds the telemetry configuration writing to w. Logging is
// always enabled.
func (c Config) ObserveConfig(w io.Writer) observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     o.Version,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing.Enabled,
			Exporter:  o.Tracing.Exporter,
			SamplePct: o.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics.Enabled,
			Exporter: o.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   o.Logging.Level,
		},
		Output: w,
	}
}

// TrackerOptions returns the service options for the tracker section.
func (c Config) TrackerOptions() []tracker.Option {
	return []tracker.Option{
		tracker.WithCallRateWarning(c.Tracker.CallRateWarning),
		tracker.WithFanout(c.Tracker.Fanout),
	}
}
