package cache

import (
	"errors"
	"testing"
	"time"
)

func TestConfig_Default(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TTL != 5*time.Minute {
		t.Errorf("DefaultConfig().TTL = %v, want 5m", cfg.TTL)
	}
	if cfg.Bounded() {
		t.Error("DefaultConfig() should be unbounded")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"valid", Config{TTL: time.Second}, nil},
		{"valid bounded", Config{TTL: time.Second, MaxSize: 10}, nil},
		{"valid max ttl", Config{TTL: time.Second, MaxTTL: time.Minute}, nil},
		{"zero ttl", Config{}, ErrInvalidTTL},
		{"negative ttl", Config{TTL: -time.Second}, ErrInvalidTTL},
		{"negative max size", Config{TTL: time.Second, MaxSize: -1}, ErrInvalidMaxSize},
		{"negative max ttl", Config{TTL: time.Second, MaxTTL: -1}, ErrInvalidMaxTTL},
		{"max ttl below ttl", Config{TTL: time.Minute, MaxTTL: time.Second}, ErrInvalidMaxTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_EffectiveTTL(t *testing.T) {
	cfg := Config{TTL: 5 * time.Minute, MaxTTL: 10 * time.Minute}

	tests := []struct {
		override time.Duration
		want     time.Duration
	}{
		{0, 5 * time.Minute},
		{-time.Second, 5 * time.Minute},
		{3 * time.Minute, 3 * time.Minute},
		{15 * time.Minute, 10 * time.Minute},
	}

	for _, tt := range tests {
		if got := cfg.EffectiveTTL(tt.override); got != tt.want {
			t.Errorf("EffectiveTTL(%v) = %v, want %v", tt.override, got, tt.want)
		}
	}
}

func TestConfig_EffectiveTTL_NoMax(t *testing.T) {
	cfg := Config{TTL: time.Minute}
	if got := cfg.EffectiveTTL(24 * time.Hour); got != 24*time.Hour {
		t.Errorf("EffectiveTTL(24h) = %v, want 24h without MaxTTL", got)
	}
}
