package cache

import (
	"fmt"
	"time"
)

// DefaultTTL is the entry lifetime used by DefaultConfig.
const DefaultTTL = 5 * time.Minute

// Config configures an Engine.
type Config struct {
	// TTL is how long an entry stays fresh after it is stored.
	// Must be positive.
	TTL time.Duration

	// MaxSize bounds the number of entries. When a new key would exceed it,
	// the entry stored earliest is evicted first.
	// If zero, the store is unbounded.
	MaxSize int

	// MaxTTL caps per-call TTL overrides passed to Set.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultConfig returns the default engine configuration.
// TTL: 5 minutes, MaxSize: unbounded, MaxTTL: none
func DefaultConfig() Config {
	return Config{
		TTL: DefaultTTL,
	}
}

// Validate reports the first configuration problem, if any.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, c.TTL)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxSize, c.MaxSize)
	}
	if c.MaxTTL < 0 || (c.MaxTTL > 0 && c.MaxTTL < c.TTL) {
		return fmt.Errorf("%w: got %s with ttl %s", ErrInvalidMaxTTL, c.MaxTTL, c.TTL)
	}
	return nil
}

// Bounded reports whether the store has a size limit.
func (c Config) Bounded() bool {
	return c.MaxSize > 0
}

// EffectiveTTL returns the TTL to use for a Set call, applying the default
// and clamping.
func (c Config) EffectiveTTL(override time.Duration) time.Duration {
	// Use default if no override (or negative override)
	ttl := override
	if ttl <= 0 {
		ttl = c.TTL
	}

	if c.MaxTTL > 0 && ttl > c.MaxTTL {
		ttl = c.MaxTTL
	}

	return ttl
}
