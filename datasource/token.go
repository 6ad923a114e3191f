package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token sent with every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token. An empty token sends no header.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// ServiceTokenConfig configures HS256 service tokens.
type ServiceTokenConfig struct {
	Issuer     string
	Subject    string
	Audience   string
	SigningKey []byte

	// TTL is the token lifetime. Default: 15 minutes
	TTL time.Duration

	// Now overrides the clock. Default: time.Now
	Now func() time.Time
}

// ServiceToken mints short-lived HS256 JWTs and reuses each one until it is
// within a tenth of its lifetime of expiring.
type ServiceToken struct {
	cfg ServiceTokenConfig

	mu      sync.Mutex
	current string
	renewAt time.Time
}

// NewServiceToken validates cfg and returns a token source.
func NewServiceToken(cfg ServiceTokenConfig) (*ServiceToken, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ServiceToken{cfg: cfg}, nil
}

// Token implements TokenSource.
func (s *ServiceToken) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Now()
	if s.current != "" && now.Before(s.renewAt) {
		return s.current, nil
	}

	claims := jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   s.cfg.Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.SigningKey)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}

	s.current = signed
	s.renewAt = now.Add(s.cfg.TTL - s.cfg.TTL/10)
	return signed, nil
}

var (
	_ TokenSource = StaticToken("")
	_ TokenSource = (*ServiceToken)(nil)
)
