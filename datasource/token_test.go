package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceToken_Claims(t *testing.T) {
	key := []byte("signing-key")
	now := time.Now()
	src, err := NewServiceToken(ServiceTokenConfig{
		Issuer:     "dashcache",
		Subject:    "dashboard",
		Audience:   "document-store",
		SigningKey: key,
		TTL:        time.Minute,
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)

	signed, err := src.Token(context.Background())
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience("document-store"),
		jwt.WithIssuer("dashcache"),
	)
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "dashboard", claims.Subject)
	assert.Equal(t, now.Add(time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestServiceToken_Reuse(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	src, err := NewServiceToken(ServiceTokenConfig{SigningKey: []byte("k"), TTL: 100 * time.Second, Now: clock})
	require.NoError(t, err)
	ctx := context.Background()

	first, _ := src.Token(ctx)
	now = now.Add(80 * time.Second)
	second, _ := src.Token(ctx)
	assert.Equal(t, first, second, "token should be reused before the renewal point")

	now = now.Add(15 * time.Second)
	third, _ := src.Token(ctx)
	assert.NotEqual(t, first, third, "token should be renewed in its last tenth")
}

func TestServiceToken_RequiresKey(t *testing.T) {
	_, err := NewServiceToken(ServiceTokenConfig{})
	assert.ErrorIs(t, err, ErrMissingSigningKey)
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}
