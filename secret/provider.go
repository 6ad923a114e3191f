package secret

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference.
//
// Implementations must be safe for concurrent use and must not log values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as an environment variable name.
type EnvProvider struct{}

// Name implements Provider.
func (EnvProvider) Name() string { return "env" }

// Resolve implements Provider.
func (EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, ref)
	}
	return v, nil
}

// Close implements Provider.
func (EnvProvider) Close() error { return nil }

// FileProvider resolves a reference as a file path, relative paths being
// taken from Dir. Trailing newlines are trimmed.
type FileProvider struct {
	Dir string
}

// Name implements Provider.
func (FileProvider) Name() string { return "file" }

// Resolve implements Provider.
func (p FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := ref
	if !filepath.IsAbs(path) && p.Dir != "" {
		path = filepath.Join(p.Dir, path)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: file %s", ErrNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", ref, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Close implements Provider.
func (FileProvider) Close() error { return nil }

var (
	_ Provider = EnvProvider{}
	_ Provider = FileProvider{}
)
