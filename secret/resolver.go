package secret

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const refPrefix = "secretref:"

var inlineRef = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// Resolver expands environment variables and resolves secret references.
// A nil *Resolver only expands the environment.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver. A strict resolver rejects empty secrets.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider), strict: strict}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider.
func (r *Resolver) Register(p Provider) {
	if p != nil {
		r.providers[p.Name()] = p
	}
}

// ResolveValue expands the environment in value, then resolves any secret
// references in the result.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil || r == nil {
		return expanded, err
	}

	if provider, ref, ok := ParseSecretRef(expanded); ok {
		return r.resolve(ctx, provider, ref)
	}

	var firstErr error
	out := inlineRef.ReplaceAllStringFunc(expanded, func(match string) string {
		if firstErr != nil {
			return match
		}
		provider, ref, _ := ParseSecretRef(match)
		v, err := r.resolve(ctx, provider, ref)
		if err != nil {
			firstErr = err
			return match
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// Close closes every provider and joins their errors.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, p := range r.providers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// ParseSecretRef splits a whole-value reference secretref:<provider>:<ref>.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) resolve(ctx context.Context, provider, ref string) (string, error) {
	p, ok := r.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptySecret, provider, ref)
	}
	return v, nil
}
