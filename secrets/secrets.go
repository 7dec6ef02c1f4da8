// Package secrets resolves API credentials by (scope, key). Configuration
// only ever carries the scope and key names; values come from a Store.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("secret not found")

type Store interface {
	Get(ctx context.Context, scope, key string) (string, error)
}

// EnvStore reads secrets from environment variables named
// {SCOPE}_{KEY}, upper-cased with every non-alphanumeric rune mapped to
// '_'. Scope market-risk and key polygon_api_key map to
// MARKET_RISK_POLYGON_API_KEY.
type EnvStore struct {
	environ map[string]string
}

// NewEnvStoreFrom reads secrets from environ. The CLI passes the process
// environment captured with env.ToMap.
func NewEnvStoreFrom(environ map[string]string) *EnvStore {
	return &EnvStore{environ: environ}
}

func (s *EnvStore) Get(ctx context.Context, scope, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := VarName(scope, key)
	v, ok := s.environ[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%s/%s (env %s): %w", scope, key, name, ErrNotFound)
	}
	return v, nil
}

// VarName returns the environment variable EnvStore consults.
func VarName(scope, key string) string {
	return sanitize(scope) + "_" + sanitize(key)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

// MapStore is an in-memory Store keyed by "scope/key".
type MapStore map[string]string

func (m MapStore) Get(_ context.Context, scope, key string) (string, error) {
	v, ok := m[scope+"/"+key]
	if !ok {
		return "", fmt.Errorf("%s/%s: %w", scope, key, ErrNotFound)
	}
	return v, nil
}
