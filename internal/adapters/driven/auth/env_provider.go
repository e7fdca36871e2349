package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/lexisync/internal/core/domain"
	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
)

// Ensure EnvTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*EnvTokenProvider)(nil)

// EnvTokenProvider reads a static integration token from an environment variable.
// The variable is read on every call so a reloaded .env takes effect.
type EnvTokenProvider struct {
	envVar string
	lookup func(string) (string, bool)
}

// NewEnvTokenProvider creates a provider for the named variable.
func NewEnvTokenProvider(envVar string) *EnvTokenProvider {
	return &EnvTokenProvider{envVar: envVar, lookup: os.LookupEnv}
}

// GetToken returns the token, or domain.ErrAuthRequired if the variable is unset.
func (p *EnvTokenProvider) GetToken(_ context.Context) (string, error) {
	token, ok := p.token()
	if !ok {
		return "", fmt.Errorf("%w: set %s", domain.ErrAuthRequired, p.envVar)
	}
	return token, nil
}

// EnvVar returns the variable the token is read from.
func (p *EnvTokenProvider) EnvVar() string {
	return p.envVar
}

// AuthMethod returns AuthMethodToken.
func (p *EnvTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodToken
}

// IsAuthenticated returns true if the variable holds a token.
func (p *EnvTokenProvider) IsAuthenticated() bool {
	_, ok := p.token()
	return ok
}

func (p *EnvTokenProvider) token() (string, bool) {
	if p.envVar == "" {
		return "", false
	}
	v, ok := p.lookup(p.envVar)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
