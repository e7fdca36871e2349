package notion

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
)

// tokenTTL is how long a token is reused before the provider is asked again.
// Integration tokens never expire; the TTL lets a rotated token take effect.
var tokenTTL = 5 * time.Minute

// providerTokenSource adapts a TokenProvider to oauth2.TokenSource.
type providerTokenSource struct {
	provider driven.TokenProvider
	ctx      context.Context
}

// newTokenSource returns a caching oauth2.TokenSource over provider.
func newTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &providerTokenSource{provider: provider, ctx: ctx})
}

// Token implements oauth2.TokenSource.
func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := s.provider.GetToken(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("notion: get token: %w", err)
	}
	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(tokenTTL),
	}, nil
}
