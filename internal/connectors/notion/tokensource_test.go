package notion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

// countingTokenProvider implements driven.TokenProvider and counts lookups.
type countingTokenProvider struct {
	mu    sync.Mutex
	token string
	calls int
}

func (p *countingTokenProvider) GetToken(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.token, nil
}

func (p *countingTokenProvider) AuthMethod() domain.AuthMethod { return domain.AuthMethodToken }
func (p *countingTokenProvider) IsAuthenticated() bool         { return true }

func (p *countingTokenProvider) rotate(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
}

func TestTokenSource_ReusesToken(t *testing.T) {
	provider := &countingTokenProvider{token: "secret-token"}
	src := newTokenSource(context.Background(), provider)

	for i := 0; i < 3; i++ {
		tok, err := src.Token()
		require.NoError(t, err)
		assert.Equal(t, "secret-token", tok.AccessToken)
		assert.Equal(t, "Bearer", tok.Type())
	}
	assert.Equal(t, 1, provider.calls)
}

func TestTokenSource_ProviderError(t *testing.T) {
	src := newTokenSource(context.Background(), &readerMockTokenProvider{err: domain.ErrAuthRequired})

	_, err := src.Token()
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestReader_AuthorizationFollowsRotatedToken(t *testing.T) {
	prev := tokenTTL
	tokenTTL = 0
	t.Cleanup(func() { tokenTTL = prev })

	var (
		mu      sync.Mutex
		headers [][]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = append(headers, r.Header.Values("Authorization"))
		mu.Unlock()
		writeJSON(t, w, http.StatusOK, map[string]any{
			"object":      "list",
			"results":     []any{},
			"has_more":    false,
			"next_cursor": nil,
		})
	}))
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	provider := &countingTokenProvider{token: "first-token"}
	reader := NewReader(&Config{
		DatabaseID:        testDatabaseID,
		PageSize:          10,
		RequestsPerSecond: 1000,
		Transport:         rewriteTransport{target: target},
	}, provider)

	_, err = reader.FetchRows(context.Background())
	require.NoError(t, err)
	provider.rotate("second-token")
	_, err = reader.FetchRows(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]string{{"Bearer first-token"}, {"Bearer second-token"}}, headers)
}
