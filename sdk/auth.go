package sdk

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// newTokenSource returns the token source for bearer authentication, or nil
// when bearer auth is not configured. Static tokens never expire.
func newTokenSource(config ClientConfig) oauth2.TokenSource {
	switch {
	case config.TokenSource != nil:
		return oauth2.ReuseTokenSource(nil, config.TokenSource)
	case config.Token != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token, TokenType: "Bearer"})
	}
	return nil
}

// resolveToken fetches a token from ts. TokenSource has no context, so the
// fetch runs in its own goroutine and the call returns early on cancellation.
func resolveToken(ctx context.Context, ts oauth2.TokenSource) (*oauth2.Token, error) {
	type result struct {
		token *oauth2.Token
		err   error
	}

	done := make(chan result, 1)
	go func() {
		token, err := ts.Token()
		done <- result{token: token, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.token, r.err
	}
}

// addAuthHeaders applies the configured credentials to req. The bearer token
// is resolved first; Basic credentials are applied afterwards and replace the
// Authorization header when both schemes are configured.
func (c *Client) addAuthHeaders(ctx context.Context, req *http.Request) error {
	if c.tokenSource != nil {
		token, err := resolveToken(ctx, c.tokenSource)
		if err != nil {
			return fmt.Errorf("failed to resolve bearer token: %w", err)
		}
		if token.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		}
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	return nil
}
