// internal/auth/token.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

// ErrAuthentication is matched by every token exchange failure.
var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError carries the raw token endpoint response.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Body)
}

func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// tokenResponse is the subset of the v1 token endpoint response that is read.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenProvider exchanges app credentials for a bearer token with the
// client-credentials grant. Tokens are not cached; every call hits the endpoint.
type TokenProvider struct {
	authorityURL string
	httpClient   *http.Client
}

// NewTokenProvider creates a provider for the given authority, e.g.
// https://login.microsoftonline.com. A nil client means http.DefaultClient.
func NewTokenProvider(authorityURL string, httpClient *http.Client) *TokenProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenProvider{
		authorityURL: strings.TrimSuffix(authorityURL, "/"),
		httpClient:   httpClient,
	}
}

// TokenURL returns the tenant-scoped token endpoint.
func (p *TokenProvider) TokenURL(tenantID string) string {
	return fmt.Sprintf("%s/%s/oauth2/token", p.authorityURL, url.PathEscape(tenantID))
}

// AcquireToken performs one token exchange and returns access_token verbatim.
// Non-200 responses are returned as *AuthenticationError and are not retried.
func (p *TokenProvider) AcquireToken(ctx context.Context, creds domain.Credentials) (string, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", creds.ClientID)
	data.Set("client_secret", creds.ClientSecret)
	data.Set("resource", creds.ResourceURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL(creds.TenantID), strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		customLog.Warnf("Token exchange for tenant %s rejected with status %d", creds.TenantID, resp.StatusCode)
		return "", &AuthenticationError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil || tokenResp.AccessToken == "" {
		return "", &AuthenticationError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	customLog.Debugf("Token acquired for tenant %s", creds.TenantID)
	return tokenResp.AccessToken, nil
}
