package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

var testCreds = domain.Credentials{
	TenantID:     "t1",
	ClientID:     "c1",
	ClientSecret: "s1",
	ResourceURL:  "https://org.crm.dynamics.com",
}

func TestAcquireToken_Success(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/t1/oauth2/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer","expires_in":"3599","access_token":"eyJ0eXAi.abc.def"}`))
	}))
	defer server.Close()

	provider := NewTokenProvider(server.URL, server.Client())
	token, err := provider.AcquireToken(context.Background(), testCreds)

	require.NoError(t, err)
	assert.Equal(t, "eyJ0eXAi.abc.def", token)
	assert.Equal(t, "client_credentials", gotForm.Get("grant_type"))
	assert.Equal(t, "c1", gotForm.Get("client_id"))
	assert.Equal(t, "s1", gotForm.Get("client_secret"))
	assert.Equal(t, "https://org.crm.dynamics.com", gotForm.Get("resource"))
}

func TestAcquireToken_NonOKReturnsRawBody(t *testing.T) {
	const rejection = `{"error":"invalid_client","error_description":"AADSTS7000215: Invalid client secret provided."}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(rejection))
	}))
	defer server.Close()

	provider := NewTokenProvider(server.URL, server.Client())
	token, err := provider.AcquireToken(context.Background(), testCreds)

	assert.Empty(t, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthentication))

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, rejection, authErr.Body)
	assert.Contains(t, err.Error(), "AADSTS7000215")
}

func TestAcquireToken_NoCaching(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer server.Close()

	provider := NewTokenProvider(server.URL+"/", server.Client())
	for i := 0; i < 2; i++ {
		_, err := provider.AcquireToken(context.Background(), testCreds)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestAcquireToken_MissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer server.Close()

	provider := NewTokenProvider(server.URL, server.Client())
	_, err := provider.AcquireToken(context.Background(), testCreds)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestTokenURL(t *testing.T) {
	provider := NewTokenProvider("https://login.microsoftonline.com/", nil)
	assert.Equal(t, "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/token", provider.TokenURL("contoso.onmicrosoft.com"))
}
