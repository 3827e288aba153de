package push

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnowkids/minnow-push-api/config"
)

func testKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return key, string(pem.EncodeToMemory(block))
}

func TestNewTokenSourceParsesEscapedKey(t *testing.T) {
	_, pemStr := testKey(t)

	conf := &config.Config{
		FCMProjectID:   "minnow-kids",
		FCMClientEmail: "svc@minnow-kids.iam.gserviceaccount.com",
		FCMPrivateKey:  strings.ReplaceAll(pemStr, "\n", `\n`),
		FCMTokenURL:    "https://oauth2.googleapis.com/token",
	}

	ts, err := NewTokenSource(conf)
	require.NoError(t, err)
	assert.Equal(t, conf.FCMClientEmail, ts.clientEmail)
	assert.Equal(t, messagingScope, ts.scope)
}

func TestNewTokenSourceMissingCredentials(t *testing.T) {
	_, err := NewTokenSource(&config.Config{})
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestNewTokenSourceBadKey(t *testing.T) {
	conf := &config.Config{
		FCMProjectID:   "minnow-kids",
		FCMClientEmail: "svc@minnow-kids.iam.gserviceaccount.com",
		FCMPrivateKey:  "not a pem",
	}
	_, err := NewTokenSource(conf)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestTokenExchange(t *testing.T) {
	key, _ := testKey(t)

	requests := 0
	var gotAssertion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, jwtBearerGrantType, r.FormValue("grant_type"))
		gotAssertion = r.FormValue("assertion")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "ya29.test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	ts := &TokenSource{
		clientEmail: "svc@minnow-kids.iam.gserviceaccount.com",
		privateKey:  key,
		tokenURL:    srv.URL,
		scope:       messagingScope,
		httpClient:  srv.Client(),
	}

	token, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.test-token", token)

	// the assertion must be a three-segment JWT with the documented claims
	segments := strings.Split(gotAssertion, ".")
	require.Len(t, segments, 3)

	payload, err := base64.RawURLEncoding.DecodeString(segments[1])
	require.NoError(t, err)

	var claims struct {
		Iss   string `json:"iss"`
		Scope string `json:"scope"`
		Aud   string `json:"aud"`
		Iat   int64  `json:"iat"`
		Exp   int64  `json:"exp"`
	}
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, "svc@minnow-kids.iam.gserviceaccount.com", claims.Iss)
	assert.Equal(t, messagingScope, claims.Scope)
	assert.Equal(t, srv.URL, claims.Aud)
	assert.Equal(t, int64(3600), claims.Exp-claims.Iat)

	// a second call inside the expiry window serves the cached token
	token2, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, token2)
	assert.Equal(t, 1, requests)
}

func TestTokenExchangeRefreshesNearExpiry(t *testing.T) {
	key, _ := testKey(t)

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	ts := &TokenSource{
		clientEmail: "svc@test",
		privateKey:  key,
		tokenURL:    srv.URL,
		scope:       messagingScope,
		httpClient:  srv.Client(),
	}

	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	// push the cached expiry inside the skew window; the next call must refresh
	ts.expiry = time.Now().Add(30 * time.Second)

	_, err = ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestTokenExchangeUnauthorized(t *testing.T) {
	key, _ := testKey(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer srv.Close()

	ts := &TokenSource{
		clientEmail: "svc@test",
		privateKey:  key,
		tokenURL:    srv.URL,
		scope:       messagingScope,
		httpClient:  srv.Client(),
	}

	_, err := ts.Token(context.Background())
	assert.True(t, errors.Is(err, ErrCredential))
	assert.Contains(t, err.Error(), "401")
}

func TestTokenExchangeMissingAccessToken(t *testing.T) {
	key, _ := testKey(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type": "Bearer"}`))
	}))
	defer srv.Close()

	ts := &TokenSource{
		clientEmail: "svc@test",
		privateKey:  key,
		tokenURL:    srv.URL,
		scope:       messagingScope,
		httpClient:  srv.Client(),
	}

	_, err := ts.Token(context.Background())
	assert.True(t, errors.Is(err, ErrCredential))
	assert.Contains(t, err.Error(), "missing access_token")
}
