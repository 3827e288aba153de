package push

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minnowkids/minnow-push-api/config"
)

const (
	// assertionLifetime is the exp-iat window of the signed assertion
	assertionLifetime = time.Hour

	// refreshSkew forces a refresh slightly before the gateway would reject
	// the cached token
	refreshSkew = time.Minute

	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	messagingScope     = "https://www.googleapis.com/auth/firebase.messaging"
)

// TokenProvider yields a bearer token for authenticating to the push gateway
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenSource signs a service-account assertion and exchanges it for a bearer
// token at the OAuth2 token endpoint. The token is cached in-process and
// refreshed before expiry; it is never served expired.
type TokenSource struct {
	clientEmail string
	privateKey  *rsa.PrivateKey
	tokenURL    string
	scope       string
	httpClient  *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewTokenSource parses the service-account key from the config and returns a
// ready token source. A missing credential returns ErrConfiguration.
func NewTokenSource(conf *config.Config) (*TokenSource, error) {
	if err := conf.ValidatePush(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	// the env var stores the PEM with literal \n sequences
	pem := strings.ReplaceAll(conf.FCMPrivateKey, `\n`, "\n")
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse service-account private key: %v", ErrConfiguration, err)
	}

	return &TokenSource{
		clientEmail: conf.FCMClientEmail,
		privateKey:  key,
		tokenURL:    conf.FCMTokenURL,
		scope:       messagingScope,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Token returns a valid bearer token, fetching a fresh one when the cached
// token is missing or within the refresh skew of its expiry.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Add(refreshSkew).Before(ts.expiry) {
		return ts.token, nil
	}

	assertion, err := ts.signAssertion(time.Now())
	if err != nil {
		return "", fmt.Errorf("%w: failed to sign assertion: %v", ErrCredential, err)
	}

	token, expiresIn, err := ts.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return ts.token, nil
}

// signAssertion builds the RS256 JWT {iss, scope, aud, iat, exp} with a
// one-hour lifetime
func (ts *TokenSource) signAssertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   ts.clientEmail,
		"scope": ts.scope,
		"aud":   ts.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(ts.privateKey)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (ts *TokenSource) exchange(ctx context.Context, assertion string) (string, int64, error) {
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to create token request: %v", ErrCredential, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: token exchange failed: %v", ErrCredential, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to read token response: %v", ErrCredential, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, fmt.Errorf("%w: token endpoint returned status %d: %s", ErrCredential, resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, fmt.Errorf("%w: failed to decode token response: %v", ErrCredential, err)
	}
	if tr.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: token response missing access_token", ErrCredential)
	}
	if tr.ExpiresIn == 0 {
		tr.ExpiresIn = int64(assertionLifetime / time.Second)
	}
	return tr.AccessToken, tr.ExpiresIn, nil
}
