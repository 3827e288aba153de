package config

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/minnowkids/minnow-push-api/logging"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string

	// Push gateway service-account values. The private key is stored
	// newline-escaped in the environment (heroku-style single line).
	FCMProjectID   string
	FCMClientEmail string
	FCMPrivateKey  string
	FCMTokenURL    string

	OpsAlertEmail  string
	SendgridAPIKey string
	SendgridFrom   string
}

const defaultTokenURL = "https://oauth2.googleapis.com/token"

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := logging.New()
	_ = zap.ReplaceGlobals(logger.Desugar())

	tokenURL := os.Getenv("FCM_TOKEN_URL")
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	return &Config{
		URL:            os.Getenv("DB_URI"),
		DatabaseName:   os.Getenv("DB_NAME"),
		BaseURL:        os.Getenv("BASE_URL"),
		Port:           os.Getenv("PORT"),
		FCMProjectID:   os.Getenv("FCM_PROJECT_ID"),
		FCMClientEmail: os.Getenv("FCM_CLIENT_EMAIL"),
		FCMPrivateKey:  os.Getenv("FCM_PRIVATE_KEY"),
		FCMTokenURL:    tokenURL,
		OpsAlertEmail:  os.Getenv("OPS_ALERT_EMAIL"),
		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SendgridFrom:   os.Getenv("SENDGRID_FROM"),
	}

}

// ValidatePush checks that every credential the dispatch pipeline needs is
// present. A missing value is fatal for the invocation, never retryable.
func (c *Config) ValidatePush() error {
	if c.FCMProjectID == "" {
		return fmt.Errorf("FCM_PROJECT_ID is not set")
	}
	if c.FCMClientEmail == "" {
		return fmt.Errorf("FCM_CLIENT_EMAIL is not set")
	}
	if c.FCMPrivateKey == "" {
		return fmt.Errorf("FCM_PRIVATE_KEY is not set")
	}
	return nil
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
}
