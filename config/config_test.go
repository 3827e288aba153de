package config_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minnowkids/minnow-push-api/config"
)

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("DB_URI", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "minnow")
	t.Setenv("FCM_PROJECT_ID", "minnow-kids")
	t.Setenv("FCM_TOKEN_URL", "")

	conf := config.New()
	assert.Equal(t, "mongodb://localhost:27017", conf.URL)
	assert.Equal(t, "minnow", conf.DatabaseName)
	assert.Equal(t, "minnow-kids", conf.FCMProjectID)
	// the token URL falls back to the public endpoint
	assert.Equal(t, "https://oauth2.googleapis.com/token", conf.FCMTokenURL)
}

func TestValidatePush(t *testing.T) {
	tests := []struct {
		name    string
		conf    config.Config
		wantErr bool
	}{
		{"complete", config.Config{FCMProjectID: "p", FCMClientEmail: "e", FCMPrivateKey: "k"}, false},
		{"missing project", config.Config{FCMClientEmail: "e", FCMPrivateKey: "k"}, true},
		{"missing email", config.Config{FCMProjectID: "p", FCMPrivateKey: "k"}, true},
		{"missing key", config.Config{FCMProjectID: "p", FCMClientEmail: "e"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.ValidatePush()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	config.ErrorStatus("failed to do the thing", 422, rr, errors.New("boom"))

	assert.Equal(t, 422, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to do the thing")
	assert.Contains(t, rr.Body.String(), "boom")
}
