package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/minnowkids/minnow-push-api/api/handlers"
	"github.com/minnowkids/minnow-push-api/databases/mocks"
	"github.com/minnowkids/minnow-push-api/models"
)

func TestAdmin_AdminLoginHandler(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	db := &mocks.AdminDatabase{}
	db.On("FindOne", mock.Anything, bson.M{"email": "ops@minnowkids.com", "active": true}).
		Return(&models.Admin{
			ID:       primitive.NewObjectID(),
			Email:    "ops@minnowkids.com",
			Password: string(hash),
			Roles:    []string{"composer"},
			Active:   true,
		}, nil)

	body := `{"email": "Ops@MinnowKids.com", "password": "hunter2"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h := handlers.Admin{ADB: db}
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
		Admin struct {
			Email string   `json:"email"`
			Roles []string `json:"roles"`
		} `json:"admin"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ops@minnowkids.com", resp.Admin.Email)
	assert.Equal(t, []string{"composer"}, resp.Admin.Roles)
}

func TestAdmin_AdminLoginHandlerWrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	db := &mocks.AdminDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Admin{Email: "ops@minnowkids.com", Password: string(hash), Active: true}, nil)

	body := `{"email": "ops@minnowkids.com", "password": "wrong"}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h := handlers.Admin{ADB: db}
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdmin_AdminLoginHandlerMissingFields(t *testing.T) {
	db := &mocks.AdminDatabase{}

	body := `{"email": "", "password": ""}`
	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h := handlers.Admin{ADB: db}
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}
