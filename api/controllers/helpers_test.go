package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/types"
)

func testSession() *auth.Session {
	return &auth.Session{
		UserID:      uuid.New(),
		Email:       "ada@example.com",
		AccessToken: "access-token",
		AccessID:    "jti-1",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func authed(req *http.Request, sess *auth.Session) *http.Request {
	return req.WithContext(auth.WithSession(req.Context(), sess))
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return envelope.Error
}
