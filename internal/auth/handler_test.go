package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/logging"
	"github.com/shainakels/harmonilink-backend/internal/ratelimit"
)

// newSignupHandler backs the limiter with an unreachable redis; limiter
// failures are logged and never block, so requests pass straight through.
func newSignupHandler(t *testing.T) (*Handler, *serviceFixture) {
	t.Helper()

	fx := newServiceFixture(t)
	limiter := ratelimit.NewLimiter(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	return NewHandler(fx.service, limiter, logging.NewLogger(true)), fx
}

func signupRequest(t *testing.T, body SignupRequest) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return httptest.NewRequest(http.MethodPost, "/api/signup", &buf)
}

func TestSignupResponseMessages(t *testing.T) {
	h, fx := newSignupHandler(t)

	if _, err := fx.service.Signup(context.Background(), "taken", "taken@example.com", strongPassword); err != nil {
		t.Fatalf("seed signup: %v", err)
	}

	tests := []struct {
		name            string
		body            SignupRequest
		expectedMessage string
		expectedField   string
	}{
		{
			name:            "weak password",
			body:            SignupRequest{Username: "newbie", Email: "newbie@example.com", Password: "short"},
			expectedMessage: "Invalid signup data.",
			expectedField:   "password",
		},
		{
			name:            "bad email format",
			body:            SignupRequest{Username: "newbie", Email: "not-an-email", Password: strongPassword},
			expectedMessage: "Invalid signup data.",
			expectedField:   "email",
		},
		{
			name:            "duplicate email",
			body:            SignupRequest{Username: "someoneelse", Email: "taken@example.com", Password: strongPassword},
			expectedMessage: "Username or email is already taken.",
			expectedField:   "email",
		},
		{
			name:            "duplicate username",
			body:            SignupRequest{Username: "taken", Email: "fresh@example.com", Password: strongPassword},
			expectedMessage: "Username or email is already taken.",
			expectedField:   "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Signup(rec, signupRequest(t, tt.body))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp httputil.FieldErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Message != tt.expectedMessage {
				t.Errorf("expected message %q, got %q", tt.expectedMessage, resp.Message)
			}
			if _, ok := resp.Errors[tt.expectedField]; !ok {
				t.Errorf("expected %s field error, got %v", tt.expectedField, resp.Errors)
			}
		})
	}
}
