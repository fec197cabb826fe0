package mixtape

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/testutil"
)

func authedRequest(t *testing.T, method, target string, body any, userID int64) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	ctx := context.WithValue(req.Context(), httputil.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestCreateValidation(t *testing.T) {
	db := testutil.NewDB(t)
	handler := NewHandler(NewRepository(db), "http://localhost:8080")

	owner := testutil.CreateUser(t, db, "owner", "owner@example.com")

	tests := []struct {
		name           string
		body           SaveMixtapeRequest
		expectedStatus int
	}{
		{
			name:           "missing name",
			body:           SaveMixtapeRequest{Songs: []SongRequest{{Name: "S", Artist: "A"}}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no songs",
			body:           SaveMixtapeRequest{Name: "Empty Tape"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "valid",
			body: SaveMixtapeRequest{
				Name:  "Good Tape",
				Songs: []SongRequest{{Name: "S", Artist: "A"}},
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Create(rec, authedRequest(t, http.MethodPost, "/api/create-mixtape", tt.body, owner))
			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d, body %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("validation message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Create(rec, authedRequest(t, http.MethodPost, "/api/create-mixtape", SaveMixtapeRequest{Name: "X"}, owner))

		var resp struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Message != "Mixtape name and at least one song are required." {
			t.Errorf("unexpected message %q", resp.Message)
		}
	})
}

func TestCreateOnboardingValidation(t *testing.T) {
	db := testutil.NewDB(t)
	handler := NewHandler(NewRepository(db), "http://localhost:8080")

	owner := testutil.CreateUser(t, db, "owner", "owner@example.com")

	threeSongs := []SongRequest{
		{Name: "One", Artist: "A"},
		{Name: "Two", Artist: "B"},
		{Name: "Three", Artist: "C"},
	}

	tests := []struct {
		name            string
		body            OnboardingMixtapeRequest
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "too few songs",
			body: OnboardingMixtapeRequest{
				Name: "Tape", Bio: "bio", PhotoURL: "uploads/x.png",
				Songs: threeSongs[:2],
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid data. All fields are required, and at least 3 valid songs must be provided.",
		},
		{
			name: "missing photo",
			body: OnboardingMixtapeRequest{
				Name: "Tape", Bio: "bio",
				Songs: threeSongs,
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid data. All fields are required, and at least 3 valid songs must be provided.",
		},
		{
			name: "song without artist",
			body: OnboardingMixtapeRequest{
				Name: "Tape", Bio: "bio", PhotoURL: "uploads/x.png",
				Songs: []SongRequest{{Name: "One", Artist: "A"}, {Name: "Two", Artist: "B"}, {Name: "Three"}},
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Each song must have a valid name and artist.",
		},
		{
			name: "valid",
			body: OnboardingMixtapeRequest{
				Name: "Tape", Bio: "bio", PhotoURL: "uploads/x.png",
				Songs: threeSongs,
			},
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Mixtape created successfully!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.CreateOnboarding(rec, authedRequest(t, http.MethodPost, "/api/pfmixtape", tt.body, owner))

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			var resp struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Message != tt.expectedMessage {
				t.Errorf("expected message %q, got %q", tt.expectedMessage, resp.Message)
			}
		})
	}
}
