package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/testutil"
)

// authedRequest builds a request carrying the caller's id the way the auth
// middleware does, so handlers resolve the principal without a real token.
func authedRequest(t *testing.T, method, target string, body any, userID int64) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(httputil.WithUserID(req.Context(), userID))
}

func TestProfileEndpoints(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRepository(db)
	h := NewHandler(repo, "http://localhost:8080")

	userID := testutil.CreateUser(t, db, "melody", "melody@example.com")

	t.Run("create profile", func(t *testing.T) {
		req := authedRequest(t, http.MethodPost, "/api/pfcustom", CreateProfileRequest{
			Birthday: "2000-05-01",
			Gender:   "female",
			Bio:      "vinyl collector",
		}, userID)
		rec := httptest.NewRecorder()
		h.CreateProfile(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("get profile", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, "/api/profile", nil, userID)
		rec := httptest.NewRecorder()
		h.GetProfile(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp map[string]ProfileResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		profile := resp["profile"]
		if profile.Name != "melody" || profile.UserID != userID {
			t.Errorf("unexpected profile %+v", profile)
		}
		if profile.Birthday == nil || *profile.Birthday != "2000-05-01" {
			t.Errorf("unexpected birthday %v", profile.Birthday)
		}
		if profile.Age == nil {
			t.Error("expected derived age")
		}
	})

	t.Run("update profile", func(t *testing.T) {
		req := authedRequest(t, http.MethodPut, "/api/profile", UpdateProfileRequest{
			Name:   "melody2",
			Gender: "female",
			Bio:    "cassette collector",
		}, userID)
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		u, err := repo.GetByID(req.Context(), userID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if u.Username != "melody2" {
			t.Errorf("expected renamed user, got %q", u.Username)
		}
	})

	t.Run("profile missing", func(t *testing.T) {
		other := testutil.CreateUser(t, db, "bare", "bare@example.com")
		req := authedRequest(t, http.MethodGet, "/api/profile", nil, other)
		rec := httptest.NewRecorder()
		h.GetProfile(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
