package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/shainakels/harmonilink-backend/internal/database"
	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/testutil"
)

// newRouter mounts the handler the way the server does, with the caller's
// id injected instead of a real token.
func newRouter(h *Handler, userID int64) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), httputil.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/api/favorites", h.AddFavorite)
	r.Get("/api/favorites", h.ListFavorites)
	r.Delete("/api/favorites/{id}", h.RemoveFavorite)
	r.Post("/api/discard", h.Discard)
	return r
}

func TestFavoriteEndpoints(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRepository(db)

	actor := testutil.CreateUser(t, db, "actor", "actor@example.com")
	target := testutil.CreateUser(t, db, "target", "target@example.com")
	testutil.CreateProfile(t, db, target, "female", "bio", testutil.BirthdayYearsAgo(28))
	testutil.CreateMixtape(t, db, target, "Target Tape", database.SourceOnboarding, "Song A")

	router := newRouter(NewHandler(repo, "http://localhost:8080"), actor)

	t.Run("add favorite", func(t *testing.T) {
		body, _ := json.Marshal(AddFavoriteRequest{UserID: target})
		req := httptest.NewRequest(http.MethodPost, "/api/favorites", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d, body %s", rec.Code, rec.Body.String())
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["message"] != "Profile added to favorites." {
			t.Errorf("unexpected message %q", resp["message"])
		}
	})

	t.Run("list favorites absolutizes urls", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var profiles []FavoriteProfile
		if err := json.Unmarshal(rec.Body.Bytes(), &profiles); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(profiles) != 1 || profiles[0].ID != target {
			t.Fatalf("unexpected profiles %+v", profiles)
		}
		if profiles[0].Age == nil || *profiles[0].Age != 28 {
			t.Errorf("expected age 28, got %v", profiles[0].Age)
		}
		if len(profiles[0].Mixtapes) != 1 || len(profiles[0].Mixtapes[0].Songs) != 1 {
			t.Errorf("mixtapes not attached: %+v", profiles[0].Mixtapes)
		}
	})

	t.Run("remove favorite", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/favorites/%d", target), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["message"] != "Favorite removed." {
			t.Errorf("unexpected message %q", resp["message"])
		}

		ids, err := repo.FavoritedIDs(context.Background(), actor)
		if err != nil {
			t.Fatalf("FavoritedIDs: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("edge still present: %v", ids)
		}
	})

	t.Run("discard", func(t *testing.T) {
		body, _ := json.Marshal(DiscardRequest{DiscardedUserID: target})
		req := httptest.NewRequest(http.MethodPost, "/api/discard", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["message"] != "Profile discarded." {
			t.Errorf("unexpected message %q", resp["message"])
		}
	})

	t.Run("missing body field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/favorites", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}
