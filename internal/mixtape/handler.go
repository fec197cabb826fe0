package mixtape

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shainakels/harmonilink-backend/internal/database"
	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/logging"
)

// Handler serves the mixtape endpoints.
type Handler struct {
	repo    *Repository
	baseURL string
}

func NewHandler(repo *Repository, baseURL string) *Handler {
	return &Handler{repo: repo, baseURL: baseURL}
}

type SongRequest struct {
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	PreviewURL *string `json:"preview_url"`
	ArtworkURL *string `json:"artwork_url"`
}

type SaveMixtapeRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	PhotoURL    *string       `json:"photoUrl"`
	Songs       []SongRequest `json:"songs"`
}

// OnboardingMixtapeRequest is the stricter onboarding variant: every field
// is required and at least three songs must be provided.
type OnboardingMixtapeRequest struct {
	Name     string        `json:"name"`
	Bio      string        `json:"bio"`
	PhotoURL string        `json:"photo_url"`
	Songs    []SongRequest `json:"songs"`
}

type MixtapeResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Bio      string  `json:"bio"`
	PhotoURL *string `json:"photo_url"`
	Songs    []Song  `json:"songs"`
}

// Create handles POST /api/create-mixtape (sidebar-sourced).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	var req SaveMixtapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	songs, ok := validateSongs(w, req.Name, req.Songs)
	if !ok {
		return
	}

	m := &Mixtape{
		UserID:   userID,
		Name:     req.Name,
		Bio:      req.Description,
		PhotoURL: req.PhotoURL,
		Source:   database.SourceSidebar,
		Songs:    songs,
	}
	if err := h.repo.Create(r.Context(), m); err != nil {
		logger.Error("failed to create mixtape", "error", err.Error())
		httputil.RespondError(w, "Failed to create mixtape.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Mixtape created successfully."}, http.StatusCreated)
}

// CreateOnboarding handles POST /api/pfmixtape. A song failing validation
// rejects the whole request; nothing is written.
func (h *Handler) CreateOnboarding(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	var req OnboardingMixtapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Bio) == "" ||
		strings.TrimSpace(req.PhotoURL) == "" ||
		len(req.Songs) < 3 {
		httputil.RespondJSON(w, map[string]string{
			"status":  "error",
			"message": "Invalid data. All fields are required, and at least 3 valid songs must be provided.",
		}, http.StatusBadRequest)
		return
	}

	songs := make([]Song, len(req.Songs))
	for i, s := range req.Songs {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Artist) == "" {
			httputil.RespondJSON(w, map[string]string{
				"status":  "error",
				"message": "Each song must have a valid name and artist.",
			}, http.StatusBadRequest)
			return
		}
		songs[i] = Song{
			Name:       strings.TrimSpace(s.Name),
			Artist:     strings.TrimSpace(s.Artist),
			PreviewURL: s.PreviewURL,
			ArtworkURL: s.ArtworkURL,
		}
	}

	photoURL := strings.TrimSpace(req.PhotoURL)
	m := &Mixtape{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Bio:      strings.TrimSpace(req.Bio),
		PhotoURL: &photoURL,
		Source:   database.SourceOnboarding,
		Songs:    songs,
	}
	if err := h.repo.Create(r.Context(), m); err != nil {
		logger.Error("failed to save onboarding mixtape", "error", err.Error())
		httputil.RespondJSON(w, map[string]string{
			"status":  "error",
			"message": "Failed to save mixtape.",
		}, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{
		"status":  "success",
		"message": "Mixtape created successfully!",
	}, http.StatusCreated)
}

// List handles GET /api/mixtapes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	mixtapes, err := h.repo.ListByOwner(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list mixtapes", "error", err.Error())
		httputil.RespondError(w, "Failed to fetch mixtapes.", http.StatusInternalServerError)
		return
	}

	response := make([]MixtapeResponse, len(mixtapes))
	for i, m := range mixtapes {
		response[i] = MixtapeResponse{
			ID:       m.ID,
			Name:     m.Name,
			Bio:      m.Bio,
			PhotoURL: httputil.AbsoluteURL(h.baseURL, m.PhotoURL),
			Songs:    m.Songs,
		}
	}

	httputil.RespondJSON(w, response, http.StatusOK)
}

// Update handles PUT /api/mixtapes/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	mixtapeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, "Invalid mixtape id.", http.StatusBadRequest)
		return
	}

	var req SaveMixtapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	songs, ok := validateSongs(w, req.Name, req.Songs)
	if !ok {
		return
	}

	err = h.repo.Update(r.Context(), userID, mixtapeID, req.Name, req.Description, req.PhotoURL, songs)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Mixtape not found or not owned by user.", http.StatusNotFound)
			return
		}
		logger.Error("failed to update mixtape", "error", err.Error())
		httputil.RespondError(w, "Failed to update mixtape.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Mixtape updated successfully."}, http.StatusOK)
}

// Delete handles DELETE /api/mixtapes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	mixtapeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, "Invalid mixtape id.", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), userID, mixtapeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "Mixtape not found or not owned by user.", http.StatusNotFound)
			return
		}
		logger.Error("failed to delete mixtape", "error", err.Error())
		httputil.RespondError(w, "Failed to delete mixtape.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Mixtape deleted successfully."}, http.StatusOK)
}

// validateSongs enforces the structural invariant shared by create and
// update: a name and at least one song.
func validateSongs(w http.ResponseWriter, name string, reqSongs []SongRequest) ([]Song, bool) {
	if strings.TrimSpace(name) == "" || len(reqSongs) == 0 {
		httputil.RespondError(w, "Mixtape name and at least one song are required.", http.StatusBadRequest)
		return nil, false
	}

	songs := make([]Song, len(reqSongs))
	for i, s := range reqSongs {
		songs[i] = Song{
			Name:       s.Name,
			Artist:     s.Artist,
			PreviewURL: s.PreviewURL,
			ArtworkURL: s.ArtworkURL,
		}
	}
	return songs, true
}
