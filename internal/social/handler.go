package social

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/logging"
)

type Handler struct {
	repo    *Repository
	baseURL string
}

func NewHandler(repo *Repository, baseURL string) *Handler {
	return &Handler{repo: repo, baseURL: baseURL}
}

type AddFavoriteRequest struct {
	UserID int64 `json:"user_id"`
}

type DiscardRequest struct {
	DiscardedUserID int64 `json:"discarded_user_id"`
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		httputil.RespondErrorWithCode(w, "user_id is required.", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	if err := h.repo.AddFavorite(r.Context(), userID, req.UserID); err != nil {
		logger.Error("failed to add favorite", "error", err, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to add favorite.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{
		"message": "Profile added to favorites.",
	}, http.StatusCreated)
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	profiles, err := h.repo.ListFavoriteProfiles(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list favorites", "error", err, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to fetch favorites.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	for i := range profiles {
		profiles[i].Image = httputil.AbsoluteURL(h.baseURL, profiles[i].Image)
		for j := range profiles[i].Mixtapes {
			profiles[i].Mixtapes[j].Image = httputil.AbsoluteURL(h.baseURL, profiles[i].Mixtapes[j].Image)
		}
	}

	httputil.RespondJSON(w, profiles, http.StatusOK)
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid user id.", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	if err := h.repo.RemoveFavorite(r.Context(), userID, targetID); err != nil {
		logger.Error("failed to remove favorite", "error", err, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to remove favorite.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{
		"message": "Favorite removed.",
	}, http.StatusOK)
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req DiscardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.DiscardedUserID == 0 {
		httputil.RespondErrorWithCode(w, "discarded_user_id is required.", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	if err := h.repo.AddDiscard(r.Context(), userID, req.DiscardedUserID); err != nil {
		logger.Error("failed to discard profile", "error", err, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to discard profile.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{
		"message": "Profile discarded.",
	}, http.StatusCreated)
}
