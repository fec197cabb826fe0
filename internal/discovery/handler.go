package discovery

import (
	"net/http"
	"strings"

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

// Discover serves GET /api/discover.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	candidates, err := h.repo.Discover(r.Context(), userID)
	if err != nil {
		logger.Error("failed to build discovery feed", "error", err, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to fetch profiles.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	for i := range candidates {
		for j := range candidates[i].Mixtapes {
			candidates[i].Mixtapes[j].PhotoURL = httputil.AbsoluteURL(h.baseURL, candidates[i].Mixtapes[j].PhotoURL)
		}
	}

	httputil.RespondJSON(w, candidates, http.StatusOK)
}

// Search serves GET /api/search?q=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		httputil.RespondJSON(w, []SearchResult{}, http.StatusOK)
		return
	}

	results, err := h.repo.Search(r.Context(), query)
	if err != nil {
		logger.Error("search failed", "error", err, "query", query)
		httputil.RespondErrorWithCode(w, "Search failed.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	for i := range results {
		results[i].Mixtape.PhotoURL = httputil.AbsoluteURL(h.baseURL, results[i].Mixtape.PhotoURL)
	}

	httputil.RespondJSON(w, results, http.StatusOK)
}
