package poll

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/logging"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CreatePollResponse struct {
	Message string `json:"message"`
	PollID  int64  `json:"pollId"`
}

type VoteRequest struct {
	PollID   int64 `json:"poll_id"`
	OptionID int64 `json:"option_id"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	options := make([]string, 0, len(req.Options))
	for _, opt := range req.Options {
		if trimmed := strings.TrimSpace(opt); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	if strings.TrimSpace(req.Question) == "" || len(options) < 2 {
		httputil.RespondErrorWithCode(w, "Poll question and at least two options are required.", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	pollID, err := h.repo.Create(r.Context(), userID, strings.TrimSpace(req.Question), options)
	if err != nil {
		logger.Error("failed to create poll", "error", err, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to create poll.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, CreatePollResponse{
		Message: "Poll created successfully.",
		PollID:  pollID,
	}, http.StatusCreated)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	polls, err := h.repo.List(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list polls", "error", err, "user_id", userID)
		httputil.RespondErrorWithCode(w, "Failed to fetch polls.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, polls, http.StatusOK)
}

func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.PollID == 0 || req.OptionID == 0 {
		httputil.RespondErrorWithCode(w, "poll_id and option_id are required.", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	if err := h.repo.Vote(r.Context(), userID, req.PollID, req.OptionID); err != nil {
		if errors.Is(err, ErrOptionInvalid) {
			httputil.RespondErrorWithCode(w, "Option does not belong to this poll.", httputil.CodeValidation, http.StatusBadRequest)
			return
		}
		logger.Error("failed to record vote", "error", err, "user_id", userID, "poll_id", req.PollID)
		httputil.RespondErrorWithCode(w, "Failed to record vote.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{
		"message": "Vote recorded.",
	}, http.StatusOK)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := httputil.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Access token required.", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	pollID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "Invalid poll id.", httputil.CodeValidation, http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), userID, pollID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Poll not found or not owned by user.", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete poll", "error", err, "user_id", userID, "poll_id", pollID)
		httputil.RespondErrorWithCode(w, "Failed to delete poll.", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{
		"message": "Poll deleted.",
	}, http.StatusOK)
}
