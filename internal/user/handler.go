package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/logging"
)

// Handler serves the profile and onboarding endpoints.
type Handler struct {
	repo    *Repository
	baseURL string
}

func NewHandler(repo *Repository, baseURL string) *Handler {
	return &Handler{repo: repo, baseURL: baseURL}
}

type CreateProfileRequest struct {
	Birthday string `json:"birthday"` // YYYY-MM-DD
	Gender   string `json:"gender"`
	Bio      string `json:"bio"`
}

type UpdateProfileRequest struct {
	Name         string  `json:"name"`
	Gender       string  `json:"gender"`
	Bio          string  `json:"bio"`
	ProfileImage *string `json:"profile_image"`
}

type ProfileResponse struct {
	Name         string  `json:"name"`
	UserID       int64   `json:"user_id"`
	Gender       string  `json:"gender"`
	Bio          string  `json:"bio"`
	ProfileImage *string `json:"profile_image"`
	Birthday     *string `json:"birthday"`
	Age          *int    `json:"age"`
}

// CreateProfile handles POST /api/pfcustom (onboarding step one).
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	var birthday *time.Time
	if req.Birthday != "" {
		parsed, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			httputil.RespondError(w, "Birthday must be formatted YYYY-MM-DD.", http.StatusBadRequest)
			return
		}
		birthday = &parsed
	}

	profile := &Profile{
		UserID:   userID,
		Birthday: birthday,
		Gender:   req.Gender,
		Bio:      req.Bio,
	}
	if err := h.repo.CreateProfile(r.Context(), profile); err != nil {
		logger.Error("failed to save profile", "error", err.Error())
		httputil.RespondError(w, "Failed to save profile.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{
		"status":  "success",
		"message": "Profile saved successfully!",
	}, http.StatusCreated)
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	u, err := h.repo.GetByID(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load user", "error", err.Error())
		httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		return
	}

	profile, err := h.repo.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			httputil.RespondError(w, "Profile not found.", http.StatusNotFound)
			return
		}
		logger.Error("failed to load profile", "error", err.Error())
		httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		return
	}

	var birthday *string
	if profile.Birthday != nil {
		s := profile.Birthday.Format("2006-01-02")
		birthday = &s
	}

	httputil.RespondJSON(w, map[string]ProfileResponse{
		"profile": {
			Name:         u.Username,
			UserID:       userID,
			Gender:       profile.Gender,
			Bio:          profile.Bio,
			ProfileImage: httputil.AbsoluteURL(h.baseURL, profile.ProfileImage),
			Birthday:     birthday,
			Age:          profile.Age(time.Now()),
		},
	}, http.StatusOK)
}

// UpdateProfile handles PUT /api/profile. The birthday is never updated here.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Name != "" {
		if err := h.repo.UpdateUsername(r.Context(), userID, req.Name); err != nil {
			logger.Error("failed to update username", "error", err.Error())
			httputil.RespondError(w, "Failed to update profile.", http.StatusInternalServerError)
			return
		}
	}

	if err := h.repo.UpdateProfile(r.Context(), userID, req.Gender, req.Bio, req.ProfileImage); err != nil {
		logger.Error("failed to update profile", "error", err.Error())
		httputil.RespondError(w, "Failed to update profile.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Profile updated successfully."}, http.StatusOK)
}

// CompleteOnboarding handles POST /api/complete-onboarding.
func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	userID, _ := httputil.GetUserIDFromContext(r.Context())

	if err := h.repo.CompleteOnboarding(r.Context(), userID); err != nil {
		logger.Error("failed to complete onboarding", "error", err.Error())
		httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Onboarding completed."}, http.StatusOK)
}
