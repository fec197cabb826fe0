package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/shainakels/harmonilink-backend/internal/httputil"
	"github.com/shainakels/harmonilink-backend/internal/logging"
	"github.com/shainakels/harmonilink-backend/internal/ratelimit"
)

// Handler contains HTTP handlers for the account endpoints
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	Message             string `json:"message"`
	UserID              int64  `json:"user_id"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type LoginResponse struct {
	Token               string `json:"token"`
	UserID              int64  `json:"user_id"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Signup handles POST /api/signup
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup fields"
// @Success      201 {object} SignupResponse
// @Failure      422 {object} httputil.FieldErrorResponse
// @Router       /api/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.ipLimited(w, r, "signup") {
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	newUser, err := h.service.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			logger.Warn("signup rejected", "errors", dup.Error())
			httputil.RespondFieldErrors(w, "Username or email is already taken.", dup.Fields)
			return
		}
		var fields FieldErrors
		if errors.As(err, &fields) {
			logger.Warn("signup rejected", "errors", fields.Error())
			httputil.RespondFieldErrors(w, "Invalid signup data.", fields)
			return
		}
		logger.Error("signup failed", "error", err.Error())
		httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	httputil.RespondJSON(w, SignupResponse{
		Message:             "User registered successfully",
		UserID:              newUser.ID,
		OnboardingCompleted: false,
	}, http.StatusCreated)
}

// Login handles POST /api/login
// @Summary      Log in and receive a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid email or password"
// @Failure      403 {object} httputil.ErrorResponse "Email not verified"
// @Failure      404 {object} httputil.ErrorResponse "User not registered"
// @Router       /api/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.ipLimited(w, r, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.RespondErrorWithCode(w, "Email and password are required.", httputil.CodeValidation, http.StatusUnprocessableEntity)
		return
	}

	token, loggedIn, err := h.service.Login(r.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotRegistered):
			httputil.RespondError(w, "User not registered.", http.StatusNotFound)
		case errors.Is(err, ErrInvalidCredentials):
			httputil.RespondError(w, "Invalid email or password.", http.StatusBadRequest)
		case errors.Is(err, ErrEmailNotVerified):
			httputil.RespondError(w, "Please verify your email before logging in.", http.StatusForbidden)
		default:
			logger.Error("login failed", "error", err.Error())
			httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, LoginResponse{
		Token:               token,
		UserID:              loggedIn.ID,
		OnboardingCompleted: loggedIn.OnboardingCompleted,
	}, http.StatusOK)
}

// VerifyOTP handles POST /api/verify-otp
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.OTP == "" {
		httputil.RespondError(w, "Email and OTP are required.", http.StatusBadRequest)
		return
	}

	if err := h.service.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			httputil.RespondError(w, "Invalid or expired OTP.", http.StatusBadRequest)
			return
		}
		logger.Error("otp verification failed", "error", err.Error())
		httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Email verified successfully!"}, http.StatusOK)
}

// ResendOTP handles POST /api/resend-otp
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.ipLimited(w, r, "resend-otp") {
		return
	}

	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		httputil.RespondError(w, "Email is required.", http.StatusBadRequest)
		return
	}

	if err := h.service.ResendOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotRegistered) {
			httputil.RespondError(w, "User not found or already verified.", http.StatusNotFound)
			return
		}
		logger.Error("otp resend failed", "error", err.Error())
		httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "New verification code sent successfully!"}, http.StatusOK)
}

// ForgotPassword handles POST /api/forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.ipLimited(w, r, "forgot-password") {
		return
	}

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotRegistered) {
			httputil.RespondError(w, "Email not found.", http.StatusNotFound)
			return
		}
		logger.Error("forgot-password failed", "error", err.Error())
		httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Password reset link sent to your email."}, http.StatusOK)
}

// ResetPassword handles POST /api/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "Invalid request body.", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Token == "" || req.Password == "" {
		httputil.RespondError(w, "Token and password are required.", http.StatusBadRequest)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrResetTokenNotFound):
			httputil.RespondError(w, "Invalid or expired token.", http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordTooWeak):
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Error("reset-password failed", "error", err.Error())
			httputil.RespondError(w, "Server error.", http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "Password reset successful."}, http.StatusOK)
}

// ipLimited applies the fixed-window limiter and writes the 429 when the
// caller is over the window limit. Limiter failures are logged, never blocking.
func (h *Handler) ipLimited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		h.logger.Error("failed to check IP rate limit", "error", err.Error())
		return false
	}
	if exceeded {
		h.logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "Too many requests, please try again later.", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		h.logger.Error("failed to record IP request", "error", err.Error())
	}
	return false
}

// getClientIP returns the caller's IP; chi's RealIP middleware has already
// folded X-Forwarded-For into RemoteAddr.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
