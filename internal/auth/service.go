package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/shainakels/harmonilink-backend/internal/logging"
	"github.com/shainakels/harmonilink-backend/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotRegistered  = errors.New("user not registered")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrOTPNotFound        = errors.New("OTP not found")
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooWeak    = errors.New("password must be at least 8 characters with upper/lowercase letters, a digit and a symbol")
)

// FieldErrors carries per-field validation failures for the signup contract.
type FieldErrors map[string]string

// DuplicateError reports a signup conflict with an already-registered
// username or email, as opposed to a plain validation failure.
type DuplicateError struct {
	Fields FieldErrors
}

func (e *DuplicateError) Error() string { return e.Fields.Error() }

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// Argon2id parameters - Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// OTPRepository stores short-lived email verification codes.
type OTPRepository interface {
	StoreOTP(ctx context.Context, email, code string) error
	GetOTP(ctx context.Context, email string) (string, error)
	DeleteOTP(ctx context.Context, email string) error
}

// PasswordResetRepository stores reset tokens for the 1-hour reset window.
type PasswordResetRepository interface {
	StoreResetToken(ctx context.Context, userID int64, token string) error
	GetResetToken(ctx context.Context, token string) (int64, error)
	DeleteResetToken(ctx context.Context, token string) error
}

// EmailService defines the interface for outbound mail.
type EmailService interface {
	SendOTPEmail(ctx context.Context, toEmail, username, code string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// Service handles authentication business logic
type Service struct {
	userRepo         *user.Repository
	otpRepo          OTPRepository
	resetRepo        PasswordResetRepository
	tokenService     TokenService
	emailService     EmailService
	logger           *logging.Logger
	tokenDuration    time.Duration
	rememberDuration time.Duration
}

func NewService(
	userRepo *user.Repository,
	otpRepo OTPRepository,
	resetRepo PasswordResetRepository,
	tokenService TokenService,
	emailService EmailService,
	logger *logging.Logger,
	tokenDuration time.Duration,
	rememberDuration time.Duration,
) *Service {
	return &Service{
		userRepo:         userRepo,
		otpRepo:          otpRepo,
		resetRepo:        resetRepo,
		tokenService:     tokenService,
		emailService:     emailService,
		logger:           logger,
		tokenDuration:    tokenDuration,
		rememberDuration: rememberDuration,
	}
}

// Signup creates an account and emails a verification code. Validation and
// duplicate detection surface as FieldErrors so the handler can report 422
// with a per-field map.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*user.User, error) {
	fields := FieldErrors{}
	username = strings.TrimSpace(username)
	if username == "" {
		fields["username"] = "Username is required."
	}
	if email == "" {
		fields["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "Invalid email format."
	}
	if !isStrongPassword(password) {
		fields["password"] = "Password must be at least 8 characters with upper/lowercase letters, a digit and a symbol."
	}
	if len(fields) > 0 {
		return nil, fields
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, username, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, &DuplicateError{Fields: FieldErrors{"email": "Email is already registered."}}
		}
		if errors.Is(err, user.ErrDuplicateUsername) {
			return nil, &DuplicateError{Fields: FieldErrors{"username": "Username is already taken."}}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}
	if err := s.otpRepo.StoreOTP(ctx, email, code); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	// Non-blocking: a lost email can be recovered via resend-otp
	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendOTPEmail(emailCtx, email, username, code); err != nil {
			s.logger.Warn("failed to send verification email", "email", email, "error", err)
		}
	}()

	return newUser, nil
}

// Login authenticates the user and issues a bearer token. rememberMe
// selects the long-lived expiry; there is no refresh rotation.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) (string, *user.User, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, ErrUserNotRegistered
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.verifyPassword(existingUser.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	if !existingUser.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	duration := s.tokenDuration
	if rememberMe {
		duration = s.rememberDuration
	}

	token, err := s.tokenService.CreateToken(existingUser.ID, duration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create token: %w", err)
	}

	return token, existingUser, nil
}

// VerifyOTP checks the emailed code and marks the address verified.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	stored, err := s.otpRepo.GetOTP(ctx, email)
	if err != nil {
		if errors.Is(err, ErrOTPNotFound) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to get OTP: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalidOTP
	}

	if err := s.userRepo.MarkEmailVerified(ctx, email); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	if err := s.otpRepo.DeleteOTP(ctx, email); err != nil {
		s.logger.Warn("failed to delete used OTP", "error", err)
	}

	return nil
}

// ResendOTP issues a fresh code for an unverified account.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotRegistered
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if existingUser.EmailVerified {
		return ErrUserNotRegistered
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}
	if err := s.otpRepo.StoreOTP(ctx, email, code); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendOTPEmail(emailCtx, email, existingUser.Username, code); err != nil {
			s.logger.Warn("failed to resend verification email", "email", email, "error", err)
		}
	}()

	return nil
}

// RequestPasswordReset stores a reset token with a 1-hour window and mails
// the reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotRegistered
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.resetRepo.StoreResetToken(ctx, existingUser.ID, token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendPasswordResetEmail(emailCtx, email, token); err != nil {
			s.logger.Warn("failed to send password reset email", "email", email, "error", err)
		}
	}()

	return nil
}

// ResetPassword replaces the credential if the token is still valid.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if !isStrongPassword(newPassword) {
		return ErrPasswordTooWeak
	}

	userID, err := s.resetRepo.GetResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return ErrResetTokenNotFound
		}
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.resetRepo.DeleteResetToken(ctx, token); err != nil {
		s.logger.Warn("failed to delete used reset token", "error", err)
	}

	return nil
}

// hashPassword creates an argon2id hash of the password
func (s *Service) hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	// Encoded as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifyPassword checks a password against the stored encoded hash
func (s *Service) verifyPassword(encodedHash, password string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	var memory, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	inputHash := argon2.IDKey(
		[]byte(password),
		salt,
		timeCost,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}

// isStrongPassword enforces the signup password policy.
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// generateOTP returns a 6-digit verification code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// generateResetToken creates a cryptographically secure random token.
func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
