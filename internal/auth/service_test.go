package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shainakels/harmonilink-backend/internal/logging"
	"github.com/shainakels/harmonilink-backend/internal/testutil"
	"github.com/shainakels/harmonilink-backend/internal/user"
)

type fakeOTPRepo struct {
	mu    sync.Mutex
	codes map[string]string
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{codes: make(map[string]string)}
}

func (f *fakeOTPRepo) StoreOTP(ctx context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[email] = code
	return nil
}

func (f *fakeOTPRepo) GetOTP(ctx context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.codes[email]
	if !ok {
		return "", ErrOTPNotFound
	}
	return code, nil
}

func (f *fakeOTPRepo) DeleteOTP(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, email)
	return nil
}

type resetEntry struct {
	userID    int64
	expiresAt time.Time
}

type fakeResetRepo struct {
	mu     sync.Mutex
	tokens map[string]resetEntry
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]resetEntry)}
}

func (f *fakeResetRepo) StoreResetToken(ctx context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = resetEntry{userID: userID, expiresAt: time.Now().Add(time.Hour)}
	return nil
}

func (f *fakeResetRepo) GetResetToken(ctx context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.tokens[token]
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, ErrResetTokenNotFound
	}
	return entry.userID, nil
}

func (f *fakeResetRepo) DeleteResetToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeResetRepo) expire(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.tokens[token]; ok {
		entry.expiresAt = time.Now().Add(-time.Minute)
		f.tokens[token] = entry
	}
}

type fakeEmailService struct{}

func (fakeEmailService) SendOTPEmail(ctx context.Context, toEmail, username, code string) error {
	return nil
}

func (fakeEmailService) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	return nil
}

type serviceFixture struct {
	service   *Service
	userRepo  *user.Repository
	otpRepo   *fakeOTPRepo
	resetRepo *fakeResetRepo
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := user.NewRepository(db)
	otpRepo := newFakeOTPRepo()
	resetRepo := newFakeResetRepo()

	tokenService, err := NewTokenService("jwt", testSecret())
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	service := NewService(
		userRepo,
		otpRepo,
		resetRepo,
		tokenService,
		fakeEmailService{},
		logging.NewLogger(true),
		time.Hour,
		30*24*time.Hour,
	)

	return &serviceFixture{
		service:   service,
		userRepo:  userRepo,
		otpRepo:   otpRepo,
		resetRepo: resetRepo,
	}
}

const strongPassword = "Str0ng!pass"

func TestSignupValidation(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		username      string
		email         string
		password      string
		expectedField string
	}{
		{"empty username", "", "a@example.com", strongPassword, "username"},
		{"empty email", "alice", "", strongPassword, "email"},
		{"bad email format", "alice", "not-an-email", strongPassword, "email"},
		{"weak password", "alice", "a@example.com", "short", "password"},
		{"no uppercase", "alice", "a@example.com", "weakpass1!", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.Signup(ctx, tt.username, tt.email, tt.password)
			var fields FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if _, ok := fields[tt.expectedField]; !ok {
				t.Errorf("expected error on field %q, got %v", tt.expectedField, fields)
			}
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Signup(ctx, "alice", "alice@example.com", strongPassword); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	_, err := fx.service.Signup(ctx, "alice2", "alice@example.com", strongPassword)
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError for duplicate email, got %v", err)
	}
	if _, ok := dup.Fields["email"]; !ok {
		t.Errorf("expected email field error, got %v", dup.Fields)
	}

	_, err = fx.service.Signup(ctx, "alice", "other@example.com", strongPassword)
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError for duplicate username, got %v", err)
	}
	if _, ok := dup.Fields["username"]; !ok {
		t.Errorf("expected username field error, got %v", dup.Fields)
	}
}

func TestSignupVerifyLogin(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	newUser, err := fx.service.Signup(ctx, "alice", "alice@example.com", strongPassword)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if newUser.EmailVerified {
		t.Error("new user should start unverified")
	}

	// Unverified login is refused
	if _, _, err := fx.service.Login(ctx, "alice@example.com", strongPassword, false); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}

	code, err := fx.otpRepo.GetOTP(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("signup did not store an OTP: %v", err)
	}

	if err := fx.service.VerifyOTP(ctx, "alice@example.com", "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for wrong code, got %v", err)
	}
	if err := fx.service.VerifyOTP(ctx, "alice@example.com", code); err != nil {
		t.Fatalf("verify OTP: %v", err)
	}
	// Code is single-use
	if err := fx.service.VerifyOTP(ctx, "alice@example.com", code); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for reused code, got %v", err)
	}

	token, loggedIn, err := fx.service.Login(ctx, "alice@example.com", strongPassword, false)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}
	if loggedIn.ID != newUser.ID {
		t.Errorf("expected user id %d, got %d", newUser.ID, loggedIn.ID)
	}

	if _, _, err := fx.service.Login(ctx, "alice@example.com", "Wrong1!pass", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := fx.service.Login(ctx, "nobody@example.com", strongPassword, false); !errors.Is(err, ErrUserNotRegistered) {
		t.Errorf("expected ErrUserNotRegistered, got %v", err)
	}
}

func TestResendOTP(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	if err := fx.service.ResendOTP(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotRegistered) {
		t.Fatalf("expected ErrUserNotRegistered for unknown email, got %v", err)
	}

	if _, err := fx.service.Signup(ctx, "bob", "bob@example.com", strongPassword); err != nil {
		t.Fatalf("signup: %v", err)
	}
	first, _ := fx.otpRepo.GetOTP(ctx, "bob@example.com")

	if err := fx.service.ResendOTP(ctx, "bob@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	second, err := fx.otpRepo.GetOTP(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("resend did not store a code: %v", err)
	}
	if second == "" {
		t.Error("expected a stored code after resend")
	}
	_ = first // codes may collide, presence is what matters

	if err := fx.service.VerifyOTP(ctx, "bob@example.com", second); err != nil {
		t.Fatalf("verify: %v", err)
	}
	// Verified accounts cannot request another code
	if err := fx.service.ResendOTP(ctx, "bob@example.com"); !errors.Is(err, ErrUserNotRegistered) {
		t.Errorf("expected ErrUserNotRegistered for verified account, got %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	if err := fx.service.RequestPasswordReset(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotRegistered) {
		t.Fatalf("expected ErrUserNotRegistered, got %v", err)
	}

	if _, err := fx.service.Signup(ctx, "carol", "carol@example.com", strongPassword); err != nil {
		t.Fatalf("signup: %v", err)
	}
	code, _ := fx.otpRepo.GetOTP(ctx, "carol@example.com")
	if err := fx.service.VerifyOTP(ctx, "carol@example.com", code); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := fx.service.RequestPasswordReset(ctx, "carol@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	var token string
	fx.resetRepo.mu.Lock()
	for tok := range fx.resetRepo.tokens {
		token = tok
	}
	fx.resetRepo.mu.Unlock()
	if token == "" {
		t.Fatal("no reset token stored")
	}

	if err := fx.service.ResetPassword(ctx, token, ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
	if err := fx.service.ResetPassword(ctx, token, "weak"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}
	if err := fx.service.ResetPassword(ctx, "bogus-token", "N3w!password"); !errors.Is(err, ErrResetTokenNotFound) {
		t.Errorf("expected ErrResetTokenNotFound, got %v", err)
	}

	if err := fx.service.ResetPassword(ctx, token, "N3w!password"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	// Old credential no longer works, new one does
	if _, _, err := fx.service.Login(ctx, "carol@example.com", strongPassword, false); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected old password rejected, got %v", err)
	}
	if _, _, err := fx.service.Login(ctx, "carol@example.com", "N3w!password", false); err != nil {
		t.Errorf("expected new password accepted, got %v", err)
	}
}

func TestPasswordResetExpiredToken(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Signup(ctx, "dave", "dave@example.com", strongPassword); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := fx.service.RequestPasswordReset(ctx, "dave@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	var token string
	fx.resetRepo.mu.Lock()
	for tok := range fx.resetRepo.tokens {
		token = tok
	}
	fx.resetRepo.mu.Unlock()

	fx.resetRepo.expire(token)

	if err := fx.service.ResetPassword(ctx, token, "N3w!password"); !errors.Is(err, ErrResetTokenNotFound) {
		t.Errorf("expected ErrResetTokenNotFound for expired token, got %v", err)
	}
}
