package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/shainakels/harmonilink-backend/internal/database"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

// Repository handles user and profile persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. Duplicate email/username are detected with a
// pre-check so the caller can report per-field errors; the unique
// constraints remain the backstop for races.
func (r *Repository) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	var existing []database.User
	err := r.db.NewSelect().
		Model(&existing).
		Where("username = ? OR email = ?", username, email).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	for _, u := range existing {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
		if u.Username == username {
			return nil, ErrDuplicateUsername
		}
	}

	dbUser := &database.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	_, err = r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// MarkEmailVerified flips email_verified for the given address.
func (r *Repository) MarkEmailVerified(ctx context.Context, email string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email_verified = ?", true).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdatePassword replaces a user's credential hash
func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateUsername renames a user
func (r *Repository) UpdateUsername(ctx context.Context, userID int64, username string) error {
	_, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("username = ?", username).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	return nil
}

// CompleteOnboarding marks onboarding as finished for the user
func (r *Repository) CompleteOnboarding(ctx context.Context, userID int64) error {
	_, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("onboarding_completed = ?", true).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}

// CreateProfile stores the onboarding profile attributes for a user
func (r *Repository) CreateProfile(ctx context.Context, p *Profile) error {
	dbProfile := &database.UserProfile{
		UserID:       p.UserID,
		Birthday:     p.Birthday,
		Gender:       p.Gender,
		Bio:          p.Bio,
		ProfileImage: p.ProfileImage,
	}

	_, err := r.db.NewInsert().
		Model(dbProfile).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a user's profile
func (r *Repository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	dbProfile := new(database.UserProfile)
	err := r.db.NewSelect().
		Model(dbProfile).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &Profile{
		UserID:       dbProfile.UserID,
		Birthday:     dbProfile.Birthday,
		Gender:       dbProfile.Gender,
		Bio:          dbProfile.Bio,
		ProfileImage: dbProfile.ProfileImage,
	}, nil
}

// UpdateProfile updates gender, bio and profile image. The birthday is
// immutable once set.
func (r *Repository) UpdateProfile(ctx context.Context, userID int64, gender, bio string, profileImage *string) error {
	_, err := r.db.NewUpdate().
		Model((*database.UserProfile)(nil)).
		Set("gender = ?", gender).
		Set("bio = ?", bio).
		Set("profile_image = ?", profileImage).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:                  dbu.ID,
		Username:            dbu.Username,
		Email:               dbu.Email,
		PasswordHash:        dbu.PasswordHash,
		EmailVerified:       dbu.EmailVerified,
		OnboardingCompleted: dbu.OnboardingCompleted,
		CreatedAt:           dbu.CreatedAt,
		UpdatedAt:           dbu.UpdatedAt,
	}
}
