package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/shainakels/harmonilink-backend/internal/database"
)

// CreateUser inserts a verified user and returns its id.
func CreateUser(t *testing.T, db *bun.DB, username, email string) int64 {
	t.Helper()

	u := &database.User{
		Username:      username,
		Email:         email,
		PasswordHash:  "x",
		EmailVerified: true,
	}
	if _, err := db.NewInsert().Model(u).Returning("id").Exec(context.Background()); err != nil {
		t.Fatalf("failed to insert user %s: %v", username, err)
	}
	return u.ID
}

// CreateProfile attaches a profile to an existing user.
func CreateProfile(t *testing.T, db *bun.DB, userID int64, gender, bio string, birthday *time.Time) {
	t.Helper()

	p := &database.UserProfile{
		UserID:   userID,
		Birthday: birthday,
		Gender:   gender,
		Bio:      bio,
	}
	if _, err := db.NewInsert().Model(p).Exec(context.Background()); err != nil {
		t.Fatalf("failed to insert profile for user %d: %v", userID, err)
	}
}

// CreateMixtape inserts a mixtape with songs and returns the mixtape id.
func CreateMixtape(t *testing.T, db *bun.DB, userID int64, name, source string, songNames ...string) int64 {
	t.Helper()

	ctx := context.Background()
	m := &database.Mixtape{
		UserID: userID,
		Name:   name,
		Source: source,
	}
	if _, err := db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		t.Fatalf("failed to insert mixtape %s: %v", name, err)
	}

	for _, songName := range songNames {
		s := &database.MixtapeSong{
			MixtapeID:  m.ID,
			SongName:   songName,
			ArtistName: "Test Artist",
		}
		if _, err := db.NewInsert().Model(s).Exec(ctx); err != nil {
			t.Fatalf("failed to insert song %s: %v", songName, err)
		}
	}

	return m.ID
}

// BirthdayYearsAgo returns a birthday that makes a profile the given age.
func BirthdayYearsAgo(years int) *time.Time {
	b := time.Now().AddDate(-years, 0, -1)
	return &b
}
