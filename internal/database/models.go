package database

import (
	"time"

	"github.com/uptrace/bun"
)

// Source values tagging how a mixtape came to exist. Onboarding mixtapes
// are the only ones surfaced in discovery.
const (
	SourceOnboarding = "onboarding"
	SourceSidebar    = "sidebar"
	SourceDefault    = "default"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                  int64     `bun:"id,pk,autoincrement"`
	Username            string    `bun:"username,notnull"`
	Email               string    `bun:"email,notnull"`
	PasswordHash        string    `bun:"password_hash,notnull"`
	EmailVerified       bool      `bun:"email_verified"`
	OnboardingCompleted bool      `bun:"onboarding_completed"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:up"`

	UserID       int64      `bun:"user_id,pk"`
	Birthday     *time.Time `bun:"birthday"`
	Gender       string     `bun:"gender"`
	Bio          string     `bun:"bio"`
	ProfileImage *string    `bun:"profile_image"`
}

type Mixtape struct {
	bun.BaseModel `bun:"table:mixtapes,alias:m"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Bio       string    `bun:"bio"`
	PhotoURL  *string   `bun:"photo_url"`
	Source    string    `bun:"source,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type MixtapeSong struct {
	bun.BaseModel `bun:"table:mixtape_songs,alias:ms"`

	ID         int64   `bun:"id,pk,autoincrement"`
	MixtapeID  int64   `bun:"mixtape_id,notnull"`
	SongName   string  `bun:"song_name,notnull"`
	ArtistName string  `bun:"artist_name,notnull"`
	PreviewURL *string `bun:"preview_url"`
	ArtworkURL *string `bun:"artwork_url"`
}

// Favorite is a directed bookmark edge. The composite primary key makes
// duplicate edges impossible at the schema level.
type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:f"`

	UserID          int64     `bun:"user_id,pk"`
	FavoritedUserID int64     `bun:"favorited_user_id,pk"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Discard is a directed suppression edge; same composite-key treatment.
type Discard struct {
	bun.BaseModel `bun:"table:discarded,alias:d"`

	UserID          int64     `bun:"user_id,pk"`
	DiscardedUserID int64     `bun:"discarded_user_id,pk"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type Poll struct {
	bun.BaseModel `bun:"table:polls,alias:p"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	Question  string    `bun:"question,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type PollOption struct {
	bun.BaseModel `bun:"table:poll_options,alias:po"`

	ID         int64  `bun:"id,pk,autoincrement"`
	PollID     int64  `bun:"poll_id,notnull"`
	OptionText string `bun:"option_text,notnull"`
}

// PollVote holds one row per (poll, voter); re-voting updates option_id.
type PollVote struct {
	bun.BaseModel `bun:"table:poll_votes,alias:pv"`

	PollID    int64     `bun:"poll_id,pk"`
	UserID    int64     `bun:"user_id,pk"`
	OptionID  int64     `bun:"option_id,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
