package user

import "time"

type User struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"` // never expose the credential hash
	EmailVerified       bool      `json:"email_verified"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Profile holds the per-user onboarding attributes. Age is derived from
// Birthday at read time, never stored.
type Profile struct {
	UserID       int64      `json:"user_id"`
	Birthday     *time.Time `json:"birthday"`
	Gender       string     `json:"gender"`
	Bio          string     `json:"bio"`
	ProfileImage *string    `json:"profile_image"`
}

// Age returns the floor of elapsed years using a 365.25-day year, or nil
// when the birthday is unknown.
func (p *Profile) Age(now time.Time) *int {
	if p.Birthday == nil {
		return nil
	}
	age := int(now.Sub(*p.Birthday).Hours() / (24 * 365.25))
	return &age
}
