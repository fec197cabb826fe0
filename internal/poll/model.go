package poll

import "time"

// Option carries its aggregate vote count in feed responses.
type Option struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is one entry of the polling feed.
type Poll struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
	Options   []Option  `json:"options"`
	// UserVote is the option id the requesting user voted for, or null.
	UserVote *int64 `json:"user_vote"`
}
