package poll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/shainakels/harmonilink-backend/internal/database"
)

var (
	ErrNotFound      = errors.New("poll not found")
	ErrOptionInvalid = errors.New("option does not belong to poll")
)

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the poll and its options in one transaction and returns
// the new poll id.
func (r *Repository) Create(ctx context.Context, userID int64, question string, options []string) (int64, error) {
	var pollID int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		p := &database.Poll{
			UserID:   userID,
			Question: question,
		}
		if _, err := tx.NewInsert().Model(p).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert poll: %w", err)
		}

		dbOptions := make([]database.PollOption, len(options))
		for i, text := range options {
			dbOptions[i] = database.PollOption{
				PollID:     p.ID,
				OptionText: text,
			}
		}
		if _, err := tx.NewInsert().Model(&dbOptions).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert poll options: %w", err)
		}

		pollID = p.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pollID, nil
}

// List returns all polls newest-first with options, vote counts, and the
// viewer's current vote per poll.
func (r *Repository) List(ctx context.Context, viewerID int64) ([]Poll, error) {
	var dbPolls []database.Poll
	err := r.db.NewSelect().
		Model(&dbPolls).
		Order("created_at DESC").
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load polls: %w", err)
	}
	if len(dbPolls) == 0 {
		return []Poll{}, nil
	}

	pollIDs := make([]int64, len(dbPolls))
	for i, p := range dbPolls {
		pollIDs[i] = p.ID
	}

	var dbOptions []database.PollOption
	err = r.db.NewSelect().
		Model(&dbOptions).
		Where("poll_id IN (?)", bun.In(pollIDs)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll options: %w", err)
	}

	var countRows []struct {
		OptionID int64 `bun:"option_id"`
		Count    int   `bun:"count"`
	}
	err = r.db.NewSelect().
		Model((*database.PollVote)(nil)).
		ColumnExpr("option_id, count(*) AS count").
		Where("poll_id IN (?)", bun.In(pollIDs)).
		Group("option_id").
		Scan(ctx, &countRows)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	countsByOption := make(map[int64]int, len(countRows))
	for _, row := range countRows {
		countsByOption[row.OptionID] = row.Count
	}

	var viewerVotes []database.PollVote
	err = r.db.NewSelect().
		Model(&viewerVotes).
		Where("poll_id IN (?)", bun.In(pollIDs)).
		Where("user_id = ?", viewerID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer votes: %w", err)
	}
	voteByPoll := make(map[int64]int64, len(viewerVotes))
	for _, v := range viewerVotes {
		voteByPoll[v.PollID] = v.OptionID
	}

	optionsByPoll := make(map[int64][]Option)
	for _, o := range dbOptions {
		optionsByPoll[o.PollID] = append(optionsByPoll[o.PollID], Option{
			ID:    o.ID,
			Text:  o.OptionText,
			Votes: countsByOption[o.ID],
		})
	}

	polls := make([]Poll, len(dbPolls))
	for i, p := range dbPolls {
		options := optionsByPoll[p.ID]
		if options == nil {
			options = []Option{}
		}
		var userVote *int64
		if optionID, ok := voteByPoll[p.ID]; ok {
			userVote = &optionID
		}
		polls[i] = Poll{
			ID:        p.ID,
			UserID:    p.UserID,
			Question:  p.Question,
			CreatedAt: p.CreatedAt,
			Options:   options,
			UserVote:  userVote,
		}
	}

	return polls, nil
}

// Vote records or replaces the viewer's vote. The option must belong to
// the poll being voted on.
func (r *Repository) Vote(ctx context.Context, viewerID, pollID, optionID int64) error {
	belongs, err := r.db.NewSelect().
		Model((*database.PollOption)(nil)).
		Where("id = ?", optionID).
		Where("poll_id = ?", pollID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check poll option: %w", err)
	}
	if !belongs {
		return ErrOptionInvalid
	}

	vote := &database.PollVote{
		PollID:   pollID,
		UserID:   viewerID,
		OptionID: optionID,
	}
	_, err = r.db.NewInsert().
		Model(vote).
		On("CONFLICT (poll_id, user_id) DO UPDATE").
		Set("option_id = EXCLUDED.option_id").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

// Delete removes an owned poll with its options and votes in one
// transaction. ErrNotFound covers both missing and not-owned polls.
func (r *Repository) Delete(ctx context.Context, ownerID, pollID int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*database.Poll)(nil)).
			Where("id = ?", pollID).
			Where("user_id = ?", ownerID).
			Exists(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check poll ownership: %w", err)
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.NewDelete().
			Model((*database.PollVote)(nil)).
			Where("poll_id = ?", pollID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete poll votes: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*database.PollOption)(nil)).
			Where("poll_id = ?", pollID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete poll options: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*database.Poll)(nil)).
			Where("id = ?", pollID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete poll: %w", err)
		}
		return nil
	})
}
