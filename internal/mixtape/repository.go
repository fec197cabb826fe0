package mixtape

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/shainakels/harmonilink-backend/internal/database"
)

var ErrNotFound = errors.New("mixtape not found")

// Repository handles mixtape persistence. Every multi-statement write runs
// inside a transaction so a failure partway leaves nothing behind.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the mixtape and all its songs as a unit and fills in the
// generated id.
func (r *Repository) Create(ctx context.Context, m *Mixtape) error {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		dbMixtape := &database.Mixtape{
			UserID:   m.UserID,
			Name:     m.Name,
			Bio:      m.Bio,
			PhotoURL: m.PhotoURL,
			Source:   m.Source,
		}
		if _, err := tx.NewInsert().
			Model(dbMixtape).
			Returning("id").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert mixtape: %w", err)
		}

		songs := mapSongsToDB(dbMixtape.ID, m.Songs)
		if _, err := tx.NewInsert().
			Model(&songs).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert songs: %w", err)
		}

		m.ID = dbMixtape.ID
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create mixtape: %w", err)
	}
	return nil
}

// ListByOwner returns the user's mixtapes with songs attached, assembled
// application-side in insertion order.
func (r *Repository) ListByOwner(ctx context.Context, userID int64) ([]Mixtape, error) {
	var dbMixtapes []database.Mixtape
	err := r.db.NewSelect().
		Model(&dbMixtapes).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mixtapes: %w", err)
	}
	if len(dbMixtapes) == 0 {
		return []Mixtape{}, nil
	}

	ids := make([]int64, len(dbMixtapes))
	for i, m := range dbMixtapes {
		ids[i] = m.ID
	}

	songsByMixtape, err := r.SongsForMixtapes(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]Mixtape, len(dbMixtapes))
	for i, m := range dbMixtapes {
		result[i] = Mixtape{
			ID:       m.ID,
			UserID:   m.UserID,
			Name:     m.Name,
			Bio:      m.Bio,
			PhotoURL: m.PhotoURL,
			Source:   m.Source,
			Songs:    songsByMixtape[m.ID],
		}
	}
	return result, nil
}

// SongsForMixtapes loads songs for a set of mixtapes, keyed by mixtape id,
// each list in insertion order. Mixtapes with no songs map to an empty
// slice, never nil.
func (r *Repository) SongsForMixtapes(ctx context.Context, mixtapeIDs []int64) (map[int64][]Song, error) {
	result := make(map[int64][]Song, len(mixtapeIDs))
	for _, id := range mixtapeIDs {
		result[id] = []Song{}
	}
	if len(mixtapeIDs) == 0 {
		return result, nil
	}

	var dbSongs []database.MixtapeSong
	err := r.db.NewSelect().
		Model(&dbSongs).
		Where("mixtape_id IN (?)", bun.In(mixtapeIDs)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}

	for _, s := range dbSongs {
		result[s.MixtapeID] = append(result[s.MixtapeID], Song{
			Name:       s.SongName,
			Artist:     s.ArtistName,
			PreviewURL: s.PreviewURL,
			ArtworkURL: s.ArtworkURL,
		})
	}
	return result, nil
}

// Update replaces the mixtape's fields and its full song list
// (delete-all-then-reinsert) in one transaction, scoped to the owner.
func (r *Repository) Update(ctx context.Context, userID, mixtapeID int64, name, bio string, photoURL *string, songs []Song) error {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*database.Mixtape)(nil)).
			Set("name = ?", name).
			Set("bio = ?", bio).
			Set("photo_url = ?", photoURL).
			Where("id = ?", mixtapeID).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update mixtape: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}

		if _, err := tx.NewDelete().
			Model((*database.MixtapeSong)(nil)).
			Where("mixtape_id = ?", mixtapeID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete old songs: %w", err)
		}

		dbSongs := mapSongsToDB(mixtapeID, songs)
		if _, err := tx.NewInsert().
			Model(&dbSongs).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert songs: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update mixtape: %w", err)
	}
	return nil
}

// Delete removes the mixtape and its songs, scoped to the owner.
func (r *Repository) Delete(ctx context.Context, userID, mixtapeID int64) error {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*database.Mixtape)(nil)).
			Where("id = ?", mixtapeID).
			Where("user_id = ?", userID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check ownership: %w", err)
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.NewDelete().
			Model((*database.MixtapeSong)(nil)).
			Where("mixtape_id = ?", mixtapeID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete songs: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*database.Mixtape)(nil)).
			Where("id = ?", mixtapeID).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete mixtape: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete mixtape: %w", err)
	}
	return nil
}

func mapSongsToDB(mixtapeID int64, songs []Song) []database.MixtapeSong {
	dbSongs := make([]database.MixtapeSong, len(songs))
	for i, s := range songs {
		dbSongs[i] = database.MixtapeSong{
			MixtapeID:  mixtapeID,
			SongName:   s.Name,
			ArtistName: s.Artist,
			PreviewURL: s.PreviewURL,
			ArtworkURL: s.ArtworkURL,
		}
	}
	return dbSongs
}
