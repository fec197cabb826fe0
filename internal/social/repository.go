package social

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/shainakels/harmonilink-backend/internal/database"
)

// FavoriteSong matches the saved-profile view's song shape.
type FavoriteSong struct {
	MixtapeID  int64   `json:"mixtape_id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	ArtworkURL *string `json:"artwork_url"`
	PreviewURL *string `json:"preview_url"`
}

type FavoriteMixtape struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"user_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       *string        `json:"image"`
	Songs       []FavoriteSong `json:"songs"`
}

// FavoriteProfile is the enriched view returned by GET /favorites.
type FavoriteProfile struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Age      *int              `json:"age"`
	Gender   string            `json:"gender"`
	Image    *string           `json:"image"`
	Mixtapes []FavoriteMixtape `json:"mixtapes"`
}

// Repository stores the directed relationship edges (favorite, discard)
// and serves the enriched favorites view.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// AddFavorite records a favorite edge. Re-favoriting is a no-op thanks to
// the composite primary key.
func (r *Repository) AddFavorite(ctx context.Context, actorID, targetID int64) error {
	fav := &database.Favorite{
		UserID:          actorID,
		FavoritedUserID: targetID,
	}
	_, err := r.db.NewInsert().
		Model(fav).
		On("CONFLICT (user_id, favorited_user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes the edge; removing a non-existent edge is not an error.
func (r *Repository) RemoveFavorite(ctx context.Context, actorID, targetID int64) error {
	_, err := r.db.NewDelete().
		Model((*database.Favorite)(nil)).
		Where("user_id = ?", actorID).
		Where("favorited_user_id = ?", targetID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// AddDiscard records a suppression edge. There is no removal operation.
func (r *Repository) AddDiscard(ctx context.Context, actorID, targetID int64) error {
	d := &database.Discard{
		UserID:          actorID,
		DiscardedUserID: targetID,
	}
	_, err := r.db.NewInsert().
		Model(d).
		On("CONFLICT (user_id, discarded_user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add discard: %w", err)
	}
	return nil
}

// FavoritedIDs returns the ids the actor has favorited.
func (r *Repository) FavoritedIDs(ctx context.Context, actorID int64) ([]int64, error) {
	var ids []int64
	err := r.db.NewSelect().
		Model((*database.Favorite)(nil)).
		Column("favorited_user_id").
		Where("user_id = ?", actorID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorited ids: %w", err)
	}
	return ids, nil
}

// DiscardedIDs returns the ids the actor has discarded.
func (r *Repository) DiscardedIDs(ctx context.Context, actorID int64) ([]int64, error) {
	var ids []int64
	err := r.db.NewSelect().
		Model((*database.Discard)(nil)).
		Column("discarded_user_id").
		Where("user_id = ?", actorID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load discarded ids: %w", err)
	}
	return ids, nil
}

// ListFavoriteProfiles assembles the favorited users' profiles with all of
// their mixtapes and songs, joined application-side.
func (r *Repository) ListFavoriteProfiles(ctx context.Context, actorID int64) ([]FavoriteProfile, error) {
	favoritedIDs, err := r.FavoritedIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(favoritedIDs) == 0 {
		return []FavoriteProfile{}, nil
	}

	var profileRows []struct {
		UserID       int64      `bun:"user_id"`
		Username     string     `bun:"username"`
		Gender       string     `bun:"gender"`
		Birthday     *time.Time `bun:"birthday"`
		ProfileImage *string    `bun:"profile_image"`
	}
	err = r.db.NewSelect().
		TableExpr("users AS u").
		ColumnExpr("u.id AS user_id, u.username, up.gender, up.birthday, up.profile_image").
		Join("JOIN user_profiles AS up ON up.user_id = u.id").
		Where("u.id IN (?)", bun.In(favoritedIDs)).
		Scan(ctx, &profileRows)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite profiles: %w", err)
	}

	var dbMixtapes []database.Mixtape
	err = r.db.NewSelect().
		Model(&dbMixtapes).
		Where("user_id IN (?)", bun.In(favoritedIDs)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite mixtapes: %w", err)
	}

	songsByMixtape := make(map[int64][]FavoriteSong)
	if len(dbMixtapes) > 0 {
		mixtapeIDs := make([]int64, len(dbMixtapes))
		for i, m := range dbMixtapes {
			mixtapeIDs[i] = m.ID
		}

		var dbSongs []database.MixtapeSong
		err = r.db.NewSelect().
			Model(&dbSongs).
			Where("mixtape_id IN (?)", bun.In(mixtapeIDs)).
			Order("id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load favorite songs: %w", err)
		}

		for _, s := range dbSongs {
			songsByMixtape[s.MixtapeID] = append(songsByMixtape[s.MixtapeID], FavoriteSong{
				MixtapeID:  s.MixtapeID,
				Title:      s.SongName,
				Artist:     s.ArtistName,
				ArtworkURL: s.ArtworkURL,
				PreviewURL: s.PreviewURL,
			})
		}
	}

	mixtapesByUser := make(map[int64][]FavoriteMixtape)
	for _, m := range dbMixtapes {
		songs := songsByMixtape[m.ID]
		if songs == nil {
			songs = []FavoriteSong{}
		}
		mixtapesByUser[m.UserID] = append(mixtapesByUser[m.UserID], FavoriteMixtape{
			ID:          m.ID,
			UserID:      m.UserID,
			Name:        m.Name,
			Description: m.Bio,
			Image:       m.PhotoURL,
			Songs:       songs,
		})
	}

	now := time.Now()
	profiles := make([]FavoriteProfile, len(profileRows))
	for i, row := range profileRows {
		mixtapes := mixtapesByUser[row.UserID]
		if mixtapes == nil {
			mixtapes = []FavoriteMixtape{}
		}
		profiles[i] = FavoriteProfile{
			ID:       row.UserID,
			Name:     row.Username,
			Age:      deriveAge(row.Birthday, now),
			Gender:   row.Gender,
			Image:    row.ProfileImage,
			Mixtapes: mixtapes,
		}
	}

	return profiles, nil
}

// deriveAge floors elapsed years using a 365.25-day year; nil birthday
// means no age, not zero.
func deriveAge(birthday *time.Time, now time.Time) *int {
	if birthday == nil {
		return nil
	}
	age := int(now.Sub(*birthday).Hours() / (24 * 365.25))
	return &age
}
