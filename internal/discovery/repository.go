package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/shainakels/harmonilink-backend/internal/database"
)

const (
	feedLimit   = 10
	searchLimit = 20
)

// CandidateSong is a song inside a discovery candidate's mixtape.
type CandidateSong struct {
	SongName   string  `json:"song_name"`
	ArtistName string  `json:"artist_name"`
	PreviewURL *string `json:"preview_url"`
	ArtworkURL *string `json:"artwork_url"`
}

type CandidateMixtape struct {
	MixtapeID int64           `json:"mixtape_id"`
	Name      string          `json:"name"`
	Bio       string          `json:"bio"`
	PhotoURL  *string         `json:"photo_url"`
	Songs     []CandidateSong `json:"songs"`
}

// Candidate is one discoverable profile in the feed.
type Candidate struct {
	Username   string             `json:"username"`
	Gender     string             `json:"gender"`
	ProfileBio string             `json:"profile_bio"`
	Birthday   *string            `json:"birthday"`
	Age        *int               `json:"age"`
	UserID     int64              `json:"user_id"`
	Mixtapes   []CandidateMixtape `json:"mixtapes"`
}

// SearchMixtape is the single mixtape attached to a search hit.
type SearchMixtape struct {
	Name     string   `json:"name"`
	Songs    []string `json:"songs"`
	PhotoURL *string  `json:"photo_url"`
}

// SearchResult is one flattened row of the search response.
type SearchResult struct {
	Type     string        `json:"type"`
	Username string        `json:"username"`
	UserID   int64         `json:"user_id"`
	Mixtape  SearchMixtape `json:"mixtape"`
}

// Repository serves the discovery feed and search. The feed excludes the
// viewer, anyone the viewer discarded, and anyone the viewer favorited,
// then samples the remainder randomly.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Discover returns up to 10 random candidate profiles for the viewer,
// each carrying their onboarding mixtape with songs. The join across
// profiles, mixtapes, and songs happens application-side in three
// queries rather than one aggregate-string query.
func (r *Repository) Discover(ctx context.Context, viewerID int64) ([]Candidate, error) {
	discarded := r.db.NewSelect().
		Model((*database.Discard)(nil)).
		Column("discarded_user_id").
		Where("user_id = ?", viewerID)
	favorited := r.db.NewSelect().
		Model((*database.Favorite)(nil)).
		Column("favorited_user_id").
		Where("user_id = ?", viewerID)

	var rows []struct {
		UserID   int64      `bun:"user_id"`
		Username string     `bun:"username"`
		Gender   string     `bun:"gender"`
		Bio      string     `bun:"bio"`
		Birthday *time.Time `bun:"birthday"`
	}
	err := r.db.NewSelect().
		TableExpr("user_profiles AS up").
		ColumnExpr("up.user_id, u.username, up.gender, up.bio, up.birthday").
		Join("JOIN users AS u ON u.id = up.user_id").
		Where("up.user_id != ?", viewerID).
		Where("up.user_id NOT IN (?)", discarded).
		Where("up.user_id NOT IN (?)", favorited).
		OrderExpr("random()").
		Limit(feedLimit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load discovery candidates: %w", err)
	}
	if len(rows) == 0 {
		return []Candidate{}, nil
	}

	candidateIDs := make([]int64, len(rows))
	for i, row := range rows {
		candidateIDs[i] = row.UserID
	}

	var dbMixtapes []database.Mixtape
	err = r.db.NewSelect().
		Model(&dbMixtapes).
		Where("user_id IN (?)", bun.In(candidateIDs)).
		Where("source = ?", database.SourceOnboarding).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate mixtapes: %w", err)
	}

	songsByMixtape := make(map[int64][]CandidateSong)
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
			return nil, fmt.Errorf("failed to load candidate songs: %w", err)
		}

		for _, s := range dbSongs {
			songsByMixtape[s.MixtapeID] = append(songsByMixtape[s.MixtapeID], CandidateSong{
				SongName:   s.SongName,
				ArtistName: s.ArtistName,
				PreviewURL: s.PreviewURL,
				ArtworkURL: s.ArtworkURL,
			})
		}
	}

	mixtapesByUser := make(map[int64][]CandidateMixtape)
	for _, m := range dbMixtapes {
		songs := songsByMixtape[m.ID]
		if songs == nil {
			songs = []CandidateSong{}
		}
		mixtapesByUser[m.UserID] = append(mixtapesByUser[m.UserID], CandidateMixtape{
			MixtapeID: m.ID,
			Name:      m.Name,
			Bio:       m.Bio,
			PhotoURL:  m.PhotoURL,
			Songs:     songs,
		})
	}

	now := time.Now()
	candidates := make([]Candidate, len(rows))
	for i, row := range rows {
		mixtapes := mixtapesByUser[row.UserID]
		if mixtapes == nil {
			mixtapes = []CandidateMixtape{}
		}
		var birthday *string
		var age *int
		if row.Birthday != nil {
			b := row.Birthday.Format("2006-01-02")
			birthday = &b
			a := int(now.Sub(*row.Birthday).Hours() / (24 * 365.25))
			age = &a
		}
		candidates[i] = Candidate{
			Username:   row.Username,
			Gender:     row.Gender,
			ProfileBio: row.Bio,
			Birthday:   birthday,
			Age:        age,
			UserID:     row.UserID,
			Mixtapes:   mixtapes,
		}
	}

	return candidates, nil
}

// Search matches the query case-insensitively against usernames, mixtape
// names, and song names, and returns up to 20 flattened rows of user plus
// one mixtape. Only profiles are searchable, only onboarding mixtapes join,
// and no viewer-based exclusions apply.
func (r *Repository) Search(ctx context.Context, query string) ([]SearchResult, error) {
	pattern := "%" + query + "%"

	var rows []struct {
		UserID      int64   `bun:"user_id"`
		Username    string  `bun:"username"`
		MixtapeID   *int64  `bun:"mixtape_id"`
		MixtapeName *string `bun:"mixtape_name"`
		PhotoURL    *string `bun:"photo_url"`
	}
	err := r.db.NewSelect().
		TableExpr("user_profiles AS p").
		ColumnExpr("u.id AS user_id, u.username, m.id AS mixtape_id, m.name AS mixtape_name, m.photo_url").
		Join("INNER JOIN users AS u ON u.id = p.user_id").
		Join("LEFT JOIN mixtapes AS m ON m.user_id = u.id AND m.source = ?", database.SourceOnboarding).
		Where("lower(u.username) LIKE lower(?) OR lower(m.name) LIKE lower(?) OR EXISTS (?)",
			pattern, pattern,
			r.db.NewSelect().
				Model((*database.MixtapeSong)(nil)).
				ColumnExpr("1").
				Where("mixtape_id = m.id").
				Where("lower(song_name) LIKE lower(?)", pattern)).
		Limit(searchLimit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if len(rows) == 0 {
		return []SearchResult{}, nil
	}

	var mixtapeIDs []int64
	for _, row := range rows {
		if row.MixtapeID != nil {
			mixtapeIDs = append(mixtapeIDs, *row.MixtapeID)
		}
	}

	songNames := make(map[int64][]string)
	if len(mixtapeIDs) > 0 {
		var dbSongs []database.MixtapeSong
		err = r.db.NewSelect().
			Model(&dbSongs).
			Where("mixtape_id IN (?)", bun.In(mixtapeIDs)).
			Order("id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load search songs: %w", err)
		}
		for _, s := range dbSongs {
			songNames[s.MixtapeID] = append(songNames[s.MixtapeID], s.SongName)
		}
	}

	results := make([]SearchResult, len(rows))
	for i, row := range rows {
		mixtape := SearchMixtape{Songs: []string{}}
		if row.MixtapeID != nil {
			if row.MixtapeName != nil {
				mixtape.Name = *row.MixtapeName
			}
			mixtape.PhotoURL = row.PhotoURL
			if names := songNames[*row.MixtapeID]; names != nil {
				mixtape.Songs = names
			}
		}
		results[i] = SearchResult{
			Type:     "user",
			Username: row.Username,
			UserID:   row.UserID,
			Mixtape:  mixtape,
		}
	}

	return results, nil
}
