package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"steamshelf/pkg/models"
)

// Repo persists GameMetadata in sqlite, keyed by appid.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// GetByAppIDs returns the cached records for the given appids. Missing
// ids are simply absent from the result.
func (r *Repo) GetByAppIDs(ctx context.Context, appIDs []int64) ([]models.GameMetadata, error) {
	if len(appIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(appIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(appIDs))
	for i, id := range appIDs {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT appid, igdb_id, name, genres, year, platforms, external_game_source, rating, summary, updated_at
		FROM game_metadata
		WHERE appid IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("metadata query: %w", err)
	}
	defer rows.Close()

	out := make([]models.GameMetadata, 0, len(appIDs))
	for rows.Next() {
		var (
			m          models.GameMetadata
			igdbID     sql.NullInt64
			genresJSON string
			year       sql.NullInt64
			platforms  sql.NullString
			source     sql.NullInt64
			rating     sql.NullFloat64
			summary    sql.NullString
			updatedAt  string
		)

		if err := rows.Scan(
			&m.AppID, &igdbID, &m.Name, &genresJSON, &year, &platforms, &source, &rating, &summary, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("metadata scan: %w", err)
		}

		if igdbID.Valid {
			m.IGDBID = &igdbID.Int64
		}
		if year.Valid {
			y := int(year.Int64)
			m.Year = &y
		}
		if source.Valid {
			s := int(source.Int64)
			m.ExternalGameSource = &s
		}
		if rating.Valid {
			m.Rating = &rating.Float64
		}
		if summary.Valid {
			m.Summary = &summary.String
		}

		_ = json.Unmarshal([]byte(genresJSON), &m.Genres)
		if m.Genres == nil {
			m.Genres = []string{}
		}
		if platforms.Valid && platforms.String != "" {
			_ = json.Unmarshal([]byte(platforms.String), &m.Platforms)
		}
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			m.UpdatedAt = t
		}

		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metadata rows err: %w", err)
	}
	return out, nil
}

// UpsertAll writes the given records, replacing existing rows by appid.
func (r *Repo) UpsertAll(ctx context.Context, records []models.GameMetadata) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_metadata (appid, igdb_id, name, genres, year, platforms, external_game_source, rating, summary, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(appid) DO UPDATE SET
		  igdb_id = excluded.igdb_id,
		  name = excluded.name,
		  genres = excluded.genres,
		  year = excluded.year,
		  platforms = excluded.platforms,
		  external_game_source = excluded.external_game_source,
		  rating = excluded.rating,
		  summary = excluded.summary,
		  updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, m := range records {
		genresJSON, err := json.Marshal(m.Genres)
		if err != nil {
			return fmt.Errorf("marshal genres for %d: %w", m.AppID, err)
		}

		var platformsJSON any
		if m.Platforms != nil {
			b, err := json.Marshal(m.Platforms)
			if err != nil {
				return fmt.Errorf("marshal platforms for %d: %w", m.AppID, err)
			}
			platformsJSON = string(b)
		}

		updatedAt := m.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}

		if _, err := stmt.ExecContext(
			ctx,
			m.AppID,
			nullable(m.IGDBID),
			m.Name,
			string(genresJSON),
			nullable(m.Year),
			platformsJSON,
			nullable(m.ExternalGameSource),
			nullable(m.Rating),
			nullable(m.Summary),
			updatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("exec upsert for %d: %w", m.AppID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// nullable turns a typed pointer into the value or SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
