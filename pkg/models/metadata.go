package models

import "time"

// GameMetadata is one enrichment record from IGDB, keyed by Steam AppID.
// Re-fetching the same appid overwrites the stored row, never duplicates it.
type GameMetadata struct {
	AppID              int64     `json:"appid"`
	IGDBID             *int64    `json:"igdb_id,omitempty"`
	Name               string    `json:"name"`
	Genres             []string  `json:"genres"`
	Year               *int      `json:"year,omitempty"`
	Platforms          []string  `json:"platforms,omitempty"`
	ExternalGameSource *int      `json:"external_game_source,omitempty"`
	Rating             *float64  `json:"rating,omitempty"`
	Summary            *string   `json:"summary,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}
