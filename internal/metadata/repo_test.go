package metadata

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamshelf/pkg/database"
	"steamshelf/pkg/models"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS game_metadata (
  appid INTEGER PRIMARY KEY,
  igdb_id INTEGER,
  name TEXT NOT NULL DEFAULT '',
  genres TEXT NOT NULL DEFAULT '[]',
  year INTEGER,
  platforms TEXT,
  external_game_source INTEGER,
  rating REAL,
  summary TEXT,
  updated_at TEXT NOT NULL
);
`

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "schema.sql")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSchema), 0o644))

	db, err := database.Open(database.Config{Path: filepath.Join(dir, "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, schemaPath))
	return db
}

func TestRepo_RoundTrip(t *testing.T) {
	repo := NewRepo(testDB(t))
	ctx := context.Background()

	igdbID := int64(123)
	year := 2013
	rating := 87.5
	summary := "A farm in space."
	rec := models.GameMetadata{
		AppID:     620,
		IGDBID:    &igdbID,
		Name:      "Portal 2",
		Genres:    []string{"Puzzle", "Platform"},
		Year:      &year,
		Platforms: []string{"PC (Microsoft Windows)", "Linux"},
		Rating:    &rating,
		Summary:   &summary,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.UpsertAll(ctx, []models.GameMetadata{rec}))

	got, err := repo.GetByAppIDs(ctx, []int64{620})
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0]
	assert.EqualValues(t, 620, m.AppID)
	require.NotNil(t, m.IGDBID)
	assert.EqualValues(t, 123, *m.IGDBID)
	assert.Equal(t, "Portal 2", m.Name)
	assert.Equal(t, []string{"Puzzle", "Platform"}, m.Genres)
	require.NotNil(t, m.Year)
	assert.Equal(t, 2013, *m.Year)
	assert.Equal(t, []string{"PC (Microsoft Windows)", "Linux"}, m.Platforms)
	require.NotNil(t, m.Rating)
	assert.Equal(t, 87.5, *m.Rating)
	assert.Equal(t, rec.UpdatedAt, m.UpdatedAt.Truncate(time.Second))
}

func TestRepo_SparseRecord(t *testing.T) {
	repo := NewRepo(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertAll(ctx, []models.GameMetadata{
		{AppID: 440, Name: "Team Fortress 2", Genres: []string{}},
	}))

	got, err := repo.GetByAppIDs(ctx, []int64{440})
	require.NoError(t, err)
	require.Len(t, got, 1)

	m := got[0]
	assert.Nil(t, m.IGDBID)
	assert.Nil(t, m.Year)
	assert.Nil(t, m.Rating)
	assert.Nil(t, m.Summary)
	assert.Nil(t, m.Platforms)
	assert.NotNil(t, m.Genres)
	assert.Empty(t, m.Genres)
}

func TestRepo_UpsertOverwrites(t *testing.T) {
	repo := NewRepo(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertAll(ctx, []models.GameMetadata{
		{AppID: 10, Name: "first", Genres: []string{}},
	}))
	require.NoError(t, repo.UpsertAll(ctx, []models.GameMetadata{
		{AppID: 10, Name: "second", Genres: []string{"Shooter"}},
	}))

	got, err := repo.GetByAppIDs(ctx, []int64{10})
	require.NoError(t, err)
	require.Len(t, got, 1, "re-fetching the same id overwrites, never duplicates")
	assert.Equal(t, "second", got[0].Name)
	assert.Equal(t, []string{"Shooter"}, got[0].Genres)
}

func TestRepo_MissingIDsAbsent(t *testing.T) {
	repo := NewRepo(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertAll(ctx, []models.GameMetadata{
		{AppID: 1, Name: "one", Genres: []string{}},
	}))

	got, err := repo.GetByAppIDs(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
