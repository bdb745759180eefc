package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SearchRepository {
	t.Helper()
	database, err := NewSqliteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewSearchRepository(database)
}

func TestSearchRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert("abc", "mozart requiem", started))
	require.NoError(t, repo.UpdateState("abc", "Completed", 42, 7))

	rec, err := repo.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, "mozart requiem", rec.Query)
	assert.Equal(t, "Completed", rec.State)
	assert.Equal(t, 42, rec.FileCount)
	assert.Equal(t, 7, rec.ResponseCount)
	assert.True(t, rec.StartedAt.Equal(started))
}

func TestSearchRepositoryGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get("nope")
	assert.ErrorContains(t, err, "search not found")
}

func TestSearchRepositoryListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert("old", "first", base))
	require.NoError(t, repo.Insert("new", "second", base.Add(time.Hour)))

	records, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "new", records[0].ID)
	assert.Equal(t, "old", records[1].ID)

	records, err = repo.List(1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSearchRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Insert("abc", "query", time.Now()))
	require.NoError(t, repo.Delete("abc"))

	_, err := repo.Get("abc")
	assert.Error(t, err)
}
