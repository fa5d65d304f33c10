package wbs

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/orionpms/orion/internal/database"
	"github.com/orionpms/orion/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	_, err = db.Exec(`INSERT INTO projects (id, code, name) VALUES ('p1', 'PRJ-1', 'Test Project')`)
	require.NoError(t, err)

	return db
}

func TestRepositoryReplaceAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	records := []Record{
		{ID: "root", ParentID: nil, Code: "PRJ", Name: "Project"},
		{ID: "e100", ParentID: strPtr("root"), Code: "E-100", Name: "Engineering",
			PV: 100, EV: 90, AC: 80, BAC: 150,
			SAPMapping: &domain.SAPMapping{Posid: "P.0100", Confidence: 0.92}},
		{ID: "c200", ParentID: strPtr("root"), Code: "C-200", Name: "Construction",
			PV: 50, EV: 40, AC: 45, BAC: 70},
	}

	require.NoError(t, repo.ReplaceProject("p1", records))

	got, err := repo.ListByProject("p1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Mirror order survives the round trip.
	assert.Equal(t, "root", got[0].ID)
	assert.Equal(t, "e100", got[1].ID)
	assert.Equal(t, "c200", got[2].ID)

	assert.Nil(t, got[0].ParentID)
	require.NotNil(t, got[1].ParentID)
	assert.Equal(t, "root", *got[1].ParentID)

	assert.Equal(t, 100.0, got[1].PV)
	assert.Equal(t, 90.0, got[1].EV)

	require.NotNil(t, got[1].SAPMapping)
	assert.Equal(t, "P.0100", got[1].SAPMapping.Posid)
	assert.Equal(t, 0.92, got[1].SAPMapping.Confidence)
	assert.Nil(t, got[2].SAPMapping)
}

func TestRepositoryReplaceSwapsRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	first := []Record{
		{ID: "root", Code: "PRJ", Name: "Project"},
		{ID: "old", ParentID: strPtr("root"), Code: "E-1", Name: "Old"},
	}
	require.NoError(t, repo.ReplaceProject("p1", first))

	second := []Record{
		{ID: "root", Code: "PRJ", Name: "Project"},
		{ID: "new", ParentID: strPtr("root"), Code: "E-2", Name: "New"},
	}
	require.NoError(t, repo.ReplaceProject("p1", second))

	got, err := repo.ListByProject("p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[1].ID)
}

func TestRepositoryListEmptyProject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	got, err := repo.ListByProject("p1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUIStateRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUIStateRepository(db, zerolog.Nop())

	// Unknown session yields the empty state.
	state, err := repo.Get("s1", "p1")
	require.NoError(t, err)
	assert.Empty(t, state.ExpandedIDs)
	assert.Nil(t, state.SelectedID)

	saved := NewUIState().ToggleExpanded("root").ToggleExpanded("e100").Select("e100")
	require.NoError(t, repo.Save("s1", "p1", saved))

	got, err := repo.Get("s1", "p1")
	require.NoError(t, err)
	assert.True(t, got.IsExpanded("root"))
	assert.True(t, got.IsExpanded("e100"))
	require.NotNil(t, got.SelectedID)
	assert.Equal(t, "e100", *got.SelectedID)

	// Saving again replaces, not merges.
	require.NoError(t, repo.Save("s1", "p1", NewUIState()))
	got, err = repo.Get("s1", "p1")
	require.NoError(t, err)
	assert.Empty(t, got.ExpandedIDs)
	assert.Nil(t, got.SelectedID)

	// Sessions are isolated.
	other, err := repo.Get("s2", "p1")
	require.NoError(t, err)
	assert.Empty(t, other.ExpandedIDs)
}
