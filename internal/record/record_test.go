package record

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecogrid/internal/ids"
	"ecogrid/internal/scenario"
	"ecogrid/internal/sims/trophic"
)

func openTemp(t *testing.T, opts ...Option) (*Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run")
	r, err := Open(path, opts...)
	require.NoError(t, err)
	return r, path + ".sqlite3"
}

func flatGrid() *trophic.Grid {
	return trophic.New(trophic.DefaultConfig(), scenario.Flat(ids.New(), nil))
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestOpenCreatesTables(t *testing.T) {
	r, filename := openTemp(t)
	defer r.Close()

	assert.Equal(t, filename, r.Filename())
	assert.Equal(t, []string{RunsTable, UnitsTable, PopulationsTable}, r.Tables())

	var name string
	err := r.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='units';").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "units", name)
}

func TestOpenRefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(path+".sqlite3", nil, 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestObserveRecordsUnitsAndTotals(t *testing.T) {
	r, filename := openTemp(t)
	g := flatGrid()

	require.NoError(t, r.RecordRun("flat", 7, g.Config()))
	require.NoError(t, r.Observe(context.Background(), g.Snapshot()))
	g.Tick()
	require.NoError(t, r.Observe(context.Background(), g.Snapshot()))
	require.NoError(t, r.Close())

	db, err := sql.Open("sqlite3", filename)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 35, count(t, db, "SELECT COUNT(*) FROM units WHERE Generation = 0"))
	assert.Equal(t, g.UnitCount(), count(t, db, "SELECT COUNT(*) FROM units WHERE Generation = 1"))
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM populations"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM runs WHERE Run = ? AND Seed = 7", r.RunID()))

	var kind string
	var quantity float64
	err = db.QueryRow("SELECT Kind, Quantity FROM units WHERE Generation = 0 AND ID = 1").Scan(&kind, &quantity)
	require.NoError(t, err)
	assert.Equal(t, "Plant", kind)
	assert.Equal(t, 50.0, quantity)

	var plants float64
	err = db.QueryRow("SELECT Plants FROM populations WHERE Generation = 1").Scan(&plants)
	require.NoError(t, err)
	assert.InDelta(t, g.Totals().Plants, plants, 1e-9)
}

func TestBatchFlushesAutomatically(t *testing.T) {
	r, _ := openTemp(t, WithBatchSize(10))
	defer r.Close()

	require.NoError(t, r.Observe(context.Background(), flatGrid().Snapshot()))

	// 36 rows with a batch of 10 are flushed on the spot.
	assert.Equal(t, 35, count(t, r.DB(), "SELECT COUNT(*) FROM units"))
	assert.Equal(t, 1, count(t, r.DB(), "SELECT COUNT(*) FROM populations"))
}

func TestInsertValidatesTableAndType(t *testing.T) {
	r, _ := openTemp(t)
	defer r.Close()

	assert.Error(t, r.Insert("missing", UnitRow{}))
	assert.Error(t, r.Insert(UnitsTable, PopulationRow{}))
	assert.Error(t, r.CreateTable("bad", struct{ Cells []int }{}))
	assert.Error(t, r.CreateTable(UnitsTable, UnitRow{}))
}

func TestClosedRecorder(t *testing.T) {
	r, _ := openTemp(t)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.ErrorIs(t, r.Insert(UnitsTable, UnitRow{}), ErrClosed)
	assert.ErrorIs(t, r.Flush(), ErrClosed)
	assert.ErrorIs(t, r.Observe(context.Background(), flatGrid().Snapshot()), ErrClosed)
}
