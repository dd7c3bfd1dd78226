// Package record stores every generation of a run in an SQLite database.
package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"ecogrid/internal/logging"
	"ecogrid/internal/sims/trophic"
)

// Table names.
const (
	RunsTable        = "runs"
	UnitsTable       = "units"
	PopulationsTable = "populations"
)

// DefaultBatchSize is the number of buffered rows that triggers a flush.
const DefaultBatchSize = 50000

// ErrClosed is returned by operations on a closed Recorder.
var ErrClosed = errors.New("recorder is closed")

// RunRow describes the run a database belongs to.
type RunRow struct {
	Run                 string
	Layout              string
	Seed                int64
	PlantGrowthRate     float64
	HerbivoreEatingRate float64
	HerbivoreDeathRate  float64
	PredatorEatingRate  float64
	PredatorDeathRate   float64
}

// UnitRow is one unit in one generation.
type UnitRow struct {
	Run        string
	Generation uint32
	Row        int
	Col        int
	Kind       string
	ID         uint32
	Quantity   float64
}

// PopulationRow holds the grid totals of one generation.
type PopulationRow struct {
	Run        string
	Generation uint32
	Plants     float64
	Herbivores float64
	Predators  float64
	Units      int
}

type table struct {
	structType reflect.Type
	entries    []any
}

// Recorder buffers rows in memory and writes them in batches.
type Recorder struct {
	mu sync.Mutex

	db        *sql.DB
	filename  string
	runID     string
	batchSize int
	tables    map[string]*table
	order     []string
	pending   int
	closed    bool
	log       *logging.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithBatchSize sets how many rows are buffered before a flush.
func WithBatchSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Recorder) { r.log = l }
}

// Open creates a new database at path + ".sqlite3". An empty path picks a
// unique name. Opening an existing file is an error so runs never mix.
func Open(path string, opts ...Option) (*Recorder, error) {
	runID := xid.New().String()
	if path == "" {
		path = "ecogrid_run_" + runID
	}
	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}

	r, err := newRecorder(db, runID, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	r.filename = filename
	r.log.Infof("recording to %s (run %s)", filename, runID)
	return r, nil
}

// NewWithDB records into an already opened database.
func NewWithDB(db *sql.DB, opts ...Option) (*Recorder, error) {
	return newRecorder(db, xid.New().String(), opts...)
}

func newRecorder(db *sql.DB, runID string, opts ...Option) (*Recorder, error) {
	r := &Recorder{
		db:        db,
		runID:     runID,
		batchSize: DefaultBatchSize,
		tables:    make(map[string]*table),
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}

	tables := []struct {
		name   string
		sample any
	}{
		{RunsTable, RunRow{}},
		{UnitsTable, UnitRow{}},
		{PopulationsTable, PopulationRow{}},
	}
	for _, t := range tables {
		if err := r.CreateTable(t.name, t.sample); err != nil {
			return nil, err
		}
	}

	atexit.Register(func() {
		if err := r.Flush(); err != nil && !errors.Is(err, ErrClosed) {
			r.log.Errorf("flush on exit: %v", err)
		}
	})
	return r, nil
}

// RunID identifies the run inside the database.
func (r *Recorder) RunID() string { return r.runID }

// Filename is the database file, empty for NewWithDB recorders.
func (r *Recorder) Filename() string { return r.filename }

// DB exposes the underlying database.
func (r *Recorder) DB() *sql.DB { return r.db }

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("entry %T is not a struct", entry)
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !isAllowedKind(field.Type.Kind()) {
			return fmt.Errorf("field %s of %T has unsupported type %s", field.Name, entry, field.Type)
		}
	}
	return nil
}

// CreateTable creates a table whose columns are the fields of sampleEntry.
func (r *Recorder) CreateTable(name string, sampleEntry any) error {
	if err := checkStructFields(sampleEntry); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if _, exists := r.tables[name]; exists {
		return fmt.Errorf("table %s already exists", name)
	}

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")
	query := `CREATE TABLE IF NOT EXISTS ` + name + ` (` + "\n\t" + fields + "\n" + `);`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	r.tables[name] = &table{structType: reflect.TypeOf(sampleEntry)}
	r.order = append(r.order, name)
	return nil
}

// Insert buffers entry for table name.
func (r *Recorder) Insert(name string, entry any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insertLocked(name, entry); err != nil {
		return err
	}
	if r.pending >= r.batchSize {
		return r.flushLocked()
	}
	return nil
}

func (r *Recorder) insertLocked(name string, entry any) error {
	if r.closed {
		return ErrClosed
	}
	t, exists := r.tables[name]
	if !exists {
		return fmt.Errorf("table %s does not exist", name)
	}
	if reflect.TypeOf(entry) != t.structType {
		return fmt.Errorf("table %s stores %s, got %T", name, t.structType, entry)
	}
	t.entries = append(t.entries, entry)
	r.pending++
	return nil
}

// Tables lists the created tables in creation order.
func (r *Recorder) Tables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// RecordRun stores the run description.
func (r *Recorder) RecordRun(layout string, seed int64, cfg trophic.EvolutionConfig) error {
	return r.Insert(RunsTable, RunRow{
		Run:                 r.runID,
		Layout:              layout,
		Seed:                seed,
		PlantGrowthRate:     cfg.PlantGrowthRate,
		HerbivoreEatingRate: cfg.HerbivoreEatingRate,
		HerbivoreDeathRate:  cfg.HerbivoreDeathRate,
		PredatorEatingRate:  cfg.PredatorEatingRate,
		PredatorDeathRate:   cfg.PredatorDeathRate,
	})
}

// Observe buffers one row per unit and one population row for the snapshot.
func (r *Recorder) Observe(_ context.Context, s trophic.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for row := range s.Cells {
		for col := range s.Cells[row] {
			for _, u := range s.Cells[row][col].Units() {
				err := r.insertLocked(UnitsTable, UnitRow{
					Run:        r.runID,
					Generation: s.Generation,
					Row:        row,
					Col:        col,
					Kind:       u.Kind.String(),
					ID:         u.ID,
					Quantity:   u.Quantity,
				})
				if err != nil {
					return err
				}
			}
		}
	}

	totals := s.Cells.Totals()
	err := r.insertLocked(PopulationsTable, PopulationRow{
		Run:        r.runID,
		Generation: s.Generation,
		Plants:     totals.Plants,
		Herbivores: totals.Herbivores,
		Predators:  totals.Predators,
		Units:      s.Cells.UnitCount(),
	})
	if err != nil {
		return err
	}

	if r.pending >= r.batchSize {
		return r.flushLocked()
	}
	return nil
}

// Flush writes every buffered row in a single transaction.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if r.pending == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, name := range r.order {
		t := r.tables[name]
		if len(t.entries) == 0 {
			continue
		}
		if err := insertAll(tx, name, t.entries); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.log.Debugf("flushed %d rows", r.pending)
	for _, t := range r.tables {
		t.entries = nil
	}
	r.pending = 0
	return nil
}

func insertAll(tx *sql.Tx, name string, entries []any) error {
	placeholders := structs.Names(entries[0])
	for i := range placeholders {
		placeholders[i] = "?"
	}
	query := "INSERT INTO " + name + " VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", name, err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		v := reflect.ValueOf(entry)
		args := make([]any, v.NumField())
		for i := range args {
			args[i] = v.Field(i).Interface()
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert into %s: %w", name, err)
		}
	}
	return nil
}

// Close flushes pending rows and closes the database.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	flushErr := r.flushLocked()
	r.closed = true
	closeErr := r.db.Close()
	return errors.Join(flushErr, closeErr)
}
