// Package dataset holds the active record set of the running process.
package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/google/uuid"
)

// ImportRun describes the ingestion pass that produced the active set.
type ImportRun struct {
	RunID            string           `json:"run_id"`
	Source           string           `json:"source"`
	ImportedAt       time.Time        `json:"imported_at"`
	SourceRowCount   int              `json:"source_row_count"`
	AcceptedRowCount int              `json:"accepted_row_count"`
	DetectedColumns  domain.ColumnMap `json:"detected_columns"`
}

// Snapshot is an immutable view of the active set.
type Snapshot struct {
	Run     *ImportRun
	Records []domain.Transaction
}

// Store keeps the records of the latest successful import. Each import
// replaces the set wholesale.
type Store struct {
	mu      sync.RWMutex
	run     *ImportRun
	records []domain.Transaction

	// importMu serializes ingestion passes.
	importMu sync.Mutex

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Replace installs the records of result as the active set and returns the
// new run.
func (s *Store) Replace(source string, result *domain.IngestionResult) *ImportRun {
	run := &ImportRun{
		RunID:            uuid.New().String(),
		Source:           source,
		ImportedAt:       s.now().UTC(),
		SourceRowCount:   result.SourceRowCount,
		AcceptedRowCount: result.AcceptedRowCount,
		DetectedColumns:  result.DetectedColumns,
	}
	records := append([]domain.Transaction(nil), result.Records...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
	s.records = records
	return run
}

// Records returns a copy of the active set.
func (s *Store) Records() []domain.Transaction {
	return s.Snapshot().Records
}

// Snapshot returns the active run together with a copy of its records.
// Run is nil before the first import.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Records: append([]domain.Transaction{}, s.records...)}
	if s.run != nil {
		run := *s.run
		snap.Run = &run
	}
	return snap
}

// Import runs ingest while holding the import lock and, on success, replaces
// the active set. A failed pass leaves the previous set in place.
func (s *Store) Import(ctx context.Context, source string, ingest func(ctx context.Context) (*domain.IngestionResult, error)) (*ImportRun, error) {
	s.importMu.Lock()
	defer s.importMu.Unlock()

	result, err := ingest(ctx)
	if err != nil {
		return nil, err
	}
	return s.Replace(source, result), nil
}
