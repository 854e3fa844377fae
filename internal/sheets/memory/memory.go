// Package memory is an in-process spreadsheet mirror for local runs and tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"casalgastos/internal/core"
	ports "casalgastos/internal/sheets"
)

var _ ports.Mirror = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows [][]string
}

// New returns a mirror holding only the header row.
func New() *Store {
	return &Store{rows: [][]string{append([]string(nil), ports.Header...)}}
}

func (s *Store) Upsert(_ context.Context, tx core.Transaction) error {
	if tx.ID == "" {
		return errors.New("transaction id is required")
	}
	row := ports.Row(tx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(tx.ID); i >= 0 {
		s.rows[i] = row
		return nil
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.rows = append(s.rows[:i], s.rows[i+1:]...)
	}
	return nil
}

// Rows returns a copy of the sheet, header first.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (s *Store) index(id string) int {
	for i := 1; i < len(s.rows); i++ {
		if s.rows[i][0] == id {
			return i
		}
	}
	return -1
}
