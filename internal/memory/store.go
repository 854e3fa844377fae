// Package memory is a process-local data backend. It is used for local runs
// without a database and as the backend double in service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"casalgastos/internal/core"
)

type Store struct {
	mu       sync.Mutex
	profiles map[string]core.Profile
	cats     map[string][]core.Category // by family
	txs      []entry
	seq      int64
	now      func() time.Time
}

type entry struct {
	tx  core.Transaction
	seq int64
}

func NewStore() *Store {
	return &Store{
		profiles: map[string]core.Profile{},
		cats:     map[string][]core.Category{},
		now:      time.Now,
	}
}

// Seed registers a profile with the given categories, bypassing provisioning.
// Categories without an ID get one.
func (s *Store) Seed(p core.Profile, cats ...core.Category) []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	out := make([]core.Category, 0, len(cats))
	for _, c := range cats {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.FamilyID = p.FamilyID
		out = append(out, c)
	}
	s.cats[p.FamilyID] = append(s.cats[p.FamilyID], out...)
	return out
}

func (s *Store) GetProfile(_ context.Context, userID string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return core.Profile{}, core.ErrNotFound
	}
	return p, nil
}

func (s *Store) EnsureProfileAndFamily(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; ok {
		return nil
	}
	familyID := uuid.NewString()
	s.profiles[userID] = core.Profile{ID: userID, FamilyID: familyID}
	for _, c := range core.DefaultCategories() {
		c.ID = uuid.NewString()
		c.FamilyID = familyID
		s.cats[familyID] = append(s.cats[familyID], c)
	}
	return nil
}

func (s *Store) ListCategories(_ context.Context, familyID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Category(nil), s.cats[familyID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, familyID string, w core.MonthWindow) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []entry
	for _, e := range s.txs {
		if e.tx.FamilyID == familyID && w.Contains(e.tx.Date) {
			rows = append(rows, e)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].tx.Date.Equal(rows[j].tx.Date.Time) {
			return rows[i].tx.Date.After(rows[j].tx.Date.Time)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]core.Transaction, len(rows))
	for i, e := range rows {
		out[i] = e.tx
	}
	return out, nil
}

func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownsCategory(tx.FamilyID, tx.CategoryID) {
		return core.Transaction{}, core.ErrAccessDenied
	}
	tx.ID = uuid.NewString()
	tx.CreatedAt = s.now().UTC()
	s.seq++
	s.txs = append(s.txs, entry{tx: tx, seq: s.seq})
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, familyID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.txs {
		if e.tx.ID == id && e.tx.FamilyID == familyID {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ownsCategory(familyID, categoryID string) bool {
	for _, c := range s.cats[familyID] {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}
