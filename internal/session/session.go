// Package session holds the per-identity dashboard state: the selected month,
// the last loaded data, the entry form and the single error slot. A Session
// serializes mutations with a busy flag and discards stale reloads.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"casalgastos/internal/core"
	applog "casalgastos/internal/log"
	"casalgastos/internal/services"
)

// ErrBusy is returned when a mutation or refresh starts while another mutation
// of the same session is still running.
var ErrBusy = errors.New("another operation is in progress")

// ErrStale is returned by a load that finished after a newer one had started.
// Its result was discarded; the returned State is the session's current one.
var ErrStale = errors.New("superseded by a newer load")

// FormState is the entry form as last submitted or reset.
type FormState struct {
	Amount        string
	CategoryID    string
	PaymentMethod string
	Date          string
	Description   string
}

// State is a point-in-time copy of a session. Slices are shared with the
// session and must not be modified.
type State struct {
	Profile      core.Profile
	Window       core.MonthWindow
	Categories   []core.Category
	Transactions []core.Transaction
	Summary      core.Summary
	Form         FormState
	Busy         bool
	LastError    string
	Loaded       bool
}

// Bootstrapper resolves an identity to its profile.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, userID string) (core.Profile, error)
}

// Ledger loads and mutates a family's data.
type Ledger interface {
	Load(ctx context.Context, familyID string, w core.MonthWindow) (services.Snapshot, error)
	Add(ctx context.Context, actor core.Profile, in services.AddInput) (core.Transaction, error)
	Delete(ctx context.Context, actor core.Profile, id string) error
}

type Session struct {
	userID string
	boot   Bootstrapper
	ledger Ledger
	logger *applog.Logger
	now    func() time.Time

	mu    sync.Mutex
	state State
	seq   uint64 // last load started
}

func newSession(userID string, boot Bootstrapper, ledger Ledger, logger *applog.Logger, now func() time.Time) *Session {
	today := core.DateOf(now())
	return &Session{
		userID: userID,
		boot:   boot,
		ledger: ledger,
		logger: logger.With(applog.FieldUserID, userID),
		now:    now,
		state: State{
			Window: core.MonthWindowFor(today.Time),
			Form:   defaultForm(today),
		},
	}
}

func defaultForm(today core.Date) FormState {
	return FormState{
		PaymentMethod: string(core.PaymentPix),
		Date:          today.String(),
	}
}

// UserID returns the identity key the session belongs to.
func (s *Session) UserID() string { return s.userID }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Bootstrap resolves the profile once per session. Later calls return the
// cached profile without touching the backend.
func (s *Session) Bootstrap(ctx context.Context) (core.Profile, error) {
	s.mu.Lock()
	if s.state.Profile.FamilyID != "" {
		p := s.state.Profile
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	p, err := s.boot.Bootstrap(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.LastError = core.UserMessage(err)
		return core.Profile{}, err
	}
	s.state.Profile = p
	return p, nil
}

// RefreshView loads window for the session's family and returns the new
// state, or the last good data with LastError set on failure. A load that
// finishes after a newer one has started is dropped and reported as ErrStale,
// so an older response never overwrites a newer one.
func (s *Session) RefreshView(ctx context.Context, w core.MonthWindow) (State, error) {
	s.mu.Lock()
	if s.state.Busy {
		st := s.state
		s.mu.Unlock()
		return st, ErrBusy
	}
	s.mu.Unlock()
	return s.load(ctx, w)
}

func (s *Session) load(ctx context.Context, w core.MonthWindow) (State, error) {
	s.mu.Lock()
	profile := s.state.Profile
	if profile.FamilyID == "" {
		st := s.state
		s.mu.Unlock()
		return st, core.ErrSessionMissing
	}
	s.seq++
	seq := s.seq
	if !s.state.Busy {
		s.state.LastError = ""
	}
	s.mu.Unlock()

	snap, err := s.ledger.Load(ctx, profile.FamilyID, w)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.logger.DebugContext(ctx, "Discarding stale load",
			applog.FieldMonth, w.Label(),
			applog.FieldSeq, seq,
			applog.FieldError, err)
		return s.state, ErrStale
	}

	if err != nil {
		s.state.LastError = core.UserMessage(err)
		s.logger.WarnContext(ctx, "Refresh failed, keeping previous data",
			applog.FieldMonth, w.Label(),
			applog.FieldSeq, seq,
			applog.FieldError, err)
		return s.state, err
	}

	s.state.Window = snap.Window
	s.state.Categories = snap.Categories
	s.state.Transactions = snap.Transactions
	s.state.Summary = snap.Summary
	s.state.Loaded = true
	s.state.Form.CategoryID = pickCategory(s.state.Form.CategoryID, snap.Categories)
	if !s.state.Busy {
		s.state.LastError = ""
	}
	return s.state, nil
}

// reload refreshes window after a mutation. No other load can start while the
// session is busy, so a stale result is not an error here.
func (s *Session) reload(ctx context.Context, w core.MonthWindow) error {
	_, err := s.load(ctx, w)
	if errors.Is(err, ErrStale) {
		return nil
	}
	return err
}

// pickCategory keeps current when it still exists, otherwise selects the first
// category.
func pickCategory(current string, cats []core.Category) string {
	if len(cats) == 0 {
		return current
	}
	if current != "" && slices.ContainsFunc(cats, func(c core.Category) bool { return c.ID == current }) {
		return current
	}
	return cats[0].ID
}

// begin takes the busy flag. It fails with ErrBusy if already taken and with
// core.ErrSessionMissing if the session has no profile yet.
func (s *Session) begin() (core.Profile, core.MonthWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Busy {
		return core.Profile{}, core.MonthWindow{}, ErrBusy
	}
	if s.state.Profile.FamilyID == "" {
		return core.Profile{}, core.MonthWindow{}, core.ErrSessionMissing
	}
	s.state.Busy = true
	s.state.LastError = ""
	return s.state.Profile, s.state.Window, nil
}

// end releases the busy flag and records err, if any.
func (s *Session) end(err error) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Busy = false
	if err != nil {
		s.state.LastError = core.UserMessage(err)
	}
	return s.state
}

// Add submits the entry form. The form is kept as typed on failure; on success
// amount and description are cleared and the current month is reloaded before
// the busy flag is released.
func (s *Session) Add(ctx context.Context, in services.AddInput) (State, error) {
	profile, window, err := s.begin()
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.state.Form = FormState(in)
	s.mu.Unlock()

	if _, err := s.ledger.Add(ctx, profile, in); err != nil {
		return s.end(err), err
	}

	s.mu.Lock()
	s.state.Form.Amount = ""
	s.state.Form.Description = ""
	s.mu.Unlock()

	err = s.reload(ctx, window)
	return s.end(err), err
}

// Delete removes a transaction and reloads the current month. Nothing is
// removed from the view until the reload confirms it.
func (s *Session) Delete(ctx context.Context, id string) (State, error) {
	profile, window, err := s.begin()
	if err != nil {
		return s.Snapshot(), err
	}

	if err := s.ledger.Delete(ctx, profile, id); err != nil {
		return s.end(err), err
	}

	err = s.reload(ctx, window)
	return s.end(err), err
}

// SetMonth records the month shown without loading it.
func (s *Session) SetMonth(w core.MonthWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Window = w
}

// ClearError empties the error slot.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastError = ""
}
