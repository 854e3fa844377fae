package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casalgastos/internal/core"
	applog "casalgastos/internal/log"
	"casalgastos/internal/session"
)

const msgBusy = "Aguarde a operação em andamento"

// sessionFor returns the bootstrapped session of the caller. On failure it
// writes the error response and returns nil.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	id, ok := identityFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	sess := s.sessions.Get(id.UserID)
	if _, err := sess.Bootstrap(r.Context()); err != nil {
		s.events.LogError(r.Context(), "Bootstrap failed", err, applog.ComponentSession, applog.OpBootstrap,
			applog.NewFields().WithFamily(id.UserID, ""))
		if isHTMX(r) {
			ErrorResponse(statusFor(err), core.UserMessage(err)).Write(w)
		} else {
			s.writePage(w, r, NewHTMXResponse().Status(statusFor(err)), "index.html",
				indexView{Error: core.UserMessage(err)})
		}
		return nil
	}
	return sess
}

// count records the outcome of a session operation in the metrics.
func (s *Server) count(err error) {
	var (
		ve *core.ValidationError
		de *core.DataFetchError
	)
	switch {
	case err == nil:
	case errors.As(err, &ve):
		s.metrics.validationErrors.Add(1)
	case errors.Is(err, session.ErrBusy):
		s.metrics.busyRejections.Add(1)
	case errors.As(err, &de):
		s.metrics.fetchErrors.Add(1)
	}
}

func (s *Server) logFailure(r *http.Request, msg string, op string, err error) {
	if statusFor(err) < http.StatusInternalServerError {
		applog.FromContext(r.Context()).InfoContext(r.Context(), msg,
			applog.FieldOperation, op, applog.FieldError, err)
		return
	}
	s.events.LogError(r.Context(), msg, err, applog.ComponentHTTP, op,
		applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()))
}

// writeDashboard renders the dashboard fragment, or the full page when page is set.
func (s *Server) writeDashboard(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, st session.State, page bool) {
	w.Header().Set("Cache-Control", "no-store")
	view := newDashboardView(st, core.DateOf(s.now()))
	name := "dashboard"
	if page {
		name = "app.html"
	}
	s.writePage(w, r, b, name, view)
}

// handleApp serves the full dashboard page for the requested month.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}
	st, err := sess.RefreshView(r.Context(), ParseMonthParam(r.URL.Query(), s.now()))
	if errors.Is(err, session.ErrStale) {
		// a newer navigation already loaded; st is its state
		err = nil
	}
	s.count(err)
	if err != nil {
		s.logFailure(r, "Dashboard load failed", applog.OpLoad, err)
		if errors.Is(err, session.ErrBusy) {
			st.LastError = msgBusy
		}
	}
	// The page is always shown; the banner carries any failure.
	s.writeDashboard(w, r, NewHTMXResponse(), st, true)
}

// handleRefresh reloads the dashboard fragment, usually for another month.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}
	window := ParseMonthParam(r.URL.Query(), s.now())
	st, err := sess.RefreshView(r.Context(), window)
	if errors.Is(err, session.ErrStale) {
		// A newer refresh owns #dashboard; leave it alone.
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Dropping superseded refresh",
			applog.FieldMonth, window.Label())
		NewHTMXResponse().Header("HX-Reswap", "none").Status(http.StatusNoContent).Write(w)
		return
	}
	s.count(err)
	if err != nil {
		s.logFailure(r, "Refresh failed", applog.OpLoad, err)
		if errors.Is(err, session.ErrBusy) {
			st.LastError = msgBusy
		}
	}
	s.writeDashboard(w, r, NewHTMXResponse().Status(statusFor(err)), st, false)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Requisição inválida").Write(w)
		return
	}

	window := ParseMonthParam(r.URL.Query(), s.now())
	sess.SetMonth(window)

	st, err := sess.Add(r.Context(), parser.AddInput())
	s.count(err)

	var de *core.DataFetchError
	created := err == nil || errors.As(err, &de)
	b := NewHTMXResponse().Status(statusFor(err))
	if created {
		s.metrics.transactionsCreated.Add(1)
		b.TriggerTransactionCreated(window.Label()).TriggerFormReset()
	}
	if err != nil {
		s.logFailure(r, "Add transaction failed", applog.OpInsert, err)
		if errors.Is(err, session.ErrBusy) {
			st.LastError = msgBusy
		}
	}
	s.writeDashboard(w, r, b, st, false)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess == nil {
		return
	}

	window := ParseMonthParam(r.URL.Query(), s.now())
	sess.SetMonth(window)

	st, err := sess.Delete(r.Context(), chi.URLParam(r, "id"))
	s.count(err)

	var de *core.DataFetchError
	b := NewHTMXResponse().Status(statusFor(err))
	if err == nil || errors.As(err, &de) {
		s.metrics.transactionsDeleted.Add(1)
		b.TriggerTransactionDeleted(window.Label())
	}
	if err != nil {
		s.logFailure(r, "Delete transaction failed", applog.OpDelete, err)
		if errors.Is(err, session.ErrBusy) {
			st.LastError = msgBusy
		}
	}
	s.writeDashboard(w, r, b, st, false)
}
