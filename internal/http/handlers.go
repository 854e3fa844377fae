package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"casalgastos/internal/auth"
	applog "casalgastos/internal/log"
)

type ctxKey int

const identityKey ctxKey = iota

// readyTimeout bounds the backend ping of /readyz.
const readyTimeout = 2 * time.Second

func identityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePage renders a template and writes it with status. Rendering errors
// become a plain 500.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	body, err := s.render(name, data)
	if err != nil {
		s.events.LogError(r.Context(), "Template render failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()))
		http.Error(w, "Erro interno", http.StatusInternalServerError)
		return
	}
	b.BodyHTML(body).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether the backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := s.backend.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
			applog.FieldComponent, applog.ComponentBackend,
			applog.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex shows the token form, or sends a signed-in caller to the dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.verifier.Verify(auth.TokenFromRequest(r)); err == nil {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.writePage(w, r, NewHTMXResponse(), "index.html", indexView{})
}

// handleLogin exchanges a pasted token for the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.writePage(w, r, NewHTMXResponse().Status(http.StatusBadRequest), "index.html",
			indexView{Error: "Requisição inválida"})
		return
	}

	id, err := s.verifier.Verify(r.PostForm.Get("token"))
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Login rejected",
			applog.FieldComponent, applog.ComponentAuth,
			applog.FieldClientIP, extractClientIP(r),
			applog.FieldError, err)
		s.writePage(w, r, NewHTMXResponse().Status(http.StatusUnauthorized), "index.html",
			indexView{Error: "Token inválido ou expirado"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    r.PostForm.Get("token"),
		Path:     "/",
		Expires:  id.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Signed in",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldUserID, id.UserID)
	http.Redirect(w, r, "/app", http.StatusSeeOther)
}

// handleLogout clears the cookie and forgets the in-memory session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id, err := s.verifier.Verify(auth.TokenFromRequest(r)); err == nil {
		s.sessions.Drop(id.UserID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// requireSession rejects requests without a valid token. htmx requests get
// HX-Redirect so the whole page navigates instead of swapping the login form
// into a fragment.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.verifier.Verify(auth.TokenFromRequest(r))
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				applog.FromContext(r.Context()).DebugContext(r.Context(), "Invalid session token",
					applog.FieldComponent, applog.ComponentAuth, applog.FieldError, err)
			}
			if isHTMX(r) {
				NewHTMXResponse().Redirect("/").Status(http.StatusUnauthorized).Write(w)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		logger := applog.FromContext(r.Context()).With(applog.FieldUserID, id.UserID)
		ctx := applog.NewContext(context.WithValue(r.Context(), identityKey, id), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
