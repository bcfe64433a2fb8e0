package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
	"github.com/conneroisu/typetour/internal/session"
	"github.com/conneroisu/typetour/internal/view"
)

// maxFormBytes caps POST /code bodies.
const maxFormBytes = 1 << 20

// sessionFor returns the caller's session, creating one when the request
// has none or names an expired one. The cookie is re-issued every time so
// its lifetime slides with the server-side TTL.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}

	sess, _ := s.store.GetOrCreate(id)
	s.setCookie(w, r, sess.ID)
	return sess
}

func (s *Server) setCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.Session.TTL.Seconds()),
	})
}

// dispatch applies ev to the caller's session. A session evicted between
// lookup and dispatch is replaced once with a fresh one.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, ev session.Event) (session.Result, error) {
	sess := s.sessionFor(w, r)
	res, err := sess.Dispatch(r.Context(), ev)
	if !errors.Is(err, session.ErrSessionClosed) {
		return res, err
	}

	sess = s.store.Create()
	s.setCookie(w, r, sess.ID)
	return sess.Dispatch(r.Context(), ev)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ev := session.Show()
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.badRequest(w, r, tourerrors.NewValidationError(tourerrors.ErrCodeValidationFailed,
				fmt.Sprintf("invalid page %q: must be a positive number", raw)).
				WithContext("query", raw))
			return
		}
		ev = session.Seek(n - 1)
	}

	res, err := s.dispatch(w, r, ev)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := view.Page(res.View).Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render page", "cursor", res.View.Cursor)
	}
}

func (s *Server) handleNavigate(event func() session.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.dispatch(w, r, event()); err != nil {
			s.fail(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r, tourerrors.NewValidationError(tourerrors.ErrCodeValidationFailed,
			"invalid form: "+err.Error()))
		return
	}
	if _, ok := r.PostForm["code"]; !ok {
		s.badRequest(w, r, tourerrors.NewValidationError(tourerrors.ErrCodeValidationFailed,
			"missing form field: code"))
		return
	}

	// An optional page pins the write to the page the client shows, which
	// matters when its session was replaced since the page was drawn.
	if raw := r.PostForm.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.badRequest(w, r, tourerrors.NewValidationError(tourerrors.ErrCodeValidationFailed,
				fmt.Sprintf("invalid page %q: must be a positive number", raw)).
				WithContext("page", raw))
			return
		}
		if _, err := s.dispatch(w, r, session.Seek(n-1)); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	if _, err := s.dispatch(w, r, session.Edit(r.PostForm.Get("code"))); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePageAPI(w http.ResponseWriter, r *http.Request) {
	res, err := s.dispatch(w, r, session.Show())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, res.View)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Pages    int    `json:"pages"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:   "ok",
		Pages:    s.catalog.Len(),
		Sessions: s.store.Len(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode JSON response")
	}
}

// fail answers a failed dispatch. A cancelled request gets no body since
// the client has gone.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		return
	}
	s.logger.Error(r.Context(), err, "Session dispatch failed", "path", r.URL.Path)
	http.Error(w, "session unavailable", http.StatusServiceUnavailable)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err *tourerrors.TourError) {
	s.logger.Debug(r.Context(), "Rejected request", append(err.Fields(), "path", r.URL.Path)...)
	http.Error(w, err.Message, http.StatusBadRequest)
}
