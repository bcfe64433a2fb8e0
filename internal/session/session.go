// Package session runs one tour per browser session.
//
// Every session owns a private copy of the catalog and a navigation
// controller. A single goroutine per session applies events one at a time,
// so the catalog and cursor are only ever touched from that goroutine. HTTP
// handlers and websocket readers talk to it through Dispatch.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/conneroisu/typetour/internal/catalog"
	"github.com/conneroisu/typetour/internal/logging"
	"github.com/conneroisu/typetour/internal/navigation"
	"github.com/conneroisu/typetour/internal/view"
)

var (
	// ErrSessionClosed is returned when dispatching to a stopped session.
	ErrSessionClosed = errors.New("session closed")

	// ErrUnknownEvent is returned for an event kind the loop does not know.
	ErrUnknownEvent = errors.New("unknown event")
)

// Kind identifies what an event asks the session to do.
type Kind int

const (
	KindShow Kind = iota
	KindAdvance
	KindRetreat
	KindSeek
	KindEdit
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindShow:
		return "show"
	case KindAdvance:
		return "advance"
	case KindRetreat:
		return "retreat"
	case KindSeek:
		return "seek"
	case KindEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Event is a single user action.
type Event struct {
	Kind  Kind
	Index int    // KindSeek, 0-based
	Code  string // KindEdit
}

// Show, Advance, Retreat, Seek, and Edit build events.
func Show() Event { return Event{Kind: KindShow} }

func Advance() Event { return Event{Kind: KindAdvance} }

func Retreat() Event { return Event{Kind: KindRetreat} }

func Seek(index int) Event { return Event{Kind: KindSeek, Index: index} }

func Edit(code string) Event { return Event{Kind: KindEdit, Code: code} }

// Result is the state after an event was applied.
type Result struct {
	View  view.View
	Moved bool
}

type response struct {
	result Result
	err    error
}

type request struct {
	event Event
	reply chan response
}

// Session is one visitor's private tour.
type Session struct {
	ID        string
	CreatedAt time.Time

	// lastAccess is guarded by the owning Store's mutex.
	lastAccess time.Time

	nav      *navigation.Controller
	opts     view.Options
	logger   logging.Logger
	requests chan request
	done     chan struct{}
	stopOnce sync.Once
}

func newSession(id string, c *catalog.Catalog, opts view.Options, logger logging.Logger, now time.Time) *Session {
	s := &Session{
		ID:         id,
		CreatedAt:  now,
		lastAccess: now,
		nav:        navigation.New(c),
		opts:       opts,
		logger:     logger.With("session_id", id),
		requests:   make(chan request),
		done:       make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case req := <-s.requests:
			result, err := s.apply(req.event)
			req.reply <- response{result: result, err: err}
		}
	}
}

// apply runs on the session goroutine only.
func (s *Session) apply(ev Event) (Result, error) {
	before := s.nav.Cursor()

	switch ev.Kind {
	case KindShow:
	case KindAdvance:
		s.nav.Advance()
	case KindRetreat:
		s.nav.Retreat()
	case KindSeek:
		s.nav.Seek(ev.Index)
	case KindEdit:
		s.nav.SetCode(ev.Code)
	default:
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownEvent, ev.Kind)
	}

	moved := s.nav.Cursor() != before
	if moved {
		s.logger.Debug(context.Background(), "Navigated", "event", ev.Kind.String(), "cursor", s.nav.Cursor())
	}

	return Result{View: view.Project(s.nav, s.opts), Moved: moved}, nil
}

// Dispatch hands ev to the session goroutine and waits for the result.
func (s *Session) Dispatch(ctx context.Context, ev Event) (Result, error) {
	reply := make(chan response, 1)

	select {
	case s.requests <- request{event: ev, reply: reply}:
	case <-s.done:
		return Result{}, ErrSessionClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case resp := <-reply:
		return resp.result, resp.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Close stops the session goroutine. It is safe to call more than once.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// Done is closed once the session has been stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
