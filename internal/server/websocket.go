package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
	"github.com/conneroisu/typetour/internal/session"
	"github.com/conneroisu/typetour/internal/view"
)

const (
	writeTimeout = 10 * time.Second
	maxMessage   = 1 << 20
)

// ClientMessage is sent by the editor script.
type ClientMessage struct {
	Type string `json:"type"`
	Code string `json:"code,omitempty"`
	Page int    `json:"page,omitempty"` // 1-based, for "seek"
}

// ServerMessage is the reply to every client message.
type ServerMessage struct {
	Type    string     `json:"type"`
	Page    *view.View `json:"page,omitempty"`
	Cursor  *int       `json:"cursor,omitempty"`
	Message string     `json:"message,omitempty"`
}

func pageMessage(v view.View) ServerMessage {
	return ServerMessage{Type: "page", Page: &v}
}

func errorMessage(format string, args ...interface{}) ServerMessage {
	return ServerMessage{Type: "error", Message: fmt.Sprintf(format, args...)}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		s.logger.Warn(r.Context(), nil, "Rejected websocket origin", "origin", r.Header.Get("Origin"))
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	sess := s.sessionFor(w, r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedHosts(),
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxMessage)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(s.baseCtx, cancel)
	defer stop()

	logger := s.logger.With("session_id", sess.ID)
	logger.Debug(ctx, "WebSocket connected")

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				logger.Debug(ctx, "WebSocket closed")
			default:
				if ctx.Err() == nil {
					logger.Warn(ctx, err, "WebSocket read failed")
				}
			}
			return
		}

		var reply ServerMessage
		if typ != websocket.MessageText {
			reply = errorMessage("binary messages are not supported")
		} else {
			reply = s.handleMessage(ctx, sess, data)
		}

		writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
		err = wsjson.Write(writeCtx, conn, reply)
		cancelWrite()
		if err != nil {
			logger.Warn(ctx, err, "WebSocket write failed")
			return
		}
	}
}

// handleMessage applies one client message to sess. Malformed messages get
// an error reply and leave the connection open.
func (s *Server) handleMessage(ctx context.Context, sess *session.Session, data []byte) ServerMessage {
	ev, err := decodeMessage(data)
	if err != nil {
		var terr *tourerrors.TourError
		if !errors.As(err, &terr) {
			return errorMessage("%v", err)
		}
		s.logger.Debug(ctx, "Rejected websocket message", terr.Fields()...)
		if terr.Cause != nil {
			return errorMessage("%s: %v", terr.Message, terr.Cause)
		}
		return errorMessage("%s", terr.Message)
	}

	// Socket traffic bypasses the cookie lookup, so keep the session from
	// looking idle to eviction and TTL cleanup.
	s.store.Touch(sess.ID)

	res, err := sess.Dispatch(ctx, ev)
	if errors.Is(err, session.ErrSessionClosed) {
		return errorMessage("session expired, reload the page")
	}
	if err != nil {
		return errorMessage("%v", err)
	}

	if ev.Kind == session.KindEdit {
		cursor := res.View.Cursor
		return ServerMessage{Type: "saved", Cursor: &cursor}
	}
	return pageMessage(res.View)
}

func decodeMessage(data []byte) (session.Event, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return session.Event{}, tourerrors.NewTransportError(tourerrors.ErrCodeBadMessage, "malformed message", err)
	}

	switch msg.Type {
	case "show":
		return session.Show(), nil
	case "advance":
		return session.Advance(), nil
	case "retreat":
		return session.Retreat(), nil
	case "seek":
		if msg.Page < 1 {
			return session.Event{}, tourerrors.NewTransportError(tourerrors.ErrCodeBadMessage,
				fmt.Sprintf("seek needs a page of 1 or more, got %d", msg.Page), nil).
				WithContext("requested_page", msg.Page)
		}
		return session.Seek(msg.Page - 1), nil
	case "edit":
		return session.Edit(msg.Code), nil
	case "":
		return session.Event{}, tourerrors.NewTransportError(tourerrors.ErrCodeBadMessage, "message has no type", nil)
	default:
		return session.Event{}, tourerrors.NewTransportError(tourerrors.ErrCodeBadMessage,
			fmt.Sprintf("unknown message type %q", msg.Type), nil).
			WithContext("message_type", msg.Type)
	}
}

// allowedHosts lists the origin hosts a websocket may come from besides the
// request's own host: the configured address, loopback on the same port,
// and server.allowed_origins.
func (s *Server) allowedHosts() []string {
	port := strconv.Itoa(s.config.Server.Port)
	hosts := []string{
		s.config.Server.Host + ":" + port,
		"localhost:" + port,
		"127.0.0.1:" + port,
	}
	for _, origin := range s.config.Server.AllowedOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		} else {
			hosts = append(hosts, origin)
		}
	}
	return hosts
}

// checkOrigin validates the request origin for security
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}
	if strings.EqualFold(originURL.Host, r.Host) {
		return true
	}

	for _, allowed := range s.allowedHosts() {
		if strings.EqualFold(originURL.Host, allowed) {
			return true
		}
	}
	return false
}
