package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
	"github.com/conneroisu/typetour/internal/session"
	"github.com/conneroisu/typetour/internal/testutils"
)

func dialTour(t *testing.T, ts *httptest.Server, client *http.Client, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", &websocket.DialOptions{
		HTTPClient: client,
		HTTPHeader: header,
	})
}

func exchange(t *testing.T, conn *websocket.Conn, msg interface{}) ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, wsjson.Write(ctx, conn, msg))
	var reply ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	return reply
}

func TestWebSocketRejectsForeignOrigins(t *testing.T) {
	_, ts, client := setupTestServer(t)

	for _, origin := range []string{"", "http://evil.example.com", "file://local", "://bad"} {
		conn, resp, err := dialTour(t, ts, client, origin)
		require.Error(t, err, origin)
		if conn != nil {
			conn.CloseNow()
		}
		require.NotNil(t, resp, origin)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, origin)
	}
}

func TestWebSocketNavigationAndEdit(t *testing.T) {
	_, ts, client := setupTestServer(t)

	conn, _, err := dialTour(t, ts, client, ts.URL)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	reply := exchange(t, conn, ClientMessage{Type: "show"})
	require.Equal(t, "page", reply.Type)
	require.NotNil(t, reply.Page)
	assert.Equal(t, "1 / 3", reply.Page.Position)

	reply = exchange(t, conn, ClientMessage{Type: "retreat"})
	assert.Equal(t, 0, reply.Page.Cursor)

	reply = exchange(t, conn, ClientMessage{Type: "advance"})
	assert.Equal(t, "Interfaces", reply.Page.Title)

	reply = exchange(t, conn, ClientMessage{Type: "edit", Code: "interface B {}"})
	assert.Equal(t, "saved", reply.Type)
	require.NotNil(t, reply.Cursor)
	assert.Equal(t, 1, *reply.Cursor)
	assert.Nil(t, reply.Page)

	reply = exchange(t, conn, ClientMessage{Type: "seek", Page: 3})
	assert.Equal(t, "3 / 3", reply.Page.Position)
	assert.False(t, reply.Page.Next.Enabled)

	reply = exchange(t, conn, ClientMessage{Type: "retreat"})
	assert.Equal(t, "interface B {}", reply.Page.Code)

	// The websocket and the form endpoints share the cookie session.
	v := getPage(t, client, ts.URL)
	assert.Equal(t, 1, v.Cursor)
	assert.Equal(t, "interface B {}", v.Code)
}

func TestWebSocketTrafficKeepsSessionFromEviction(t *testing.T) {
	cfg := testutils.CreateTestConfig(t)
	cfg.Session.MaxSessions = 2
	srv, ts, editorClient := setupTestServerWithConfig(t, cfg)

	resp, err := editorClient.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	conn, _, err := dialTour(t, ts, editorClient, ts.URL)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// A second visitor arrives after the editor connected.
	reader := newTestClient(t)
	getPage(t, reader, ts.URL)
	readerID := cookieSessionID(t, reader, ts.URL)

	// The editor keeps working over the socket only.
	assert.Equal(t, "page", exchange(t, conn, ClientMessage{Type: "advance"}).Type)
	assert.Equal(t, "saved", exchange(t, conn, ClientMessage{Type: "edit", Code: "x=1"}).Type)

	// A third visitor pushes the store past capacity.
	getPage(t, newTestClient(t), ts.URL)
	assert.Equal(t, 2, srv.Sessions())

	reply := exchange(t, conn, ClientMessage{Type: "advance"})
	require.Equal(t, "page", reply.Type, reply.Message)
	reply = exchange(t, conn, ClientMessage{Type: "retreat"})
	require.Equal(t, "page", reply.Type, reply.Message)
	assert.Equal(t, 1, reply.Page.Cursor)
	assert.Equal(t, "x=1", reply.Page.Code)

	// The idle reader was the one evicted and gets a new session.
	getPage(t, reader, ts.URL)
	assert.NotEqual(t, readerID, cookieSessionID(t, reader, ts.URL))
	assert.Equal(t, 2, srv.Sessions())
}

func cookieSessionID(t *testing.T, client *http.Client, base string) string {
	t.Helper()
	u, err := url.Parse(base)
	require.NoError(t, err)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	t.Fatalf("no %s cookie", sessionCookie)
	return ""
}

func TestWebSocketBadMessagesKeepConnectionOpen(t *testing.T) {
	_, ts, client := setupTestServer(t)

	conn, _, err := dialTour(t, ts, client, ts.URL)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))
	var reply ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, "error", reply.Type)
	assert.Contains(t, reply.Message, "malformed message")

	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, []byte{1, 2, 3}))
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, "error", reply.Type)

	testCases := []struct {
		msg      ClientMessage
		contains string
	}{
		{ClientMessage{}, "no type"},
		{ClientMessage{Type: "jump"}, `unknown message type "jump"`},
		{ClientMessage{Type: "seek"}, "seek needs a page"},
	}
	for _, tc := range testCases {
		reply := exchange(t, conn, tc.msg)
		assert.Equal(t, "error", reply.Type)
		assert.Contains(t, reply.Message, tc.contains)
	}

	reply = exchange(t, conn, ClientMessage{Type: "show"})
	assert.Equal(t, "page", reply.Type)
}

func TestWebSocketClosedByShutdown(t *testing.T) {
	srv, ts, client := setupTestServer(t)

	conn, _, err := dialTour(t, ts, client, ts.URL)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, srv.Shutdown(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err = conn.Read(ctx)
	assert.Error(t, err)
	assert.NoError(t, ctx.Err())
}

func TestCheckOrigin(t *testing.T) {
	srv := New(testutils.CreateTestConfig(t), testutils.CreateTestCatalog(t), nil)
	defer srv.Shutdown(context.Background())
	srv.config.Server.AllowedOrigins = []string{"https://docs.example.com"}

	testCases := []struct {
		origin  string
		allowed bool
	}{
		{"http://example.com", true},
		{"http://localhost:8080", true},
		{"http://127.0.0.1:8080", true},
		{"http://LOCALHOST:8080", true},
		{"https://docs.example.com", true},
		{"http://localhost:3000", false},
		{"http://evil.example.com", false},
		{"ws://localhost:8080", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.allowed, srv.checkOrigin(req))
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	ev, err := decodeMessage([]byte(`{"type":"seek","page":3}`))
	require.NoError(t, err)
	assert.Equal(t, session.KindSeek, ev.Kind)
	assert.Equal(t, 2, ev.Index)

	ev, err = decodeMessage([]byte(`{"type":"edit","code":"let b = 2;"}`))
	require.NoError(t, err)
	assert.Equal(t, session.Edit("let b = 2;"), ev)

	for _, raw := range []string{`{`, `{}`, `{"type":"jump"}`, `{"type":"seek","page":0}`} {
		_, err := decodeMessage([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, tourerrors.IsType(err, tourerrors.ErrorTypeTransport), raw)
		assert.Equal(t, tourerrors.ErrCodeBadMessage, tourerrors.GetCode(err), raw)
	}
}
