package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/callsys/callboard/internal/broadcast"
	"github.com/callsys/callboard/internal/metrics"
	"github.com/callsys/callboard/internal/repository/board"
	boardredis "github.com/callsys/callboard/internal/repository/board/redis"
	"github.com/callsys/callboard/internal/repository/connection/inmemory"
	"github.com/callsys/callboard/internal/service/auth"
	boardsvc "github.com/callsys/callboard/internal/service/board"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	return newWrappedTestServer(t, func(s iBoardService) iBoardService { return s })
}

// newWrappedTestServer lets a test intercept board service calls made by the
// controller.
func newWrappedTestServer(t *testing.T, wrap func(iBoardService) iBoardService) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	repo, err := boardredis.NewRepo(ctx, rc, logger, &boardredis.Config{Observer: m})
	require.NoError(t, err)

	b := broadcast.New(rc, inmemory.NewRepo[*broadcast.Client](logger), m, logger, nil)
	require.NoError(t, b.Start(ctx))

	boardService := boardsvc.NewService(repo, b, logger, nil)
	authService := auth.NewService(repo, boardService, logger, &auth.Config{
		Secret:     "test-secret",
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, authService.BootstrapSuperAdmin(ctx, "root", "rootpassword"))
	_, err = authService.CreateUser(ctx, &auth.CreateUserParams{
		Username: "alice",
		Password: "alicepassword",
		Role:     board.RoleAdmin,
		Actor:    "root",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewController(wrap(boardService), authService, b, m, logger, nil).GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func post(t *testing.T, srv *httptest.Server, path string, session *http.Cookie, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)

	return resp.StatusCode, out
}

func login(t *testing.T, srv *httptest.Server, username, password string) *http.Cookie {
	t.Helper()

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)

	resp, err := srv.Client().Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			assert.True(t, cookie.HttpOnly)
			return cookie
		}
	}

	t.Fatal("no session cookie")
	return nil
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	status, _ := post(t, srv, "/api/auth/login", nil, map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = post(t, srv, "/api/auth/login", nil, map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)

	session := login(t, srv, "alice", "alicepassword")
	assert.NotEmpty(t, session.Value)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)

	status, _ := post(t, srv, "/api/admin/number/change", nil, map[string]string{"direction": "next"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = post(t, srv, "/api/admin/number/change", &http.Cookie{Name: sessionCookieName, Value: "forged"}, map[string]string{"direction": "next"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSuperadminRoutesRejectAdmins(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv, "alice", "alicepassword")

	status, _ := post(t, srv, "/api/superadmin/users/list", session, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = post(t, srv, "/api/superadmin/layout/load", session, nil)
	assert.Equal(t, http.StatusForbidden, status)

	root := login(t, srv, "root", "rootpassword")
	status, body := post(t, srv, "/api/superadmin/users/list", root, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["users"], 2)
}

func TestNumberRoutes(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv, "alice", "alicepassword")

	status, body := post(t, srv, "/api/admin/number/change", session, map[string]string{"direction": "next"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["number"])

	status, body = post(t, srv, "/api/admin/number/change", session, map[string]string{"direction": "prev"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.0, body["number"])

	status, body = post(t, srv, "/api/admin/number/change", session, map[string]string{"direction": "prev"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.0, body["number"])

	status, _ = post(t, srv, "/api/admin/number/change", session, map[string]string{"direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, srv, "/api/admin/number/set", session, map[string]int{"number": -1})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, srv, "/api/admin/number/set", session, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = post(t, srv, "/api/admin/number/set", session, map[string]any{"number": 1.5})
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, body["errors"], 1)
	assert.Equal(t, "number", body["errors"].([]any)[0].(map[string]any)["field"])

	status, _ = post(t, srv, "/api/admin/passed/add", session, map[string]any{"number": "7"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = post(t, srv, "/api/admin/number/set", session, map[string]int{"number": 0})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.0, body["number"])
}

func TestFeaturedRoutes(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv, "alice", "alicepassword")

	status, _ := post(t, srv, "/api/admin/featured/add", session, map[string]string{"linkText": "Bad", "linkUrl": "ftp://bad"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := post(t, srv, "/api/admin/featured/add", session, map[string]string{"linkText": "Promo", "linkUrl": "https://x.test"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["featuredContents"], 1)

	status, _ = post(t, srv, "/api/admin/featured/remove-index", session, map[string]int{"index": 3})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = post(t, srv, "/api/admin/featured/remove", session, map[string]string{"linkText": "Promo", "linkUrl": "https://x.test"})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["featuredContents"])
}

func TestUserRoutes(t *testing.T) {
	srv := newTestServer(t)
	root := login(t, srv, "root", "rootpassword")

	status, _ := post(t, srv, "/api/superadmin/users/create", root, map[string]string{"username": "alice", "password": "longenough", "role": "admin"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = post(t, srv, "/api/superadmin/users/create", root, map[string]string{"username": "bob", "password": "short", "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, srv, "/api/superadmin/users/create", root, map[string]string{"username": "bob", "password": "longenough", "role": "admin"})
	assert.Equal(t, http.StatusCreated, status)

	status, _ = post(t, srv, "/api/superadmin/users/update-role", root, map[string]string{"username": "root", "newRole": "admin"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = post(t, srv, "/api/superadmin/users/delete", root, map[string]string{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = post(t, srv, "/api/superadmin/users/delete", root, map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusOK, status)
}

func TestLayoutRoutes(t *testing.T) {
	srv := newTestServer(t)
	root := login(t, srv, "root", "rootpassword")

	status, body := post(t, srv, "/api/superadmin/layout/load", root, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["layout"])

	status, _ = post(t, srv, "/api/superadmin/layout/save", root, map[string]any{"layout": map[string]int{"x": 1}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, srv, "/api/superadmin/layout/save", root, map[string]any{"layout": []map[string]int{{"x": 1}}})
	require.Equal(t, http.StatusOK, status)

	status, body = post(t, srv, "/api/superadmin/layout/load", root, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{map[string]any{"x": 1.0}}, body["layout"])
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialWS(t *testing.T, srv *httptest.Server, session *http.Cookie) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	if session != nil {
		header.Set("Cookie", session.Name+"="+session.Value)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

var snapshotTypes = []string{
	boardsvc.EventUpdate,
	boardsvc.EventUpdatePassed,
	boardsvc.EventUpdateFeaturedContents,
	boardsvc.EventUpdateTimestamp,
	boardsvc.EventUpdateSoundSetting,
	boardsvc.EventUpdatePublicStatus,
}

func TestWSSnapshotOnConnect(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv, nil)

	for _, want := range snapshotTypes {
		f := readFrame(t, conn)
		assert.Equal(t, want, f.Type)
		switch f.Type {
		case boardsvc.EventUpdate:
			assert.JSONEq(t, "0", string(f.Payload))
		case boardsvc.EventUpdatePassed, boardsvc.EventUpdateFeaturedContents:
			assert.JSONEq(t, "[]", string(f.Payload))
		case boardsvc.EventUpdateSoundSetting, boardsvc.EventUpdatePublicStatus:
			assert.JSONEq(t, "true", string(f.Payload))
		}
	}
}

func TestWSAdminReceivesLogs(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv, "root", "rootpassword")
	conn := dialWS(t, srv, session)

	for range snapshotTypes {
		readFrame(t, conn)
	}

	f := readFrame(t, conn)
	assert.Equal(t, boardsvc.EventInitAdminLogs, f.Type)
	var logs []string
	require.NoError(t, json.Unmarshal(f.Payload, &logs))
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], "(root) user alice created (admin)")
}

func TestWSLiveUpdates(t *testing.T) {
	srv := newTestServer(t)
	display := dialWS(t, srv, nil)
	for range snapshotTypes {
		readFrame(t, display)
	}

	session := login(t, srv, "alice", "alicepassword")
	status, _ := post(t, srv, "/api/admin/number/change", session, map[string]string{"direction": "next"})
	require.Equal(t, http.StatusOK, status)

	f := readFrame(t, display)
	assert.Equal(t, boardsvc.EventUpdate, f.Type, "display clients never see admin log events")
	assert.JSONEq(t, "1", string(f.Payload))

	f = readFrame(t, display)
	assert.Equal(t, boardsvc.EventUpdateTimestamp, f.Type)
}

// advancingBoard commits a Next right after the first snapshot is read, before
// the controller has queued it.
type advancingBoard struct {
	iBoardService
	once sync.Once
}

func (b *advancingBoard) Snapshot(ctx context.Context) (board.Snapshot, error) {
	snapshot, err := b.iBoardService.Snapshot(ctx)
	if err != nil {
		return snapshot, err
	}

	b.once.Do(func() {
		if _, err := b.iBoardService.Next(ctx, "alice"); err == nil {
			time.Sleep(100 * time.Millisecond)
		}
	})

	return snapshot, nil
}

func TestWSSnapshotIsNotOverwrittenByOlderState(t *testing.T) {
	srv := newWrappedTestServer(t, func(s iBoardService) iBoardService {
		return &advancingBoard{iBoardService: s}
	})
	conn := dialWS(t, srv, nil)

	for _, want := range snapshotTypes {
		f := readFrame(t, conn)
		require.Equal(t, want, f.Type)
		if f.Type == boardsvc.EventUpdate {
			assert.JSONEq(t, "0", string(f.Payload))
		}
	}

	f := readFrame(t, conn)
	assert.Equal(t, boardsvc.EventUpdate, f.Type)
	assert.JSONEq(t, "1", string(f.Payload))
	assert.Equal(t, boardsvc.EventUpdateTimestamp, readFrame(t, conn).Type)
}

func TestWSGetState(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv, nil)
	for range snapshotTypes {
		readFrame(t, conn)
	}

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ALIVE"}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "UNKNOWN"}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "GET_STATE"}))

	for _, want := range snapshotTypes {
		assert.Equal(t, want, readFrame(t, conn).Type)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	dialWS(t, srv, nil)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "callboard_connected_clients")
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, errorStatus(board.ErrConflict))
	assert.Equal(t, http.StatusNotFound, errorStatus(board.ErrFeaturedNotFound))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(io.ErrUnexpectedEOF))
}
