package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/snekstar/selfplay"
	"github.com/brensch/snekstar/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, roots ...string) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(quietLogger(), NewHub(quietLogger()), roots)
	t.Cleanup(func() { _ = s.dbCache.Close() })
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return s, ts
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHub_StreamsFrames(t *testing.T) {
	s, ts := newTestServer(t)
	s.hub.Broadcast(Frame{GameID: "g", Turn: 1, Width: 5, Height: 5})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The last frame is replayed on connect.
	assert.EqualValues(t, 1, readFrame(t, conn).Turn)

	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	s.hub.Broadcast(Frame{GameID: "g", Turn: 2, Body: []Point{{X: 2, Y: 2}}, Outcome: "dead"})
	f := readFrame(t, conn)
	assert.EqualValues(t, 2, f.Turn)
	assert.Equal(t, "dead", f.Outcome)
	assert.Equal(t, []Point{{X: 2, Y: 2}}, f.Body)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleLive(t *testing.T) {
	s, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	s.hub.Broadcast(Frame{GameID: "abc", Turn: 7})
	resp, err = http.Get(ts.URL + "/api/live")
	require.NoError(t, err)
	defer resp.Body.Close()
	var f Frame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	assert.Equal(t, "abc", f.GameID)
}

func TestHandleIndex(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "new WebSocket")
}

func TestArchiveAPI(t *testing.T) {
	dir := t.TempDir()
	res, err := selfplay.PlayGame(context.Background(), selfplay.Config{Width: 10, Height: 10, MaxTurns: 40, Seed: 5}, nil)
	require.NoError(t, err)
	_, err = store.WriteBatchParquetAtomic(dir, res.Rows)
	require.NoError(t, err)

	_, ts := newTestServer(t, dir)

	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	var games GamesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&games))
	resp.Body.Close()
	require.EqualValues(t, 1, games.Total)
	g := games.Games[0]
	assert.Equal(t, res.GameID, g.GameID)
	assert.EqualValues(t, len(res.Rows), g.TurnCount)
	assert.Equal(t, res.Outcome, g.Result)
	assert.GreaterOrEqual(t, g.Searches, int64(1))

	resp, err = http.Get(ts.URL + "/api/games/" + res.GameID + "/turns")
	require.NoError(t, err)
	var frames []Frame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&frames))
	resp.Body.Close()
	require.Len(t, frames, len(res.Rows))
	assert.EqualValues(t, 0, frames[0].Turn)
	assert.Len(t, frames[0].Body, 1)
	assert.Equal(t, res.Outcome, frames[len(frames)-1].Outcome)

	resp, err = http.Get(ts.URL + "/api/games/nope/turns")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestArchiveAPI_NoData(t *testing.T) {
	_, ts := newTestServer(t, t.TempDir())
	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var games GamesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&games))
	assert.Zero(t, games.Total)
}

func TestLiveRunner_PlaysAndRecords(t *testing.T) {
	dir := t.TempDir()
	hub := NewHub(quietLogger())
	var recorded []string
	l := &liveRunner{
		hub:        hub,
		game:       selfplay.Config{Width: 8, Height: 8, MaxTurns: 25, Seed: 11},
		recordDir:  dir,
		logger:     quietLogger(),
		onRecorded: func(p string) { recorded = append(recorded, p) },
	}

	res, err := l.playOne(context.Background())
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, dir, filepath.Dir(recorded[0]))

	var last Frame
	require.NoError(t, json.Unmarshal(hub.Last(), &last))
	assert.Equal(t, res.GameID, last.GameID)
	assert.Equal(t, res.Outcome, last.Outcome)

	rows, err := store.ReadTurnRows(recorded[0])
	require.NoError(t, err)
	assert.Len(t, rows, len(res.Rows))
	assert.Equal(t, "viewer", rows[0].Source)
}

func TestPaginateGames(t *testing.T) {
	games := []GameSummary{
		{GameID: "a", Score: 3, TurnCount: 10},
		{GameID: "b", Score: 9, TurnCount: 5},
		{GameID: "c", Score: 1, TurnCount: 50},
	}
	got := paginateGames(games, 2, 0, "", "")
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].GameID)
	assert.Equal(t, "a", got[1].GameID)

	got = paginateGames(games, 10, 1, "turns", "asc")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].GameID)
	assert.Equal(t, "c", got[1].GameID)

	assert.Empty(t, paginateGames(games, 10, 5, "", ""))
}

func TestParseDataRoots(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseDataRoots(" a, ,b,a"))
}
