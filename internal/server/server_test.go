package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, cards string) (*Server, *httptest.Server) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rules = testRules()
	cfg.Rules.RevealDelay = 5 * time.Millisecond
	cfg.Rules.DrawDelay = 5 * time.Millisecond

	var opts []Option
	if cards != "" {
		opts = append(opts, WithShoes(stackedShoes(cards)))
	}
	s := NewServer(cfg, testLogger(), opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		ts.Close()
	})
	return s, ts
}

func connectClient(t *testing.T, url string) *client.Client {
	t.Helper()
	c := client.New(url, testLogger())
	require.NoError(t, c.Connect(testContext(t)))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	srv := NewServer(DefaultConfig(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRoomRoutes(t *testing.T) {
	t.Parallel()
	srv := NewServer(DefaultConfig(), testLogger())
	t.Cleanup(srv.Registry().Close)
	table, err := srv.Registry().Create()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []protocol.RoomSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, table.Code(), rooms[0].Code)

	req = httptest.NewRequest(http.MethodGet, "/rooms/"+table.Code(), nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var view blackjack.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, table.Code(), view.Code)
	assert.Empty(t, view.You)

	req = httptest.NewRequest(http.MethodGet, "/rooms/ZZZZ", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var apiErr protocol.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, "room_not_found", apiErr.Code)
}

func TestPlayRoundOverWebSocket(t *testing.T) {
	t.Parallel()
	_, ts := testServer(t, "10s 7c 9h 9d 5s")
	alice := connectClient(t, ts.URL)
	ctx := testContext(t)

	require.NoError(t, alice.CreateRoom("Alice"))
	v, err := alice.WaitForState(ctx, func(blackjack.View) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, v.Code, alice.Room())
	assert.NotEmpty(t, alice.ID())

	require.NoError(t, alice.TakeSeat())
	_, err = alice.WaitForState(ctx, func(v blackjack.View) bool { return v.Players[0].Seated })
	require.NoError(t, err)

	require.NoError(t, alice.PlaceBet(50))
	require.NoError(t, alice.StartRound())
	v, err = alice.WaitForState(ctx, func(v blackjack.View) bool { return v.Phase == "acting" })
	require.NoError(t, err)
	require.NotNil(t, v.Turn)
	assert.Equal(t, alice.ID(), *v.Turn)
	assert.Equal(t, []string{"10♠", "9♥"}, v.Players[0].Hands[0])

	require.NoError(t, alice.Act("stand"))
	v, err = alice.WaitForState(ctx, func(v blackjack.View) bool { return v.Phase == "betting" })
	require.NoError(t, err)
	assert.Equal(t, []string{"Lose -50"}, v.Players[0].LastResults)
	assert.Equal(t, 950, v.Players[0].Chips)
	assert.Equal(t, []string{"7♣", "9♦", "5♠"}, v.LastDealer)
}

func TestErrorsAreReportedToSender(t *testing.T) {
	t.Parallel()
	_, ts := testServer(t, "")
	bob := connectClient(t, ts.URL)
	ctx := testContext(t)

	require.NoError(t, bob.JoinRoom("ZZZZ", "Bob"))
	msg, err := bob.WaitFor(ctx, func(m *protocol.Message) bool { return m.Type == protocol.TypeError })
	require.NoError(t, err)

	var payload protocol.Error
	require.NoError(t, msg.Decode(&payload))
	assert.Equal(t, "room_not_found", payload.Code)
	assert.Equal(t, "Room not found.", payload.Message)

	require.NoError(t, bob.Send(protocol.TypeJoinRoom, map[string]string{"code": "bad code"}))
	msg, err = bob.WaitFor(ctx, func(m *protocol.Message) bool { return m.Type == protocol.TypeError })
	require.NoError(t, err)
	require.NoError(t, msg.Decode(&payload))
	assert.Equal(t, "invalid_message", payload.Code)
}

func TestDisconnectRemovesPlayer(t *testing.T) {
	t.Parallel()
	s, ts := testServer(t, "")
	alice := connectClient(t, ts.URL)
	bob := connectClient(t, ts.URL)
	ctx := testContext(t)

	require.NoError(t, alice.CreateRoom("Alice"))
	v, err := alice.WaitForState(ctx, func(blackjack.View) bool { return true })
	require.NoError(t, err)

	require.NoError(t, bob.JoinRoom(v.Code, "Bob"))
	_, err = alice.WaitForState(ctx, func(v blackjack.View) bool { return len(v.Players) == 2 })
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.ConnectionCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bob.Close())
	v, err = alice.WaitForState(ctx, func(v blackjack.View) bool { return len(v.Players) == 1 })
	require.NoError(t, err)
	assert.Equal(t, "Alice", v.Players[0].Name)
	require.Eventually(t, func() bool { return s.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRoomsAreSharedAcrossConnections(t *testing.T) {
	t.Parallel()
	_, ts := testServer(t, "")
	alice := connectClient(t, ts.URL)
	bob := connectClient(t, ts.URL)
	ctx := testContext(t)

	require.NoError(t, alice.CreateRoom("Alice"))
	v, err := alice.WaitForState(ctx, func(blackjack.View) bool { return true })
	require.NoError(t, err)

	require.NoError(t, bob.JoinRoom(v.Code, "Bob"))
	bv, err := bob.WaitForState(ctx, func(v blackjack.View) bool { return len(v.Players) == 2 })
	require.NoError(t, err)
	assert.Equal(t, v.Code, bv.Code)
	assert.True(t, bv.Players[1].Me)
	assert.False(t, bv.Players[0].Me)

	require.NoError(t, bob.LeaveRoom())
	_, err = bob.WaitFor(ctx, func(m *protocol.Message) bool { return m.Type == protocol.TypeLeft })
	require.NoError(t, err)
	assert.Empty(t, bob.Room())
}
