package server

import (
	"testing"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAfterCloseDoesNotLeaveMembership(t *testing.T) {
	t.Parallel()
	svc, rec := newTestService(t, "")
	require.NoError(t, svc.Handle("alice", CreateRoomCmd{Name: "Alice"}))
	code := rec.waitState(t, "alice", func(blackjack.View) bool { return true }).Code

	// The server has already run Disconnect for bob by the time the join is
	// handled, so only the connection itself can notice.
	c := NewConnection("bob", nil, svc, testLogger())
	c.cancel()
	svc.Disconnect("bob")

	msg, err := protocol.NewMessage(protocol.TypeJoinRoom, protocol.JoinRoom{Code: code, Name: "Bob"})
	require.NoError(t, err)
	c.handleMessage(msg)

	assert.Empty(t, svc.Rooms("bob"))
	table, err := svc.registry.Get(code)
	require.NoError(t, err)
	v := table.View("alice")
	require.Len(t, v.Players, 1)
	assert.Equal(t, "Alice", v.Players[0].Name)
}

func TestHandleMessageRepliesWithError(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, "")
	c := NewConnection("bob", nil, svc, testLogger())

	msg, err := protocol.NewMessage(protocol.TypeJoinRoom, protocol.JoinRoom{Code: "ZZZZ", Name: "Bob"})
	require.NoError(t, err)
	c.handleMessage(msg)

	require.Len(t, c.send, 1)
	reply := <-c.send
	assert.Equal(t, protocol.TypeError, reply.Type)
	assert.Empty(t, svc.Rooms("bob"))
}
