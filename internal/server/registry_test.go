package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/roomcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateUsesUnusedCodes(t *testing.T) {
	t.Parallel()
	// AAAA, AAAA again, then BBBB.
	reg := NewRegistry(testRules(), newRecorder(), testLogger(),
		WithRegistryClock(quartz.NewMock(t)),
		WithCodeGenerator(fixedCodes(0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1)),
	)
	t.Cleanup(reg.Close)

	first, err := reg.Create()
	require.NoError(t, err)
	second, err := reg.Create()
	require.NoError(t, err)

	assert.Equal(t, "AAAA", first.Code())
	assert.Equal(t, "BBBB", second.Code())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryCreateGivesUpWhenCodesCollide(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(testRules(), newRecorder(), testLogger(),
		WithRegistryClock(quartz.NewMock(t)),
		WithCodeGenerator(fixedCodes(0)),
	)
	t.Cleanup(reg.Close)

	_, err := reg.Create()
	require.NoError(t, err)
	_, err = reg.Create()
	assert.ErrorIs(t, err, ErrRoomCodesSpent)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryCodesAreWellFormed(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(testRules(), newRecorder(), testLogger(), WithRegistryClock(quartz.NewMock(t)))
	t.Cleanup(reg.Close)

	for range 50 {
		table, err := reg.Create()
		require.NoError(t, err)
		assert.NoError(t, roomcode.Validate(table.Code()))
	}
	assert.Equal(t, 50, reg.Len())
}

func TestRegistryGet(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(testRules(), newRecorder(), testLogger(),
		WithRegistryClock(quartz.NewMock(t)),
		WithCodeGenerator(fixedCodes(10, 1, 2, 27)),
	)
	t.Cleanup(reg.Close)
	table, err := reg.Create()
	require.NoError(t, err)
	require.Equal(t, "KBC1", table.Code())

	tests := []struct {
		name  string
		code  string
		found bool
	}{
		{"exact", "KBC1", true},
		{"lower case", "kbc1", true},
		{"padded", "  KBC1 ", true},
		{"unknown", "ZZZZ", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Get(tt.code)
			if !tt.found {
				assert.ErrorIs(t, err, ErrRoomNotFound)
				return
			}
			require.NoError(t, err)
			assert.Same(t, table, got)
		})
	}
}

func TestRegistryListSortedByCode(t *testing.T) {
	t.Parallel()
	// CCCC then AAAA.
	reg := NewRegistry(testRules(), newRecorder(), testLogger(),
		WithRegistryClock(quartz.NewMock(t)),
		WithCodeGenerator(fixedCodes(2, 2, 2, 2, 0)),
	)
	t.Cleanup(reg.Close)

	first, err := reg.Create()
	require.NoError(t, err)
	_, err = reg.Create()
	require.NoError(t, err)
	require.NoError(t, first.Do(func(r *blackjack.Room) error {
		r.Join("alice", "Alice")
		return r.TakeSeat("alice")
	}))

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "AAAA", list[0].Code)
	assert.Equal(t, 0, list[0].Members)
	assert.Equal(t, "CCCC", list[1].Code)
	assert.Equal(t, 1, list[1].Members)
	assert.Equal(t, 1, list[1].Seated)
	assert.Equal(t, "lobby", list[1].Phase)
}

func TestRegistrySweep(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	reg := NewRegistry(testRules(), newRecorder(), testLogger(),
		WithRegistryClock(mClock),
		WithCodeGenerator(fixedCodes(0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2)),
		WithIdleTimeout(10*time.Minute),
	)
	t.Cleanup(reg.Close)

	empty, err := reg.Create()
	require.NoError(t, err)
	occupied, err := reg.Create()
	require.NoError(t, err)
	require.NoError(t, occupied.Do(func(r *blackjack.Room) error {
		r.Join("alice", "Alice")
		return nil
	}))

	mClock.Advance(5 * time.Minute)
	recent, err := reg.Create()
	require.NoError(t, err)
	assert.Empty(t, reg.Sweep(), "nothing idle long enough yet")

	mClock.Advance(6 * time.Minute)
	assert.Equal(t, []string{empty.Code()}, reg.Sweep())
	assert.Equal(t, 2, reg.Len())

	_, err = reg.Get(empty.Code())
	assert.ErrorIs(t, err, ErrRoomNotFound)
	err = empty.Do(func(r *blackjack.Room) error { return nil })
	assert.ErrorIs(t, err, ErrRoomNotFound, "an expired table rejects late commands")

	mClock.Advance(5 * time.Minute)
	assert.Equal(t, []string{recent.Code()}, reg.Sweep())
	_, err = reg.Get(occupied.Code())
	assert.NoError(t, err, "rooms with members never expire")
}

func TestRegistryRunSweepsPeriodically(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(testRules(), newRecorder(), testLogger(), WithIdleTimeout(time.Millisecond))
	t.Cleanup(reg.Close)
	_, err := reg.Create()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRegistryCloseRejectsCommands(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(testRules(), newRecorder(), testLogger(), WithRegistryClock(quartz.NewMock(t)))
	table, err := reg.Create()
	require.NoError(t, err)

	reg.Close()
	assert.Zero(t, reg.Len())
	err = table.Do(func(r *blackjack.Room) error { return nil })
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistryRoomsFollowRegistryClock(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	rules := testRules()
	rules.ActionCooldown = 200 * time.Millisecond
	reg := NewRegistry(rules, newRecorder(), testLogger(),
		WithRegistryClock(mClock),
		WithShoeFactory(stackedShoes("2s 7c 3h 9d 4s 5c")),
	)
	t.Cleanup(reg.Close)
	table, err := reg.Create()
	require.NoError(t, err)

	seatAndBet(t, table, "alice", 10)
	require.NoError(t, table.Do(func(r *blackjack.Room) error { return r.StartRound("alice") }))
	hit := func(r *blackjack.Room) error { return r.Act("alice", blackjack.ActionHit) }

	require.NoError(t, table.Do(hit))
	mClock.Advance(100 * time.Millisecond)
	assert.ErrorIs(t, table.Do(hit), blackjack.ErrDuplicateAction)

	mClock.Advance(100 * time.Millisecond)
	require.NoError(t, table.Do(hit), "cooldown is measured on the registry clock")
	assert.Equal(t, "acting", table.Summary().Phase)
}
