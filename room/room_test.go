package room

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/drawparty/player"
	"github.com/wfunc/drawparty/topic"
)

// newTestPlayer creates a guesser with a predictable id.
func mustAddPlayer(t *testing.T, r *Room, p player.Player) Snapshot {
	t.Helper()
	snap, ok := r.AddPlayer(p)
	require.True(t, ok)
	return snap
}

func newTestPlayer(t *testing.T, id string) player.Player {
	t.Helper()
	p, err := player.NewWithID(id, "name-"+id)
	require.NoError(t, err)
	return p
}

func ids(players []player.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID()
	}
	return out
}

func TestRoom_AddPlayer(t *testing.T) {
	room := NewRoom("ABC123")
	player1 := newTestPlayer(t, "player1")

	snap := mustAddPlayer(t, room, player1)
	assert.Equal(t, uint64(1), snap.Seq)
	assert.Equal(t, []string{"player1"}, ids(snap.Players))

	assert.Equal(t, 1, room.Len())
	assert.False(t, room.Empty())
	got, ok := room.FindPlayer("player1")
	require.True(t, ok)
	assert.Equal(t, player1, got)

	host, ok := room.HostID()
	require.True(t, ok)
	assert.Equal(t, "player1", host)
	assert.True(t, room.IsHost("player1"))
}

func TestRoom_AddPlayer_KeepsJoinOrderAndFirstHost(t *testing.T) {
	room := NewRoom("ABC123")
	for _, id := range []string{"p1", "p2", "p3"} {
		mustAddPlayer(t, room, newTestPlayer(t, id))
	}

	snap := room.Snapshot()
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(snap.Players))
	assert.Equal(t, "p1", snap.HostID)
}

func TestRoom_AddPlayer_DuplicateID(t *testing.T) {
	room := NewRoom("ABC123")
	mustAddPlayer(t, room, newTestPlayer(t, "p1"))

	_, ok := room.AddPlayer(newTestPlayer(t, "p1"))
	assert.False(t, ok)
	assert.Equal(t, 1, room.Len())
}

func TestRoom_AddPlayer_Full(t *testing.T) {
	room := NewRoom("ABC123")
	for i := 0; i < MaxPlayers; i++ {
		mustAddPlayer(t, room, newTestPlayer(t, fmt.Sprintf("p%02d", i)))
	}
	require.True(t, room.Full())

	before, err := json.Marshal(room.Snapshot())
	require.NoError(t, err)
	seqBefore := room.Snapshot().Seq

	_, ok := room.AddPlayer(newTestPlayer(t, "late"))
	assert.False(t, ok)

	after, err := json.Marshal(room.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, seqBefore, room.Snapshot().Seq, "a failed add is not a transition")
	assert.Equal(t, MaxPlayers, room.Len())
}

func TestRoom_AddPlayer_RaceForLastSlot(t *testing.T) {
	for round := 0; round < 50; round++ {
		room := NewRoom("ABC123")
		for i := 0; i < MaxPlayers-1; i++ {
			mustAddPlayer(t, room, newTestPlayer(t, fmt.Sprintf("p%02d", i)))
		}

		var wg sync.WaitGroup
		var succeeded atomic.Int32
		start := make(chan struct{})
		for _, id := range []string{"racer-a", "racer-b"} {
			p := newTestPlayer(t, id)
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, ok := room.AddPlayer(p); ok {
					succeeded.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, MaxPlayers, room.Len())
	}
}

func TestRoom_RemovePlayer(t *testing.T) {
	room := NewRoom("ABC123")
	player1 := newTestPlayer(t, "player1")
	room.AddPlayer(player1)

	removed, _, _, ok := room.RemovePlayer("player1")
	require.True(t, ok)
	assert.Equal(t, player1, removed)
	assert.True(t, room.Empty())

	_, ok = room.FindPlayer("player1")
	assert.False(t, ok)
	_, ok = room.HostID()
	assert.False(t, ok, "empty room has no host")
}

func TestRoom_RemovePlayer_Unknown(t *testing.T) {
	room := NewRoom("ABC123")
	room.AddPlayer(newTestPlayer(t, "p1"))
	seq := room.Snapshot().Seq

	_, _, ok := room.RemovePlayer("ghost")
	assert.False(t, ok)
	assert.Equal(t, 1, room.Len())
	assert.Equal(t, seq, room.Snapshot().Seq)
}

func TestRoom_RemovePlayer_HostPromotion(t *testing.T) {
	tests := []struct {
		name     string
		remove   []string
		wantHost string
		wantIDs  []string
	}{
		{name: "host leaves", remove: []string{"p1"}, wantHost: "p2", wantIDs: []string{"p2", "p3", "p4"}},
		{name: "guest leaves", remove: []string{"p3"}, wantHost: "p1", wantIDs: []string{"p1", "p2", "p4"}},
		{name: "new host leaves too", remove: []string{"p1", "p2"}, wantHost: "p3", wantIDs: []string{"p3", "p4"}},
		{name: "middle then host", remove: []string{"p2", "p1"}, wantHost: "p3", wantIDs: []string{"p3", "p4"}},
		{name: "everyone leaves", remove: []string{"p1", "p2", "p3", "p4"}, wantHost: "", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := NewRoom("ABC123")
			for _, id := range []string{"p1", "p2", "p3", "p4"} {
				mustAddPlayer(t, room, newTestPlayer(t, id))
			}
			for _, id := range tt.remove {
				_, _, ok := room.RemovePlayer(id)
				require.True(t, ok)
			}

			snap := room.Snapshot()
			assert.Equal(t, tt.wantHost, snap.HostID)
			assert.Equal(t, tt.wantIDs, ids(snap.Players))
		})
	}
}

func TestRoom_HostRejoinAfterEmpty(t *testing.T) {
	room := NewRoom("ABC123")
	room.AddPlayer(newTestPlayer(t, "p1"))
	room.RemovePlayer("p1")
	room.AddPlayer(newTestPlayer(t, "p2"))

	assert.True(t, room.IsHost("p2"))
}

func TestRoom_SnapshotIsImmutable(t *testing.T) {
	room := NewRoom("ABC123")
	room.AddPlayer(newTestPlayer(t, "p1"))
	room.AddPlayer(newTestPlayer(t, "p2"))

	snap := room.Snapshot()
	room.Mutate(func(tx *Tx) bool {
		tx.EnsureGame().Start()
		tx.EnsureGame().SetRound("p2", topic.Entry{Main: "猫"})
		tx.AssignRoles("p2")
		return true
	})
	room.RemovePlayer("p1")

	assert.Equal(t, []string{"p1", "p2"}, ids(snap.Players))
	assert.True(t, snap.Players[1].IsGuesser())
	assert.Nil(t, snap.GameState)

	latest := room.Snapshot()
	require.NotNil(t, latest.GameState)
	assert.Equal(t, "p2", latest.GameState.DrawerID)
	drawer, ok := latest.Drawer()
	require.True(t, ok)
	assert.Equal(t, "p2", drawer.ID())
}

func TestRoom_SnapshotJSON(t *testing.T) {
	room := NewRoom("ABC123")
	data, err := json.Marshal(room.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"ABC123","players":[],"max_players":30,"game_state":null}`, string(data))
}

func TestRoom_MutateSequence(t *testing.T) {
	room := NewRoom("ABC123")

	snap, ok := room.Mutate(func(tx *Tx) bool { return tx.AddPlayer(newTestPlayer(t, "p1")) })
	require.True(t, ok)
	assert.Equal(t, uint64(1), snap.Seq)

	snap, ok = room.Mutate(func(tx *Tx) bool { return false })
	assert.False(t, ok)
	assert.Equal(t, uint64(1), snap.Seq)

	assert.Equal(t, uint64(2), room.Stamp())
	assert.Equal(t, uint64(3), room.Stamp())
}

func TestTx_AssignAndResetRoles(t *testing.T) {
	room := NewRoom("ABC123")
	for _, id := range []string{"p1", "p2", "p3"} {
		room.AddPlayer(newTestPlayer(t, id))
	}

	snap, _ := room.Mutate(func(tx *Tx) bool {
		tx.AssignRoles("p2")
		return true
	})
	drawers := 0
	for _, p := range snap.Players {
		if p.IsDrawer() {
			drawers++
			assert.Equal(t, "p2", p.ID())
		}
	}
	assert.Equal(t, 1, drawers)

	snap, _ = room.Mutate(func(tx *Tx) bool {
		tx.ResetRoles()
		return true
	})
	for _, p := range snap.Players {
		assert.True(t, p.IsGuesser())
	}
}

func TestRoom_ConcurrentJoinLeave(t *testing.T) {
	room := NewRoom("ABC123")
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		p := newTestPlayer(t, fmt.Sprintf("p%03d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := room.AddPlayer(p); ok {
				room.RemovePlayer(p.ID())
			}
		}()
	}
	wg.Wait()

	assert.True(t, room.Empty())
	_, ok := room.HostID()
	assert.False(t, ok)
}
