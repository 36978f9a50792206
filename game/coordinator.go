// Package game runs rounds in a room: drawer rotation, topic selection
// and answer judging. Coordinator keeps no state of its own; every call
// runs inside the target room's lock.
package game

import (
	"math/rand/v2"
	"slices"

	"github.com/wfunc/drawparty/logger"
	"github.com/wfunc/drawparty/player"
	"github.com/wfunc/drawparty/room"
	"github.com/wfunc/drawparty/topic"
)

// Catalog supplies topics for new rounds.
type Catalog interface {
	Random() topic.Entry
}

type Coordinator struct {
	catalog Catalog
	intn    func(n int) int
}

func NewCoordinator(catalog Catalog) *Coordinator {
	return &Coordinator{catalog: catalog, intn: rand.IntN}
}

// StartGame 开始游戏：房间没有玩家时失败，否则进入游戏状态并开始第一回合
func (c *Coordinator) StartGame(r *room.Room) (room.Snapshot, bool) {
	snap, ok := r.Mutate(func(tx *room.Tx) bool {
		if tx.Len() == 0 {
			return false
		}
		tx.EnsureGame().Start()
		return c.startRound(tx)
	})
	if ok {
		logger.Log.Infof("房间 %s 开始游戏，画家: %s", r.ID(), snap.GameState.DrawerID)
	}
	return snap, ok
}

// StartRound picks a new drawer and topic. It fails unless a game is
// being played and the room has players.
func (c *Coordinator) StartRound(r *room.Room) (room.Snapshot, bool) {
	snap, ok := r.Mutate(func(tx *room.Tx) bool {
		return c.startRound(tx)
	})
	if ok {
		logger.Log.Infof("房间 %s 开始新回合，画家: %s", r.ID(), snap.GameState.DrawerID)
	}
	return snap, ok
}

func (c *Coordinator) startRound(tx *room.Tx) bool {
	g := tx.Game()
	if g == nil || !g.Playing() {
		return false
	}
	players := tx.Players()
	if len(players) == 0 {
		return false
	}

	candidates := players
	if prev, ok := g.DrawerID(); ok && len(players) > 1 {
		candidates = slices.DeleteFunc(players, func(p player.Player) bool { return p.ID() == prev })
	}
	drawer := candidates[c.intn(len(candidates))]

	g.SetRound(drawer.ID(), c.catalog.Random())
	tx.AssignRoles(drawer.ID())
	return true
}

// FinishGame ends the game and turns every player back into a guesser.
// Rooms that never started a game only get their roles reset.
func (c *Coordinator) FinishGame(r *room.Room) room.Snapshot {
	snap, _ := r.Mutate(func(tx *room.Tx) bool {
		if g := tx.Game(); g != nil {
			g.Finish()
		}
		tx.ResetRoles()
		return true
	})
	logger.Log.Infof("房间 %s 游戏结束", r.ID())
	return snap
}

// ResetGame 回到等待状态并重置所有玩家角色
func (c *Coordinator) ResetGame(r *room.Room) room.Snapshot {
	snap, _ := r.Mutate(func(tx *room.Tx) bool {
		if g := tx.Game(); g != nil {
			g.Reset()
		}
		tx.ResetRoles()
		return true
	})
	logger.Log.Infof("房间 %s 游戏重置", r.ID())
	return snap
}

// CheckAnswer reports whether answer matches the current topic. It is
// false whenever no round is being played.
func (c *Coordinator) CheckAnswer(r *room.Room, answer string) bool {
	var correct bool
	r.Read(func(tx *room.Tx) {
		g := tx.Game()
		if g == nil || !g.Playing() {
			return
		}
		t, ok := g.Topic()
		if !ok {
			return
		}
		correct = topic.Correct(answer, t)
	})
	return correct
}

// CurrentTopicFor returns the topic's main text to the current drawer
// only; any other caller gets nothing.
func (c *Coordinator) CurrentTopicFor(r *room.Room, playerID string) (string, bool) {
	var main string
	var ok bool
	r.Read(func(tx *room.Tx) {
		g := tx.Game()
		if g == nil || !g.Playing() {
			return
		}
		if drawer, has := g.DrawerID(); !has || drawer != playerID {
			return
		}
		var t topic.Entry
		if t, ok = g.Topic(); ok {
			main = t.Main
		}
	})
	return main, ok
}
