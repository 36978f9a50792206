package state

import (
	"github.com/wfunc/drawparty/topic"
)

// Status 房间内游戏的进行状态
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// GameState holds one room's round status. It does not check whether a
// transition is legal; the round coordinator orders the calls, and the
// owning room's lock serializes them.
//
//	waiting --Start--> playing --Finish--> finished
//	any     --Reset--> waiting
type GameState struct {
	status   Status
	drawerID string
	topic    *topic.Entry
}

func New() *GameState {
	return &GameState{status: StatusWaiting}
}

func (g *GameState) Status() Status { return g.status }

func (g *GameState) Waiting() bool  { return g.status == StatusWaiting }
func (g *GameState) Playing() bool  { return g.status == StatusPlaying }
func (g *GameState) Finished() bool { return g.status == StatusFinished }

// DrawerID returns the drawer of the current or most recent round.
func (g *GameState) DrawerID() (string, bool) {
	return g.drawerID, g.drawerID != ""
}

// Topic returns the current or most recent topic.
func (g *GameState) Topic() (topic.Entry, bool) {
	if g.topic == nil {
		return topic.Entry{}, false
	}
	return g.topic.Clone(), true
}

// Start 进入游戏状态
func (g *GameState) Start() {
	g.status = StatusPlaying
}

// Finish 结束游戏，保留最后一回合的画家与题目
func (g *GameState) Finish() {
	g.status = StatusFinished
}

// Reset 回到等待状态并清空画家与题目
func (g *GameState) Reset() {
	g.status = StatusWaiting
	g.drawerID = ""
	g.topic = nil
}

// SetRound assigns drawer and topic together.
func (g *GameState) SetRound(drawerID string, t topic.Entry) {
	c := t.Clone()
	g.drawerID = drawerID
	g.topic = &c
}

// Snapshot is a copy of GameState that is safe to hand to other goroutines.
type Snapshot struct {
	Status       Status       `json:"status"`
	DrawerID     string       `json:"drawer_id,omitempty"`
	CurrentTopic *topic.Entry `json:"current_topic,omitempty"`
}

func (g *GameState) Snapshot() Snapshot {
	s := Snapshot{Status: g.status, DrawerID: g.drawerID}
	if g.topic != nil {
		c := g.topic.Clone()
		s.CurrentTopic = &c
	}
	return s
}

// WithoutTopic returns a copy of s with the topic removed.
func (s Snapshot) WithoutTopic() Snapshot {
	s.CurrentTopic = nil
	return s
}
