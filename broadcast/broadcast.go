// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"
	"time"

	"github.com/wfunc/drawparty/player"
	"github.com/wfunc/drawparty/room"
)

// Broadcaster 广播接口。seq 是房间内状态变化的序号，
// 同一房间的消息必须按 seq 顺序投递，且每个 seq 只投递一次。
type Broadcaster interface {
	BroadcastToRoom(roomID string, seq uint64, msg Message)
}

// Notifier turns the snapshots returned by room operations into exactly
// one message per transition.
type Notifier struct {
	broadcaster Broadcaster
}

func NewNotifier(b Broadcaster) *Notifier {
	return &Notifier{broadcaster: b}
}

func (n *Notifier) PlayerJoined(p player.Player, snap room.Snapshot) {
	n.broadcaster.BroadcastToRoom(snap.ID, snap.Seq, NewPlayerJoined(p, snap))
}

func (n *Notifier) PlayerLeft(p player.Player, snap room.Snapshot) {
	n.broadcaster.BroadcastToRoom(snap.ID, snap.Seq, NewPlayerLeft(p, snap))
}

func (n *Notifier) GameStateUpdated(snap room.Snapshot) {
	n.broadcaster.BroadcastToRoom(snap.ID, snap.Seq, NewGameStateUpdated(snap))
}

func (n *Notifier) Draw(roomID string, seq uint64, playerID string, stroke json.RawMessage) {
	n.broadcaster.BroadcastToRoom(roomID, seq, NewDraw(playerID, stroke))
}

func (n *Notifier) ClearCanvas(roomID string, seq uint64, playerID string) {
	n.broadcaster.BroadcastToRoom(roomID, seq, NewClearCanvas(playerID))
}

func (n *Notifier) Chat(roomID string, seq uint64, playerID, name, text string, at time.Time) {
	n.broadcaster.BroadcastToRoom(roomID, seq, NewChatMessage(playerID, name, text, at))
}

func (n *Notifier) CorrectAnswer(roomID string, seq uint64, playerID, name, mainText string) {
	n.broadcaster.BroadcastToRoom(roomID, seq, NewCorrectAnswer(playerID, name, mainText))
}

func (n *Notifier) IncorrectAnswer(roomID string, seq uint64, playerID, name, submitted string) {
	n.broadcaster.BroadcastToRoom(roomID, seq, NewIncorrectAnswer(playerID, name, submitted))
}
