package broadcast

import (
	"encoding/json"
	"time"

	"github.com/wfunc/drawparty/player"
	"github.com/wfunc/drawparty/room"
	"github.com/wfunc/drawparty/state"
)

// MessageType 广播消息的 type 字段
type MessageType string

const (
	TypePlayerJoined     MessageType = "player_joined"
	TypePlayerLeft       MessageType = "player_left"
	TypeGameStateUpdated MessageType = "game_state_updated"
	TypeDraw             MessageType = "draw"
	TypeClearCanvas      MessageType = "clear_canvas"
	TypeChatMessage      MessageType = "chat_message"
	TypeCorrectAnswer    MessageType = "correct_answer"
	TypeIncorrectAnswer  MessageType = "incorrect_answer"
)

// Message is one outbound event on a room topic.
type Message interface {
	MessageType() MessageType
}

// Personalizer is implemented by messages whose payload depends on the
// recipient.
type Personalizer interface {
	For(playerID string) Message
}

// hostRef 房间为空时没有房主，host_id 编码为 null
func hostRef(snap room.Snapshot) *string {
	if snap.HostID == "" {
		return nil
	}
	id := snap.HostID
	return &id
}

type PlayerJoined struct {
	Type    MessageType     `json:"type"`
	Player  player.Player   `json:"player"`
	Players []player.Player `json:"players"`
	HostID  *string         `json:"host_id"`
}

func NewPlayerJoined(p player.Player, snap room.Snapshot) PlayerJoined {
	return PlayerJoined{Type: TypePlayerJoined, Player: p, Players: snap.Players, HostID: hostRef(snap)}
}

func (m PlayerJoined) MessageType() MessageType { return m.Type }

type PlayerLeft struct {
	Type    MessageType     `json:"type"`
	Player  player.Player   `json:"player"`
	Players []player.Player `json:"players"`
	HostID  *string         `json:"host_id"`
}

func NewPlayerLeft(p player.Player, snap room.Snapshot) PlayerLeft {
	return PlayerLeft{Type: TypePlayerLeft, Player: p, Players: snap.Players, HostID: hostRef(snap)}
}

func (m PlayerLeft) MessageType() MessageType { return m.Type }

type GameStateUpdated struct {
	Type       MessageType     `json:"type"`
	Players    []player.Player `json:"players"`
	HostID     *string         `json:"host_id"`
	MaxPlayers int             `json:"max_players"`
	GameState  *state.Snapshot `json:"game_state"`
}

func NewGameStateUpdated(snap room.Snapshot) GameStateUpdated {
	return GameStateUpdated{
		Type:       TypeGameStateUpdated,
		Players:    snap.Players,
		HostID:     hostRef(snap),
		MaxPlayers: snap.MaxPlayers,
		GameState:  snap.GameState,
	}
}

func (m GameStateUpdated) MessageType() MessageType { return m.Type }

// For hides the current topic from everyone but the drawer.
func (m GameStateUpdated) For(playerID string) Message {
	if m.GameState == nil || m.GameState.CurrentTopic == nil || m.GameState.DrawerID == playerID {
		return m
	}
	redacted := m.GameState.WithoutTopic()
	m.GameState = &redacted
	return m
}

// Draw carries the stroke payload exactly as the client sent it.
type Draw struct {
	Type     MessageType     `json:"type"`
	PlayerID string          `json:"player_id"`
	DrawData json.RawMessage `json:"draw_data"`
}

func NewDraw(playerID string, stroke json.RawMessage) Draw {
	if len(stroke) == 0 {
		stroke = json.RawMessage("null")
	}
	return Draw{Type: TypeDraw, PlayerID: playerID, DrawData: stroke}
}

func (m Draw) MessageType() MessageType { return m.Type }

type ClearCanvas struct {
	Type     MessageType `json:"type"`
	PlayerID string      `json:"player_id"`
}

func NewClearCanvas(playerID string) ClearCanvas {
	return ClearCanvas{Type: TypeClearCanvas, PlayerID: playerID}
}

func (m ClearCanvas) MessageType() MessageType { return m.Type }

type ChatMessage struct {
	Type       MessageType `json:"type"`
	PlayerID   string      `json:"player_id"`
	PlayerName string      `json:"player_name"`
	Message    string      `json:"message"`
	Timestamp  string      `json:"timestamp"`
}

func NewChatMessage(playerID, name, text string, at time.Time) ChatMessage {
	return ChatMessage{
		Type:       TypeChatMessage,
		PlayerID:   playerID,
		PlayerName: name,
		Message:    text,
		Timestamp:  at.Format(time.RFC3339),
	}
}

func (m ChatMessage) MessageType() MessageType { return m.Type }

// AnswerResult is used for both correct_answer and incorrect_answer.
// Answer is the matched main text when correct, the submitted text otherwise.
type AnswerResult struct {
	Type       MessageType `json:"type"`
	PlayerID   string      `json:"player_id"`
	PlayerName string      `json:"player_name"`
	Answer     string      `json:"answer"`
}

func NewCorrectAnswer(playerID, name, mainText string) AnswerResult {
	return AnswerResult{Type: TypeCorrectAnswer, PlayerID: playerID, PlayerName: name, Answer: mainText}
}

func NewIncorrectAnswer(playerID, name, submitted string) AnswerResult {
	return AnswerResult{Type: TypeIncorrectAnswer, PlayerID: playerID, PlayerName: name, Answer: submitted}
}

func (m AnswerResult) MessageType() MessageType { return m.Type }
