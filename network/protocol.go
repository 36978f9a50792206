package network

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 客户端上行消息的 action
const (
	ActionDraw        = "draw"
	ActionClearCanvas = "clear_canvas"
	ActionSendMessage = "send_message"
)

var ErrUnknownAction = errors.New("unknown action")

// ClientMessage is one inbound frame on a room subscription.
type ClientMessage struct {
	Action     string          `json:"action"`
	Stroke     json.RawMessage `json:"stroke,omitempty"`
	Message    string          `json:"message,omitempty"`
	PlayerName string          `json:"player_name,omitempty"`
	IsAnswer   bool            `json:"is_answer,omitempty"`
}

// DecodeClientMessage parses a frame and rejects unknown actions.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	switch msg.Action {
	case ActionDraw, ActionClearCanvas, ActionSendMessage:
		return msg, nil
	default:
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
}
