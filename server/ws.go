package server

import (
	"net/http"
	"time"

	"github.com/wfunc/drawparty/game"
	"github.com/wfunc/drawparty/logger"
	"github.com/wfunc/drawparty/network"
	"github.com/wfunc/drawparty/room"
	"github.com/wfunc/drawparty/session"
)

// handleWebSocket 订阅房间主题；room_id、player_id 缺失或房间不存在时在升级前拒绝
func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	playerID := r.URL.Query().Get("player_id")
	if roomID == "" || playerID == "" {
		logger.Log.Infof("拒绝订阅: room_id=%q player_id=%q", roomID, playerID)
		writeError(w, http.StatusBadRequest, codeBadRequest)
		return
	}
	if !room.ValidCode(roomID) {
		logger.Log.Infof("拒绝订阅: 房间码 %q 格式无效", roomID)
		writeError(w, http.StatusNotFound, codeRoomNotFound)
		return
	}
	if _, exists := s.roomManager.FindRoom(roomID); !exists {
		logger.Log.Infof("拒绝订阅: 房间 %s 不存在", roomID)
		writeError(w, http.StatusNotFound, codeRoomNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	wsConn := network.NewWSConnection(conn)
	wsConn.SetHeartbeat(heartbeatInterval)
	s.handleConnection(session.NewSession(wsConn, roomID, playerID))
}

func (s *GameServer) handleConnection(sess *session.Session) {
	if !s.hub.Subscribe(sess.RoomID, sess) {
		// 房间在升级期间被删除
		logger.Log.Infof("房间 %s 已关闭，断开会话 %s", sess.RoomID, sess.GetID())
		sess.Close()
		return
	}
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()
	logger.Log.Infof("New connection from %s, session ID: %s, room: %s, player: %s",
		sess.Conn.RemoteAddr(), sess.GetID(), sess.RoomID, sess.PlayerID)

	defer func() {
		logger.Log.Infof("Connection closed, session ID: %s", sess.GetID())
		s.hub.Unsubscribe(sess.RoomID, sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		sess.Close()
		s.leave(sess.RoomID, sess.PlayerID)
	}()

	for {
		data, err := sess.Conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(sess, data)
	}
}

// leave 断线即离开房间，只有玩家仍在房间中时才广播 player_left
func (s *GameServer) leave(roomID, playerID string) {
	rm, exists := s.roomManager.FindRoom(roomID)
	if !exists {
		return
	}
	removed, snap, ok := rm.RemovePlayer(playerID)
	if !ok {
		return
	}
	s.notifier.PlayerLeft(removed, snap)
	logger.Log.Infof("玩家 %s(%s) 离开房间 %s", removed.Name(), removed.ID(), roomID)
}

func (s *GameServer) handleMessage(sess *session.Session, data []byte) {
	start := time.Now()
	msg, err := network.DecodeClientMessage(data)
	if err != nil {
		logger.Log.Warnf("Session %s sent an invalid message: %v", sess.GetID(), err)
		return
	}
	s.monitor.IncMessagesReceived(msg.Action)
	defer func() { s.monitor.ObserveMessageLatency(time.Since(start)) }()

	rm, exists := s.roomManager.FindRoom(sess.RoomID)
	if !exists {
		logger.Log.Warnf("Room %s not found for session %s", sess.RoomID, sess.GetID())
		return
	}

	switch msg.Action {
	case network.ActionDraw:
		s.notifier.Draw(rm.ID(), rm.Stamp(), sess.PlayerID, msg.Stroke)
	case network.ActionClearCanvas:
		s.notifier.ClearCanvas(rm.ID(), rm.Stamp(), sess.PlayerID)
	case network.ActionSendMessage:
		s.handleChat(rm, sess.PlayerID, msg)
	}
}

func (s *GameServer) handleChat(rm *room.Room, playerID string, msg network.ClientMessage) {
	name := msg.PlayerName
	if p, found := rm.FindPlayer(playerID); found {
		name = p.Name()
	}

	v := s.coordinator.JudgeMessage(rm, playerID, msg.Message, msg.IsAnswer)
	switch v.Kind {
	case game.VerdictCorrect:
		s.notifier.CorrectAnswer(rm.ID(), v.Seq, playerID, name, v.Answer)
		logger.Log.Infof("房间 %s 玩家 %s 答对: %s", rm.ID(), playerID, v.Answer)
	case game.VerdictIncorrect:
		s.notifier.IncorrectAnswer(rm.ID(), v.Seq, playerID, name, msg.Message)
	default:
		s.notifier.Chat(rm.ID(), v.Seq, playerID, name, msg.Message, s.now())
	}
}
