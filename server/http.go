package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wfunc/drawparty/logger"
	"github.com/wfunc/drawparty/player"
	"github.com/wfunc/drawparty/room"
)

// 错误码
const (
	codeRoomNotFound = "room_not_found"
	codeRoomFull     = "room_full"
	codeInvalidName  = "invalid_name"
	codeBadRequest   = "bad_request"
	codeNotDrawer    = "not_drawer"
)

// Handler returns the HTTP surface: room control endpoints, the
// WebSocket subscription and a health check.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /rooms/{code}", s.handleShowRoom)
	mux.HandleFunc("POST /rooms/{code}/players", s.handleJoinRoom)
	mux.HandleFunc("POST /rooms/{code}/game/start", s.handleStartGame)
	mux.HandleFunc("POST /rooms/{code}/round/next", s.handleNextRound)
	mux.HandleFunc("POST /rooms/{code}/game/finish", s.handleFinishGame)
	mux.HandleFunc("POST /rooms/{code}/game/reset", s.handleResetGame)
	mux.HandleFunc("GET /rooms/{code}/topic", s.handleTopic)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Warnf("写入响应失败: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}

func (s *GameServer) findRoom(w http.ResponseWriter, r *http.Request) (*room.Room, bool) {
	code := r.PathValue("code")
	if !room.ValidCode(code) {
		writeError(w, http.StatusNotFound, codeRoomNotFound)
		return nil, false
	}
	rm, exists := s.roomManager.FindRoom(code)
	if !exists {
		writeError(w, http.StatusNotFound, codeRoomNotFound)
	}
	return rm, exists
}

func (s *GameServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	rm := s.roomManager.CreateRoom()
	s.hub.OpenTopic(rm.ID())
	s.monitor.SetActiveRooms(s.roomManager.Count())
	logger.Log.Infof("创建房间 %s", rm.ID())
	writeJSON(w, http.StatusCreated, map[string]string{"room_id": rm.ID()})
}

// handleShowRoom returns the public room snapshot; the current topic is
// never part of it.
func (s *GameServer) handleShowRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.findRoom(w, r)
	if !ok {
		return
	}
	if rm.Full() {
		writeError(w, http.StatusConflict, codeRoomFull)
		return
	}
	snap := rm.Snapshot()
	if snap.GameState != nil {
		public := snap.GameState.WithoutTopic()
		snap.GameState = &public
	}
	writeJSON(w, http.StatusOK, snap)
}

type joinRequest struct {
	PlayerName string `json:"player_name"`
}

type JoinResult struct {
	PlayerID string `json:"player_id"`
	RoomID   string `json:"room_id"`
}

// JoinRoom adds a new player named name to the room with the given code.
func (s *GameServer) JoinRoom(code, name string) (JoinResult, error) {
	if !room.ValidCode(code) {
		return JoinResult{}, ErrRoomNotFound
	}
	rm, exists := s.roomManager.FindRoom(code)
	if !exists {
		return JoinResult{}, ErrRoomNotFound
	}
	if rm.Full() {
		return JoinResult{}, ErrRoomFull
	}
	p, err := player.New(name)
	if err != nil {
		return JoinResult{}, err
	}
	snap, ok := rm.AddPlayer(p)
	if !ok {
		return JoinResult{}, ErrRoomFull
	}
	s.notifier.PlayerJoined(p, snap)
	logger.Log.Infof("玩家 %s(%s) 加入房间 %s", p.Name(), p.ID(), rm.ID())
	return JoinResult{PlayerID: p.ID(), RoomID: rm.ID()}, nil
}

func (s *GameServer) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest)
		return
	}
	resp, err := s.JoinRoom(r.PathValue("code"), req.PlayerName)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, resp)
	case errors.Is(err, ErrRoomNotFound):
		writeError(w, http.StatusNotFound, codeRoomNotFound)
	case errors.Is(err, ErrRoomFull):
		writeError(w, http.StatusConflict, codeRoomFull)
	case errors.Is(err, player.ErrBlankName), errors.Is(err, player.ErrNameTooLong):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidName)
	default:
		logger.Log.Errorf("加入房间失败: %v", err)
		writeError(w, http.StatusInternalServerError, codeBadRequest)
	}
}

func (s *GameServer) handleStartGame(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.findRoom(w, r)
	if !ok {
		return
	}
	snap, started := s.coordinator.StartGame(rm)
	if started {
		s.notifier.GameStateUpdated(snap)
	}
	writeJSON(w, http.StatusOK, successResponse{Success: started})
}

func (s *GameServer) handleNextRound(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.findRoom(w, r)
	if !ok {
		return
	}
	snap, started := s.coordinator.StartRound(rm)
	if started {
		s.notifier.GameStateUpdated(snap)
	}
	writeJSON(w, http.StatusOK, successResponse{Success: started})
}

func (s *GameServer) handleFinishGame(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.findRoom(w, r)
	if !ok {
		return
	}
	s.notifier.GameStateUpdated(s.coordinator.FinishGame(rm))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *GameServer) handleResetGame(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.findRoom(w, r)
	if !ok {
		return
	}
	s.notifier.GameStateUpdated(s.coordinator.ResetGame(rm))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleTopic 仅向当前画家返回题目
func (s *GameServer) handleTopic(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.findRoom(w, r)
	if !ok {
		return
	}
	main, isDrawer := s.coordinator.CurrentTopicFor(rm, r.URL.Query().Get("player_id"))
	if !isDrawer {
		writeError(w, http.StatusForbidden, codeNotDrawer)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"topic": main})
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"rooms":    s.roomManager.Count(),
		"sessions": s.sessionManager.Count(),
	})
}
