// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/drawparty/network"
)

// Session 是一个玩家在某个房间上的 WebSocket 订阅
type Session struct {
	ID        string
	Conn      network.Connection
	RoomID    string
	PlayerID  string
	CreatedAt time.Time
}

func NewSession(conn network.Connection, roomID, playerID string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Conn:      conn,
		RoomID:    roomID,
		PlayerID:  playerID,
		CreatedAt: time.Now(),
	}
}

func (s *Session) Send(data []byte) error {
	return s.Conn.Send(data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) GetPlayerID() string {
	return s.PlayerID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// CloseRoom closes and forgets every session subscribed to roomID.
func (m *Manager) CloseRoom(roomID string) int {
	m.mutex.Lock()
	var closing []*Session
	for id, session := range m.sessions {
		if session.RoomID == roomID {
			closing = append(closing, session)
			delete(m.sessions, id)
		}
	}
	m.mutex.Unlock()

	for _, session := range closing {
		session.Close()
	}
	return len(closing)
}

// CloseAll 关闭全部会话，用于服务停止
func (m *Manager) CloseAll() {
	m.mutex.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mutex.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
