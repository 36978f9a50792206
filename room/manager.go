package room

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
)

const (
	CodeLength   = 6
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Manager 管理所有房间。房间码在已注册的房间中唯一。
type Manager struct {
	rooms   map[string]*Room
	mutex   sync.RWMutex
	newCode func() string
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager() *Manager {
	return &Manager{
		rooms:   make(map[string]*Room),
		newCode: randomCode,
	}
}

func randomCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(CodeAlphabet[rand.IntN(len(CodeAlphabet))])
	}
	return b.String()
}

// CreateRoom 生成新的房间码并注册一个空房间。
// Codes are drawn until a free one is found; the loop has no upper bound
// and only terminates quickly while the 36^6 code space is sparsely used.
func (m *Manager) CreateRoom() *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := m.newCode()
	for {
		if _, taken := m.rooms[code]; !taken {
			break
		}
		code = m.newCode()
	}

	room := NewRoom(code)
	m.rooms[code] = room
	return room
}

// FindRoom 从管理器中获取一个房间
func (m *Manager) FindRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[code]
	return room, exists
}

// DeleteRoom removes a room; it is an administrative operation only.
func (m *Manager) DeleteRoom(code string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.rooms[code]; !exists {
		return false
	}
	delete(m.rooms, code)
	return true
}

// Rooms returns the registered rooms ordered by code.
func (m *Manager) Rooms() []*Room {
	m.mutex.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mutex.RUnlock()

	slices.SortFunc(rooms, func(a, b *Room) int { return strings.Compare(a.id, b.id) })
	return rooms
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// ValidCode reports whether code has the shape of a room code.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(CodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
