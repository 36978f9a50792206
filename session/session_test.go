package session

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func (m *MockConnection) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockConnection) ReadMessage() ([]byte, error)        { return nil, nil }
func (m *MockConnection) RemoteAddr() net.Addr                { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration) {}

func TestNewManager(t *testing.T) {
	manager := NewManager()
	require.NotNil(t, manager)
	assert.NotNil(t, manager.sessions)
	assert.Equal(t, 0, manager.Count())
}

func TestManager_Add_Remove(t *testing.T) {
	manager := NewManager()
	sess := NewSession(&MockConnection{}, "ABC123", "p1")

	manager.Add(sess)
	assert.Equal(t, 1, manager.Count())
	assert.Same(t, sess, manager.sessions[sess.ID])

	manager.Remove(sess.ID)
	assert.Equal(t, 0, manager.Count())
	manager.Remove(sess.ID)
	assert.Equal(t, 0, manager.Count())
}

func TestManager_CloseRoom(t *testing.T) {
	manager := NewManager()
	conns := []*MockConnection{{}, {}, {}}
	manager.Add(NewSession(conns[0], "ROOMAA", "p1"))
	manager.Add(NewSession(conns[1], "ROOMBB", "p2"))
	manager.Add(NewSession(conns[2], "ROOMAA", "p3"))

	assert.Equal(t, 0, manager.CloseRoom("ROOMCC"))
	assert.Equal(t, 2, manager.CloseRoom("ROOMAA"))
	assert.True(t, conns[0].closed)
	assert.False(t, conns[1].closed)
	assert.True(t, conns[2].closed)
	assert.Equal(t, 1, manager.Count())
}

func TestSession_SendAndIdentity(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession(conn, "ABC123", "p1")
	other := NewSession(conn, "ABC123", "p1")

	assert.NotEqual(t, sess.GetID(), other.GetID(), "session ids are unique")
	assert.Equal(t, "p1", sess.GetPlayerID())

	require.NoError(t, sess.Send([]byte(`{"type":"draw"}`)))

	assert.Equal(t, [][]byte{[]byte(`{"type":"draw"}`)}, conn.sent)
	assert.WithinDuration(t, time.Now(), sess.CreatedAt, time.Second)
}

func TestManager_CloseAll(t *testing.T) {
	manager := NewManager()
	conns := []*MockConnection{{}, {}}
	manager.Add(NewSession(conns[0], "ROOMAA", "p1"))
	manager.Add(NewSession(conns[1], "ROOMBB", "p2"))

	manager.CloseAll()

	assert.Equal(t, 0, manager.Count())
	assert.True(t, conns[0].closed)
	assert.True(t, conns[1].closed)
}
