package monitor

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Counters(t *testing.T) {
	m := NewMonitor("drawparty")

	m.IncOnlinePlayers()
	m.IncOnlinePlayers()
	m.DecOnlinePlayers()
	m.SetActiveRooms(3)
	m.IncMessagesReceived("draw")
	m.IncMessagesReceived("draw")
	m.IncMessagesReceived("send_message")
	m.IncBroadcast("chat_message")
	m.ObserveMessageLatency(5 * time.Millisecond)

	metrics := m.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OnlinePlayers))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ActiveRooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MessagesReceived.WithLabelValues("draw")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MessagesReceived.WithLabelValues("send_message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Broadcasts.WithLabelValues("chat_message")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.MessageLatency))
}

func TestMonitor_PrivateRegistries(t *testing.T) {
	a := NewMonitor("drawparty")
	b := NewMonitor("drawparty")

	a.SetActiveRooms(7)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Metrics().ActiveRooms))
}

func TestMonitor_Handler(t *testing.T) {
	m := NewMonitor("drawparty")
	m.SetActiveRooms(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "drawparty_active_rooms 2")
	assert.Contains(t, string(body), "drawparty_uptime_seconds")
}
