package broadcast

import (
	"encoding/json"
	"maps"
	"slices"
	"sync"

	"github.com/wfunc/drawparty/logger"
)

// maxPending bounds how many out-of-order messages a topic holds while
// waiting for a missing sequence number before giving up on the gap.
const maxPending = 1024

// Subscriber 是房间主题的一个订阅者，通常是一个 WebSocket 会话
type Subscriber interface {
	GetID() string
	GetPlayerID() string
	Send(data []byte) error
}

// Metrics receives one call per delivered message.
type Metrics interface {
	IncBroadcast(msgType string)
}

// Hub is the in-process Broadcaster. Each room gets its own topic with a
// dispatcher goroutine that releases messages in sequence order, so
// publishing never blocks on the network and never waits on another room.
type Hub struct {
	topics  map[string]*roomTopic
	mutex   sync.Mutex
	metrics Metrics
	closed  bool
}

func NewHub(metrics Metrics) *Hub {
	return &Hub{
		topics:  make(map[string]*roomTopic),
		metrics: metrics,
	}
}

type roomTopic struct {
	id      string
	mu      sync.Mutex
	subs    map[string]Subscriber
	next    uint64
	pending map[uint64]Message
	queue   []Message
	wake    chan struct{}
	done    chan struct{}
}

// OpenTopic registers the room's topic and starts its dispatcher. It must
// be called once when the room is created, before any transition of the
// room is published; the topic expects seq 1 first.
func (h *Hub) OpenTopic(roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.closed {
		return
	}
	if _, exists := h.topics[roomID]; exists {
		return
	}
	t := &roomTopic{
		id:      roomID,
		subs:    make(map[string]Subscriber),
		next:    1,
		pending: make(map[uint64]Message),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	h.topics[roomID] = t
	go h.loop(t)
}

// topic 查找已打开的房间主题；未打开或已关闭的房间返回 false
func (h *Hub) topic(roomID string) (*roomTopic, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	t, exists := h.topics[roomID]
	return t, exists
}

// BroadcastToRoom queues msg and returns immediately. Messages for a room
// without an open topic are dropped.
func (h *Hub) BroadcastToRoom(roomID string, seq uint64, msg Message) {
	t, ok := h.topic(roomID)
	if !ok {
		logger.Log.Debugf("房间 %s 主题未打开，丢弃消息 seq=%d type=%s", roomID, seq, msg.MessageType())
		return
	}

	t.mu.Lock()
	if seq < t.next {
		t.mu.Unlock()
		logger.Log.Warnf("房间 %s 丢弃过期消息 seq=%d type=%s", roomID, seq, msg.MessageType())
		return
	}
	t.pending[seq] = msg
	for {
		m, ok := t.pending[t.next]
		if !ok {
			break
		}
		delete(t.pending, t.next)
		t.queue = append(t.queue, m)
		t.next++
	}
	if len(t.pending) > maxPending {
		t.skipGapLocked()
	}
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *roomTopic) skipGapLocked() {
	seqs := slices.Sorted(maps.Keys(t.pending))
	logger.Log.Warnf("房间 %s 缺失 seq=%d，跳过至 %d", t.id, t.next, seqs[0])
	for _, s := range seqs {
		t.queue = append(t.queue, t.pending[s])
	}
	t.next = seqs[len(seqs)-1] + 1
	clear(t.pending)
}

// Subscribe attaches s to the room topic; it receives every message
// dispatched after this call. It reports false when the topic is not open.
func (h *Hub) Subscribe(roomID string, s Subscriber) bool {
	t, ok := h.topic(roomID)
	if !ok {
		return false
	}
	t.mu.Lock()
	t.subs[s.GetID()] = s
	t.mu.Unlock()
	return true
}

func (h *Hub) Unsubscribe(roomID, subscriberID string) {
	t, exists := h.topic(roomID)
	if !exists {
		return
	}
	t.mu.Lock()
	delete(t.subs, subscriberID)
	t.mu.Unlock()
}

func (h *Hub) Subscribers(roomID string) int {
	t, exists := h.topic(roomID)
	if !exists {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// CloseTopic stops the room's dispatcher and drops its subscribers.
// Messages still queued are discarded and later publishes for the room
// are ignored.
func (h *Hub) CloseTopic(roomID string) {
	h.mutex.Lock()
	t, exists := h.topics[roomID]
	delete(h.topics, roomID)
	h.mutex.Unlock()
	if exists {
		close(t.done)
	}
}

// Close 关闭所有房间主题
func (h *Hub) Close() {
	h.mutex.Lock()
	topics := h.topics
	h.topics = make(map[string]*roomTopic)
	h.closed = true
	h.mutex.Unlock()
	for _, t := range topics {
		close(t.done)
	}
}

func (h *Hub) loop(t *roomTopic) {
	for {
		select {
		case <-t.wake:
			for {
				batch, subs := t.take()
				if len(batch) == 0 {
					break
				}
				for _, msg := range batch {
					select {
					case <-t.done:
						return
					default:
					}
					h.deliver(t.id, msg, subs)
				}
			}
		case <-t.done:
			return
		}
	}
}

func (t *roomTopic) take() ([]Message, []Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	batch := t.queue
	t.queue = nil
	subs := make([]Subscriber, 0, len(t.subs))
	for _, s := range t.subs {
		subs = append(subs, s)
	}
	return batch, subs
}

func (h *Hub) deliver(roomID string, msg Message, subs []Subscriber) {
	personal, isPersonal := msg.(Personalizer)
	var shared []byte
	if !isPersonal {
		data, err := json.Marshal(msg)
		if err != nil {
			logger.Log.Errorf("房间 %s 消息编码失败 type=%s: %v", roomID, msg.MessageType(), err)
			return
		}
		shared = data
	}

	for _, s := range subs {
		data := shared
		if isPersonal {
			var err error
			if data, err = json.Marshal(personal.For(s.GetPlayerID())); err != nil {
				logger.Log.Errorf("房间 %s 消息编码失败 type=%s: %v", roomID, msg.MessageType(), err)
				continue
			}
		}
		if err := s.Send(data); err != nil {
			// 发送失败由连接自身的读循环负责清理
			logger.Log.Debugf("房间 %s 向会话 %s 发送失败: %v", roomID, s.GetID(), err)
		}
	}

	if h.metrics != nil {
		h.metrics.IncBroadcast(string(msg.MessageType()))
	}
}
