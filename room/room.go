// room/room.go
package room

import (
	"slices"
	"sync"

	"github.com/wfunc/drawparty/player"
	"github.com/wfunc/drawparty/state"
)

// MaxPlayers 每个房间的最大玩家数
const MaxPlayers = 30

// Room 是游戏房间的核心结构。所有字段由 mu 保护，房间之间互不阻塞。
type Room struct {
	id      string
	mu      sync.Mutex
	players []player.Player // 按加入顺序
	hostID  string
	game    *state.GameState
	seq     uint64
}

// NewRoom 创建一个空房间
func NewRoom(id string) *Room {
	return &Room{id: id}
}

// ID 返回房间码
func (r *Room) ID() string {
	return r.id
}

// Snapshot is an immutable view of a room taken under its lock.
// Seq is the sequence number of the transition that produced it.
type Snapshot struct {
	ID         string          `json:"id"`
	Players    []player.Player `json:"players"`
	HostID     string          `json:"host_id,omitempty"`
	MaxPlayers int             `json:"max_players"`
	GameState  *state.Snapshot `json:"game_state"`
	Seq        uint64          `json:"-"`
}

// Drawer returns the current drawer listed in the snapshot, if any.
func (s Snapshot) Drawer() (player.Player, bool) {
	for _, p := range s.Players {
		if p.IsDrawer() {
			return p, true
		}
	}
	return player.Player{}, false
}

// Tx gives exclusive access to a room for the duration of a Mutate or
// Read callback. It must not be retained after the callback returns.
type Tx struct {
	r *Room
}

// Mutate runs fn while holding the room's lock. When fn reports success
// the room's sequence number advances. The returned snapshot is taken
// before the lock is released.
//
// Every successful transition must be published with the snapshot's Seq
// exactly once; room subscribers receive messages in Seq order and wait
// for a sequence number that was reserved but never published.
func (r *Room) Mutate(fn func(tx *Tx) bool) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok := fn(&Tx{r: r})
	if ok {
		r.seq++
	}
	return r.snapshotLocked(), ok
}

// Read runs fn while holding the room's lock without advancing the
// sequence number. fn must not modify the room.
func (r *Room) Read(fn func(tx *Tx)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&Tx{r: r})
}

// Stamp reserves the next sequence number for a transition that does not
// change room state, such as a drawing stroke.
func (r *Room) Stamp() uint64 {
	snap, _ := r.Mutate(func(*Tx) bool { return true })
	return snap.Seq
}

// AddPlayer 添加一个玩家到房间；房间已满或 ID 重复时返回 false 且不做任何修改。
// 成功时返回的快照需要以 player_joined 发布。
func (r *Room) AddPlayer(p player.Player) (Snapshot, bool) {
	return r.Mutate(func(tx *Tx) bool { return tx.AddPlayer(p) })
}

// RemovePlayer 从房间移除一个玩家并返回被移除的玩家与移除后的快照
func (r *Room) RemovePlayer(id string) (player.Player, Snapshot, bool) {
	var removed player.Player
	snap, ok := r.Mutate(func(tx *Tx) bool {
		var found bool
		removed, found = tx.RemovePlayer(id)
		return found
	})
	return removed, snap, ok
}

// FindPlayer 获取单个玩家
func (r *Room) FindPlayer(id string) (player.Player, bool) {
	var p player.Player
	var ok bool
	r.Read(func(tx *Tx) { p, ok = tx.FindPlayer(id) })
	return p, ok
}

func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) Full() bool {
	return r.Len() >= MaxPlayers
}

func (r *Room) Empty() bool {
	return r.Len() == 0
}

// HostID returns the current host, absent when the room is empty.
func (r *Room) HostID() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID, r.hostID != ""
}

func (r *Room) IsHost(id string) bool {
	host, ok := r.HostID()
	return ok && host == id
}

// Snapshot 返回房间当前状态的只读副本
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:         r.id,
		Players:    slices.Clone(r.players),
		HostID:     r.hostID,
		MaxPlayers: MaxPlayers,
		Seq:        r.seq,
	}
	if s.Players == nil {
		s.Players = []player.Player{}
	}
	if r.game != nil {
		gs := r.game.Snapshot()
		s.GameState = &gs
	}
	return s
}

// --- Tx ---

// Players returns a copy of the roster in join order.
func (tx *Tx) Players() []player.Player {
	return slices.Clone(tx.r.players)
}

func (tx *Tx) Len() int {
	return len(tx.r.players)
}

func (tx *Tx) AddPlayer(p player.Player) bool {
	r := tx.r
	if len(r.players) >= MaxPlayers {
		return false
	}
	if tx.index(p.ID()) >= 0 {
		return false
	}
	r.players = append(r.players, p)
	if r.hostID == "" {
		r.hostID = p.ID()
	}
	return true
}

func (tx *Tx) RemovePlayer(id string) (player.Player, bool) {
	r := tx.r
	i := tx.index(id)
	if i < 0 {
		return player.Player{}, false
	}
	removed := r.players[i]
	r.players = slices.Delete(r.players, i, i+1)

	switch {
	case len(r.players) == 0:
		r.hostID = ""
	case r.hostID == id:
		r.hostID = r.players[0].ID()
	}
	return removed, true
}

func (tx *Tx) FindPlayer(id string) (player.Player, bool) {
	i := tx.index(id)
	if i < 0 {
		return player.Player{}, false
	}
	return tx.r.players[i], true
}

// Game returns the room's game state, nil before the first game starts.
func (tx *Tx) Game() *state.GameState {
	return tx.r.game
}

// EnsureGame creates the game state on first use.
func (tx *Tx) EnsureGame() *state.GameState {
	if tx.r.game == nil {
		tx.r.game = state.New()
	}
	return tx.r.game
}

// AssignRoles makes drawerID the only drawer; every other player becomes
// a guesser. Players are replaced, never modified in place.
func (tx *Tx) AssignRoles(drawerID string) {
	for i, p := range tx.r.players {
		role := player.RoleGuesser
		if p.ID() == drawerID {
			role = player.RoleDrawer
		}
		tx.r.players[i] = p.WithRole(role)
	}
}

// ResetRoles 将所有玩家角色重置为猜题者
func (tx *Tx) ResetRoles() {
	tx.AssignRoles("")
}

func (tx *Tx) index(id string) int {
	return slices.IndexFunc(tx.r.players, func(p player.Player) bool { return p.ID() == id })
}
