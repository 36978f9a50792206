// Package player defines the immutable player value held by a room.
package player

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength is counted in characters, not bytes.
const MaxNameLength = 20

var (
	ErrBlankName   = errors.New("player name must not be blank")
	ErrNameTooLong = errors.New("player name must be at most 20 characters")
)

// Role 玩家在当前回合中的角色
type Role string

const (
	RoleGuesser Role = "guesser"
	RoleDrawer  Role = "drawer"
)

// Player is a value: it is never mutated after construction.
// WithRole returns a modified copy.
type Player struct {
	id   string
	name string
	role Role
}

// New 创建一个新玩家并分配随机 ID
func New(name string) (Player, error) {
	return NewWithID(uuid.New().String(), name)
}

// NewWithID validates name and builds a guesser with the given id.
func NewWithID(id, name string) (Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Player{}, ErrBlankName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Player{}, ErrNameTooLong
	}
	return Player{id: id, name: name, role: RoleGuesser}, nil
}

func (p Player) ID() string   { return p.id }
func (p Player) Name() string { return p.name }
func (p Player) Role() Role   { return p.role }

func (p Player) IsDrawer() bool  { return p.role == RoleDrawer }
func (p Player) IsGuesser() bool { return p.role == RoleGuesser }

// WithRole 返回角色被替换后的副本
func (p Player) WithRole(role Role) Player {
	p.role = role
	return p
}

type view struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (p Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(view{ID: p.id, Name: p.name, Role: p.role})
}

// UnmarshalJSON exists for clients decoding broadcast payloads.
func (p *Player) UnmarshalJSON(data []byte) error {
	var v view
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Player{id: v.ID, name: v.Name, role: v.Role}
	return nil
}
