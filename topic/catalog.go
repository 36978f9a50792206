// Package topic holds the immutable catalog of drawable topics and the
// fuzzy matching used to judge answers.
package topic

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyCatalog = errors.New("topic catalog is empty")
	ErrBlankMain    = errors.New("topic main text is blank")
	ErrBlankAlias   = errors.New("topic alias is blank")
)

// Entry 一道题目：主答案与可接受的别名
type Entry struct {
	Main    string   `yaml:"main" json:"main"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// IsBlank reports whether the entry has no usable main text.
func (e Entry) IsBlank() bool {
	return isBlank(e.Main)
}

// Validate rejects a main text or alias that normalizes to nothing.
func (e Entry) Validate() error {
	if e.IsBlank() {
		return ErrBlankMain
	}
	for i, alias := range e.Aliases {
		if isBlank(alias) {
			return fmt.Errorf("alias %d: %w", i, ErrBlankAlias)
		}
	}
	return nil
}

// Clone returns an entry that shares no memory with e.
func (e Entry) Clone() Entry {
	c := Entry{Main: e.Main}
	if e.Aliases != nil {
		c.Aliases = append([]string(nil), e.Aliases...)
	}
	return c
}

// Catalog is loaded once at startup and never mutated afterwards, so it
// is safe for concurrent use without locking.
type Catalog struct {
	entries []Entry
}

// NewCatalog validates entries and copies them into a new catalog.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{entries: make([]Entry, 0, len(entries))}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("topic %d: %w", i, err)
		}
		c.entries = append(c.entries, e.Clone())
	}
	return c, nil
}

type catalogFile struct {
	Topics []Entry `yaml:"topics"`
}

// Parse reads the YAML catalog format:
//
//	topics:
//	  - main: 猫
//	    aliases: [ネコ, cat]
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	return NewCatalog(f.Topics)
}

// LoadFile parses the catalog stored at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics: %w", err)
	}
	return Parse(data)
}

// Len 返回题目数量
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of every entry.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Clone()
	}
	return out
}

// Random 均匀随机选取一道题目
func (c *Catalog) Random() Entry {
	return c.entries[rand.IntN(len(c.entries))].Clone()
}

// Correct reports whether answer matches the main text or one of the
// aliases of e after normalization. Blank inputs never match.
func Correct(answer string, e Entry) bool {
	if isBlank(answer) || e.IsBlank() {
		return false
	}
	normalized := Normalize(answer)
	if Normalize(e.Main) == normalized {
		return true
	}
	for _, alias := range e.Aliases {
		if !isBlank(alias) && Normalize(alias) == normalized {
			return true
		}
	}
	return false
}
