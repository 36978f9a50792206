package topic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ネコ", "ねこ"},
		{"ァィゥェォ", "ぁぃぅぇぉ"},
		{"ン", "ん"},
		{"ヴ", "ヴ"},
		{"ｃａｔ", "cat"},
		{"ＣＡＴ", "CAT"},
		{"１２３", "123"},
		{"ね こ", "ねこ"},
		{"ね　こ", "ねこ"},
		{"ねこ！", "ねこ"},
		{"ねこ？！?!", "ねこ"},
		{"ね、こ。", "ねこ"},
		{"\tcat\n", "cat"},
		{"猫", "猫"},
		{"ー", "ー"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "ネコ", "ＣＡＴ　ｃａｔ", "ア イ！ウ？", "猫、犬。", "mixed ネコ Ｃａｔ 123 !?",
		"ヴァイオリン", "\xff\xfeネ", "　",
	}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestCorrect(t *testing.T) {
	cat := Entry{Main: "猫", Aliases: []string{"ネコ", "cat"}}

	tests := []struct {
		answer string
		want   bool
	}{
		{"猫", true},
		{"ねこ", true},
		{"ネコ", true},
		{"cat", true},
		{"ｃａｔ", true},
		{" ね こ ！", true},
		{"犬", false},
		{"CAT", false},
		{"", false},
		{"   ", false},
		{"　", false},
		{"！", false},
		{"。", false},
		{" ！？ ", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, Correct(tt.answer, cat))
		})
	}
}

func TestCorrect_BlankTopic(t *testing.T) {
	assert.False(t, Correct("猫", Entry{}))
	assert.False(t, Correct("猫", Entry{Main: "  ", Aliases: []string{"猫"}}))
	assert.False(t, Correct("", Entry{}))
	assert.False(t, Correct("!", Entry{Main: "？"}))
	assert.False(t, Correct("！", Entry{Main: "猫", Aliases: []string{""}}))
	assert.True(t, Correct("ねこ", Entry{Main: "猫", Aliases: []string{"。", "ネコ"}}))
}

func TestNewCatalog_Validation(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{name: "whitespace main", entry: Entry{Main: " "}, wantErr: ErrBlankMain},
		{name: "punctuation main", entry: Entry{Main: "？！"}, wantErr: ErrBlankMain},
		{name: "full stop main", entry: Entry{Main: "。"}, wantErr: ErrBlankMain},
		{name: "empty alias", entry: Entry{Main: "猫", Aliases: []string{"", "ネコ"}}, wantErr: ErrBlankAlias},
		{name: "punctuation alias", entry: Entry{Main: "猫", Aliases: []string{"ネコ", "！"}}, wantErr: ErrBlankAlias},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog([]Entry{{Main: "犬"}, tt.entry})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_BlankAlias(t *testing.T) {
	_, err := Parse([]byte("topics:\n  - main: 猫\n    aliases: [\"\", ネコ]\n"))
	assert.ErrorIs(t, err, ErrBlankAlias)
}

func TestNewCatalog_CopiesEntries(t *testing.T) {
	entries := []Entry{{Main: "猫", Aliases: []string{"ネコ"}}}
	c, err := NewCatalog(entries)
	require.NoError(t, err)

	entries[0].Aliases[0] = "changed"
	got := c.Entries()
	assert.Equal(t, "ネコ", got[0].Aliases[0])

	got[0].Main = "changed"
	assert.Equal(t, "猫", c.Entries()[0].Main)
}

func TestParse(t *testing.T) {
	data := []byte(`
topics:
  - main: 猫
    aliases:
      - ネコ
      - cat
  - main: 犬
`)
	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []Entry{
		{Main: "猫", Aliases: []string{"ネコ", "cat"}},
		{Main: "犬"},
	}, c.Entries())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("topics: []"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = Parse([]byte("topics: [[["))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yml")
	require.NoError(t, os.WriteFile(path, []byte("topics:\n  - main: りんご\n    aliases: [リンゴ, apple]\n"), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadFile_RepositoryCatalog(t *testing.T) {
	c, err := LoadFile(filepath.Join("..", "quiz_topics.yml"))
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 0)
}

func TestRandom(t *testing.T) {
	c, err := NewCatalog([]Entry{{Main: "a"}, {Main: "b"}, {Main: "c"}})
	require.NoError(t, err)

	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		seen[c.Random().Main]++
	}
	assert.Len(t, seen, 3)
	for main, n := range seen {
		assert.Greater(t, n, 30, "topic %s drawn too rarely", main)
	}
}
