package topic

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

const (
	katakanaFirst = 'ァ' // U+30A1
	katakanaLast  = 'ン' // U+30F3
	kanaOffset    = 'ァ' - 'ぁ'
)

// strippedPunct is removed together with every whitespace rune.
const strippedPunct = "、。！？!?"

var fullwidthAlnum = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0xFF10, Hi: 0xFF19, Stride: 1}, // ０-９
		{Lo: 0xFF21, Hi: 0xFF3A, Stride: 1}, // Ａ-Ｚ
		{Lo: 0xFF41, Hi: 0xFF5A, Stride: 1}, // ａ-ｚ
	},
}

func katakanaToHiragana(r rune) rune {
	if r >= katakanaFirst && r <= katakanaLast {
		return r - kanaOffset
	}
	return r
}

func stripped(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(strippedPunct, r)
}

// Chained transformers carry state, so every call builds its own chain.
func newNormalizer() transform.Transformer {
	return transform.Chain(
		runes.Map(katakanaToHiragana),
		runes.If(runes.In(fullwidthAlnum), width.Narrow, nil),
		runes.Remove(runes.Predicate(stripped)),
	)
}

// Normalize folds katakana to hiragana, full-width alphanumerics to
// half-width, and drops whitespace and 、。！？!? so that answers can be
// compared. It is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(newNormalizer(), s)
	if err != nil {
		// none of the transformers in the chain report errors
		return s
	}
	return out
}

// isBlank reports whether s has nothing left to compare once normalized.
func isBlank(s string) bool {
	return Normalize(s) == ""
}
