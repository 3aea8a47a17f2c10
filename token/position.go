// Package token defines the lexical vocabulary of M: positions, tokens,
// comments and the token-kind enumeration shared by the lexer and parser.
package token

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// Position is a zero-based (line, UTF-16 code unit) pair, matching the
// cursor coordinates editor clients report over LSP.
type Position struct {
	LineNumber   int
	LineCodeUnit int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.LineNumber, p.LineCodeUnit)
}

// Less orders positions in document order.
func (p Position) Less(other Position) bool {
	if p.LineNumber != other.LineNumber {
		return p.LineNumber < other.LineNumber
	}
	return p.LineCodeUnit < other.LineCodeUnit
}

// LessEq is Less or equal.
func (p Position) LessEq(other Position) bool {
	return p == other || p.Less(other)
}

// ColumnNumber counts grapheme clusters, not UTF-16 code units, from the
// start of lineText up to the given UTF-16 code unit offset. It is computed
// on demand: the wire format (spec.md §6) only carries lineCodeUnit, and
// most consumers never need the grapheme column.
func ColumnNumber(lineText string, lineCodeUnit int) int {
	if lineCodeUnit <= 0 {
		return 0
	}
	units16 := utf16Units(lineText)
	if lineCodeUnit > len(units16) {
		lineCodeUnit = len(units16)
	}
	// Re-derive the byte offset covering exactly lineCodeUnit UTF-16 units,
	// then count graphemes up to that byte offset.
	byteOffset := byteOffsetForUTF16Units(lineText, lineCodeUnit)
	column := 0
	state := -1
	rest := lineText[:byteOffset]
	for len(rest) > 0 {
		var seg string
		seg, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if seg == "" {
			break
		}
		column++
	}
	return column
}

// utf16Units returns one entry per UTF-16 code unit s encodes as; callers
// use only its length, and an astral rune contributes two zero entries.
func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r > 0xFFFF {
			units = append(units, 0, 0) // surrogate pair, two units
		} else {
			units = append(units, uint16(r))
		}
	}
	return units
}

// byteOffsetForUTF16Units walks s rune by rune, accumulating UTF-16 code
// unit width per rune, and returns the byte offset once unitCount units
// have been consumed.
func byteOffsetForUTF16Units(s string, unitCount int) int {
	units := 0
	for i, r := range s {
		if units >= unitCount {
			return i
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return len(s)
}
