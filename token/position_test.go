package token

import "testing"

func TestColumnNumberAscii(t *testing.T) {
	line := "let x = 1 in x"
	if got := ColumnNumber(line, 4); got != 4 {
		t.Fatalf("ColumnNumber(%q, 4) = %d, want 4", line, got)
	}
}

func TestColumnNumberAstralGrapheme(t *testing.T) {
	// A family emoji built from a ZWJ sequence is one grapheme cluster but
	// several UTF-16 code units; the column count must treat it as one.
	line := "x" + "\U0001F468‍\U0001F469‍\U0001F467" + "y"
	units := utf16Units(line)
	// index of the trailing "y" in code units: 1 (x) + width of family + n
	yUnit := len(units) - 1
	if got := ColumnNumber(line, yUnit); got != 2 {
		t.Fatalf("ColumnNumber before y = %d, want 2 (x, family)", got)
	}
}

func TestPositionOrdering(t *testing.T) {
	a := Position{LineNumber: 1, LineCodeUnit: 5}
	b := Position{LineNumber: 1, LineCodeUnit: 6}
	c := Position{LineNumber: 2, LineCodeUnit: 0}
	if !a.Less(b) {
		t.Fatalf("expected %v < %v", a, b)
	}
	if !b.Less(c) {
		t.Fatalf("expected %v < %v", b, c)
	}
	if !a.LessEq(a) {
		t.Fatalf("expected %v <= %v", a, a)
	}
}
