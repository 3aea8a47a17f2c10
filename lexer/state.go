package lexer

import (
	"sort"
	"strings"

	"github.com/sasha-s/go-deadlock"
)

// State is an ordered sequence of Lines together with the modes flowing
// across them (spec.md section 3). It is owned by exactly one session
// (spec.md section 5); guard is a deadlock-detecting mutex rather than a
// plain sync.Mutex so that an embedder who accidentally shares a State
// across goroutines gets a loud diagnostic instead of silent corruption.
type State struct {
	guard deadlock.Mutex
	Lines []*Line
}

// StateFrom splits text on an auto-detected line terminator and tokenizes
// each line in sequence, threading the end-mode of line i into the
// start-mode of line i+1 (spec.md section 4.1).
func StateFrom(text string) *State {
	rawLines, terms := splitLines(text)
	state := &State{Lines: make([]*Line, len(rawLines))}
	mode := ModeDefault
	for i, raw := range rawLines {
		tokens, outgoing, lexErr := tokenizeLine(i, raw, mode)
		state.Lines[i] = &Line{
			Number:         i,
			KindAtStart:    mode,
			KindAtEnd:      outgoing,
			LineString:     raw,
			LineTerminator: terms[i],
			tokens:         tokens,
			MaybeError:     lexErr,
		}
		mode = outgoing
	}
	return state
}

// lineTerminatorRunes is every terminator named in spec.md section 6,
// ordered so the two-byte "\r\n" is matched before the lone "\r".
var lineTerminatorRunes = []string{
	"\r\n", "\n", "\r", " ", " ", "", "", "",
}

// splitLines splits text into lines and records, per line, the terminator
// that followed it (empty for the final, unterminated line). An empty
// document yields exactly one empty line, per the invariant in spec.md
// section 3.
func splitLines(text string) (lines []string, terminators []string) {
	if text == "" {
		return []string{""}, []string{""}
	}
	var cur strings.Builder
	i := 0
	for i < len(text) {
		matched := ""
		for _, t := range lineTerminatorRunes {
			if strings.HasPrefix(text[i:], t) {
				matched = t
				break
			}
		}
		if matched != "" {
			lines = append(lines, cur.String())
			terminators = append(terminators, matched)
			cur.Reset()
			i += len(matched)
			continue
		}
		r := text[i]
		cur.WriteByte(r)
		i++
	}
	lines = append(lines, cur.String())
	terminators = append(terminators, "")
	return lines, terminators
}

// AppendLine appends a line, re-tokenizing from the prior line's end-mode
// (spec.md section 4.1).
func (s *State) AppendLine(text, terminator string) {
	s.guard.Lock()
	defer s.guard.Unlock()

	mode := ModeDefault
	if n := len(s.Lines); n > 0 {
		mode = s.Lines[n-1].KindAtEnd
	}
	number := len(s.Lines)
	tokens, outgoing, lexErr := tokenizeLine(number, text, mode)
	s.Lines = append(s.Lines, &Line{
		Number:         number,
		KindAtStart:    mode,
		KindAtEnd:      outgoing,
		LineString:     text,
		LineTerminator: terminator,
		tokens:         tokens,
		MaybeError:     lexErr,
	})
}

// TryUpdateLine replaces one line and re-tokenizes from that line forward
// only as long as the outgoing mode of a retokenized line differs from the
// stored outgoing mode of the next line — the incremental optimization of
// spec.md section 4.1: propagation stops the moment modes reconverge.
func (s *State) TryUpdateLine(lineNumber int, newText string) error {
	s.guard.Lock()
	defer s.guard.Unlock()

	if lineNumber < 0 || lineNumber >= len(s.Lines) {
		return &Error{Kind: BadRange, LineNumber: lineNumber, Message: "line number out of range"}
	}

	mode := s.Lines[lineNumber].KindAtStart
	i := lineNumber
	text := newText
	for {
		old := s.Lines[i]
		tokens, outgoing, lexErr := tokenizeLine(i, text, mode)
		s.Lines[i] = &Line{
			Number:         i,
			KindAtStart:    mode,
			KindAtEnd:      outgoing,
			LineString:     text,
			LineTerminator: old.LineTerminator,
			tokens:         tokens,
			MaybeError:     lexErr,
		}

		next := i + 1
		if next >= len(s.Lines) {
			return nil
		}
		if outgoing == s.Lines[next].KindAtStart {
			// Modes reconverged: everything from `next` on is still valid.
			return nil
		}
		mode = outgoing
		text = s.Lines[next].LineString
		i = next
	}
}

// TryUpdateRange generalizes TryUpdateLine to the whole lines startLine
// through endLine (at least one line), replacing them with newText split
// into lines and tokenized here; TryUpdateLine is called only to carry a
// changed end-mode into the lines that follow (spec.md section 4.1).
func (s *State) TryUpdateRange(startLine, endLine int, newText string) error {
	s.guard.Lock()
	if startLine < 0 || endLine < startLine || endLine >= len(s.Lines) {
		s.guard.Unlock()
		return &Error{Kind: BadRange, LineNumber: startLine, Message: "range out of bounds"}
	}
	terminator := s.Lines[endLine].LineTerminator
	before := s.Lines[:startLine]
	after := append([]*Line{}, s.Lines[endLine+1:]...)
	s.guard.Unlock()

	replacementText, replacementTerms := splitLines(newText)
	if len(replacementTerms) > 0 {
		replacementTerms[len(replacementTerms)-1] = terminator
	}

	s.guard.Lock()
	mode := ModeDefault
	if startLine > 0 {
		mode = before[startLine-1].KindAtEnd
	}
	replaced := make([]*Line, len(replacementText))
	for i, text := range replacementText {
		tokens, outgoing, lexErr := tokenizeLine(startLine+i, text, mode)
		replaced[i] = &Line{
			Number:         startLine + i,
			KindAtStart:    mode,
			KindAtEnd:      outgoing,
			LineString:     text,
			LineTerminator: replacementTerms[i],
			tokens:         tokens,
			MaybeError:     lexErr,
		}
		mode = outgoing
	}

	merged := append(append(append([]*Line{}, before...), replaced...), after...)
	renumber(merged)
	s.Lines = merged
	s.guard.Unlock()

	// Propagate mode changes into `after` exactly like TryUpdateLine does.
	if len(after) == 0 {
		return nil
	}
	boundary := startLine + len(replaced)
	if boundary >= len(s.Lines) {
		return nil
	}
	if s.Lines[boundary-1].KindAtEnd == s.Lines[boundary].KindAtStart {
		return nil
	}
	// TryUpdateLine starts from the line's stored KindAtStart, so hand it
	// the replaced span's new end-mode first.
	s.guard.Lock()
	first := *s.Lines[boundary]
	first.KindAtStart = s.Lines[boundary-1].KindAtEnd
	s.Lines[boundary] = &first
	s.guard.Unlock()
	return s.TryUpdateLine(boundary, first.LineString)
}

func renumber(lines []*Line) {
	for i, l := range lines {
		if l.Number == i {
			continue
		}
		l.Number = i
		for j := range l.tokens {
			l.tokens[j].start.LineNumber = i
			l.tokens[j].end.LineNumber = i
		}
		if l.MaybeError != nil {
			l.MaybeError.LineNumber = i
			l.MaybeError.Position.LineNumber = i
		}
	}
}

// ErrorLineMap is a mapping from lineNumber to that line's lexical error,
// ordered ascending by lineNumber (spec.md section 4.1).
type ErrorLineMap struct {
	byLine map[int]*Error
	order  []int
}

func (m *ErrorLineMap) IsEmpty() bool { return m == nil || len(m.order) == 0 }

func (m *ErrorLineMap) Get(lineNumber int) (*Error, bool) {
	if m == nil {
		return nil, false
	}
	e, ok := m.byLine[lineNumber]
	return e, ok
}

// OrderedLineNumbers returns the erroring line numbers in ascending order.
func (m *ErrorLineMap) OrderedLineNumbers() []int {
	if m == nil {
		return nil
	}
	return m.order
}

// BuildErrorLineMap scans state.Lines for lexical errors (spec.md
// section 4.1). It returns nil when there are none.
func BuildErrorLineMap(s *State) *ErrorLineMap {
	s.guard.Lock()
	defer s.guard.Unlock()

	m := &ErrorLineMap{byLine: map[int]*Error{}}
	for _, line := range s.Lines {
		if line.MaybeError != nil {
			m.byLine[line.Number] = line.MaybeError
			m.order = append(m.order, line.Number)
		}
	}
	if len(m.order) == 0 {
		return nil
	}
	sort.Ints(m.order)
	return m
}
