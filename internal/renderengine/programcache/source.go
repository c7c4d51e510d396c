package programcache

import "strings"

// source accumulates shader text line by line with four-space indentation.
type source struct {
	sb    strings.Builder
	depth int
}

func (s *source) indent() { s.depth++ }
func (s *source) dedent() { s.depth-- }

// line writes each argument as its own line at the current depth.
func (s *source) line(lines ...string) {
	for _, l := range lines {
		s.sb.WriteString(strings.Repeat("    ", s.depth))
		s.sb.WriteString(l)
		s.sb.WriteByte('\n')
	}
}

// snippet writes a multi-line literal, dropping its own leading indentation
// and blank edges but keeping relative nesting.
func (s *source) snippet(text string) {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			s.sb.WriteByte('\n')
			continue
		}
		s.line(strings.TrimRight(l[common:], " \t"))
	}
}

func (s *source) String() string { return s.sb.String() }

// block is one named piece of generated shader text, emitted only when its
// predicate holds for the key.
type block struct {
	name string
	when func(Key) bool
	emit func(*source, Key)
}

func always(Key) bool { return true }

// assemble emits blocks in order.
func assemble(k Key, blocks []block) string {
	var s source
	for _, b := range blocks {
		if b.when(k) {
			b.emit(&s, k)
		}
	}
	return s.String()
}

// included returns the names of the blocks emitted for k.
func included(k Key, blocks []block) []string {
	var names []string
	for _, b := range blocks {
		if b.when(k) {
			names = append(names, b.name)
		}
	}
	return names
}
