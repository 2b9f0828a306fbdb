// Package store implements the append-only trace-line list (spec §4.7):
// clear/count/find/find_timestamp/save over the decoded TraceLine
// history, plus the Append/Tail primitives the decoder's text-coalescing
// policy builds on.
package store

// Store holds the decoded trace history in append order. Per spec §9 it
// is a contiguous growable slice whose last element is the tail, rather
// than an intrusive linked list, which keeps append O(1), search O(n),
// and tail-seal O(1) without the teacher's sentinel/cached-tail pointer
// aliasing concerns.
type Store struct {
	lines      []*Line
	hasAnchor  bool
	anchorTime float64
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// IsEmpty reports whether the store holds any lines.
func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}

// Count returns the number of lines.
func (s *Store) Count() int {
	return len(s.lines)
}

// Clear discards all lines and the timestamp anchor used to compute
// relative timefmt strings; the next Append re-anchors on its timestamp.
func (s *Store) Clear() {
	s.lines = nil
	s.hasAnchor = false
	s.anchorTime = 0
}

// Lines returns the underlying slice for read-only iteration (used by
// internal/timeline to rebuild marks). Callers must not mutate it.
func (s *Store) Lines() []*Line {
	return s.lines
}

// At returns the line at position i, or nil if out of range.
func (s *Store) At(i int) *Line {
	if i < 0 || i >= len(s.lines) {
		return nil
	}
	return s.lines[i]
}

// Tail returns the most recently appended line, or nil if empty.
func (s *Store) Tail() *Line {
	if len(s.lines) == 0 {
		return nil
	}
	return s.lines[len(s.lines)-1]
}

// Append starts a new line on the given channel at the given timestamp.
// The very first line appended (including the first after Clear)
// becomes the anchor every later line's TimeFmt is relative to.
func (s *Store) Append(channel int, timestamp float64) *Line {
	if !s.hasAnchor {
		s.hasAnchor = true
		s.anchorTime = timestamp
	}
	line := newLine(channel, timestamp, formatTimeFmt(timestamp-s.anchorTime))
	s.lines = append(s.lines, line)
	return line
}

// Find performs a case-insensitive substring search starting at
// start_line (inclusive), wrapping once around the full list. It
// returns the matching line index, or -1 if every line has been visited
// with no match (including when the store is empty).
func (s *Store) Find(text string, startLine int) int {
	n := len(s.lines)
	if n == 0 {
		return -1
	}
	start := startLine
	if start < 0 || start >= n {
		start = 0
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if s.lines[idx].matchesSubstring(text) {
			return idx
		}
	}
	return -1
}

// FindTimestamp returns the index of the last line whose timestamp is
// strictly less than ts, or -1 if the store is empty or every line's
// timestamp is >= ts.
func (s *Store) FindTimestamp(ts float64) int {
	if len(s.lines) == 0 {
		return -1
	}
	found := -1
	for i, l := range s.lines {
		if l.Timestamp < ts {
			found = i
		} else {
			break
		}
	}
	return found
}
