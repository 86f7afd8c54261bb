// Package tui provides a Bubble Tea terminal UI for playing a clinic world.
package tui

import "strings"

// History keeps the commands typed this session, newest last, and walks
// them shell-style: Up recalls older lines that start with whatever was
// typed before the walk began.
type History struct {
	lines  []string
	max    int
	pos    int // index of the recalled line, len(lines) when not walking
	prefix string
	draft  string
}

// NewHistory creates a history holding at most max lines.
func NewHistory(max int) *History {
	return &History{lines: make([]string, 0, max), max: max}
}

// Record stores a submitted line and ends any walk. Blank lines and the
// repeat shortcuts are not stored. A line already present moves to the
// newest slot instead of being stored twice.
func (h *History) Record(line string) {
	defer h.Reset()
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "", "again", "g":
		return
	}
	for i, l := range h.lines {
		if l == line {
			h.lines = append(h.lines[:i], h.lines[i+1:]...)
			break
		}
	}
	h.lines = append(h.lines, line)
	if len(h.lines) > h.max {
		h.lines = h.lines[len(h.lines)-h.max:]
	}
}

// Older returns the next older line matching the walk's prefix. The
// first call of a walk remembers input as both the draft and the prefix.
// At the oldest match the same line is returned again.
func (h *History) Older(input string) (string, bool) {
	if !h.Walking() {
		h.pos = len(h.lines)
		h.draft = input
		h.prefix = strings.ToLower(strings.TrimSpace(input))
	}
	for i := h.pos - 1; i >= 0; i-- {
		if h.matches(i) {
			h.pos = i
			return h.lines[i], true
		}
	}
	if h.pos < len(h.lines) {
		return h.lines[h.pos], true
	}
	return "", false
}

// Newer returns the next newer matching line. Walking past the newest
// match ends the walk and returns the draft with false.
func (h *History) Newer() (string, bool) {
	if !h.Walking() {
		return "", false
	}
	for i := h.pos + 1; i < len(h.lines); i++ {
		if h.matches(i) {
			h.pos = i
			return h.lines[i], true
		}
	}
	draft := h.draft
	h.Reset()
	return draft, false
}

// Reset ends the current walk.
func (h *History) Reset() {
	h.pos = len(h.lines)
	h.prefix, h.draft = "", ""
}

// Walking reports whether a recalled line is currently shown.
func (h *History) Walking() bool {
	return h.pos < len(h.lines)
}

func (h *History) matches(i int) bool {
	return strings.HasPrefix(strings.ToLower(h.lines[i]), h.prefix)
}
