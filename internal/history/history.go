// Package history keeps a linear undo/redo log of scene snapshots.
package history

import (
	"time"

	"github.com/racan/racan/backend-go/internal/scene"
)

// Snapshot is one recorded state: a deep copy of the element list at the
// moment it was pushed.
type Snapshot struct {
	Elements []scene.Element
	At       time.Time
}

// Log is a snapshot list plus a cursor into it. The entry at the cursor is
// the current state. Pushing while the cursor is behind the end discards
// the redo tail first.
type Log struct {
	entries []Snapshot
	cursor  int
	now     func() time.Time
}

// New returns a log seeded with a single empty snapshot, so the very first
// edit can be undone back to an empty canvas.
func New() *Log {
	return NewAt(time.Now)
}

// NewAt is New with an injectable clock.
func NewAt(now func() time.Time) *Log {
	return &Log{
		entries: []Snapshot{{Elements: []scene.Element{}, At: now()}},
		now:     now,
	}
}

// Push records a new state. The elements are deep-copied on the way in, so
// the caller may keep mutating its slice.
func (l *Log) Push(elements []scene.Element) {
	l.entries = append(l.entries[:l.cursor+1], Snapshot{
		Elements: copied(elements),
		At:       l.now(),
	})
	l.cursor = len(l.entries) - 1
}

// CanUndo reports whether an earlier state exists.
func (l *Log) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether a later state exists.
func (l *Log) CanRedo() bool { return l.cursor < len(l.entries)-1 }

// Undo steps the cursor back and returns a copy of that state. Returns
// (nil, false) when already at the oldest entry.
func (l *Log) Undo() ([]scene.Element, bool) {
	if !l.CanUndo() {
		return nil, false
	}
	l.cursor--
	return copied(l.entries[l.cursor].Elements), true
}

// Redo steps the cursor forward and returns a copy of that state. Returns
// (nil, false) when already at the newest entry.
func (l *Log) Redo() ([]scene.Element, bool) {
	if !l.CanRedo() {
		return nil, false
	}
	l.cursor++
	return copied(l.entries[l.cursor].Elements), true
}

// Len returns the number of recorded snapshots.
func (l *Log) Len() int { return len(l.entries) }

func copied(els []scene.Element) []scene.Element {
	out := scene.CloneElements(els)
	if out == nil {
		out = []scene.Element{}
	}
	return out
}
