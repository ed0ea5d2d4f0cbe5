package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racan/racan/backend-go/internal/scene"
)

func el(id, fill string) scene.Element {
	return scene.Element{
		ID: id, Kind: scene.KindShape, Width: 10, Height: 10,
		ScaleX: 1, ScaleY: 1, Opacity: 1, Visible: true,
		Shape: &scene.Shape{Fill: fill, FillOpacity: 100, StrokeOpacity: 100},
	}
}

func fills(els []scene.Element) []string {
	out := make([]string, len(els))
	for i := range els {
		out[i] = els[i].Shape.Fill
	}
	return out
}

func TestInitialState(t *testing.T) {
	l := New()
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.CanUndo())
	assert.False(t, l.CanRedo())

	_, ok := l.Undo()
	assert.False(t, ok)
	_, ok = l.Redo()
	assert.False(t, ok)
}

func TestUndoRedoWalk(t *testing.T) {
	l := New()
	l.Push([]scene.Element{el("el_a", "#111")})
	l.Push([]scene.Element{el("el_a", "#222")})

	assert.True(t, l.CanUndo())
	assert.False(t, l.CanRedo())

	els, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"#111"}, fills(els))
	assert.True(t, l.CanRedo())

	els, ok = l.Undo()
	require.True(t, ok)
	assert.Empty(t, els)
	assert.False(t, l.CanUndo())

	els, ok = l.Redo()
	require.True(t, ok)
	assert.Equal(t, []string{"#111"}, fills(els))

	els, ok = l.Redo()
	require.True(t, ok)
	assert.Equal(t, []string{"#222"}, fills(els))
	assert.False(t, l.CanRedo())
}

func TestPushTruncatesRedoTail(t *testing.T) {
	l := New()
	l.Push([]scene.Element{el("el_a", "#111")})
	l.Push([]scene.Element{el("el_a", "#222")})

	_, ok := l.Undo()
	require.True(t, ok)

	l.Push([]scene.Element{el("el_a", "#333")})
	assert.False(t, l.CanRedo())
	assert.Equal(t, 3, l.Len())

	els, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"#111"}, fills(els))
}

func TestSnapshotsAreIsolated(t *testing.T) {
	l := New()
	live := []scene.Element{el("el_a", "#111")}
	l.Push(live)

	// Mutating the caller's slice after pushing must not change history.
	live[0].Shape.Fill = "#dirty"

	_, _ = l.Undo()
	els, ok := l.Redo()
	require.True(t, ok)
	assert.Equal(t, "#111", els[0].Shape.Fill)

	// Mutating a read-out snapshot must not change the stored entry.
	els[0].Shape.Fill = "#dirty"
	_, _ = l.Undo()
	again, ok := l.Redo()
	require.True(t, ok)
	assert.Equal(t, "#111", again[0].Shape.Fill)
}

func TestInjectedClock(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l := NewAt(func() time.Time { return at })
	l.Push([]scene.Element{el("el_a", "#111")})
	assert.Equal(t, at, l.entries[1].At)
}
