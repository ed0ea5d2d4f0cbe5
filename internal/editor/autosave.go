package editor

import (
	"context"
	"log/slog"
	"time"

	"github.com/racan/racan/backend-go/internal/scene"
)

// Autosave periodically snapshots a scene and hands it to a saver. It owns
// its own goroutine; Stop blocks until that goroutine exits. Save failures
// are logged and retried on the next tick.
type Autosave struct {
	interval time.Duration
	snapshot func() *scene.Scene
	save     func(context.Context, *scene.Scene) error

	stop chan struct{}
	done chan struct{}
}

// NewAutosave wires an autosaver. snapshot must return a copy safe to read
// off-thread; SnapshotScene qualifies.
func NewAutosave(interval time.Duration, snapshot func() *scene.Scene, save func(context.Context, *scene.Scene) error) *Autosave {
	return &Autosave{
		interval: interval,
		snapshot: snapshot,
		save:     save,
	}
}

// Start launches the save loop. Calling Start on a running autosaver is a
// no-op.
func (a *Autosave) Start() {
	if a.stop != nil {
		return
	}
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.run()
}

func (a *Autosave) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.saveOnce()
		}
	}
}

func (a *Autosave) saveOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.save(ctx, a.snapshot()); err != nil {
		slog.Error("autosave failed", "error", err)
	}
}

// Stop halts the loop and waits for it, flushing one final save.
func (a *Autosave) Stop() {
	if a.stop == nil {
		return
	}
	close(a.stop)
	<-a.done
	a.stop = nil
	a.done = nil
	a.saveOnce()
}
