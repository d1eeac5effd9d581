// Package scratch tracks temporary files so they are removed on every exit
// path, including error paths. Nothing here is expected to survive a
// process restart.
package scratch

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/flakysalt/InkyPi/internal/logging"
)

// Tracker owns a set of scratch files for one request. Files are registered
// the moment they are created, before any data lands in them, so cleanup
// always finds a partially written file.
type Tracker struct {
	mu    sync.Mutex
	paths []string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Create makes a new scratch file with the given extension (".jpg", ".png",
// ...) and registers it for cleanup.
func (t *Tracker) Create(ext string) (*os.File, error) {
	f, err := os.CreateTemp("", "inkypi-*"+ext)
	if err != nil {
		return nil, err
	}
	t.Register(f.Name())
	return f, nil
}

// Register adds an existing file path to the cleanup set.
func (t *Tracker) Register(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append(t.paths, path)
}

// Paths returns a copy of the tracked paths.
func (t *Tracker) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.paths))
	copy(out, t.paths)
	return out
}

// RemoveAll deletes every tracked file. Best-effort: failures are logged
// and never propagated. Safe to call more than once.
func (t *Tracker) RemoveAll() {
	t.mu.Lock()
	paths := t.paths
	t.paths = nil
	t.mu.Unlock()

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Warn("removing scratch file", zap.String("path", p), zap.Error(err))
		}
	}
}
