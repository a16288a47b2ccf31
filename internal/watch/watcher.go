// Package watch notifies realtime clients when the store file changes
// outside the HTTP request path (CLI writes, imports, restored backups).
//
// It uses fsnotify to monitor the store file's directory, debounces the
// event bursts SQLite produces for a single logical write, and then
// broadcasts a groceries:refresh event carrying the current list.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pantryhub/groceryd/internal/realtime"
	"github.com/pantryhub/groceryd/internal/store"
)

// DefaultDebounce batches rapid file events together before a refresh
// is broadcast.
const DefaultDebounce = 500 * time.Millisecond

// Notifier receives the refresh broadcast. *realtime.Hub satisfies it.
type Notifier interface {
	Broadcast(realtime.Event)
}

// Watcher monitors the store file for out-of-band modifications.
type Watcher struct {
	store    *store.Store
	notifier Notifier
	debounce time.Duration
	logger   *log.Logger

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// New creates a watcher for the store's backing file.
// debounce <= 0 falls back to DefaultDebounce.
func New(st *store.Store, notifier Notifier, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		store:    st,
		notifier: notifier,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Start begins watching. Watching the directory rather than the file
// itself survives SQLite's rename-based checkpoints.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	dir := filepath.Dir(w.store.Path())
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Printf("Watching %s for external changes", dir)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	w.cancel()
	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()
	return nil
}

// loop filters events down to the store file, debounces them, and
// broadcasts a refresh once the burst settles.
func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	// Timer starts stopped; each relevant event re-arms it.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	base := filepath.Base(w.store.Path())

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if name != base && name != base+"-wal" {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.refresh(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("Watcher error: %v", err)
		}
	}
}

// refresh reads the current list and broadcasts it.
func (w *Watcher) refresh(ctx context.Context) {
	items, err := w.store.List(ctx)
	if err != nil {
		w.logger.Printf("Refresh failed to read store: %v", err)
		return
	}

	evt, err := realtime.NewEvent(realtime.EventRefresh, items)
	if err != nil {
		w.logger.Printf("Refresh failed to build event: %v", err)
		return
	}

	w.logger.Printf("Store file changed, broadcasting refresh (%d items)", len(items))
	w.notifier.Broadcast(evt)
}
