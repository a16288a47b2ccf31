package watch

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pantryhub/groceryd/internal/realtime"
	"github.com/pantryhub/groceryd/internal/store"
)

// fakeNotifier records broadcast events on a channel.
type fakeNotifier struct {
	events chan realtime.Event
}

func (f *fakeNotifier) Broadcast(evt realtime.Event) {
	select {
	case f.events <- evt:
	default:
	}
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

func TestWatcher_BroadcastsRefreshOnStoreChange(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.InitSchema(ctx); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}

	notifier := &fakeNotifier{events: make(chan realtime.Event, 10)}
	w, err := New(st, notifier, 50*time.Millisecond, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer w.Stop()

	// Any write to the store file must eventually surface as a refresh.
	if _, err := st.Create(ctx, "Milk", 1); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	select {
	case evt := <-notifier.events:
		if evt.Name != realtime.EventRefresh {
			t.Fatalf("event = %q, want %q", evt.Name, realtime.EventRefresh)
		}
		var items []store.Item
		if err := json.Unmarshal(evt.Data, &items); err != nil {
			t.Fatalf("failed to unmarshal refresh payload: %v", err)
		}
		if len(items) != 1 || items[0].Name != "Milk" {
			t.Errorf("refresh payload = %+v, want the created item", items)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no refresh broadcast within 5s")
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	notifier := &fakeNotifier{events: make(chan realtime.Event, 1)}
	w, err := New(st, notifier, 50*time.Millisecond, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err == nil {
		t.Error("second Start() succeeded, want error")
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	notifier := &fakeNotifier{events: make(chan realtime.Event, 1)}
	w, err := New(st, notifier, 0, testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() before Start() failed: %v", err)
	}
}
