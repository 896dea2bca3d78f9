package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_EvictsOnWrite(t *testing.T) {
	dir := setupMapDir(t)
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	w, err := m.Watch()
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	cfg, err := m.LoadMap("small")
	if err != nil {
		t.Fatal(err)
	}

	updated := []byte(`{
		"name": "Rewritten",
		"width": 4,
		"height": 2,
		"layers": {"world": ["....", ".##."]},
		"layer_fallback": ["world"],
		"legend": {"#": 1},
		"tileset": [{"index": 1, "collides": true}]
	}`)
	if err := os.WriteFile(filepath.Join(dir, "small.json"), updated, 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		if name != "small" {
			t.Errorf("Expected event for 'small', got %q", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for watcher event")
	}

	reloaded, err := m.LoadMap("small")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded == cfg {
		t.Error("Expected cache eviction after file change")
	}
	if reloaded.Name != "Rewritten" {
		t.Errorf("Expected reloaded name 'Rewritten', got %q", reloaded.Name)
	}
}

func TestWatcher_IgnoresNonMapFiles(t *testing.T) {
	dir := setupMapDir(t)
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	w, err := m.Watch()
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		t.Errorf("Expected no event for a .txt file, got %q", name)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	m, err := NewManager(setupMapDir(t))
	if err != nil {
		t.Fatal(err)
	}

	w, err := m.Watch()
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestWatcher_CloseDuringEventBurst(t *testing.T) {
	dir := setupMapDir(t)
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(dir, "small.json")
	payload, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}

	// A writer hammers a map file while Close runs. Events must stay
	// send-safe until run winds down and closes it.
	for i := 0; i < 100; i++ {
		w, err := m.Watch()
		if err != nil {
			t.Fatalf("Watch failed: %v", err)
		}

		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-stop:
					return
				default:
					os.WriteFile(target, payload, 0644)
				}
			}
		}()

		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		close(stop)
		<-done

		select {
		case _, ok := <-w.Events:
			if ok {
				// Drain events that landed before shutdown.
				for range w.Events {
				}
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Events was not closed after Close")
		}
	}
}

func TestIsMapFile(t *testing.T) {
	if !isMapFile("maps/harbor.json") || !isMapFile("a.yaml") || !isMapFile("b.YML") {
		t.Error("Expected recognized map extensions")
	}
	if isMapFile("readme.md") || isMapFile("sessions.db") {
		t.Error("Expected non-map extensions rejected")
	}
}
