package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cached maps when their files change on disk.
type Watcher struct {
	manager *Manager
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// Watch starts a filesystem watcher on the manager's map directory. A
// changed map file is evicted from the cache so the next LoadMap rereads
// it; the affected map name is also published on Events.
func (m *Manager) Watch() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(m.mapDir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		manager: m,
		watcher: fsw,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Safe to call more than once. Events and
// Errors are closed by the run goroutine once it winds down, so readers
// draining them see a clean close instead of racing a send.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// run owns Events and Errors: they are only ever sent to and closed
// here, which keeps Close safe to call while events are in flight.
func (w *Watcher) run() {
	defer close(w.Errors)
	defer close(w.Events)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isMapFile(event.Name) {
				continue
			}
			// Editors fire bursts of events per save; debounce them.
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now

			name := strings.TrimSuffix(filepath.Base(event.Name), filepath.Ext(event.Name))
			w.manager.evict(name)

			select {
			case w.Events <- name:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func (m *Manager) evict(name string) {
	m.mu.Lock()
	delete(m.maps, name)
	m.mu.Unlock()
}

func isMapFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range mapExtensions {
		if ext == known {
			return true
		}
	}
	return false
}
