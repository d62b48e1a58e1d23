package assets

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/smok/engine/core"
)

/**
 * @brief A change on disk to one of the source files of a registered asset.
 */
type Change struct {
	Kind Kind
	ID   uint64
	Name string
	Path string
	Op   fsnotify.Op
}

/**
 * @brief Watches the source files of every registered asset and reports
 * changes. It never touches the records: a changed source file needs a new
 * registration to be picked up.
 */
type Watcher struct {
	manager  *Manager
	fsnotify *fsnotify.Watcher

	mutex   sync.RWMutex
	sources map[string][]Asset
	dirs    map[string]bool

	done         chan struct{}
	stopped      chan struct{}
	changes      chan Change
	errors       chan error
	startOnce    sync.Once
	closeOnce    sync.Once
	shutdownOnce sync.Once
	shutdownErr  error
	started      bool
}

func NewWatcher(m *Manager) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		manager:  m,
		fsnotify: fsWatch,
		sources:  make(map[string][]Asset),
		dirs:     make(map[string]bool),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		changes:  make(chan Change, 64),
		errors:   make(chan error, 8),
	}
	if err := w.Refresh(); err != nil {
		fsWatch.Close()
		return nil, err
	}
	return w, nil
}

/**
 * @brief Indexes every asset registered since the last call and starts
 * watching the directories holding their source files.
 */
func (w *Watcher) Refresh() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	sources := make(map[string][]Asset)
	for _, a := range w.manager.Assets() {
		for _, f := range a.SourceFiles() {
			abs, err := filepath.Abs(f)
			if err != nil {
				return err
			}
			sources[abs] = append(sources[abs], a)

			dir := filepath.Dir(abs)
			if w.dirs[dir] {
				continue
			}
			if err := w.fsnotify.Add(dir); err != nil {
				return err
			}
			w.dirs[dir] = true
		}
	}
	w.sources = sources
	core.LogDebug("Watching %d source file(s) in %d director(ies).", len(sources), len(w.dirs))
	return nil
}

// Start runs the event loop in its own goroutine. It does nothing once the watcher is closed.
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		w.mutex.Lock()
		defer w.mutex.Unlock()
		select {
		case <-w.done:
			return
		default:
		}
		w.started = true
		go w.start()
	})
}

func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the event loop and closes both channels.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mutex.Lock()
		close(w.done)
		started := w.started
		w.mutex.Unlock()
		if started {
			<-w.stopped
			return
		}
		err = w.shutdown()
	})
	return err
}

func (w *Watcher) shutdown() error {
	w.shutdownOnce.Do(func() {
		w.shutdownErr = w.fsnotify.Close()
		close(w.changes)
		close(w.errors)
	})
	return w.shutdownErr
}

func (w *Watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				w.shutdown()
				return
			}
			if e.Op == fsnotify.Chmod {
				continue
			}
			for _, c := range w.handleFileEvent(e) {
				select {
				case w.changes <- c:
				case <-w.done:
					w.shutdown()
					return
				}
			}

		case e, ok := <-w.fsnotify.Errors:
			if !ok {
				w.shutdown()
				return
			}
			core.LogError("%s", e.Error())
			select {
			case w.errors <- e:
			default:
				core.LogWarn("Watcher error channel full, dropping: %v", e)
			}

		case <-w.done:
			if err := w.shutdown(); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
				core.LogError("%s", err.Error())
			}
			return
		}
	}
}

// Map a file event to the assets whose source files it touched.
func (w *Watcher) handleFileEvent(e fsnotify.Event) []Change {
	abs, err := filepath.Abs(e.Name)
	if err != nil {
		return nil
	}

	w.mutex.RLock()
	defer w.mutex.RUnlock()

	var changes []Change
	for _, a := range w.sources[abs] {
		core.LogDebug("Source file %q of %s %q changed (%s).", abs, a.Kind(), a.Name(), e.Op)
		changes = append(changes, Change{
			Kind: a.Kind(),
			ID:   a.ID(),
			Name: a.Name(),
			Path: abs,
			Op:   e.Op,
		})
	}
	return changes
}
