package preview

import (
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// watcherDebounce coalesces the write bursts editors produce on save into a
// single reload.
const watcherDebounce = 300 * time.Millisecond

type fileChangedMsg struct{}

type watcherErrMsg struct {
	err error
}

// fileWatcher reports changes of one data file. The parent directory is
// watched so replacing the file by rename is seen too.
type fileWatcher struct {
	path    string
	sub     chan fileChangedMsg
	errc    chan error
	done    chan struct{}
	signals chan struct{}

	mu       sync.Mutex
	debounce *time.Timer
}

func newFileWatcher(path string) *fileWatcher {
	return &fileWatcher{
		path:    filepath.Clean(path),
		sub:     make(chan fileChangedMsg, 1),
		errc:    make(chan error, 1),
		done:    make(chan struct{}),
		signals: make(chan struct{}, 1),
	}
}

func (w *fileWatcher) stop() {
	close(w.done)
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
}

func (w *fileWatcher) sendSignal() {
	select {
	case w.signals <- struct{}{}:
	default:
	}
}

// run is the watcher goroutine. It closes sub and errc on exit so pending
// wait commands return.
func (w *fileWatcher) run() {
	defer close(w.sub)
	defer close(w.errc)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.errc <- err
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.errc <- err
		return
	}

	for {
		select {
		case <-w.done:
			return

		case <-w.signals:
			select {
			case w.sub <- fileChangedMsg{}:
			default:
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.mu.Lock()
				if w.debounce != nil {
					w.debounce.Stop()
				}
				w.debounce = time.AfterFunc(watcherDebounce, w.sendSignal)
				w.mu.Unlock()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errc <- err:
			default:
			}
		}
	}
}

func waitForChange(sub chan fileChangedMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-sub
		if !ok {
			return nil
		}
		return msg
	}
}

func waitForWatcherErr(errc chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-errc
		if !ok {
			return nil
		}
		return watcherErrMsg{err: err}
	}
}
