package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// minReloadInterval suppresses the bursts of events editors produce
	// when saving a file.
	minReloadInterval = 500 * time.Millisecond

	// reloadSettleDelay gives the editor time to finish writing before the
	// file is re-read.
	reloadSettleDelay = 50 * time.Millisecond
)

// Watcher reloads the configuration file when it changes on disk.
//
// The parent directory is watched rather than the file itself: most
// editors save by writing a temporary file and renaming it over the
// original, which would otherwise silently detach a file-level watch.
type Watcher struct {
	path     string
	onChange func(*Config)
	onError  func(error)

	fw   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher creates a configuration file watcher.
//
// onChange is invoked with the freshly loaded configuration after a
// change passes validation. onError is invoked when a reload attempt
// fails; the previous configuration stays in effect.
func NewWatcher(path string, onChange func(*Config), onError func(error)) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("config: watcher requires an onChange callback")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolving watch path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating file watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close() //nolint:errcheck // already failing, nothing useful to add
		return nil, fmt.Errorf("config: watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		onError:  onError,
		fw:       fw,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// run consumes filesystem events until Close is called.
func (w *Watcher) run() {
	defer w.wg.Done()

	var lastReload time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if time.Since(lastReload) < minReloadInterval {
				continue
			}
			lastReload = time.Now()

			time.Sleep(reloadSettleDelay)
			w.reload()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.fail(fmt.Errorf("config: watch error: %w", err))
		}
	}
}

// reload re-reads the file and hands the result to the callbacks.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.fail(fmt.Errorf("config: reload rejected: %w", err))
		return
	}
	w.onChange(cfg)
}

func (w *Watcher) fail(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops the watcher and releases the underlying filesystem watch.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}
