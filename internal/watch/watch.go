// Package watch re-parses a script document whenever it changes on disk.
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/rcliao/scriptsync/internal/markdown"
)

// DefaultDebounce collapses editor save bursts into one change.
const DefaultDebounce = 100 * time.Millisecond

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // document rewritten
	ChangeRemoved                    // document deleted or renamed away
)

func (k ChangeKind) String() string {
	if k == ChangeRemoved {
		return "removed"
	}
	return "modified"
}

// Change is a debounced document change. Doc and Text are empty on removal.
type Change struct {
	Kind ChangeKind
	File string
	Text string
	Doc  *markdown.Document
}

// Watcher monitors one document. It watches the parent directory so that
// editors which save by rename are still seen.
type Watcher struct {
	File     string
	Changes  <-chan Change // Read-only external channel
	Debounce time.Duration

	changes chan Change // Internal write channel
	quit    chan struct{}
	done    chan struct{}
	watcher *fsnotify.Watcher
	log     zerolog.Logger
}

// NewWatcher creates a watcher for the given document.
func NewWatcher(file string, log zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		File:     abs,
		Changes:  ch,
		Debounce: DefaultDebounce,
		changes:  ch,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
		log:      log,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. It does not wait for
// the consumer to drain pending changes.
func (w *Watcher) Stop() {
	close(w.quit)
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.Debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.emitChange()
				}
				return
			}
			if filepath.Clean(event.Name) != w.File {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.Debounce {
				pending = time.Time{}
				w.emitChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("file", w.File).Msg("watch error")
		}
	}
}

func (w *Watcher) emitChange() {
	data, err := os.ReadFile(w.File)
	if err != nil {
		w.log.Debug().Str("file", w.File).Msg("document removed")
		w.send(Change{Kind: ChangeRemoved, File: w.File})
		return
	}

	text := string(data)
	w.log.Debug().Str("file", w.File).Int("bytes", len(data)).Msg("document changed")
	w.send(Change{
		Kind: ChangeModified,
		File: w.File,
		Text: text,
		Doc:  markdown.Parse(text),
	})
}

// send delivers c unless the watcher is stopping.
func (w *Watcher) send(c Change) {
	select {
	case w.changes <- c:
	case <-w.quit:
		w.log.Debug().Str("file", w.File).Stringer("kind", c.Kind).Msg("dropped change on stop")
	}
}
