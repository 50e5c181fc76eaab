package indexer

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
)

// rebuildDebounce delays a rebuild after a filesystem event so a burst of
// writes (a copy in progress, an editor save) triggers one build, not many.
const rebuildDebounce = 2 * time.Second

// Watcher rebuilds the index whenever a corpus document changes.
type Watcher struct {
	pipeline *Pipeline
	dir      string
}

// NewWatcher creates a corpus watcher driving the given build pipeline.
func NewWatcher(pipeline *Pipeline, dir string) *Watcher {
	return &Watcher{pipeline: pipeline, dir: dir}
}

// Run watches the corpus directory until the context is cancelled. Rebuild
// failures are logged and watching continues; the last good index file stays
// on disk untouched.
func (w *Watcher) Run(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = fw.Close()
	}()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	logger.InfoContext(ctx, "watching corpus directory", "dir", w.dir)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.InfoContext(ctx, "corpus changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(rebuildDebounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(rebuildDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.pipeline.Build(ctx); err != nil {
				logger.ErrorContext(ctx, "index rebuild failed", "error", err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.ErrorContext(ctx, "watcher error", "error", err)
		}
	}
}

// relevant filters events down to content changes of corpus documents.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".txt") {
		return false
	}
	return event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}
