package biobdriver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const templateDebounce = 300 * time.Millisecond

// TemplateWatcher reports changes of the touch display templates so the
// last template can be sent again.
type TemplateWatcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	notify   func()
}

func NewTemplateWatcher(dir string, notify func()) (*TemplateWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &TemplateWatcher{dir: dir, watcher: w, debounce: templateDebounce, notify: notify}, nil
}

func isTemplateFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".css", ".js", ".png", ".svg":
		return true
	}
	return false
}

// Run delivers one notification per burst of changes until ctx is done.
func (tw *TemplateWatcher) Run(ctx context.Context) error {
	defer tw.watcher.Close()

	timer := time.NewTimer(tw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-tw.watcher.Events:
			if !ok {
				return nil
			}
			if !isTemplateFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			Logger.Debug("template changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(tw.debounce)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return nil
			}
			Logger.Warn("template watcher", zap.Error(err))
		case <-timer.C:
			tw.notify()
		}
	}
}
