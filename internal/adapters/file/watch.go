package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle collapses the burst of events most editors fire per save.
const watchSettle = 100 * time.Millisecond

// Watch implements ports.Watchable. It emits the workflow name for every
// source file created or written under the base path. The channel closes
// when ctx is canceled.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}
	if err := watcher.Add(l.BasePath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.BasePath, err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()

		last := make(map[string]time.Time)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
					continue
				}
				if !strings.HasSuffix(event.Name, Ext) {
					continue
				}
				name := strings.TrimSuffix(filepath.Base(event.Name), Ext)
				if time.Since(last[name]) < watchSettle {
					continue
				}
				last[name] = time.Now()
				select {
				case ch <- name:
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return ch, nil
}
