package properties

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnmyt/MCDash-sub000/internal/events"
)

const EventChanged = "properties.changed"

// Changed is dispatched after the watched file settles following a write.
type Changed struct {
	Path string
}

func (Changed) EventType() string { return EventChanged }

const debounce = 250 * time.Millisecond

// Watch dispatches a Changed event whenever the properties file is rewritten
// on disk. The parent directory is watched because the atomic rename used by
// Set (and by most editors) replaces the inode. Returns once ctx is done.
func Watch(ctx context.Context, f *File, d *events.Dispatcher) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.Path())); err != nil {
		return err
	}

	target := filepath.Base(f.Path())
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Debounce bursts: editors and Set produce several events per save.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			d.Dispatch(Changed{Path: f.Path()})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("properties watch error", "error", err)
		}
	}
}
