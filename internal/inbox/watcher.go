// Package inbox watches drop folders for inbound entry files. Helper apps
// write small JSON payloads ({section, text, timestamp?}) as .json or .txt
// files; each file is applied to the daily note and deleted on success.
// Files that fail to apply are left in place for the next sweep.
package inbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dssafford/daylog/internal/entryservice"
)

// settleDelay gives a helper app time to finish writing a dropped file
// before we read it.
const settleDelay = 500 * time.Millisecond

// Watcher picks up entry files from the configured drop folders.
type Watcher struct {
	dirs   []string
	svc    *entryservice.Service
	logger *slog.Logger
}

// New creates a Watcher over dirs. Missing directories are tolerated and
// skipped with a warning; a drop folder may appear later.
func New(dirs []string, svc *entryservice.Service, logger *slog.Logger) *Watcher {
	return &Watcher{dirs: dirs, svc: svc, logger: logger}
}

// Run sweeps the drop folders once, then watches them with fsnotify until
// ctx is cancelled. New files settle briefly before being processed so a
// half-written payload is not picked up mid-flight.
func (w *Watcher) Run(ctx context.Context) error {
	w.Sweep(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	watching := 0
	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("inbox: watch failed", slog.String("dir", dir), slog.String("error", err.Error()))
			continue
		}
		watching++
	}
	if watching == 0 {
		w.logger.Warn("inbox: no drop folders available, watcher idle")
		<-ctx.Done()
		return nil
	}

	w.logger.Info("inbox: started", slog.Int("folders", watching))

	// pending files are processed together when the settle timer fires.
	pending := make(map[string]struct{})
	var settle *time.Timer
	var settleCh <-chan time.Time

	schedule := func(path string) {
		pending[path] = struct{}{}
		if settle == nil {
			settle = time.NewTimer(settleDelay)
			settleCh = settle.C
		} else {
			settle.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			w.logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			for path := range pending {
				delete(pending, path)
				w.processFile(ctx, path)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !entryFile(ev.Name) {
				continue
			}
			schedule(ev.Name)

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// Sweep processes every entry file already sitting in the drop folders.
func (w *Watcher) Sweep(ctx context.Context) {
	for _, dir := range w.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.logger.Warn("inbox: sweep skipped", slog.String("dir", dir), slog.String("error", err.Error()))
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !entryFile(e.Name()) {
				continue
			}
			w.processFile(ctx, filepath.Join(dir, e.Name()))
		}
	}
}

// processFile applies one entry file and deletes it on success.
func (w *Watcher) processFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return // already consumed
		}
		w.logger.Error("inbox: read failed", slog.String("file", path), slog.String("error", err.Error()))
		return
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		// Still being written; the next event will bring it back.
		return
	}

	var p entryservice.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		w.logger.Error("inbox: invalid payload", slog.String("file", path), slog.String("error", err.Error()))
		return
	}

	if err := w.svc.ApplyPayload(ctx, p); err != nil {
		w.logger.Error("inbox: entry failed", slog.String("file", path), slog.String("error", err.Error()))
		return
	}

	if err := os.Remove(path); err != nil {
		w.logger.Error("inbox: delete failed", slog.String("file", path), slog.String("error", err.Error()))
		return
	}
	w.logger.Info("inbox: processed", slog.String("file", filepath.Base(path)))
}

func entryFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".txt":
		return true
	}
	return false
}
