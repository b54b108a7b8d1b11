// Package watcher submits media files dropped into a local folder as jobs.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SubmitFunc registers a new job for a local media file.
type SubmitFunc func(path string) string

type Watcher struct {
	watchDir string
	submit   SubmitFunc
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

func New(watchDir string, submit SubmitFunc, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fsw.Add(watchDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &Watcher{
		watchDir: watchDir,
		submit:   submit,
		logger:   logger,
		watcher:  fsw,
	}, nil
}

// Start blocks, submitting one job per media file created in the watch dir.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watch folder active", "dir", w.watchDir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch folder stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isMediaFile(event.Name) {
				w.logger.Debug("ignoring non-media file", "path", event.Name)
				continue
			}

			// Small delay so the file is fully written before processing.
			time.Sleep(500 * time.Millisecond)

			jobID := w.submit(event.Name)
			w.logger.Info("file submitted as job", "path", event.Name, "job_id", jobID)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func isMediaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv", ".mp3", ".m4a", ".wav", ".ogg":
		return true
	default:
		return false
	}
}
