package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"cutroom/logger"
	"cutroom/model"
)

// IngestFunc registers an uploaded media file with a project.
type IngestFunc func(name, objectName string, kind model.TrackKind)

// Watcher ingests media files dropped into a local directory: each
// created media file is uploaded to the bucket and handed to the ingest
// callback. Non-media files are ignored.
type Watcher struct {
	dir    string
	ingest IngestFunc

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher returns a watcher for dir. Start must be called to begin
// watching.
func NewWatcher(dir string, ingest IngestFunc) *Watcher {
	return &Watcher{dir: dir, ingest: ingest, done: make(chan struct{})}
}

// Start begins watching the directory in a background goroutine.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	logger.Info("watching folder for media", logger.String("dir", w.dir))
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				w.handleCreate(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", logger.ErrorField(err))
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleCreate(path string) {
	name := filepath.Base(path)
	kind, ok := KindForFilename(name)
	if !ok {
		logger.Debug("ignoring non-media file", logger.String("file", name))
		return
	}

	// Give the producer a moment to finish writing the file.
	time.Sleep(500 * time.Millisecond)

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("cannot open watched file",
			logger.String("file", path),
			logger.ErrorField(err))
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		logger.Warn("cannot stat watched file",
			logger.String("file", path),
			logger.ErrorField(err))
		return
	}
	if st.IsDir() {
		return
	}

	objectName := NewObjectName(name)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := UploadMedia(ctx, objectName, f, st.Size(), MediaContentType(name)); err != nil {
		logger.Error("failed to ingest watched file",
			logger.String("file", path),
			logger.ErrorField(err))
		return
	}

	logger.Info("ingested watched file",
		logger.String("file", name),
		logger.String("object", objectName),
		logger.String("track", string(kind)))
	w.ingest(name, objectName, kind)
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.done)
	if w.fsw != nil {
		w.fsw.Close()
	}
}
