package store

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/hquan/babytrack/internal/util"
)

// ChangeEvent reports an external modification of a storage key.
type ChangeEvent struct {
	Key       string
	Operation string
}

// StorageWatcher watches the storage directory and reports writes made by
// other processes, so the store can reload instead of serving stale data.
type StorageWatcher struct {
	watcher *fsnotify.Watcher
	events  chan ChangeEvent
}

func NewStorageWatcher(dir string) (*StorageWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	sw := &StorageWatcher{
		watcher: watcher,
		events:  make(chan ChangeEvent, 100),
	}

	go sw.processEvents()

	return sw, nil
}

func (sw *StorageWatcher) processEvents() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}

			// Only settled storage files, not in-flight temp files
			if filepath.Ext(event.Name) != ".dat" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			key := strings.TrimSuffix(filepath.Base(event.Name), ".dat")
			sw.events <- ChangeEvent{
				Key:       key,
				Operation: event.Op.String(),
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Storage watch error: " + err.Error())
		}
	}
}

func (sw *StorageWatcher) Events() <-chan ChangeEvent {
	return sw.events
}

func (sw *StorageWatcher) Close() error {
	return sw.watcher.Close()
}
