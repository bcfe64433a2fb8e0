// Package watcher reports debounced changes to tour content files.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/typetour/internal/logging"
)

// FileWatcher watches content files and hands batches of changes to its
// handlers once the files have been quiet for the debounce delay.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	mutex     sync.RWMutex
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter reports whether a path is of interest.
type FileFilter func(path string) bool

// ChangeHandler handles file change events
type ChangeHandler func(events []ChangeEvent) error

// Debouncer groups rapid file changes together
type Debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	debouncer := &Debouncer{
		delay:   debounceDelay,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	return &FileWatcher{
		watcher:   watcher,
		debouncer: debouncer,
		filters:   make([]FileFilter, 0),
		handlers:  make([]ChangeHandler, 0),
		logger:    logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a file filter. Every filter must accept a path for its
// events to be delivered.
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath adds a directory or file to watch.
func (fw *FileWatcher) AddPath(path string) error {
	cleanPath, err := cleanPath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return fw.watcher.Add(cleanPath)
}

// WatchFile watches a single file. Editors often save by writing a new file
// and renaming it over the old one, which drops a watch on the file itself,
// so the parent directory is watched and events are narrowed to the file.
func (fw *FileWatcher) WatchFile(path string) error {
	target, err := cleanPath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("watching %s: is a directory", path)
	}

	fw.AddFilter(SameFileFilter(target))
	return fw.AddPath(filepath.Dir(target))
}

func cleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("empty path")
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}
	return absPath, nil
}

// Start starts the file watcher
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.debouncer.start(ctx)
	go fw.processEvents(ctx)
	go fw.watchLoop(ctx)
	return nil
}

// Stop stops the file watcher and cleans up resources
func (fw *FileWatcher) Stop() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) accepts(path string) bool {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()

	for _, filter := range fw.filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func (fw *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	if !fw.accepts(event.Name) {
		return
	}

	var modTime time.Time
	var size int64
	if info, err := os.Stat(event.Name); err == nil {
		modTime = info.ModTime()
		size = info.Size()
	}

	changeEvent := ChangeEvent{
		Type:    eventType(event.Op),
		Path:    event.Name,
		ModTime: modTime,
		Size:    size,
	}

	select {
	case fw.debouncer.events <- changeEvent:
	default:
		fw.logger.Debug(context.Background(), "Dropped file event, debouncer full", "path", event.Name)
	}
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Create):
		return EventTypeCreated
	case op.Has(fsnotify.Write):
		return EventTypeModified
	case op.Has(fsnotify.Remove):
		return EventTypeDeleted
	case op.Has(fsnotify.Rename):
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			for _, handler := range handlers {
				if err := handler(events); err != nil {
					fw.logger.Error(ctx, err, "File watcher handler failed", "events", len(events))
				}
			}
		}
	}
}

func (d *Debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.stop()
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	// Last event per path wins.
	eventMap := make(map[string]ChangeEvent)
	for _, event := range d.pending {
		eventMap[event.Path] = event
	}

	events := make([]ChangeEvent, 0, len(eventMap))
	for _, event := range eventMap {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	select {
	case d.output <- events:
	default:
	}

	d.pending = d.pending[:0]
}

// YAMLFilter accepts content files.
func YAMLFilter(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

// NoEditorTempFilter rejects swap, backup, and lock files left by editors.
func NoEditorTempFilter(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasPrefix(base, ".#"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return false
	}
	return true
}

// SameFileFilter accepts only target, compared after cleaning.
func SameFileFilter(target string) FileFilter {
	target = filepath.Clean(target)
	return func(path string) bool {
		abs, err := filepath.Abs(path)
		if err != nil {
			return false
		}
		return abs == target
	}
}
