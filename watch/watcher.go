// Package watch reports changed RDFa documents below a directory.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/semdoc/config"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 500

	defaultDebounce = 500 * time.Millisecond
)

// Event represents a document file change.
type Event struct {
	// Path is the file path relative to the watched root, slash separated.
	Path string

	// AbsPath is the absolute file path.
	AbsPath string

	// Operation is the type of change.
	Operation Operation

	// Content is the file content read while hashing. Empty for deletes.
	Content []byte
}

// Operation indicates the type of file operation.
type Operation string

// OpCreate, OpModify, and OpDelete enumerate the watch operation types.
const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// ContentHash returns the hex SHA-256 of content.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// DocWatcher watches a directory tree for document changes and emits
// debounced events. Saves that leave the content unchanged are dropped.
type DocWatcher struct {
	root       string
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	extensions map[string]bool
	excludes   []string

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.RWMutex
	hashes map[string]string

	events chan Event

	droppedEvents atomic.Int64
}

// NewDocWatcher creates a watcher for root.
func NewDocWatcher(cfg config.WatchConfig, root string, logger *slog.Logger) (*DocWatcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	for _, pattern := range cfg.ExcludeDirs {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.New("invalid exclude pattern: " + pattern)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	extensions := make(map[string]bool)
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}
	if len(extensions) == 0 {
		extensions[".html"] = true
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &DocWatcher{
		root:       absRoot,
		debounce:   debounce,
		watcher:    fsw,
		logger:     logger,
		extensions: extensions,
		excludes:   cfg.ExcludeDirs,
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
		events:     make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of watch events. It is closed when the
// watcher stops.
func (w *DocWatcher) Events() <-chan Event {
	return w.events
}

// Start records the hashes of existing documents, watches the tree and
// begins processing events until ctx is done or Stop is called.
func (w *DocWatcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Document watcher started",
		"root", w.root,
		"debounce", w.debounce,
		"hashed", len(w.hashes))

	return nil
}

// Stop stops the watcher.
// The events channel is closed by processEvents when it exits.
func (w *DocWatcher) Stop() error {
	return w.watcher.Close()
}

// SetHash records the hash for a file.
func (w *DocWatcher) SetHash(relPath, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[relPath] = hash
}

// GetHash returns the recorded hash for a file.
func (w *DocWatcher) GetHash(relPath string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[relPath]
	return hash, ok
}

// DroppedEvents returns the number of events dropped due to channel overflow.
func (w *DocWatcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

func (w *DocWatcher) rel(p string) string {
	relPath, err := filepath.Rel(w.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(relPath)
}

// excluded reports whether the directory at relDir, or one of its
// ancestors, matches an exclude pattern or is hidden.
func (w *DocWatcher) excluded(relDir string) bool {
	if relDir == "." || relDir == "" {
		return false
	}
	for dir := relDir; dir != "." && dir != "/"; dir = path.Dir(dir) {
		if strings.HasPrefix(path.Base(dir), ".") {
			return true
		}
		for _, pattern := range w.excludes {
			if ok, _ := doublestar.Match(pattern, dir); ok {
				return true
			}
		}
	}
	return false
}

func (w *DocWatcher) watched(p string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(p))]
}

// addWatchesRecursive watches every non-excluded directory and hashes the
// documents already present.
func (w *DocWatcher) addWatchesRecursive() error {
	return filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.watched(p) && !w.excluded(path.Dir(w.rel(p))) {
				if content, err := os.ReadFile(p); err == nil {
					w.SetHash(w.rel(p), ContentHash(content))
				}
			}
			return nil
		}

		if w.excluded(w.rel(p)) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(p); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", p,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", p)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing.
func (w *DocWatcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent processes a single fsnotify event.
func (w *DocWatcher) handleFSEvent(event fsnotify.Event) {
	relPath := w.rel(event.Name)

	if !w.watched(event.Name) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				w.handleNewDirectory(event.Name)
			}
		}
		return
	}

	if w.excluded(path.Dir(relPath)) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Document change detected",
		"path", relPath,
		"op", event.Op.String())
}

// handleNewDirectory adds a watch to a newly created directory.
func (w *DocWatcher) handleNewDirectory(p string) {
	if w.excluded(w.rel(p)) {
		return
	}

	if err := w.watcher.Add(p); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", p,
			"error", err)
	} else {
		w.logger.Debug("Added watch for new directory", "path", p)
	}
}

// flushPending processes accumulated changes.
func (w *DocWatcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for p, op := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		relPath := w.rel(p)
		event := Event{
			Path:    relPath,
			AbsPath: p,
		}

		content, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			_, hadHash := w.GetHash(relPath)
			w.hashMu.Lock()
			delete(w.hashes, relPath)
			w.hashMu.Unlock()
			if hadHash || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
				event.Operation = OpDelete
				w.sendEvent(event)
			}
			continue
		}
		if err != nil {
			w.logger.Warn("Failed to read file for hash check",
				"path", relPath,
				"error", err)
			continue
		}

		newHash := ContentHash(content)
		oldHash, hadHash := w.GetHash(relPath)
		if hadHash && oldHash == newHash {
			continue
		}
		w.SetHash(relPath, newHash)

		if hadHash {
			event.Operation = OpModify
		} else {
			event.Operation = OpCreate
		}
		event.Content = content

		w.sendEvent(event)
	}
}

// sendEvent sends an event to the output channel.
func (w *DocWatcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			"path", event.Path,
			"op", event.Operation)
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path,
			"total_dropped", dropped)
	}
}
