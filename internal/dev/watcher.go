package dev

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ChangeType is the kind of file that changed.
type ChangeType int

const (
	// ChangeScript is a page script.
	ChangeScript ChangeType = iota
	// ChangeConfig is the project configuration file.
	ChangeConfig
	// ChangeAsset is any other file.
	ChangeAsset
)

func (t ChangeType) String() string {
	switch t {
	case ChangeScript:
		return "script"
	case ChangeConfig:
		return "config"
	default:
		return "asset"
	}
}

// Change is a created, modified or removed file.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch.
	Paths []string

	// Ignore lists names, path segments or globs to skip.
	Ignore []string

	// Interval is the polling interval.
	Interval time.Duration
}

// DefaultIgnore contains the patterns skipped by default.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls files for changes. Every poll that finds changes reports
// them in one call.
type Watcher struct {
	config     WatcherConfig
	onChange   func([]Change)
	mu         sync.Mutex
	running    bool
	scanned    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 200 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()

	w.Scan()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			if changes := w.Scan(); len(changes) > 0 {
				w.mu.Lock()
				fn := w.onChange
				w.mu.Unlock()
				if fn != nil {
					fn(changes)
				}
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Scan compares the watched files with the previous scan and returns the
// differences sorted by path. The first scan only records timestamps.
func (w *Watcher) Scan() []Change {
	seen := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			seen[p] = info.ModTime()
			return nil
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	first := !w.scanned
	w.scanned = true
	var changes []Change
	for p, mod := range seen {
		last, ok := w.timestamps[p]
		if !first && (!ok || mod.After(last)) {
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	for p := range w.timestamps {
		if _, ok := seen[p]; !ok {
			changes = append(changes, Change{Path: p, Type: classifyChange(p), Removed: true})
		}
	}
	w.timestamps = seen

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
		if filepath.IsAbs(pattern) {
			if abs, err := filepath.Abs(fullPath); err == nil &&
				(abs == pattern || strings.HasPrefix(abs, pattern+string(filepath.Separator))) {
				return true
			}
			continue
		}
		if strings.ContainsAny(pattern, "*?[") {
			target := name
			if strings.Contains(pattern, "/") {
				target = normalized
			}
			if matched, _ := path.Match(filepath.ToSlash(pattern), target); matched {
				return true
			}
			continue
		}
		if pathHasSegment(normalized, pattern) {
			return true
		}
	}
	return false
}

func pathHasSegment(p, segment string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// classifyChange determines the kind of change from the file name.
func classifyChange(p string) ChangeType {
	base := strings.ToLower(filepath.Base(p))
	switch {
	case strings.HasPrefix(base, "webdsl.") && (strings.HasSuffix(base, ".yaml") || strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".json")):
		return ChangeConfig
	case filepath.Ext(base) == ".js":
		return ChangeScript
	default:
		return ChangeAsset
	}
}
