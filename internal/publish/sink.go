// Package publish writes built pages and the site stylesheet to their
// destination: a directory, memory, an S3 bucket or Redis.
package publish

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/webdsl/internal/errors"
)

// Content types of generated files.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeCSS  = "text/css; charset=utf-8"
)

// Sink receives generated files. name is a slash-separated path relative to
// the site root, e.g. "contact/form.html".
type Sink interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
}

// File is one generated file.
type File struct {
	Name        string
	Data        []byte
	ContentType string
}

// ContentType returns the content type for a generated file name.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return ContentTypeHTML
	case ".css":
		return ContentTypeCSS
	case ".js":
		return "text/javascript; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Publish writes files to sink in order and stops at the first failure.
func Publish(ctx context.Context, sink Sink, files []File) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return errors.Newf("E401", "%s", f.Name).Wrap(err)
		}
		ct := f.ContentType
		if ct == "" {
			ct = ContentType(f.Name)
		}
		if err := sink.Put(ctx, f.Name, f.Data, ct); err != nil {
			return errors.FromError(err, "E401")
		}
	}
	return nil
}

// cleanName validates a sink file name.
func cleanName(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Newf("E401", "invalid file name %q", name)
	}
	return clean, nil
}

// DirSink writes files below a directory.
type DirSink struct {
	Dir string
}

// NewDirSink returns a sink writing below dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Put writes data to Dir/name, creating parent directories.
func (s *DirSink) Put(ctx context.Context, name string, data []byte, contentType string) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	target := filepath.Join(s.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Newf("E401", "creating directory for %s", clean).Wrap(err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return errors.Newf("E401", "writing %s", target).Wrap(err)
	}
	return nil
}

// MemorySink keeps files in memory. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string]File
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string]File)}
}

// Put stores a copy of data under name.
func (s *MemorySink) Put(ctx context.Context, name string, data []byte, contentType string) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string]File)
	}
	s.files[clean] = File{Name: clean, Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// Get returns the file stored under name.
func (s *MemorySink) Get(name string) (File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[name]
	return f, ok
}

// Names returns the stored file names in sorted order.
func (s *MemorySink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Multi returns a sink that writes to every sink in order.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Put(ctx context.Context, name string, data []byte, contentType string) error {
	for _, s := range m {
		if err := s.Put(ctx, name, data, contentType); err != nil {
			return err
		}
	}
	return nil
}
