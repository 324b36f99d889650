package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Sink receives generated fragments. The Engine opens one handle per
// fragment and closes it on every exit path. The returned location
// identifies where the fragment went, e.g. a file path.
type Sink interface {
	Open(name string) (io.WriteCloser, string, error)
}

// Remover is implemented by sinks able to drop the output of a previous
// run, such as fragments of features that were since disabled.
type Remover interface {
	// Remove deletes the named fragment. Missing fragments are not an error.
	Remove(name string) error
}

// DirSink writes fragments as files under a root directory. Parent
// directories are created on demand.
type DirSink struct {
	root string
}

// NewDirSink returns a sink writing under root.
func NewDirSink(root string) (*DirSink, error) {
	if root == "" {
		return nil, NewConfigError("OutputDir", nil, "output directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, NewConfigError("OutputDir", root, err.Error())
	}
	return &DirSink{root: abs}, nil
}

// Root returns the absolute root directory of the sink.
func (s *DirSink) Root() string { return s.root }

// path resolves name under the root, rejecting names escaping it.
func (s *DirSink) path(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid fragment name %q", name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("fragment name %q escapes the output directory", name)
	}
	return filepath.Join(s.root, clean), nil
}

// Open creates or truncates the file of the named fragment.
func (s *DirSink) Open(name string) (io.WriteCloser, string, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, path, fmt.Errorf("create directory for %s: %w", name, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, path, err
	}
	return f, path, nil
}

// Remove deletes the file of the named fragment, and its directory if it
// becomes empty. The root itself is kept.
func (s *DirSink) Remove(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir == s.root {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return remove(dir, filepath.Base(path))
}

// MemorySink keeps fragments in memory. A fragment becomes visible once
// its handle is closed. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Open returns a buffer committed to the sink on Close.
func (s *MemorySink) Open(name string) (io.WriteCloser, string, error) {
	if name == "" {
		return nil, "", errors.New("invalid fragment name \"\"")
	}
	return &memoryFile{sink: s, name: name}, "memory:" + name, nil
}

// Remove deletes the named fragment.
func (s *MemorySink) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

// Get returns the content of the named fragment.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.files[name]
	return bytes.Clone(b), ok
}

// Names returns the fragment names in sorted order.
func (s *MemorySink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Files returns a copy of all fragments keyed by name.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make(map[string][]byte, len(s.files))
	for name, b := range s.files {
		files[name] = bytes.Clone(b)
	}
	return files
}

type memoryFile struct {
	bytes.Buffer
	sink   *MemorySink
	name   string
	closed bool
}

func (f *memoryFile) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true
	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	f.sink.files[f.name] = bytes.Clone(f.Bytes())
	return nil
}
