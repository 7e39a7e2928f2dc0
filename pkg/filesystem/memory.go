package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage. It is used by tests
// that must not touch the real disk and supports per-path error injection
// to exercise failure branches.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	// Error injection
	errorPaths map[string]error
}

// NewMemory creates a new in-memory filesystem rooted at "/".
func NewMemory() *MemoryFS {
	return &MemoryFS{
		files:      make(map[string][]byte),
		dirs:       map[string]bool{"/": true},
		errorPaths: make(map[string]error),
	}
}

// WithError configures the filesystem to return err for any operation on path.
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[clean(path)] = err
	return m
}

func clean(path string) string {
	if !filepath.IsAbs(path) {
		path = "/" + path
	}
	return filepath.Clean(path)
}

func (m *MemoryFS) injected(path string) error {
	if err, ok := m.errorPaths[path]; ok {
		return err
	}
	return nil
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := clean(name)
	if err := m.injected(path); err != nil {
		return nil, err
	}
	if content, ok := m.files[path]; ok {
		return &memInfo{name: filepath.Base(path), size: int64(len(content))}, nil
	}
	if m.dirs[path] {
		return &memInfo{name: filepath.Base(path), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	// No symlink support in the memory implementation.
	return m.Stat(name)
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := clean(name)
	if err := m.injected(path); err != nil {
		return nil, err
	}
	if m.dirs[path] {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}
	content, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := clean(name)
	if err := m.injected(path); err != nil {
		return err
	}
	if m.dirs[path] {
		return &fs.PathError{Op: "write", Path: name, Err: errors.New("is a directory")}
	}
	m.mkdirAll(filepath.Dir(path))
	content := make([]byte, len(data))
	copy(content, data)
	m.files[path] = content
	return nil
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clean(path)
	if err := m.injected(p); err != nil {
		return err
	}
	if _, ok := m.files[p]; ok {
		return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("file exists")}
	}
	m.mkdirAll(p)
	return nil
}

func (m *MemoryFS) mkdirAll(path string) {
	for p := path; ; p = filepath.Dir(p) {
		m.dirs[p] = true
		if p == "/" || p == "." {
			break
		}
	}
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := clean(name)
	if err := m.injected(path); err != nil {
		return nil, err
	}
	if !m.dirs[path] {
		if _, ok := m.files[path]; ok {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	seen := make(map[string]bool)
	var entries []fs.DirEntry
	prefix := path
	if prefix != "/" {
		prefix += "/"
	}
	for p, content := range m.files {
		if child, ok := directChild(prefix, p); ok && !seen[child] {
			seen[child] = true
			entries = append(entries, &memEntry{name: child, size: int64(len(content))})
		}
	}
	for p := range m.dirs {
		if child, ok := directChild(prefix, p); ok && !seen[child] {
			seen[child] = true
			entries = append(entries, &memEntry{name: child, dir: true})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// directChild returns the first path segment of p below prefix, if any.
func directChild(prefix, p string) (string, bool) {
	if !strings.HasPrefix(p, prefix) || p == strings.TrimSuffix(prefix, "/") {
		return "", false
	}
	rest := strings.TrimPrefix(p, prefix)
	if rest == "" {
		return "", false
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest, true
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := clean(name)
	if err := m.injected(path); err != nil {
		return err
	}
	if _, ok := m.files[path]; ok {
		delete(m.files, path)
		return nil
	}
	if m.dirs[path] {
		for p := range m.files {
			if strings.HasPrefix(p, path+"/") {
				return &fs.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
			}
		}
		delete(m.dirs, path)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
}

func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clean(path)
	if err := m.injected(p); err != nil {
		return err
	}
	delete(m.files, p)
	delete(m.dirs, p)
	for f := range m.files {
		if strings.HasPrefix(f, p+"/") {
			delete(m.files, f)
		}
	}
	for d := range m.dirs {
		if strings.HasPrefix(d, p+"/") {
			delete(m.dirs, d)
		}
	}
	return nil
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, np := clean(oldpath), clean(newpath)
	if err := m.injected(op); err != nil {
		return err
	}
	content, ok := m.files[op]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	m.mkdirAll(filepath.Dir(np))
	m.files[np] = content
	delete(m.files, op)
	return nil
}

type memInfo struct {
	name string
	size int64
	dir  bool
}

func (i *memInfo) Name() string       { return i.name }
func (i *memInfo) Size() int64        { return i.size }
func (i *memInfo) Mode() fs.FileMode  { return modeFor(i.dir) }
func (i *memInfo) ModTime() time.Time { return time.Time{} }
func (i *memInfo) IsDir() bool        { return i.dir }
func (i *memInfo) Sys() interface{}   { return nil }

func modeFor(dir bool) fs.FileMode {
	if dir {
		return 0755 | fs.ModeDir
	}
	return 0644
}

type memEntry struct {
	name string
	size int64
	dir  bool
}

func (e *memEntry) Name() string { return e.name }
func (e *memEntry) IsDir() bool  { return e.dir }
func (e *memEntry) Type() fs.FileMode {
	return modeFor(e.dir).Type()
}
func (e *memEntry) Info() (fs.FileInfo, error) {
	return &memInfo{name: e.name, size: e.size, dir: e.dir}, nil
}
