// Package properties reads and updates the managed server's properties file
// (key=value lines) and watches it for out-of-band edits, dispatching a
// change event so connected clients see updates made on disk.
package properties

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// File wraps one properties file. All operations re-read from disk so edits
// by the server process itself are never shadowed by a stale cache.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File { return &File{path: path} }

func (f *File) Path() string { return f.path }

// All returns every key=value pair. Comment and blank lines are skipped.
func (f *File) All() (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parse()
}

// A missing file parses as empty; the server has not written it yet.
func (f *File) parse() (map[string]string, error) {
	file, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	out := map[string]string{}
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, sc.Err()
}

// Set updates or appends one key, rewriting the file atomically via a temp
// file in the same directory. Comments are not preserved; the managed server
// rewrites the file the same way.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	props, err := f.parse()
	if err != nil {
		return err
	}
	props[key] = value

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".properties-*")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(tmp, "%s=%s\n", k, props[k]); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
