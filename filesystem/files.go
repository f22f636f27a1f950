// SPDX-License-Identifier: GPL-2.0-or-later

// Package filesystem finds game files in directories and the pk3 archives
// inside them.
package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"q3cm/conlog"
	"q3cm/pack"
)

var ErrBadPath = errors.New("bad file name")

type source interface {
	Open(name string) (io.ReadCloser, error)
	String() string
}

type dirSource string

func (d dirSource) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), filepath.FromSlash(name)))
}

func (d dirSource) String() string {
	return string(d)
}

// SearchPath is an ordered list of directories and packs. Later additions
// take precedence.
type SearchPath struct {
	mutex   sync.RWMutex
	sources []source // highest priority first
	packs   []*pack.Pack
}

func New() *SearchPath {
	return &SearchPath{}
}

// AddGameDir adds dir and all pk3 files inside it. Packs are added in
// alphabetical order on top of the directory, so pak1.pk3 overrides
// pak0.pk3 and both override loose files.
func (s *SearchPath) AddGameDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, "game dir")
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(Ext(e.Name()), ".pk3") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sources = append([]source{dirSource(dir)}, s.sources...)
	for _, n := range names {
		p, err := pack.NewPackReader(filepath.Join(dir, n))
		if err != nil {
			conlog.Warnf("skipping %s: %v", n, err)
			continue
		}
		conlog.DPrintf("Added packfile %s (%d files)", p, p.Len())
		s.packs = append(s.packs, p)
		s.sources = append([]source{p}, s.sources...)
	}
	return nil
}

// Path returns the sources in search order.
func (s *SearchPath) Path() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	path := make([]string, len(s.sources))
	for i, src := range s.sources {
		path[i] = src.String()
	}
	return path
}

func checkName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.Contains(name, "::") {
		return errors.Wrapf(ErrBadPath, "%q", name)
	}
	return nil
}

// Open returns the first file with the name in search order.
func (s *SearchPath) Open(name string) (io.ReadCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	name = strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for _, src := range s.sources {
		f, err := src.Open(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return nil, errors.Wrapf(os.ErrNotExist, "%s", name)
}

func (s *SearchPath) ReadFile(name string) ([]byte, error) {
	file, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Close closes all packs and empties the search path.
func (s *SearchPath) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var first error
	for _, p := range s.packs {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.packs = nil
	s.sources = nil
	return first
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}

// MapPath returns the game path of a map given by its bare name.
func MapPath(name string) string {
	name = StripExt(name)
	if !strings.HasPrefix(name, "maps/") {
		name = "maps/" + name
	}
	return name + ".bsp"
}
