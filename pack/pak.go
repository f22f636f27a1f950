// SPDX-License-Identifier: GPL-2.0-or-later

// Package pack reads pk3 archives, zip files holding game data.
package pack

import (
	"archive/zip"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotPack = errors.New("not a pk3 archive")

type Pack struct {
	r     *zip.ReadCloser
	files map[string]*zip.File
	name  string
}

// key is the lookup name of a file, names inside a pack are case
// insensitive and always relative.
func key(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}

// Open returns a reader for the entry or os.ErrNotExist if the pack has no
// entry with the provided name.
func (p *Pack) Open(name string) (io.ReadCloser, error) {
	f, ok := p.files[key(name)]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "%s in %s", name, p.name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "%s in %s", name, p.name)
	}
	return rc, nil
}

// Size returns the uncompressed size of the entry.
func (p *Pack) Size(name string) (int64, bool) {
	f, ok := p.files[key(name)]
	if !ok {
		return 0, false
	}
	return int64(f.UncompressedSize64), true
}

// Names returns the sorted entry names.
func (p *Pack) Names() []string {
	names := make([]string, 0, len(p.files))
	for n := range p.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (p *Pack) Len() int {
	return len(p.files)
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	return p.r.Close()
}

func (p *Pack) init() error {
	p.files = make(map[string]*zip.File, len(p.r.File))
	for _, f := range p.r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue // directory
		}
		k := key(f.Name)
		if p.files[k] != nil {
			return errors.Errorf("%s: file %s is not unique", p.name, f.Name)
		}
		p.files[k] = f
	}
	return nil
}

func NewPackReader(name string) (*Pack, error) {
	r, err := zip.OpenReader(name)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, errors.Wrap(ErrNotPack, name)
		}
		return nil, err
	}
	p := &Pack{r: r, name: name}
	if err := p.init(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}
