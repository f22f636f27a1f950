// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func writePack(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for n, c := range files {
		fw, err := w.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(fw, c); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPak(t *testing.T) {
	pakFile := writePack(t, "pak0.pk3", map[string]string{
		"maps/Q3DM1.bsp":   "IBSP",
		"scripts/base.txt": "this is the first doc\r\n",
	})
	p, err := NewPackReader(pakFile)
	if err != nil {
		t.Fatalf("could not open %s: %v", pakFile, err)
	}
	defer p.Close()
	if p.String() != pakFile {
		t.Errorf("String() = %v, want %v", p.String(), pakFile)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	for _, tc := range []struct {
		name, want string
	}{
		{"scripts/base.txt", "this is the first doc\r\n"},
		{"maps/q3dm1.bsp", "IBSP"},
		{"/MAPS/q3dm1.BSP", "IBSP"},
		{"maps\\q3dm1.bsp", "IBSP"},
	} {
		f, err := p.Open(tc.name)
		if err != nil {
			t.Errorf("Open(%q): %v", tc.name, err)
			continue
		}
		b, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			t.Fatalf("could not read %s: %v", tc.name, err)
		}
		if string(b) != tc.want {
			t.Errorf("Open(%q) contents = %q, want %q", tc.name, b, tc.want)
		}
	}
	if _, err := p.Open("doc4.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(doc4.txt) = %v, want %v", err, os.ErrNotExist)
	}
	if n, ok := p.Size("maps/q3dm1.bsp"); !ok || n != 4 {
		t.Errorf("Size(maps/q3dm1.bsp) = %d, %v, want 4, true", n, ok)
	}
	names := p.Names()
	if len(names) != 2 || names[0] != "maps/q3dm1.bsp" || names[1] != "scripts/base.txt" {
		t.Errorf("Names() = %v", names)
	}
}

func TestNotPak(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pk3")
	if err := os.WriteFile(path, []byte("PACK but not really"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPackReader(path); !errors.Is(err, ErrNotPack) {
		t.Errorf("NewPackReader(broken) = %v, want %v", err, ErrNotPack)
	}
	if _, err := NewPackReader(filepath.Join(t.TempDir(), "missing.pk3")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("NewPackReader(missing) = %v, want %v", err, os.ErrNotExist)
	}
}
