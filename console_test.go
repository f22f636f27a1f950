// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"q3cm/bsp"
	"q3cm/cm"
	"q3cm/cmd"
	"q3cm/cvars"
)

// boxMap is a 64 unit solid cube around the origin, split by the plane
// x=0 into two leafs of one area.
func boxMap() *bsp.Map {
	m := &bsp.Map{
		Entities: "{\n\"classname\" \"worldspawn\"\n}\n",
		Shaders:  []bsp.Shader{bsp.NewShader("textures/base/solid", 0, int32(cm.ContentsSolid))},
		Planes:   []bsp.Plane{{Normal: [3]float32{1, 0, 0}, Dist: 0}},
		Nodes:    []bsp.Node{{PlaneNum: 0, Children: [2]int32{-1, -2}}},
		Leafs: []bsp.Leaf{
			{FirstLeafBrush: 0, NumLeafBrushes: 1},
			{FirstLeafBrush: 1, NumLeafBrushes: 1},
		},
		LeafBrushes: []int32{0, 0},
		Models:      []bsp.Model{{Mins: [3]float32{-32, -32, -32}, Maxs: [3]float32{32, 32, 32}, NumBrushes: 1}},
		Brushes:     []bsp.Brush{{FirstSide: 0, NumSides: 6}},
	}
	for i := range 3 {
		var n [3]float32
		n[i] = 1
		m.Planes = append(m.Planes, bsp.Plane{Normal: n, Dist: 32})
		n[i] = -1
		m.Planes = append(m.Planes, bsp.Plane{Normal: n, Dist: 32})
	}
	for i := range 6 {
		m.BrushSides = append(m.BrushSides, bsp.BrushSide{PlaneNum: int32(i + 1)})
	}
	return m
}

func testConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "baseq3", "maps", "box.bsp")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, bsp.Encode(boxMap()), 0o644); err != nil {
		t.Fatal(err)
	}
	cvars.FSBasePath.SetByString(base)
	t.Cleanup(cvars.FSBasePath.Reset)
	var out bytes.Buffer
	c, err := newConsole(&out)
	if err != nil {
		t.Fatalf("newConsole: %v", err)
	}
	return c, &out
}

func TestConsole(t *testing.T) {
	c, out := testConsole(t)
	c.buf.AddText("map box; info\n")
	if err := c.buf.Execute(); err != nil {
		t.Fatalf("map box: %v", err)
	}
	if !strings.Contains(out.String(), "brushes   1\n") {
		t.Errorf("info output %q does not list one brush", out.String())
	}
	for _, tc := range []struct {
		line string
		want []string
	}{
		{"trace 8 0 100 8 0 -100", []string{"normal     0 0 1 dist 32\n", "contents   0x1\n", "startsolid false allsolid false\n"}},
		{"trace 8 100 100 8 100 -100", []string{"fraction   1\n", "endpos     8 100 -100\n"}},
		{"trace 8 0 100 8 0 -100 box -8 -8 -8 8 8 8 mask water", []string{"fraction   1\n"}},
		{"contents 8 0 0", []string{"contents 0x1 leaf 0 cluster 0 area 0\n"}},
		{"contents -8 0 100", []string{"contents 0x0 leaf 1 cluster 0 area 0\n"}},
		{"leafs -1 -1 -1 1 1 1", []string{"leafs [0 1]\n", "brushes [0]\n"}},
		{"areas 0 0", []string{"connected true areabits 01\n"}},
		{"cm_noCurves", []string{"\"cm_noCurves\" is \"0\"\n"}},
		{"cmdlist tr", []string{"trace\n", "1 commands beginning with \"tr\"\n"}},
	} {
		out.Reset()
		c.buf.AddText(tc.line + "\n")
		if err := c.buf.Execute(); err != nil {
			t.Errorf("%q: %v", tc.line, err)
			continue
		}
		for _, w := range tc.want {
			if !strings.Contains(out.String(), w) {
				t.Errorf("%q output %q, want it to contain %q", tc.line, out.String(), w)
			}
		}
	}
}

func TestConsoleErrors(t *testing.T) {
	c, _ := testConsole(t)
	for _, tc := range []struct {
		line string
		want error
	}{
		{"info", errNoMap},
		{"map missing", os.ErrNotExist},
		{"map", cmd.ErrBadArgument},
		{"nosuchcommand", cmd.ErrUnknownCommand},
	} {
		c.buf.AddText(tc.line + "\n")
		if err := c.buf.Execute(); !errors.Is(err, tc.want) {
			t.Errorf("%q = %v, want %v", tc.line, err, tc.want)
		}
	}
	c.buf.AddText("map box\n")
	if err := c.buf.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		line string
		want error
	}{
		{"trace 0 0 0", cmd.ErrBadArgument},
		{"trace 0 0 0 1 1 1 mask lava", cmd.ErrBadArgument},
		{"trace 0 0 0 1 1 1 sideways", cmd.ErrBadArgument},
		{"portal 0 0 ajar", cmd.ErrBadArgument},
		{"portal 0 3 open", cm.ErrAreaOutOfRange},
		{"trace 0 0 0 1 1 1 model 7", cm.ErrBadModelHandle},
	} {
		c.buf.AddText(tc.line + "\n")
		if err := c.buf.Execute(); !errors.Is(err, tc.want) {
			t.Errorf("%q = %v, want %v", tc.line, err, tc.want)
		}
	}
}

func TestConsoleState(t *testing.T) {
	c, _ := testConsole(t)
	state := filepath.Join(t.TempDir(), "portals.state")
	c.buf.AddText("map box\nportal 0 0 open\nsavestate " + state + "\nportal 0 0 close\nloadstate " + state + "\n")
	if err := c.buf.Execute(); err != nil {
		t.Fatalf("state commands: %v", err)
	}
	var buf bytes.Buffer
	if err := c.cm.WritePortalState(&buf); err != nil {
		t.Fatal(err)
	}
	saved, err := os.ReadFile(state)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), saved) {
		t.Errorf("restored state %x, want %x", buf.Bytes(), saved)
	}
}
