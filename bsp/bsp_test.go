// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func testMap() *Map {
	return &Map{
		Entities: "{\n\"classname\" \"worldspawn\"\n\"message\" \"test\"\n}\n",
		Shaders:  []Shader{NewShader("textures/base/wall", 0, 1)},
		Planes: []Plane{
			{Normal: [3]float32{1, 0, 0}, Dist: 32},
			{Normal: [3]float32{-1, 0, 0}, Dist: 32},
		},
		Nodes: []Node{{PlaneNum: 0, Children: [2]int32{-1, -2}}},
		Leafs: []Leaf{
			{Cluster: 0, Area: 0, NumLeafBrushes: 1},
			{Cluster: -1, Area: 0, FirstLeafBrush: 1},
		},
		LeafBrushes: []int32{0},
		Models:      []Model{{Mins: [3]float32{-32, -32, -32}, Maxs: [3]float32{32, 32, 32}, NumBrushes: 1}},
		Brushes:     []Brush{{FirstSide: 0, NumSides: 2}},
		BrushSides:  []BrushSide{{PlaneNum: 0}, {PlaneNum: 1}},
		DrawVerts:   []DrawVert{{XYZ: [3]float32{1, 2, 3}}},
		Surfaces:    []Surface{{SurfaceType: SurfacePatch, NumVerts: 1, PatchWidth: 1, PatchHeight: 1}},
		Visibility:  &Visibility{NumClusters: 1, ClusterBytes: 1, Data: []byte{1}},
	}
}

func TestEncodeDecode(t *testing.T) {
	m := testMap()
	got, err := Decode(Encode(m))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Entities != m.Entities {
		t.Errorf("Entities = %q, want %q", got.Entities, m.Entities)
	}
	if name := got.Shaders[0].ShaderName(); name != "textures/base/wall" {
		t.Errorf("ShaderName = %q", name)
	}
	for _, c := range []struct {
		name      string
		got, want any
	}{
		{"planes", got.Planes, m.Planes},
		{"nodes", got.Nodes, m.Nodes},
		{"leafs", got.Leafs, m.Leafs},
		{"brushes", got.Brushes, m.Brushes},
		{"brushsides", got.BrushSides, m.BrushSides},
		{"surfaces", got.Surfaces, m.Surfaces},
		{"visibility", got.Visibility, m.Visibility},
	} {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	good := Encode(testMap())

	badIdent := append([]byte(nil), good...)
	badIdent[0] = 'X'

	badVersion := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(badVersion[4:], 47)

	// planes are 16 bytes, make the lump 15
	badSize := append([]byte(nil), good...)
	off := 8 + lumpPlanes*8 + 4
	binary.LittleEndian.PutUint32(badSize[off:], 15)

	badBounds := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(badBounds[off:], uint32(len(good)))

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", good[:10], ErrShortHeader},
		{"ident", badIdent, ErrBadIdent},
		{"version", badVersion, ErrBadVersion},
		{"size", badSize, ErrLumpSize},
		{"bounds", badBounds, ErrLumpBounds},
	}
	for _, tt := range tests {
		if _, err := Decode(tt.data); !errors.Is(err, tt.want) {
			t.Errorf("Decode(%s) err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestParseEntities(t *testing.T) {
	data := `{
"classname" "worldspawn"
"message" "a {braced} name"
}
{
"classname" "func_door"
"model" "*1"
}`
	es, err := ParseEntities(data)
	if err != nil {
		t.Fatalf("ParseEntities: %v", err)
	}
	if len(es) != 2 {
		t.Fatalf("got %d entities, want 2", len(es))
	}
	if n, _ := es[1].Name(); n != "func_door" {
		t.Errorf("Name() = %q, want func_door", n)
	}
	if v, _ := es[0].Property("message"); v != "a {braced} name" {
		t.Errorf("message = %q", v)
	}
	if keys := es[1].PropertyNames(); !reflect.DeepEqual(keys, []string{"classname", "model"}) {
		t.Errorf("PropertyNames() = %v", keys)
	}
	if _, err := ParseEntities("{ \"a\" \"b\" "); !errors.Is(err, ErrBadEntities) {
		t.Errorf("unbalanced err = %v", err)
	}
}
