// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

const (
	Ident   = 'I' | 'B'<<8 | 'S'<<16 | 'P'<<24
	Version = 46
)

const (
	lumpEntities = iota
	lumpShaders
	lumpPlanes
	lumpNodes
	lumpLeafs
	lumpLeafSurfaces
	lumpLeafBrushes
	lumpModels
	lumpBrushes
	lumpBrushSides
	lumpDrawVerts
	lumpDrawIndexes
	lumpFogs
	lumpSurfaces
	lumpLightmaps
	lumpLightGrid
	lumpVisibility
	headerLumps
)

var lumpNames = [headerLumps]string{
	"entities", "shaders", "planes", "nodes", "leafs", "leafsurfaces",
	"leafbrushes", "models", "brushes", "brushsides", "drawverts",
	"drawindexes", "fogs", "surfaces", "lightmaps", "lightgrid", "visibility",
}

// called lump_t in c
type directory struct {
	Offset int32
	Size   int32
}

type header struct {
	Ident   int32
	Version int32
	Lumps   [headerLumps]directory
}

type Shader struct {
	Name         [64]byte
	SurfaceFlags int32
	ContentFlags int32
}

func (s *Shader) ShaderName() string {
	for i, b := range s.Name {
		if b == 0 {
			return string(s.Name[:i])
		}
	}
	return string(s.Name[:])
}

func NewShader(name string, surfaceFlags, contentFlags int32) Shader {
	s := Shader{SurfaceFlags: surfaceFlags, ContentFlags: contentFlags}
	copy(s.Name[:len(s.Name)-1], name)
	return s
}

type Plane struct {
	Normal [3]float32
	Dist   float32
}

// Children: negative numbers are -(leaf+1)
type Node struct {
	PlaneNum int32
	Children [2]int32
	Mins     [3]int32
	Maxs     [3]int32
}

type Leaf struct {
	Cluster          int32 // -1 = opaque cluster
	Area             int32
	Mins             [3]int32
	Maxs             [3]int32
	FirstLeafSurface int32
	NumLeafSurfaces  int32
	FirstLeafBrush   int32
	NumLeafBrushes   int32
}

// Model, either the world or an inline model like a door or a platform
type Model struct {
	Mins         [3]float32
	Maxs         [3]float32
	FirstSurface int32
	NumSurfaces  int32
	FirstBrush   int32
	NumBrushes   int32
}

type Brush struct {
	FirstSide int32
	NumSides  int32
	ShaderNum int32 // the shader that determines the contents flags
}

type BrushSide struct {
	PlaneNum  int32 // positive plane side faces out of the leaf
	ShaderNum int32
}

type DrawVert struct {
	XYZ      [3]float32
	ST       [2]float32
	Lightmap [2]float32
	Normal   [3]float32
	Color    [4]byte
}

const (
	SurfaceBad = iota
	SurfacePlanar
	SurfacePatch
	SurfaceTriangleSoup
	SurfaceFlare
)

type Surface struct {
	ShaderNum      int32
	FogNum         int32
	SurfaceType    int32
	FirstVert      int32
	NumVerts       int32
	FirstIndex     int32
	NumIndexes     int32
	LightmapNum    int32
	LightmapX      int32
	LightmapY      int32
	LightmapWidth  int32
	LightmapHeight int32
	LightmapOrigin [3]float32
	LightmapVecs   [3][3]float32 // for patches, [0] and [1] are lodbounds
	PatchWidth     int32
	PatchHeight    int32
}

// Visibility holds one bit per cluster pair, ClusterBytes bytes per row.
// A nil Visibility means the map was not vised.
type Visibility struct {
	NumClusters  int32
	ClusterBytes int32
	Data         []byte
}

// Map is the decoded content of a .bsp file. Lumps the collision code does
// not interpret are kept as raw bytes so that Encode can write them back.
type Map struct {
	Entities     string
	Shaders      []Shader
	Planes       []Plane
	Nodes        []Node
	Leafs        []Leaf
	LeafSurfaces []int32
	LeafBrushes  []int32
	Models       []Model
	Brushes      []Brush
	BrushSides   []BrushSide
	DrawVerts    []DrawVert
	DrawIndexes  []int32
	Fogs         []byte
	Surfaces     []Surface
	Lightmaps    []byte
	LightGrid    []byte
	Visibility   *Visibility
}
