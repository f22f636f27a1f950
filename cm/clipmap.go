// SPDX-License-Identifier: GPL-2.0-or-later

// Package cm answers geometric queries against the collision data of a
// compiled map: traces of points, boxes and capsules, point contents, leaf
// enumeration, area connectivity and cluster visibility.
//
// A ClipMap is immutable after Load except for the area portal state, which
// is guarded by a lock. All queries may run concurrently.
package cm

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"q3cm/bsp"
	"q3cm/math/vec"
)

const (
	// MaxSubmodels is the number of model slots, including the two
	// reserved for temporary models.
	MaxSubmodels       = 256
	BoxModelHandle     = 255
	CapsuleModelHandle = 254
)

type BrushSide struct {
	PlaneNum     int
	ShaderNum    int
	SurfaceFlags SurfaceFlags
}

type Brush struct {
	ShaderNum  int
	Contents   Contents
	Mins, Maxs vec.Vec3
	FirstSide  int
	NumSides   int

	hull *convexHull
}

type Node struct {
	PlaneNum int
	// Children are node indices, or -1-leaf for leafs.
	Children [2]int
}

type Leaf struct {
	Cluster          int
	Area             int
	FirstLeafBrush   int
	NumLeafBrushes   int
	FirstLeafSurface int
	NumLeafSurfaces  int
}

type Model struct {
	Mins, Maxs vec.Vec3
	// Leaf holds the brushes and surfaces of a submodel. It is unused for
	// the world model.
	Leaf Leaf
}

// Patch is the collision form of a curved surface.
type Patch struct {
	SurfaceNum   int
	ShaderNum    int
	Contents     Contents
	SurfaceFlags SurfaceFlags
	Width        int
	Height       int

	pc *patchCollide
}

// Bounds returns the bounds of the tessellated patch.
func (p *Patch) Bounds() (mins, maxs vec.Vec3) {
	return p.pc.mins, p.pc.maxs
}

// NumFacets returns the number of collision facets of the patch.
func (p *Patch) NumFacets() int {
	return len(p.pc.facets)
}

type area struct {
	floodNum   int
	floodValid int
}

type ClipMap struct {
	name     string
	id       uuid.UUID
	checksum uint32
	opts     Options

	shaders      []bsp.Shader
	planes       []Plane
	brushSides   []BrushSide
	brushes      []Brush
	nodes        []Node
	leafs        []Leaf
	leafBrushes  []int
	leafSurfaces []int
	models       []Model
	surfaces     []*Patch // nil for surfaces without collision
	entityString string

	numClusters  int
	clusterBytes int
	visibility   []byte
	vised        bool
	allVisible   []byte

	portalMu    sync.RWMutex
	areas       []area
	areaPortals []int // numAreas * numAreas reference counts
	floodValid  int

	scratch sync.Pool
	stats   counters
}

type counters struct {
	traces        atomic.Int64
	brushTraces   atomic.Int64
	patchTraces   atomic.Int64
	pointContents atomic.Int64

	degenerateBrushes int
	degenerateFacets  int
}

type Stats struct {
	Traces            int64
	BrushTraces       int64
	PatchTraces       int64
	PointContents     int64
	DegenerateBrushes int
	DegenerateFacets  int
}

func (cm *ClipMap) Stats() Stats {
	return Stats{
		Traces:            cm.stats.traces.Load(),
		BrushTraces:       cm.stats.brushTraces.Load(),
		PatchTraces:       cm.stats.patchTraces.Load(),
		PointContents:     cm.stats.pointContents.Load(),
		DegenerateBrushes: cm.stats.degenerateBrushes,
		DegenerateFacets:  cm.stats.degenerateFacets,
	}
}

func (cm *ClipMap) Name() string {
	return cm.name
}

// ID identifies this load of the map. Handles from other loads are rejected.
func (cm *ClipMap) ID() uuid.UUID {
	return cm.id
}

// Checksum is the crc of the map file, zero when not loaded from bytes.
func (cm *ClipMap) Checksum() uint32 {
	return cm.checksum
}

func (cm *ClipMap) Options() Options {
	return cm.opts
}

func (cm *ClipMap) EntityString() string {
	return cm.entityString
}

func (cm *ClipMap) Entities() ([]*bsp.Entity, error) {
	return bsp.ParseEntities(cm.entityString)
}

func (cm *ClipMap) NumInlineModels() int {
	return len(cm.models)
}

func (cm *ClipMap) NumClusters() int {
	return cm.numClusters
}

func (cm *ClipMap) NumLeafs() int {
	return len(cm.leafs)
}

func (cm *ClipMap) NumBrushes() int {
	return len(cm.brushes)
}

func (cm *ClipMap) Brush(i int) *Brush {
	return &cm.brushes[i]
}

// BrushSides returns the sides of brush b.
func (cm *ClipMap) BrushSides(b *Brush) []BrushSide {
	return cm.brushSides[b.FirstSide : b.FirstSide+b.NumSides]
}

func (cm *ClipMap) Plane(i int) Plane {
	return cm.planes[i]
}

// Patches returns all patches of the map.
func (cm *ClipMap) Patches() []*Patch {
	var r []*Patch
	for _, p := range cm.surfaces {
		if p != nil {
			r = append(r, p)
		}
	}
	return r
}

func (cm *ClipMap) LeafCluster(leafnum int) (int, error) {
	if leafnum < 0 || leafnum >= len(cm.leafs) {
		return 0, ErrBadIndex
	}
	return cm.leafs[leafnum].Cluster, nil
}

func (cm *ClipMap) LeafArea(leafnum int) (int, error) {
	if leafnum < 0 || leafnum >= len(cm.leafs) {
		return 0, ErrBadIndex
	}
	return cm.leafs[leafnum].Area, nil
}
