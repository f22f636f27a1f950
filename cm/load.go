// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"github.com/chewxy/math32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"q3cm/bsp"
	"q3cm/conlog"
	"q3cm/crc"
	"q3cm/math/vec"
)

type loader struct {
	cm       *ClipMap
	m        *bsp.Map
	planeMap []int
}

// LoadBytes decodes a .bsp file and loads its collision data.
func LoadBytes(name string, data []byte, opts Options) (*ClipMap, error) {
	m, err := bsp.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", name)
	}
	cm, err := Load(name, m, opts)
	if err != nil {
		return nil, err
	}
	cm.checksum = uint32(crc.Checksum(data))
	return cm, nil
}

func newClipMap(name string, opts Options) *ClipMap {
	opts.fill()
	return &ClipMap{
		name: name,
		opts: opts,
		id:   uuid.Must(uuid.NewV7()),
	}
}

// Load builds the clip map from a decoded map. Malformed data results in an
// error, never in a partially loaded map.
func Load(name string, m *bsp.Map, opts Options) (*ClipMap, error) {
	l := &loader{cm: newClipMap(name, opts), m: m}
	steps := []struct {
		name string
		f    func() error
	}{
		{"shaders", l.loadShaders},
		{"leafs", l.loadLeafs},
		{"leafbrushes", l.loadLeafBrushes},
		{"leafsurfaces", l.loadLeafSurfaces},
		{"planes", l.loadPlanes},
		{"brushsides", l.loadBrushSides},
		{"brushes", l.loadBrushes},
		{"submodels", l.loadSubmodels},
		{"nodes", l.loadNodes},
		{"visibility", l.loadVisibility},
		{"patches", l.loadPatches},
	}
	for _, s := range steps {
		if err := s.f(); err != nil {
			return nil, errors.Wrapf(err, "loading %s: %s", name, s.name)
		}
	}
	cm := l.cm
	cm.entityString = m.Entities
	cm.initAreas()
	cm.initScratch()
	conlog.Logger().Info("loaded clip map",
		zap.String("name", name),
		zap.Stringer("id", cm.id),
		zap.Int("planes", len(cm.planes)),
		zap.Int("brushes", len(cm.brushes)),
		zap.Int("leafs", len(cm.leafs)),
		zap.Int("models", len(cm.models)),
		zap.Int("patches", len(cm.Patches())),
		zap.Int("areas", len(cm.areas)),
		zap.Int("clusters", cm.numClusters))
	return cm, nil
}

// NewEmpty returns a map with a single empty leaf, used when no map is
// loaded.
func NewEmpty(opts Options) *ClipMap {
	cm := newClipMap("", opts)
	cm.leafs = []Leaf{{}}
	cm.models = []Model{{}}
	cm.numClusters = 1
	cm.setNoVis()
	cm.areas = make([]area, 1)
	cm.initAreas()
	cm.initScratch()
	return cm
}

func badIndex(what string, i, n int) error {
	return errors.Wrapf(ErrBadIndex, "%s %d of %d", what, i, n)
}

func (l *loader) loadShaders() error {
	if len(l.m.Shaders) == 0 {
		return errors.Wrap(ErrBadLump, "map with no shaders")
	}
	l.cm.shaders = l.m.Shaders
	return nil
}

func (l *loader) loadLeafs() error {
	if len(l.m.Leafs) == 0 {
		return errors.Wrap(ErrBadLump, "map with no leafs")
	}
	cm := l.cm
	cm.leafs = make([]Leaf, len(l.m.Leafs))
	numAreas := 0
	for i, in := range l.m.Leafs {
		cm.leafs[i] = Leaf{
			Cluster:          int(in.Cluster),
			Area:             int(in.Area),
			FirstLeafBrush:   int(in.FirstLeafBrush),
			NumLeafBrushes:   int(in.NumLeafBrushes),
			FirstLeafSurface: int(in.FirstLeafSurface),
			NumLeafSurfaces:  int(in.NumLeafSurfaces),
		}
		if in.NumLeafBrushes < 0 || in.NumLeafSurfaces < 0 {
			return errors.Wrapf(ErrBadLump, "leaf %d has negative counts", i)
		}
		cm.numClusters = max(cm.numClusters, int(in.Cluster)+1)
		numAreas = max(numAreas, int(in.Area)+1)
	}
	cm.areas = make([]area, numAreas)
	return nil
}

func (l *loader) loadLeafBrushes() error {
	cm := l.cm
	cm.leafBrushes = make([]int, len(l.m.LeafBrushes))
	for i, b := range l.m.LeafBrushes {
		if b < 0 || int(b) >= len(l.m.Brushes) {
			return badIndex("leaf brush", int(b), len(l.m.Brushes))
		}
		cm.leafBrushes[i] = int(b)
	}
	for i := range cm.leafs {
		leaf := &cm.leafs[i]
		if leaf.FirstLeafBrush < 0 || leaf.FirstLeafBrush+leaf.NumLeafBrushes > len(cm.leafBrushes) {
			return errors.Wrapf(ErrBadIndex, "leaf %d brushes %d+%d of %d",
				i, leaf.FirstLeafBrush, leaf.NumLeafBrushes, len(cm.leafBrushes))
		}
	}
	return nil
}

func (l *loader) loadLeafSurfaces() error {
	cm := l.cm
	cm.leafSurfaces = make([]int, len(l.m.LeafSurfaces))
	for i, s := range l.m.LeafSurfaces {
		if s < 0 || int(s) >= len(l.m.Surfaces) {
			return badIndex("leaf surface", int(s), len(l.m.Surfaces))
		}
		cm.leafSurfaces[i] = int(s)
	}
	for i := range cm.leafs {
		leaf := &cm.leafs[i]
		if leaf.FirstLeafSurface < 0 || leaf.FirstLeafSurface+leaf.NumLeafSurfaces > len(cm.leafSurfaces) {
			return errors.Wrapf(ErrBadIndex, "leaf %d surfaces %d+%d of %d",
				i, leaf.FirstLeafSurface, leaf.NumLeafSurfaces, len(cm.leafSurfaces))
		}
	}
	return nil
}

// loadPlanes snaps and merges the planes of the map. Equal planes end up
// with one index.
func (l *loader) loadPlanes() error {
	if len(l.m.Planes) == 0 {
		return errors.Wrap(ErrBadLump, "map with no planes")
	}
	set := newPlaneSet()
	l.planeMap = make([]int, len(l.m.Planes))
	for i, p := range l.m.Planes {
		l.planeMap[i] = set.find(vec.Vec3(p.Normal), p.Dist)
	}
	l.cm.planes = set.planes
	if merged := len(l.m.Planes) - len(set.planes); merged > 0 {
		conlog.DPrintf("%s: merged %d duplicate planes", l.cm.name, merged)
	}
	return nil
}

func (l *loader) loadBrushSides() error {
	cm := l.cm
	cm.brushSides = make([]BrushSide, len(l.m.BrushSides))
	for i, in := range l.m.BrushSides {
		if in.PlaneNum < 0 || int(in.PlaneNum) >= len(l.planeMap) {
			return badIndex("plane", int(in.PlaneNum), len(l.planeMap))
		}
		if in.ShaderNum < 0 || int(in.ShaderNum) >= len(cm.shaders) {
			return badIndex("shader", int(in.ShaderNum), len(cm.shaders))
		}
		cm.brushSides[i] = BrushSide{
			PlaneNum:     l.planeMap[in.PlaneNum],
			ShaderNum:    int(in.ShaderNum),
			SurfaceFlags: SurfaceFlags(cm.shaders[in.ShaderNum].SurfaceFlags),
		}
	}
	return nil
}

// brushHullPlanes returns the distinct planes of the sides.
func brushHullPlanes(sides []BrushSide, planes []Plane) []hullPlane {
	hp := make([]hullPlane, 0, len(sides))
	seen := make(map[int]bool, len(sides))
	for _, s := range sides {
		if seen[s.PlaneNum] {
			continue
		}
		seen[s.PlaneNum] = true
		p := &planes[s.PlaneNum]
		hp = append(hp, hullPlane{p.Normal, p.Dist})
	}
	return hp
}

// brushBounds returns the face bounds, tightened to the axial sides.
func brushBounds(hull *convexHull, sides []BrushSide, planes []Plane) (mins, maxs vec.Vec3) {
	if hull == nil {
		return vec.ClearBounds()
	}
	const spread = 0.5
	for i := range 3 {
		mins[i] = hull.mins[i] - spread
		maxs[i] = hull.maxs[i] + spread
	}
	for _, s := range sides {
		p := &planes[s.PlaneNum]
		for i := range 3 {
			switch p.Normal[i] {
			case 1:
				maxs[i] = math32.Min(maxs[i], p.Dist)
			case -1:
				mins[i] = math32.Max(mins[i], -p.Dist)
			}
		}
	}
	return mins, maxs
}

func (l *loader) loadBrushes() error {
	cm := l.cm
	cm.brushes = make([]Brush, len(l.m.Brushes))
	for i, in := range l.m.Brushes {
		if in.NumSides == 0 {
			return errors.Wrapf(ErrNoBrushSides, "brush %d", i)
		}
		if in.FirstSide < 0 || in.NumSides < 0 || int(in.FirstSide)+int(in.NumSides) > len(cm.brushSides) {
			return errors.Wrapf(ErrBadIndex, "brush %d sides %d+%d of %d",
				i, in.FirstSide, in.NumSides, len(cm.brushSides))
		}
		if in.ShaderNum < 0 || int(in.ShaderNum) >= len(cm.shaders) {
			return badIndex("shader", int(in.ShaderNum), len(cm.shaders))
		}
		b := &cm.brushes[i]
		b.FirstSide = int(in.FirstSide)
		b.NumSides = int(in.NumSides)
		b.ShaderNum = int(in.ShaderNum)
		b.Contents = Contents(cm.shaders[in.ShaderNum].ContentFlags)
		sides := cm.BrushSides(b)
		hull, err := buildHull(brushHullPlanes(sides, cm.planes), cm.opts.PlaneEpsilon)
		if err != nil {
			return errors.Wrapf(err, "brush %d", i)
		}
		if hull == nil {
			cm.stats.degenerateBrushes++
			conlog.DPrintf("%s: brush %d has no volume", cm.name, i)
		}
		b.hull = hull
		b.Mins, b.Maxs = brushBounds(hull, sides, cm.planes)
	}
	return nil
}

func (l *loader) loadSubmodels() error {
	cm := l.cm
	if len(l.m.Models) == 0 {
		return errors.Wrap(ErrBadLump, "map with no models")
	}
	if len(l.m.Models) > MaxSubmodels-2 {
		return errors.Wrapf(ErrBadLump, "too many models: %d", len(l.m.Models))
	}
	cm.models = make([]Model, len(l.m.Models))
	for i, in := range l.m.Models {
		out := &cm.models[i]
		for j := range 3 {
			// spread the mins / maxs by a pixel
			out.Mins[j] = in.Mins[j] - 1
			out.Maxs[j] = in.Maxs[j] + 1
		}
		if i == 0 {
			// the world uses the tree
			continue
		}
		if in.FirstBrush < 0 || in.NumBrushes < 0 || int(in.FirstBrush)+int(in.NumBrushes) > len(cm.brushes) {
			return errors.Wrapf(ErrBadIndex, "model %d brushes %d+%d of %d",
				i, in.FirstBrush, in.NumBrushes, len(cm.brushes))
		}
		if in.FirstSurface < 0 || in.NumSurfaces < 0 || int(in.FirstSurface)+int(in.NumSurfaces) > len(l.m.Surfaces) {
			return errors.Wrapf(ErrBadIndex, "model %d surfaces %d+%d of %d",
				i, in.FirstSurface, in.NumSurfaces, len(l.m.Surfaces))
		}
		out.Leaf = Leaf{
			Cluster:          -1,
			FirstLeafBrush:   len(cm.leafBrushes),
			NumLeafBrushes:   int(in.NumBrushes),
			FirstLeafSurface: len(cm.leafSurfaces),
			NumLeafSurfaces:  int(in.NumSurfaces),
		}
		for j := range int(in.NumBrushes) {
			cm.leafBrushes = append(cm.leafBrushes, int(in.FirstBrush)+j)
		}
		for j := range int(in.NumSurfaces) {
			cm.leafSurfaces = append(cm.leafSurfaces, int(in.FirstSurface)+j)
		}
	}
	return nil
}

func (l *loader) loadNodes() error {
	cm := l.cm
	if len(l.m.Nodes) == 0 {
		return errors.Wrap(ErrBadLump, "map has no nodes")
	}
	cm.nodes = make([]Node, len(l.m.Nodes))
	for i, in := range l.m.Nodes {
		if in.PlaneNum < 0 || int(in.PlaneNum) >= len(l.planeMap) {
			return badIndex("plane", int(in.PlaneNum), len(l.planeMap))
		}
		n := &cm.nodes[i]
		n.PlaneNum = l.planeMap[in.PlaneNum]
		for j, c := range in.Children {
			child := int(c)
			if child >= 0 && child >= len(l.m.Nodes) {
				return badIndex("node", child, len(l.m.Nodes))
			}
			if child < 0 && -1-child >= len(cm.leafs) {
				return badIndex("leaf", -1-child, len(cm.leafs))
			}
			n.Children[j] = child
		}
	}
	return nil
}

func (cm *ClipMap) setNoVis() {
	cm.clusterBytes = (cm.numClusters + 31) / 32 * 4
	cm.allVisible = make([]byte, cm.clusterBytes)
	for i := range cm.allVisible {
		cm.allVisible[i] = 0xff
	}
	cm.vised = false
}

func (l *loader) loadVisibility() error {
	cm := l.cm
	v := l.m.Visibility
	if v == nil || len(v.Data) == 0 {
		cm.setNoVis()
		return nil
	}
	if v.NumClusters < 0 || v.ClusterBytes < 0 || int(v.NumClusters)*int(v.ClusterBytes) > len(v.Data) {
		return errors.Wrapf(ErrBadLump, "visibility %d clusters of %d bytes in %d", v.NumClusters, v.ClusterBytes, len(v.Data))
	}
	cm.numClusters = int(v.NumClusters)
	cm.clusterBytes = int(v.ClusterBytes)
	cm.visibility = v.Data
	cm.vised = true
	cm.allVisible = make([]byte, cm.clusterBytes)
	for i := range cm.allVisible {
		cm.allVisible[i] = 0xff
	}
	return nil
}

func (l *loader) loadPatches() error {
	cm := l.cm
	cm.surfaces = make([]*Patch, len(l.m.Surfaces))
	for i, in := range l.m.Surfaces {
		if in.SurfaceType != bsp.SurfacePatch {
			continue
		}
		w, h := int(in.PatchWidth), int(in.PatchHeight)
		if w <= 0 || h <= 0 {
			return errors.Wrapf(ErrBadPatch, "surface %d: bad size %dx%d", i, w, h)
		}
		if w*h > maxPatchVerts {
			return errors.Wrapf(ErrBadPatch, "surface %d: %dx%d exceeds %d points", i, w, h, maxPatchVerts)
		}
		if in.FirstVert < 0 || in.NumVerts < 0 || w*h > int(in.NumVerts) || int(in.FirstVert)+int(in.NumVerts) > len(l.m.DrawVerts) {
			return errors.Wrapf(ErrBadIndex, "surface %d vertices %d+%d of %d",
				i, in.FirstVert, in.NumVerts, len(l.m.DrawVerts))
		}
		if in.ShaderNum < 0 || int(in.ShaderNum) >= len(cm.shaders) {
			return badIndex("shader", int(in.ShaderNum), len(cm.shaders))
		}
		points := make([]vec.Vec3, w*h)
		for j := range points {
			points[j] = vec.Vec3(l.m.DrawVerts[int(in.FirstVert)+j].XYZ)
		}
		pc, degenerate, err := generatePatchCollide(w, h, points, cm.opts)
		if err != nil {
			return errors.Wrapf(err, "surface %d", i)
		}
		cm.stats.degenerateFacets += degenerate
		shader := &cm.shaders[in.ShaderNum]
		cm.surfaces[i] = &Patch{
			SurfaceNum:   i,
			ShaderNum:    int(in.ShaderNum),
			Contents:     Contents(shader.ContentFlags),
			SurfaceFlags: SurfaceFlags(shader.SurfaceFlags),
			Width:        w,
			Height:       h,
			pc:           pc,
		}
	}
	return nil
}
