// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	ErrShortHeader = errors.New("bsp: file too short for header")
	ErrBadIdent    = errors.New("bsp: not an IBSP file")
	ErrBadVersion  = errors.New("bsp: wrong version number")
	ErrLumpBounds  = errors.New("bsp: lump outside of file")
	ErrLumpSize    = errors.New("bsp: funny lump size")
)

func lumpBytes(data []byte, h *header, lump int) ([]byte, error) {
	l := h.Lumps[lump]
	if l.Offset < 0 || l.Size < 0 || int64(l.Offset)+int64(l.Size) > int64(len(data)) {
		return nil, errors.Wrapf(ErrLumpBounds, "%s: offset %d size %d, file %d",
			lumpNames[lump], l.Offset, l.Size, len(data))
	}
	return data[l.Offset : l.Offset+l.Size], nil
}

func readLump[T any](data []byte, h *header, lump int) ([]T, error) {
	b, err := lumpBytes(data, h, lump)
	if err != nil {
		return nil, err
	}
	var zero T
	size := binary.Size(zero)
	if len(b)%size != 0 {
		return nil, errors.Wrapf(ErrLumpSize, "%s: %d bytes, record size %d", lumpNames[lump], len(b), size)
	}
	out := make([]T, len(b)/size)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, out); err != nil {
		return nil, errors.Wrapf(err, "reading %s", lumpNames[lump])
	}
	return out, nil
}

func readVisibility(data []byte, h *header) (*Visibility, error) {
	b, err := lumpBytes(data, h, lumpVisibility)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	if len(b) < 8 {
		return nil, errors.Wrapf(ErrLumpSize, "visibility: %d bytes", len(b))
	}
	v := &Visibility{
		NumClusters:  int32(binary.LittleEndian.Uint32(b)),
		ClusterBytes: int32(binary.LittleEndian.Uint32(b[4:])),
	}
	need := int64(v.NumClusters) * int64(v.ClusterBytes)
	if v.NumClusters < 0 || v.ClusterBytes < 0 || need > int64(len(b)-8) {
		return nil, errors.Wrapf(ErrLumpSize, "visibility: %d clusters of %d bytes in %d bytes",
			v.NumClusters, v.ClusterBytes, len(b)-8)
	}
	v.Data = append([]byte(nil), b[8:8+need]...)
	return v, nil
}

// Decode parses an IBSP version 46 file.
func Decode(data []byte) (*Map, error) {
	var h header
	if len(data) < binary.Size(h) {
		return nil, ErrShortHeader
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	if h.Ident != Ident {
		return nil, errors.Wrapf(ErrBadIdent, "ident %#x", uint32(h.Ident))
	}
	if h.Version != Version {
		return nil, errors.Wrapf(ErrBadVersion, "%d, should be %d", h.Version, Version)
	}

	m := &Map{}
	var err error
	ents, err := lumpBytes(data, &h, lumpEntities)
	if err != nil {
		return nil, err
	}
	m.Entities = string(bytes.TrimRight(ents, "\x00"))

	if m.Shaders, err = readLump[Shader](data, &h, lumpShaders); err != nil {
		return nil, err
	}
	if m.Planes, err = readLump[Plane](data, &h, lumpPlanes); err != nil {
		return nil, err
	}
	if m.Nodes, err = readLump[Node](data, &h, lumpNodes); err != nil {
		return nil, err
	}
	if m.Leafs, err = readLump[Leaf](data, &h, lumpLeafs); err != nil {
		return nil, err
	}
	if m.LeafSurfaces, err = readLump[int32](data, &h, lumpLeafSurfaces); err != nil {
		return nil, err
	}
	if m.LeafBrushes, err = readLump[int32](data, &h, lumpLeafBrushes); err != nil {
		return nil, err
	}
	if m.Models, err = readLump[Model](data, &h, lumpModels); err != nil {
		return nil, err
	}
	if m.Brushes, err = readLump[Brush](data, &h, lumpBrushes); err != nil {
		return nil, err
	}
	if m.BrushSides, err = readLump[BrushSide](data, &h, lumpBrushSides); err != nil {
		return nil, err
	}
	if m.DrawVerts, err = readLump[DrawVert](data, &h, lumpDrawVerts); err != nil {
		return nil, err
	}
	if m.DrawIndexes, err = readLump[int32](data, &h, lumpDrawIndexes); err != nil {
		return nil, err
	}
	if m.Surfaces, err = readLump[Surface](data, &h, lumpSurfaces); err != nil {
		return nil, err
	}
	if m.Fogs, err = lumpBytes(data, &h, lumpFogs); err != nil {
		return nil, err
	}
	if m.Lightmaps, err = lumpBytes(data, &h, lumpLightmaps); err != nil {
		return nil, err
	}
	if m.LightGrid, err = lumpBytes(data, &h, lumpLightGrid); err != nil {
		return nil, err
	}
	if m.Visibility, err = readVisibility(data, &h); err != nil {
		return nil, err
	}
	return m, nil
}
