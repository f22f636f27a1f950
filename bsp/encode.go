// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
)

func lumpData(m *Map, lump int) any {
	switch lump {
	case lumpEntities:
		return append([]byte(m.Entities), 0)
	case lumpShaders:
		return m.Shaders
	case lumpPlanes:
		return m.Planes
	case lumpNodes:
		return m.Nodes
	case lumpLeafs:
		return m.Leafs
	case lumpLeafSurfaces:
		return m.LeafSurfaces
	case lumpLeafBrushes:
		return m.LeafBrushes
	case lumpModels:
		return m.Models
	case lumpBrushes:
		return m.Brushes
	case lumpBrushSides:
		return m.BrushSides
	case lumpDrawVerts:
		return m.DrawVerts
	case lumpDrawIndexes:
		return m.DrawIndexes
	case lumpFogs:
		return m.Fogs
	case lumpSurfaces:
		return m.Surfaces
	case lumpLightmaps:
		return m.Lightmaps
	case lumpLightGrid:
		return m.LightGrid
	case lumpVisibility:
		v := m.Visibility
		if v == nil {
			return []byte{}
		}
		b := make([]byte, 8, 8+len(v.Data))
		binary.LittleEndian.PutUint32(b, uint32(v.NumClusters))
		binary.LittleEndian.PutUint32(b[4:], uint32(v.ClusterBytes))
		return append(b, v.Data...)
	}
	return nil
}

// Encode writes the map in the layout Decode reads. Lumps are 4 byte aligned.
func Encode(m *Map) []byte {
	var h header
	h.Ident = Ident
	h.Version = Version

	var body bytes.Buffer
	offset := binary.Size(h)
	for i := range headerLumps {
		for (offset+body.Len())%4 != 0 {
			body.WriteByte(0)
		}
		start := body.Len()
		// writing into a bytes.Buffer does not fail for fixed size data
		_ = binary.Write(&body, binary.LittleEndian, lumpData(m, i))
		h.Lumps[i] = directory{
			Offset: int32(offset + start),
			Size:   int32(body.Len() - start),
		}
	}

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, &h)
	out.Write(body.Bytes())
	return out.Bytes()
}
