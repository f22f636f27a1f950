// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"io"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// portal state fields
const (
	fieldNumAreas protowire.Number = 1
	fieldCounts   protowire.Number = 2
)

// WritePortalState saves the portal reference counts of the upper triangle
// of the portal matrix, used for savegames.
func (cm *ClipMap) WritePortalState(w io.Writer) error {
	cm.portalMu.RLock()
	n := len(cm.areas)
	var counts []byte
	for i := range n {
		for j := i; j < n; j++ {
			counts = protowire.AppendVarint(counts, uint64(cm.areaPortals[i*n+j]))
		}
	}
	cm.portalMu.RUnlock()

	var b []byte
	b = protowire.AppendTag(b, fieldNumAreas, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(n))
	b = protowire.AppendTag(b, fieldCounts, protowire.BytesType)
	b = protowire.AppendBytes(b, counts)
	_, err := w.Write(b)
	return errors.Wrap(err, "writing portal state")
}

func parseErr(n int) error {
	return errors.Wrap(ErrBadPortalState, protowire.ParseError(n).Error())
}

// ReadPortalState restores counts saved by WritePortalState and refloods
// the areas. The state is left unchanged on error.
func (cm *ClipMap) ReadPortalState(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading portal state")
	}
	numAreas := -1
	var packed []byte
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return parseErr(n)
		}
		data = data[n:]
		switch {
		case num == fieldNumAreas && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return parseErr(n)
			}
			numAreas = int(v)
			data = data[n:]
		case num == fieldCounts && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return parseErr(n)
			}
			packed = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return parseErr(n)
			}
			data = data[n:]
		}
	}
	areas := len(cm.areas)
	if numAreas != areas {
		return errors.Wrapf(ErrBadPortalState, "%d areas, map has %d", numAreas, areas)
	}
	counts := make([]int, 0, areas*(areas+1)/2)
	for len(packed) > 0 {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			return parseErr(n)
		}
		counts = append(counts, int(v))
		packed = packed[n:]
	}
	if len(counts) != areas*(areas+1)/2 {
		return errors.Wrapf(ErrBadPortalState, "%d counts for %d areas", len(counts), areas)
	}

	cm.portalMu.Lock()
	defer cm.portalMu.Unlock()
	k := 0
	for i := range areas {
		for j := i; j < areas; j++ {
			cm.areaPortals[i*areas+j] = counts[k]
			cm.areaPortals[j*areas+i] = counts[k]
			k++
		}
	}
	cm.floodAreaConnections()
	return nil
}
