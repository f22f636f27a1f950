// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

func connected(t *testing.T, cm *ClipMap, a1, a2 int) bool {
	t.Helper()
	ok, err := cm.AreasConnected(a1, a2)
	if err != nil {
		t.Fatalf("AreasConnected(%d, %d): %v", a1, a2, err)
	}
	return ok
}

func TestAreaPortals(t *testing.T) {
	cm := loadTestMap(t, testMap(), DefaultOptions())
	if connected(t, cm, 0, 1) {
		t.Errorf("areas 0 and 1 connected without an open portal")
	}
	if !connected(t, cm, 1, 1) {
		t.Errorf("area 1 not connected to itself")
	}
	if connected(t, cm, -1, 0) {
		t.Errorf("negative area connected")
	}
	bits, err := cm.WriteAreaBits(0)
	if err != nil {
		t.Fatalf("WriteAreaBits(0): %v", err)
	}
	if !bytes.Equal(bits, []byte{0x01}) {
		t.Errorf("WriteAreaBits(0) = %x, want 01", bits)
	}

	for _, step := range []struct {
		delta int
		want  bool
	}{
		{1, true}, {1, true}, {-1, true}, {-1, false},
	} {
		if err := cm.AdjustAreaPortalState(0, 1, step.delta); err != nil {
			t.Fatalf("AdjustAreaPortalState(0, 1, %d): %v", step.delta, err)
		}
		if got := connected(t, cm, 1, 0); got != step.want {
			t.Errorf("after %+d AreasConnected(1, 0) = %v, want %v", step.delta, got, step.want)
		}
	}
	if err := cm.AdjustAreaPortalState(0, 1, -1); !errors.Is(err, ErrNegativePortalCount) {
		t.Errorf("closing a closed portal = %v, want %v", err, ErrNegativePortalCount)
	}
	if got := cm.portalCount(0, 1); got != 0 {
		t.Errorf("portal count after a failed close = %d, want 0", got)
	}
	if err := cm.AdjustAreaPortalState(0, 2, 1); !errors.Is(err, ErrAreaOutOfRange) {
		t.Errorf("AdjustAreaPortalState(0, 2) = %v, want %v", err, ErrAreaOutOfRange)
	}
	if _, err := cm.AreasConnected(5, 0); !errors.Is(err, ErrAreaOutOfRange) {
		t.Errorf("AreasConnected(5, 0) = %v, want %v", err, ErrAreaOutOfRange)
	}
	if err := cm.AdjustAreaPortalState(-1, 1, 1); err != nil {
		t.Errorf("AdjustAreaPortalState(-1, 1) = %v, want nil", err)
	}

	if err := cm.AdjustAreaPortalState(1, 0, 1); err != nil {
		t.Fatal(err)
	}
	bits, err = cm.WriteAreaBits(1)
	if err != nil {
		t.Fatalf("WriteAreaBits(1): %v", err)
	}
	if !bytes.Equal(bits, []byte{0x03}) {
		t.Errorf("WriteAreaBits(1) = %x, want 03", bits)
	}
	if bits, _ := cm.WriteAreaBits(-1); !bytes.Equal(bits, []byte{0x03}) {
		t.Errorf("WriteAreaBits(-1) = %x, want 03", bits)
	}
}

func TestNoAreas(t *testing.T) {
	opts := DefaultOptions()
	opts.NoAreas = true
	cm := loadTestMap(t, testMap(), opts)
	if !connected(t, cm, 0, 1) {
		t.Errorf("AreasConnected(0, 1) = false with NoAreas")
	}
	if bits, _ := cm.WriteAreaBits(0); !bytes.Equal(bits, []byte{0x03}) {
		t.Errorf("WriteAreaBits(0) = %x, want 03", bits)
	}
}

func TestPortalState(t *testing.T) {
	cm := loadTestMap(t, testMap(), DefaultOptions())
	for range 3 {
		if err := cm.AdjustAreaPortalState(0, 1, 1); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := cm.WritePortalState(&buf); err != nil {
		t.Fatalf("WritePortalState: %v", err)
	}
	saved := buf.Bytes()

	restored := loadTestMap(t, testMap(), DefaultOptions())
	if err := restored.ReadPortalState(bytes.NewReader(saved)); err != nil {
		t.Fatalf("ReadPortalState: %v", err)
	}
	if got := restored.portalCount(1, 0); got != 3 {
		t.Errorf("restored portal count = %d, want 3", got)
	}
	if !connected(t, restored, 0, 1) {
		t.Errorf("restored areas not connected")
	}

	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"truncated", saved[:len(saved)-1]},
		{"wrong area count", func() []byte {
			b := protowire.AppendTag(nil, fieldNumAreas, protowire.VarintType)
			b = protowire.AppendVarint(b, 3)
			b = protowire.AppendTag(b, fieldCounts, protowire.BytesType)
			return protowire.AppendBytes(b, []byte{0, 0, 0, 0, 0, 0})
		}()},
		{"missing counts", func() []byte {
			b := protowire.AppendTag(nil, fieldNumAreas, protowire.VarintType)
			return protowire.AppendVarint(b, 2)
		}()},
	} {
		fresh := loadTestMap(t, testMap(), DefaultOptions())
		if err := fresh.ReadPortalState(bytes.NewReader(tc.data)); !errors.Is(err, ErrBadPortalState) {
			t.Errorf("%s: ReadPortalState() = %v, want %v", tc.name, err, ErrBadPortalState)
		}
		if connected(t, fresh, 0, 1) {
			t.Errorf("%s: failed read changed the portal state", tc.name)
		}
	}
}

func TestVisibility(t *testing.T) {
	cm := loadTestMap(t, testMap(), DefaultOptions())
	for _, tc := range []struct {
		from, to int
		want     bool
	}{
		{0, 0, true},
		{0, 1, false},
		{1, 0, true},
		{1, 1, true},
		// invalid clusters see everything
		{-1, 1, true},
		{0, -1, false},
	} {
		if got := cm.ClusterVisible(tc.from, tc.to); got != tc.want {
			t.Errorf("ClusterVisible(%d, %d) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
	if pvs := cm.ClusterPVS(1); len(pvs) != 1 || pvs[0] != 0x03 {
		t.Errorf("ClusterPVS(1) = %x, want 03", pvs)
	}

	m := testMap()
	m.Visibility = nil
	novis := loadTestMap(t, m, DefaultOptions())
	if novis.Vised() {
		t.Errorf("Vised() = true without visibility data")
	}
	if !novis.ClusterVisible(0, 1) {
		t.Errorf("ClusterVisible(0, 1) = false without visibility data")
	}
	if pvs := novis.ClusterPVS(0); len(pvs) != 4 || pvs[0] != 0xff {
		t.Errorf("ClusterPVS(0) = %x, want ffffffff", pvs)
	}
}
