// SPDX-License-Identifier: GPL-2.0-or-later

package cm

// ClusterPVS returns the potentially visible set of the cluster, one bit
// per cluster. Unvised maps and invalid clusters see everything. The
// result must not be modified.
func (cm *ClipMap) ClusterPVS(cluster int) []byte {
	if !cm.vised || cluster < 0 || cluster >= cm.numClusters {
		return cm.allVisible
	}
	start := cluster * cm.clusterBytes
	return cm.visibility[start : start+cm.clusterBytes : start+cm.clusterBytes]
}

// ClusterVisible reports whether cluster to is in the PVS of cluster from.
func (cm *ClipMap) ClusterVisible(from, to int) bool {
	if to < 0 {
		return false
	}
	pvs := cm.ClusterPVS(from)
	if to>>3 >= len(pvs) {
		return false
	}
	return pvs[to>>3]&(1<<(to&7)) != 0
}

func (cm *ClipMap) Vised() bool {
	return cm.vised
}
