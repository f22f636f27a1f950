// SPDX-License-Identifier: GPL-2.0-or-later

// Package cvars registers the console variables of the collision model
// and the search path.
package cvars

import (
	"q3cm/cvar"
)

var (
	CMBoxLeafCapacity *cvar.Cvar
	CMNoAreas         *cvar.Cvar
	CMNoCurves        *cvar.Cvar
	CMPatchBevels     *cvar.Cvar
	CMPlaneEpsilon    *cvar.Cvar
	CMPlayerCurveClip *cvar.Cvar
	FSBasePath        *cvar.Cvar
	FSGame            *cvar.Cvar
)

func init() {
	CMBoxLeafCapacity = cvar.MustRegister("cm_boxLeafCapacity", "1024", cvar.NONE)
	CMNoAreas = cvar.MustRegister("cm_noAreas", "0", cvar.NOTIFY)
	CMNoCurves = cvar.MustRegister("cm_noCurves", "0", cvar.NOTIFY)
	CMPatchBevels = cvar.MustRegister("cm_patchBevels", "0", cvar.ARCHIVE)
	CMPlaneEpsilon = cvar.MustRegister("cm_planeEpsilon", "0.1", cvar.ARCHIVE)
	CMPlayerCurveClip = cvar.MustRegister("cm_playerCurveClip", "1", cvar.ARCHIVE)
	FSBasePath = cvar.MustRegister("fs_basepath", ".", cvar.NONE)
	FSGame = cvar.MustRegister("fs_game", "", cvar.NONE)
}
