// SPDX-License-Identifier: GPL-2.0-or-later

package cm

// Contents is the content type bitmask of a brush or patch.
type Contents uint32

const (
	ContentsSolid Contents = 1 << iota
	_
	_
	ContentsLava
	ContentsSlime
	ContentsWater
	ContentsFog
	ContentsNotTeam1
	ContentsNotTeam2
	ContentsNoBotClip
	_
	_
	_
	_
	_
	ContentsAreaPortal
	ContentsPlayerClip
	ContentsMonsterClip
	ContentsTeleporter
	ContentsJumpPad
	ContentsClusterPortal
	ContentsDoNotEnter
	ContentsBotClip
	ContentsMover
	ContentsOrigin // removed before bsping an entity
	ContentsBody   // should never be on a brush, only in game
	ContentsCorpse
	ContentsDetail // brushes not used for the bsp
	ContentsStructural
	ContentsTranslucent // don't consume surface fragments inside
	ContentsTrigger
	ContentsNoDrop // don't leave bodies or items (death fog, lava)
)

const (
	MaskAll         = ^Contents(0)
	MaskSolid       = ContentsSolid
	MaskPlayerSolid = ContentsSolid | ContentsPlayerClip | ContentsBody
	MaskDeadSolid   = ContentsSolid | ContentsPlayerClip
	MaskWater       = ContentsWater | ContentsLava | ContentsSlime
	MaskOpaque      = ContentsSolid | ContentsSlime | ContentsLava
	MaskShot        = ContentsSolid | ContentsBody | ContentsCorpse
)

type SurfaceFlags uint32

const (
	SurfaceNoDamage    SurfaceFlags = 1 << iota // never give falling damage
	SurfaceSlick                                // effects game physics
	SurfaceSky                                  // lighting from environment map
	SurfaceLadder
	SurfaceNoImpact                             // don't make missile explosions
	SurfaceNoMarks                              // don't leave missile marks
	SurfaceFlesh                                // make flesh sounds and effects
	SurfaceNoDraw                               // don't generate a drawsurface at all
	SurfaceHint                                 // make a primary bsp splitter
	SurfaceSkip                                 // completely ignore, allowing non-closed brushes
	SurfaceNoLightmap                           // surface doesn't need a lightmap
	SurfacePointLight                           // generate lighting info at vertexes
	SurfaceMetalSteps                           // clanking footsteps
	SurfaceNoSteps                              // no footstep sounds
	SurfaceNonSolid                             // don't collide against curves with this set
	SurfaceLightFilter                          // act as a light filter during q3map -light
	SurfaceAlphaShadow                          // do per-pixel light shadow casting in q3map
	SurfaceNoDLight                             // don't dlight even if solid (solid lava, skies)
	SurfaceDust                                 // leave a dust trail when walking on this surface
)
