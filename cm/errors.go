// SPDX-License-Identifier: GPL-2.0-or-later

package cm

import (
	"github.com/pkg/errors"
)

var (
	ErrBadLump             = errors.New("cm: malformed lump")
	ErrBadIndex            = errors.New("cm: index out of range")
	ErrNoBrushSides        = errors.New("cm: brush with no sides")
	ErrBadPatch            = errors.New("cm: bad patch")
	ErrBadModelHandle      = errors.New("cm: bad model handle")
	ErrAreaOutOfRange      = errors.New("cm: area out of range")
	ErrNegativePortalCount = errors.New("cm: negative area portal reference count")
	ErrBadPortalState      = errors.New("cm: bad portal state")
)
