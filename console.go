// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"q3cm/cm"
	"q3cm/cmd"
	"q3cm/conlog"
	"q3cm/cvar"
	"q3cm/cvars"
	"q3cm/filesystem"
	"q3cm/math/vec"
)

var errNoMap = errors.New("no map loaded")

type console struct {
	out  io.Writer
	cmds *cmd.Commands
	buf  *cmd.Buffer
	cm   *cm.ClipMap
}

func newConsole(out io.Writer) (*console, error) {
	c := &console{
		out:  out,
		cmds: cmd.New(),
	}
	c.buf = cmd.NewBuffer(c.cmds.Execute, cvar.Executor(out))
	if err := cvar.AddCommands(c.cmds, out); err != nil {
		return nil, err
	}
	for _, e := range []struct {
		name string
		f    cmd.QFunc
	}{
		{"areas", c.areas},
		{"cmdlist", c.cmdList},
		{"contents", c.contents},
		{"info", c.info},
		{"leafs", c.leafs},
		{"loadstate", c.loadState},
		{"map", c.loadMap},
		{"path", c.path},
		{"portal", c.portal},
		{"savestate", c.saveState},
		{"stats", c.stats},
		{"trace", c.trace},
	} {
		if err := c.cmds.Add(e.name, e.f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *console) printf(format string, v ...any) {
	fmt.Fprintf(c.out, format, v...)
}

func (c *console) needMap() error {
	if c.cm == nil {
		return errNoMap
	}
	return nil
}

// cmdlist [prefix]
func (c *console) cmdList(a cmd.Arguments) error {
	prefix := a.Argv(1).String()
	names := c.cmds.List(prefix)
	for _, n := range names {
		c.printf("%s\n", n)
	}
	if prefix == "" {
		c.printf("%d commands\n", len(names))
	} else {
		c.printf("%d commands beginning with \"%s\"\n", len(names), prefix)
	}
	return nil
}

// searchPath builds the search path from fs_basepath and fs_game.
func searchPath() (*filesystem.SearchPath, error) {
	base := cvars.FSBasePath.String()
	s := filesystem.New()
	if err := s.AddGameDir(filepath.Join(base, "baseq3")); err != nil {
		return nil, err
	}
	if game := cvars.FSGame.String(); game != "" && game != "baseq3" {
		if err := s.AddGameDir(filepath.Join(base, game)); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// readMap reads a .bsp file from disk or a map by name from the search
// path.
func readMap(name string) ([]byte, error) {
	if filesystem.Ext(name) == ".bsp" {
		if data, err := os.ReadFile(name); err == nil || !errors.Is(err, os.ErrNotExist) {
			return data, err
		}
	}
	s, err := searchPath()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.ReadFile(filesystem.MapPath(name))
}

func (c *console) loadMap(a cmd.Arguments) error {
	if len(a.Args()) != 2 {
		return errors.Wrap(cmd.ErrBadArgument, "usage: map <name|file.bsp>")
	}
	name := a.Argv(1).String()
	data, err := readMap(name)
	if err != nil {
		return err
	}
	m, err := cm.LoadBytes(name, data, cm.OptionsFromCvars())
	if err != nil {
		return err
	}
	c.cm = m
	return nil
}

func (c *console) path(_ cmd.Arguments) error {
	s, err := searchPath()
	if err != nil {
		return err
	}
	defer s.Close()
	c.printf("Current search path:\n")
	for _, p := range s.Path() {
		c.printf("%s\n", p)
	}
	return nil
}

func (c *console) info(_ cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	m := c.cm
	c.printf("map       %s\n", m.Name())
	c.printf("id        %s\n", m.ID())
	c.printf("checksum  %d\n", m.Checksum())
	c.printf("models    %d\n", m.NumInlineModels())
	c.printf("brushes   %d\n", m.NumBrushes())
	c.printf("patches   %d\n", len(m.Patches()))
	c.printf("leafs     %d\n", m.NumLeafs())
	c.printf("clusters  %d (vised %v)\n", m.NumClusters(), m.Vised())
	c.printf("areas     %d\n", m.AreaCount())
	return nil
}

func (c *console) stats(_ cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	s := c.cm.Stats()
	c.printf("traces %d brush %d patch %d contents %d\n", s.Traces, s.BrushTraces, s.PatchTraces, s.PointContents)
	c.printf("degenerate brushes %d facets %d\n", s.DegenerateBrushes, s.DegenerateFacets)
	return nil
}

func parseMask(s string) (cm.Contents, error) {
	switch s {
	case "all":
		return cm.MaskAll, nil
	case "solid":
		return cm.MaskSolid, nil
	case "player":
		return cm.MaskPlayerSolid, nil
	case "shot":
		return cm.MaskShot, nil
	case "water":
		return cm.MaskWater, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Wrapf(cmd.ErrBadArgument, "bad mask %q", s)
	}
	return cm.Contents(v), nil
}

func (c *console) model(a cmd.Arguments, i int) (cm.Handle, error) {
	n, err := a.Argv(i).Int()
	if err != nil {
		return cm.Handle{}, err
	}
	return c.cm.InlineModel(n)
}

// trace sx sy sz ex ey ez [box mins maxs] [capsule radius halfheight]
// [model n] [mask m] [origin x y z] [angles p y r]
func (c *console) trace(a cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	start, err := a.Vec3(1)
	if err != nil {
		return err
	}
	end, err := a.Vec3(4)
	if err != nil {
		return err
	}
	var shape cm.Shape = cm.Point{}
	h := c.cm.World()
	mask := cm.MaskSolid
	var origin, angles vec.Vec3
	args := a.Args()
	for i := 7; i < len(args); {
		switch kw := args[i].String(); kw {
		case "box":
			mins, err := a.Vec3(i + 1)
			if err != nil {
				return err
			}
			maxs, err := a.Vec3(i + 4)
			if err != nil {
				return err
			}
			shape = cm.Box{Mins: mins, Maxs: maxs}
			i += 7
		case "capsule":
			r, err := a.Argv(i + 1).Float32()
			if err != nil {
				return err
			}
			hh, err := a.Argv(i + 2).Float32()
			if err != nil {
				return err
			}
			shape = cm.Capsule{Radius: r, HalfHeight: hh}
			i += 3
		case "model":
			if h, err = c.model(a, i+1); err != nil {
				return err
			}
			i += 2
		case "mask":
			if mask, err = parseMask(a.Argv(i + 1).String()); err != nil {
				return err
			}
			i += 2
		case "origin":
			if origin, err = a.Vec3(i + 1); err != nil {
				return err
			}
			i += 4
		case "angles":
			if angles, err = a.Vec3(i + 1); err != nil {
				return err
			}
			i += 4
		default:
			return errors.Wrapf(cmd.ErrBadArgument, "unknown trace option %q", kw)
		}
	}
	tr, err := c.cm.TransformedTrace(start, end, shape, h, mask, origin, angles)
	if err != nil {
		return err
	}
	conlog.DPrintf("trace %v -> %v: %+v", start, end, tr)
	c.printf("fraction   %g\n", tr.Fraction)
	c.printf("endpos     %g %g %g\n", tr.EndPos[0], tr.EndPos[1], tr.EndPos[2])
	if tr.Fraction < 1 {
		n := tr.Plane.Normal
		c.printf("normal     %g %g %g dist %g\n", n[0], n[1], n[2], tr.Plane.Dist)
		c.printf("contents   %#x\n", uint32(tr.Contents))
		c.printf("surface    %v %d flags %#x\n", tr.Surface.Kind, tr.Surface.Index, uint32(tr.SurfaceFlags))
	}
	c.printf("startsolid %v allsolid %v\n", tr.StartSolid, tr.AllSolid)
	return nil
}

// contents x y z [model n]
func (c *console) contents(a cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	p, err := a.Vec3(1)
	if err != nil {
		return err
	}
	h := c.cm.World()
	if a.Argv(4).String() == "model" {
		if h, err = c.model(a, 5); err != nil {
			return err
		}
	}
	cont, err := c.cm.PointContents(p, h)
	if err != nil {
		return err
	}
	leaf := c.cm.PointLeafnum(p)
	cluster, _ := c.cm.LeafCluster(leaf)
	area, _ := c.cm.LeafArea(leaf)
	c.printf("contents %#x leaf %d cluster %d area %d\n", uint32(cont), leaf, cluster, area)
	return nil
}

// leafs minx miny minz maxx maxy maxz
func (c *console) leafs(a cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	mins, err := a.Vec3(1)
	if err != nil {
		return err
	}
	maxs, err := a.Vec3(4)
	if err != nil {
		return err
	}
	l := c.cm.BoxLeafnums(mins, maxs, 0)
	c.printf("leafs %v\n", l.Leafs)
	if l.Overflowed {
		c.printf("overflowed\n")
	}
	brushes, _ := c.cm.BoxBrushes(mins, maxs, 0)
	c.printf("brushes %v\n", brushes)
	return nil
}

func (c *console) areaArgs(a cmd.Arguments) (int, int, error) {
	a1, err := a.Argv(1).Int()
	if err != nil {
		return 0, 0, err
	}
	a2, err := a.Argv(2).Int()
	if err != nil {
		return 0, 0, err
	}
	return a1, a2, nil
}

// areas a1 a2
func (c *console) areas(a cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	a1, a2, err := c.areaArgs(a)
	if err != nil {
		return err
	}
	ok, err := c.cm.AreasConnected(a1, a2)
	if err != nil {
		return err
	}
	bits, err := c.cm.WriteAreaBits(a1)
	if err != nil {
		return err
	}
	c.printf("connected %v areabits %x\n", ok, bits)
	return nil
}

// portal a1 a2 open|close
func (c *console) portal(a cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	a1, a2, err := c.areaArgs(a)
	if err != nil {
		return err
	}
	delta := 0
	switch a.Argv(3).String() {
	case "open":
		delta = 1
	case "close":
		delta = -1
	default:
		return errors.Wrap(cmd.ErrBadArgument, "usage: portal <area1> <area2> open|close")
	}
	return c.cm.AdjustAreaPortalState(a1, a2, delta)
}

func (c *console) saveState(a cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	f, err := os.Create(a.Argv(1).String())
	if err != nil {
		return err
	}
	if err := c.cm.WritePortalState(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *console) loadState(a cmd.Arguments) error {
	if err := c.needMap(); err != nil {
		return err
	}
	f, err := os.Open(a.Argv(1).String())
	if err != nil {
		return err
	}
	defer f.Close()
	return c.cm.ReadPortalState(f)
}
