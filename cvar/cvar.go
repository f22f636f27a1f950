// SPDX-License-Identifier: GPL-2.0-or-later

// Package cvar holds the named console variables of the query tool.
package cvar

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q3cm/cmd"
	"q3cm/conlog"
)

var (
	cvarArray  []*Cvar
	cvarByName = make(map[string]*Cvar)
)

var (
	ErrNotFound  = errors.New("cvar not found")
	ErrDuplicate = errors.New("cvar already defined")
	ErrReadOnly  = errors.New("cvar is read only")
)

type flag uint64

const (
	// cvar flags bitfield
	NONE    flag = 0
	ARCHIVE flag = 1
	NOTIFY  flag = 1 << 1
	ROM     flag = 1 << 6
)

type CallbackFunc func(cv *Cvar)

type Cvar struct {
	archive  bool
	notify   bool
	rom      bool
	user     bool
	callback CallbackFunc
	name     string
	// stringValue is the truth, value the derived one
	stringValue  string
	value        float32
	defaultValue string
	id           int
}

func All() []*Cvar {
	return cvarArray
}

func (cv *Cvar) Archive() bool {
	return cv.archive
}

func (cv *Cvar) Notify() bool {
	return cv.notify
}

func (cv *Cvar) UserDefined() bool {
	return cv.user
}

func (cv *Cvar) SetCallback(cb CallbackFunc) {
	cv.callback = cb
}

func (cv *Cvar) SetByString(s string) {
	if cv.rom {
		return
	}
	old := cv.stringValue
	cv.stringValue = s
	pf, _ := strconv.ParseFloat(cv.stringValue, 32)
	cv.value = float32(pf)
	if cv.notify && old != s {
		conlog.Printf("%q changed to %q", cv.name, s)
	}
	if cv.callback != nil {
		cv.callback(cv)
	}
}

func (cv *Cvar) Reset() {
	cv.SetByString(cv.defaultValue)
}

func (cv *Cvar) String() string {
	return cv.stringValue
}

func (cv *Cvar) Default() string {
	return cv.defaultValue
}

func (cv *Cvar) ID() int {
	return cv.id
}

func (cv *Cvar) Name() string {
	return cv.name
}

func (cv *Cvar) Value() float32 {
	return cv.value
}

func (cv *Cvar) Int() int {
	return int(cv.value)
}

func (cv *Cvar) SetValue(value float32) {
	if float32(int(value)) == value {
		v := strconv.FormatInt(int64(value), 10)
		cv.SetByString(v)
	} else {
		v := strconv.FormatFloat(float64(value), 'f', -1, 32)
		cv.SetByString(v)
	}
}

func (cv *Cvar) Toggle() {
	if cv.String() == "1" {
		cv.SetByString("0")
	} else {
		cv.SetByString("1")
	}
}

func (cv *Cvar) Bool() bool {
	return cv.stringValue != "0" && cv.stringValue != ""
}

func Get(name string) (*Cvar, bool) {
	cv, ok := cvarByName[strings.ToLower(name)]
	return cv, ok
}

func GetByID(id int) (*Cvar, error) {
	if id < 0 || id >= len(cvarArray) {
		return nil, errors.Errorf("id %d out of bounds", id)
	}
	return cvarArray[id], nil
}

// Set changes an existing cvar.
func Set(name, value string) error {
	cv, ok := Get(name)
	if !ok {
		return errors.Wrap(ErrNotFound, name)
	}
	if cv.rom {
		return errors.Wrap(ErrReadOnly, name)
	}
	cv.SetByString(value)
	return nil
}

func create(name, value string) *Cvar {
	cv := &Cvar{name: name, defaultValue: value}
	cv.SetByString(value)
	pos := len(cvarArray)
	cvarArray = append(cvarArray, cv)
	cvarByName[strings.ToLower(name)] = cv
	cv.id = pos
	return cv
}

func Register(name, value string, flags flag) (*Cvar, error) {
	if _, ok := Get(name); ok {
		return nil, errors.Wrapf(ErrDuplicate, "can't register variable %s", name)
	}

	cv := create(name, value)

	if flags&ARCHIVE != 0 {
		cv.archive = true
	}
	if flags&NOTIFY != 0 {
		cv.notify = true
	}
	if flags&ROM != 0 {
		cv.rom = true
	}

	return cv, nil
}

func MustRegister(n, v string, flag flag) *Cvar {
	cv, err := Register(n, v, flag)
	if err != nil {
		panic(err.Error())
	}
	return cv
}

// Executor handles lines starting with a cvar name: a bare name prints
// the value, a name with a value sets it.
func Executor(out io.Writer) cmd.Executor {
	return func(a cmd.Arguments) (bool, error) {
		args := a.Args()
		if len(args) == 0 {
			return false, nil
		}
		cv, ok := Get(args[0].String())
		if !ok {
			return false, nil
		}
		if len(args) == 1 {
			fmt.Fprintf(out, "\"%s\" is \"%s\"\n", cv.Name(), cv.String())
			return true, nil
		}
		return true, Set(cv.Name(), args[1].String())
	}
}

// AddCommands registers the cvar console commands.
func AddCommands(c *cmd.Commands, out io.Writer) error {
	l := &lister{out}
	for _, e := range []struct {
		name string
		f    cmd.QFunc
	}{
		{"cvarlist", l.list},
		{"cycle", cycle},
		{"inc", inc},
		{"reset", reset},
		{"resetall", resetAll},
		{"set", set(c)},
		{"toggle", toggle},
	} {
		if err := c.Add(e.name, e.f); err != nil {
			return err
		}
	}
	return nil
}

func usage(u string) error {
	return errors.Wrapf(cmd.ErrBadArgument, "usage: %s", u)
}

func set(c *cmd.Commands) cmd.QFunc {
	return func(a cmd.Arguments) error {
		args := a.Args()[1:]
		if len(args) < 2 {
			return usage("set <cvar> <value>")
		}
		name := args[0].String()
		if c.Exists(name) {
			return errors.Errorf("%s conflicts with a command", name)
		}
		if cv, ok := Get(name); ok {
			return Set(cv.Name(), args[1].String())
		}
		cv := create(name, args[1].String())
		cv.user = true
		return nil
	}
}

func toggle(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 {
		return usage("toggle <cvar>")
	}
	cv, ok := Get(args[0].String())
	if !ok {
		return errors.Wrap(ErrNotFound, args[0].String())
	}
	cv.Toggle()
	return nil
}

func inc(a cmd.Arguments) error {
	args := a.Args()[1:]
	v := float32(1)
	switch len(args) {
	case 1:
	case 2:
		f, err := args[1].Float32()
		if err != nil {
			return err
		}
		v = f
	default:
		return usage("inc <cvar> [amount]")
	}
	cv, ok := Get(args[0].String())
	if !ok {
		return errors.Wrap(ErrNotFound, args[0].String())
	}
	cv.SetValue(cv.Value() + v)
	return nil
}

func reset(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) != 1 {
		return usage("reset <cvar>")
	}
	cv, ok := Get(args[0].String())
	if !ok {
		return errors.Wrap(ErrNotFound, args[0].String())
	}
	cv.Reset()
	return nil
}

func resetAll(_ cmd.Arguments) error {
	for _, cv := range All() {
		cv.Reset()
	}
	return nil
}

type lister struct {
	out io.Writer
}

func (l *lister) list(a cmd.Arguments) error {
	prefix := strings.ToLower(a.Argv(1).String())
	cvars := make([]*Cvar, 0, len(cvarArray))
	for _, cv := range All() {
		if strings.HasPrefix(strings.ToLower(cv.Name()), prefix) {
			cvars = append(cvars, cv)
		}
	}
	sort.Slice(cvars, func(i, j int) bool { return cvars[i].name < cvars[j].name })
	for _, v := range cvars {
		a, u := " ", " "
		if v.Archive() {
			a = "*"
		}
		if v.UserDefined() {
			u = "u"
		}
		fmt.Fprintf(l.out, "%s%s %s \"%s\"\n", a, u, v.Name(), v.String())
	}
	if prefix != "" {
		fmt.Fprintf(l.out, "%v cvars beginning with \"%s\"\n", len(cvars), prefix)
	} else {
		fmt.Fprintf(l.out, "%v cvars\n", len(cvars))
	}
	return nil
}

func cycle(a cmd.Arguments) error {
	args := a.Args()[1:]
	if len(args) < 2 {
		return usage("cycle <cvar> <value list>")
	}
	cv, ok := Get(args[0].String())
	if !ok {
		return errors.Wrap(ErrNotFound, args[0].String())
	}
	oldValue := cv.String()
	i := 0
	for i < len(args)-1 {
		i++
		if oldValue == args[i].String() {
			break
		}
	}
	i %= len(args) - 1
	cv.SetByString(args[i+1].String())
	return nil
}
