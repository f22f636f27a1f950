// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmd is the command console of the query tool: a command registry
// and a buffer of command lines.
package cmd

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
	ErrDuplicate      = errors.New("command already defined")
)

type QFunc func(args Arguments) error

type Commands map[string]QFunc

func New() *Commands {
	c := make(Commands)
	return &c
}

func (c *Commands) Add(name string, f QFunc) error {
	ln := strings.ToLower(name)
	if _, ok := (*c)[ln]; ok {
		return errors.Wrap(ErrDuplicate, ln)
	}
	(*c)[ln] = f
	return nil
}

func Must(err error) {
	if err != nil {
		panic(err.Error())
	}
}

func (c *Commands) Exists(cmdName string) bool {
	name := strings.ToLower(cmdName)
	_, ok := (*c)[name]
	return ok
}

// List returns the sorted names of all commands starting with prefix.
func (c *Commands) List(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var cmds []string
	for cmd := range *c {
		if strings.HasPrefix(cmd, prefix) {
			cmds = append(cmds, cmd)
		}
	}
	sort.Strings(cmds)
	return cmds
}

// Execute runs the command named by the first argument. It reports false
// if there is no such command.
func (c *Commands) Execute(a Arguments) (bool, error) {
	n := a.Args()
	if len(n) == 0 {
		return false, nil
	}
	name := strings.ToLower(n[0].String())
	if cmd, ok := (*c)[name]; ok {
		if err := cmd(a); err != nil {
			return true, errors.Wrap(err, name)
		}
		return true, nil
	}
	return false, nil
}
