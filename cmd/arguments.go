// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"q3cm/math/vec"
)

type QArg struct {
	a string
}

func (a QArg) String() string {
	return a.a
}

func (a QArg) Int() (int, error) {
	r, err := strconv.ParseInt(a.a, 10, 0)
	if err != nil {
		return 0, errors.Wrapf(ErrBadArgument, "%q is not an integer", a.a)
	}
	return int(r), nil
}

func (a QArg) Float32() (float32, error) {
	r, err := strconv.ParseFloat(a.a, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrBadArgument, "%q is not a number", a.a)
	}
	return float32(r), nil
}

func (a QArg) Bool() bool {
	switch a.a {
	case "1", "t", "T", "true", "TRUE", "True", "On", "ON", "on":
		return true
	default:
		return false
	}
}

type Arguments struct {
	// each arg on its own
	args []QArg
	// the whole trimmed line
	full string
}

// Argv returns argument i, the empty argument if there is none.
func (c *Arguments) Argv(i int) QArg {
	if i < 0 || i >= len(c.args) {
		return QArg{""}
	}
	return c.args[i]
}

func (c *Arguments) Full() string {
	return c.full
}

func (c *Arguments) Args() []QArg {
	return c.args
}

// ArgumentString returns the line without the command name.
func (c *Arguments) ArgumentString() string {
	// args[0] is the cmd
	if len(c.args) < 2 {
		return ""
	}
	r := strings.TrimPrefix(c.full, c.args[0].String())
	r = strings.TrimLeftFunc(r, unicode.IsSpace)
	// we want to remove " around the text.
	if len(r) > 1 && r[0] == '"' {
		r = strings.Trim(r, "\"\t\n\v\f\r ")
	}
	return r
}

// Vec3 parses the three arguments starting at i.
func (c *Arguments) Vec3(i int) (vec.Vec3, error) {
	var v vec.Vec3
	if i < 0 || i+3 > len(c.args) {
		return v, errors.Wrapf(ErrBadArgument, "need 3 coordinates at argument %d", i)
	}
	for j := range 3 {
		f, err := c.args[i+j].Float32()
		if err != nil {
			return v, err
		}
		v[j] = f
	}
	return v, nil
}

func isSpace(r byte) bool {
	return r == ' ' || r == '\t'
}

// Parse splits a line into arguments. Quoted strings become one argument
// and // starts a comment.
func Parse(s string) (args Arguments) {
	args.full = strings.TrimFunc(s, unicode.IsSpace)
	args.args = []QArg{}
	in := args.full
	for i := 0; i < len(in); {
		switch {
		case isSpace(in[i]):
			i++
		case in[i] == '\r' || in[i] == '\n':
			return
		case strings.HasPrefix(in[i:], "//"):
			return
		case in[i] == '"':
			end := strings.IndexAny(in[i+1:], "\"\n")
			if end < 0 || in[i+1+end] == '\n' {
				// unterminated string
				return
			}
			args.args = append(args.args, QArg{in[i+1 : i+1+end]})
			i += end + 2
		default:
			start := i
			for i < len(in) && in[i] > ' ' {
				i++
			}
			args.args = append(args.args, QArg{in[start:i]})
		}
	}
	return
}
