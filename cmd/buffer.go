// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"github.com/pkg/errors"
)

// Executor runs a parsed line. It reports false if it does not know the
// command.
type Executor func(a Arguments) (bool, error)

// Buffer collects command text and executes it line by line. Lines end at
// a newline or at a semicolon outside of quotes.
type Buffer struct {
	text      string
	executors []Executor
}

func NewBuffer(ex ...Executor) *Buffer {
	return &Buffer{executors: ex}
}

func (b *Buffer) AddText(text string) {
	b.text = b.text + text
}

// InsertText puts text in front of the pending commands.
func (b *Buffer) InsertText(text string) {
	b.text = text + "\n" + b.text
}

func (b *Buffer) nextLine() string {
	i := 0
	quote := false
LineLoop:
	for i = 0; i < len(b.text); i++ {
		switch b.text[i] {
		case '"':
			quote = !quote
		case ';':
			if !quote {
				break LineLoop
			}
		case '\n':
			break LineLoop
		}
	}
	// do not put ';' or '\n' in line
	line := b.text[:i]
	// but remove this char as well
	if i < len(b.text) {
		i++
	}
	b.text = b.text[i:]
	return line
}

// Execute runs all pending lines. It stops at the first failing line and
// drops the rest.
func (b *Buffer) Execute() error {
	for len(b.text) != 0 {
		line := b.nextLine()
		if err := b.execute(line); err != nil {
			b.text = ""
			return err
		}
	}
	return nil
}

func (b *Buffer) execute(line string) error {
	a := Parse(line)
	args := a.Args()
	if len(args) == 0 {
		return nil // no tokens
	}
	for _, e := range b.executors {
		if ok, err := e(a); err != nil {
			return err
		} else if ok {
			return nil
		}
	}
	return errors.Wrapf(ErrUnknownCommand, "%q", args[0].String())
}
