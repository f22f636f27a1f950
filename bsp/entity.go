// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"

	"github.com/pkg/errors"
)

var ErrBadEntities = errors.New("bsp: unbalanced entity string")

// Entity is one { "key" "value" ... } block of the entity lump.
type Entity struct {
	keys       []string
	properties map[string]string
}

func newEntity(p []byte) *Entity {
	e := &Entity{properties: make(map[string]string)}
	// parse the entity line by line
	for _, l := range bytes.Split(p, []byte("\n")) {
		// look for something of the form
		// "key" "value"
		parts := bytes.Split(l, []byte{'"'})
		if len(parts) < 5 {
			continue
		}
		key := string(parts[1])
		if _, ok := e.properties[key]; !ok {
			e.keys = append(e.keys, key)
		}
		e.properties[key] = string(parts[3])
	}
	return e
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *Entity) Name() (string, bool) {
	return e.Property("classname")
}

// PropertyNames returns the keys in file order.
func (e *Entity) PropertyNames() []string {
	return append([]string(nil), e.keys...)
}

func ParseEntities(data string) ([]*Entity, error) {
	// First split the entities, brushes inside entities only exist in
	// .map sources and are skipped with their nesting level.
	var es []*Entity
	var depth int
	quoted := false
	start := -1
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '"':
			quoted = !quoted
		case '{':
			if quoted {
				break
			}
			if start == -1 {
				start = i
			} else {
				depth++
			}
		case '}':
			if quoted {
				break
			}
			if start == -1 {
				return nil, errors.Wrapf(ErrBadEntities, "unexpected '}' at %d", i)
			}
			if depth == 0 {
				es = append(es, newEntity([]byte(data[start:i+1])))
				start = -1
			} else {
				depth--
			}
		}
	}
	if start != -1 || quoted {
		return nil, errors.Wrap(ErrBadEntities, "missing '}'")
	}
	return es, nil
}
