// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package wiring parses the shield wiring DSL: a role name, optionally a bus
// range, mapped to one or more physical pin names. For example:
//
//	led[0..7]=2,3,4,5,6,7,8,9
//	button=A0
//	segment[0..3]=10,11,12,13
//
// is how a configuration file tells the simulator which physical pins back
// a named role. Bus roles expand to individual indexed roles (led0..led7);
// single roles map to exactly one pin.
package wiring

import (
	"fmt"
	"strconv"

	"github.com/db47h/moccarduino/internal/lex"
	"github.com/pkg/errors"
)

// Connection is a single resolved role-to-pin binding.
type Connection struct {
	Role string
	Pin  string // raw pin token: a decimal pin number or an analog alias ("A0")
}

// Parse parses one "role[=pin_list]" connection string into the
// Connections it expands to. A bus role ("led[0..7]=...") must supply
// exactly as many pins as the range covers.
func Parse(spec string) ([]Connection, error) {
	l := lexer(spec)

	role, start, end, err := parseRole(l)
	if err != nil {
		return nil, errors.Wrapf(err, "wiring: parsing %q", spec)
	}
	pins, err := parsePinList(l)
	if err != nil {
		return nil, errors.Wrapf(err, "wiring: parsing %q", spec)
	}

	if start < 0 {
		if len(pins) != 1 {
			return nil, errors.Errorf("wiring: %q: role %q expects exactly one pin, got %d", spec, role, len(pins))
		}
		return []Connection{{Role: role, Pin: pins[0]}}, nil
	}

	n := end - start + 1
	if n != len(pins) {
		return nil, errors.Errorf("wiring: %q: role %q[%d..%d] expects %d pins, got %d", spec, role, start, end, n, len(pins))
	}
	out := make([]Connection, n)
	for i := 0; i < n; i++ {
		out[i] = Connection{Role: fmt.Sprintf("%s%d", role, start+i), Pin: pins[i]}
	}
	return out, nil
}

// ParseAll parses a role-name -> connection-spec map (as loaded from a
// configuration file) into a flat role -> pin-token mapping.
func ParseAll(specs map[string]string) (map[string]string, error) {
	out := make(map[string]string)
	for role, pins := range specs {
		conns, err := Parse(role + "=" + pins)
		if err != nil {
			return nil, err
		}
		for _, c := range conns {
			if _, dup := out[c.Role]; dup {
				return nil, errors.Errorf("wiring: role %q assigned more than once", c.Role)
			}
			out[c.Role] = c.Pin
		}
	}
	return out, nil
}

func parseRole(l lex.Interface) (role string, start, end int, err error) {
	i := l.Lex()
	if i.Type != tIdent {
		return "", 0, 0, errors.New("expected role name")
	}
	role = i.Value.(string)
	start, end = -1, -1

	i = l.Lex()
	if i.Type == tBracketOpen {
		i = l.Lex()
		if i.Type != tInt {
			return "", 0, 0, errors.New("expected integer after '['")
		}
		start = i.Value.(int)
		i = l.Lex()
		if i.Type != tDotDot {
			return "", 0, 0, errors.New("expected '..' in bus range")
		}
		i = l.Lex()
		if i.Type != tInt {
			return "", 0, 0, errors.New("expected integer after '..'")
		}
		end = i.Value.(int)
		if end < start {
			return "", 0, 0, errors.New("bus range end before start")
		}
		i = l.Lex()
		if i.Type != tBracketClose {
			return "", 0, 0, errors.New("expected closing ']'")
		}
		i = l.Lex()
	}
	if i.Type != tEqual {
		return "", 0, 0, errors.New("expected '='")
	}
	return role, start, end, nil
}

func parsePinList(l lex.Interface) ([]string, error) {
	var pins []string
	for {
		i := l.Lex()
		switch i.Type {
		case tIdent:
			pins = append(pins, i.Value.(string))
		case tInt:
			pins = append(pins, strconv.Itoa(i.Value.(int)))
		default:
			return nil, errors.New("expected a pin name or number")
		}
		i = l.Lex()
		switch i.Type {
		case tEOF:
			return pins, nil
		case tComma:
			continue
		default:
			return nil, errors.New("expected ',' or end of input")
		}
	}
}
