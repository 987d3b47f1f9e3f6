package surface

import (
	"fmt"
	"strings"
)

// Direction is one of the eight resize handles.
type Direction uint8

const (
	DirTop Direction = iota + 1
	DirBottom
	DirLeft
	DirRight
	DirTopLeft
	DirTopRight
	DirBottomLeft
	DirBottomRight
)

// Directions lists every handle, edges first.
var Directions = []Direction{
	DirTop, DirBottom, DirLeft, DirRight,
	DirTopLeft, DirTopRight, DirBottomLeft, DirBottomRight,
}

// HRule is the horizontal half of a handle.
type HRule uint8

const (
	HNone HRule = iota
	HLeft
	HRight
)

// VRule is the vertical half of a handle.
type VRule uint8

const (
	VNone VRule = iota
	VTop
	VBottom
)

var axes = map[Direction]struct {
	h HRule
	v VRule
}{
	DirTop:         {HNone, VTop},
	DirBottom:      {HNone, VBottom},
	DirLeft:        {HLeft, VNone},
	DirRight:       {HRight, VNone},
	DirTopLeft:     {HLeft, VTop},
	DirTopRight:    {HRight, VTop},
	DirBottomLeft:  {HLeft, VBottom},
	DirBottomRight: {HRight, VBottom},
}

var names = map[Direction]string{
	DirTop:         "top",
	DirBottom:      "bottom",
	DirLeft:        "left",
	DirRight:       "right",
	DirTopLeft:     "top-left",
	DirTopRight:    "top-right",
	DirBottomLeft:  "bottom-left",
	DirBottomRight: "bottom-right",
}

// Axes returns the independent horizontal and vertical rules for d.
func (d Direction) Axes() (HRule, VRule) {
	a := axes[d]
	return a.h, a.v
}

// Valid reports whether d is one of the eight handles.
func (d Direction) Valid() bool {
	_, ok := axes[d]
	return ok
}

func (d Direction) String() string {
	if n, ok := names[d]; ok {
		return n
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// MovesOrigin reports whether resizing from d can change x or y.
func (d Direction) MovesOrigin() bool {
	h, v := d.Axes()
	return h == HLeft || v == VTop
}

// ParseDirection accepts the String form plus compass shorthands (n, se, ...).
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "n":
		return DirTop, nil
	case "s":
		return DirBottom, nil
	case "w":
		return DirLeft, nil
	case "e":
		return DirRight, nil
	case "nw":
		return DirTopLeft, nil
	case "ne":
		return DirTopRight, nil
	case "sw":
		return DirBottomLeft, nil
	case "se":
		return DirBottomRight, nil
	}
	for d, n := range names {
		if n == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown resize direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
