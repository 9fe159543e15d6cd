// Package imageutil rotates and flips image files in place, losslessly for
// JPEG where possible, and reads the EXIF fields the viewer cares about.
package imageutil

import "fmt"

// Transform is an image transformation. Values are part of the frontend
// protocol and must not be renumbered.
type Transform int

const (
	Rotate90CW Transform = iota
	Rotate90CCW
	Rotate180
	FlipHorizontal
	FlipVertical
)

func (t Transform) String() string {
	switch t {
	case Rotate90CW:
		return "rotate90cw"
	case Rotate90CCW:
		return "rotate90ccw"
	case Rotate180:
		return "rotate180"
	case FlipHorizontal:
		return "fliphorizontal"
	case FlipVertical:
		return "flipvertical"
	default:
		return fmt.Sprintf("Transform(%d)", int(t))
	}
}

// Valid reports whether t is a known transformation.
func (t Transform) Valid() bool {
	return t >= Rotate90CW && t <= FlipVertical
}

// ParseTransform parses the String form of a Transform.
func ParseTransform(s string) (Transform, error) {
	for t := Rotate90CW; t <= FlipVertical; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown transform %q", s)
}

// jpegtranArgs returns the jpegtran operation flags for t.
func (t Transform) jpegtranArgs() []string {
	switch t {
	case Rotate90CW:
		return []string{"-rotate", "90"}
	case Rotate90CCW:
		return []string{"-rotate", "270"}
	case Rotate180:
		return []string{"-rotate", "180"}
	case FlipHorizontal:
		return []string{"-flip", "horizontal"}
	case FlipVertical:
		return []string{"-flip", "vertical"}
	}
	return nil
}

// sipsArgs returns the sips operation flags for t.
func (t Transform) sipsArgs() []string {
	switch t {
	case Rotate90CW:
		return []string{"--rotate", "90"}
	case Rotate90CCW:
		return []string{"--rotate", "270"}
	case Rotate180:
		return []string{"--rotate", "180"}
	case FlipHorizontal:
		return []string{"--flip", "horizontal"}
	case FlipVertical:
		return []string{"--flip", "vertical"}
	}
	return nil
}

// orientationArgs maps an EXIF orientation to the jpegtran operation that
// makes the pixels upright. Orientation 1 needs nothing.
var orientationArgs = map[int][]string{
	2: {"-flip", "horizontal"},
	3: {"-rotate", "180"},
	4: {"-flip", "vertical"},
	5: {"-transpose"},
	6: {"-rotate", "90"},
	7: {"-transverse"},
	8: {"-rotate", "270"},
}
