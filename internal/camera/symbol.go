package camera

import (
	"fmt"
	"strings"
)

// Symbol is one discrete movement input.
type Symbol uint8

const (
	None Symbol = iota
	Forward
	Back
	TurnLeft
	TurnRight
	LookUp
	LookDown
	PitchUp
	PitchDown
)

// Symbols is the complete movement alphabet, in preload order.
var Symbols = []Symbol{Forward, Back, TurnLeft, TurnRight, LookUp, LookDown, PitchUp, PitchDown}

var symbolNames = map[Symbol]string{
	None:      "none",
	Forward:   "forward",
	Back:      "back",
	TurnLeft:  "turn-left",
	TurnRight: "turn-right",
	LookUp:    "look-up",
	LookDown:  "look-down",
	PitchUp:   "pitch-up",
	PitchDown: "pitch-down",
}

// Key letters follow the usual WASD layout; r/f look, t/g pitch.
var symbolKeys = map[rune]Symbol{
	'w': Forward,
	's': Back,
	'a': TurnLeft,
	'd': TurnRight,
	'r': LookUp,
	'f': LookDown,
	't': PitchUp,
	'g': PitchDown,
}

func (s Symbol) String() string {
	if n, ok := symbolNames[s]; ok {
		return n
	}
	return fmt.Sprintf("symbol(%d)", uint8(s))
}

// ParseSymbols maps a string of key letters to symbols. Whitespace is ignored.
func ParseSymbols(keys string) ([]Symbol, error) {
	var out []Symbol
	for i, r := range strings.ToLower(keys) {
		if r == ' ' || r == '\t' || r == '\n' || r == ',' {
			continue
		}
		s, ok := symbolKeys[r]
		if !ok {
			return nil, fmt.Errorf("camera: unknown movement key %q at %d", r, i)
		}
		out = append(out, s)
	}
	return out, nil
}
