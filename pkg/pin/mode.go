package pin

import (
	"fmt"
	"strings"
)

// Mode is the logical configuration of a pin.
type Mode uint8

const (
	// ModeUnset indicates no mode has been assigned yet.
	ModeUnset Mode = iota

	// ModeInput is a floating digital input.
	ModeInput

	// ModeOutput is a push-pull digital output.
	ModeOutput

	// ModeInputPullUp is a digital input with the internal pull-up enabled.
	ModeInputPullUp

	// ModeInputPullDown is a digital input with the internal pull-down enabled.
	ModeInputPullDown

	// ModeOpenDrain is an open-drain line read as an input.
	ModeOpenDrain

	// ModeOutputOpenDrain is an open-drain line driven as an output.
	ModeOutputOpenDrain
)

// String returns the interpreter symbol for the mode.
func (m Mode) String() string {
	switch m {
	case ModeUnset:
		return "UNSET"
	case ModeInput:
		return "INPUT"
	case ModeOutput:
		return "OUTPUT"
	case ModeInputPullUp:
		return "INPUT_PULLUP"
	case ModeInputPullDown:
		return "INPUT_PULLDOWN"
	case ModeOpenDrain:
		return "OPEN_DRAIN"
	case ModeOutputOpenDrain:
		return "OUTPUT_OPEN_DRAIN"
	default:
		return "UNKNOWN"
	}
}

// IsInput reports whether the mode belongs to the input family.
func (m Mode) IsInput() bool {
	switch m {
	case ModeInput, ModeInputPullUp, ModeInputPullDown, ModeOpenDrain:
		return true
	default:
		return false
	}
}

// IsOutput reports whether the mode belongs to the output family.
func (m Mode) IsOutput() bool {
	switch m {
	case ModeOutput, ModeOutputOpenDrain:
		return true
	default:
		return false
	}
}

// ParseMode converts an interpreter symbol to a Mode.
// PULLUP and PULLDOWN are accepted as aliases of the input pull variants.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(s) {
	case "INPUT":
		return ModeInput, nil
	case "OUTPUT":
		return ModeOutput, nil
	case "INPUT_PULLUP", "PULLUP":
		return ModeInputPullUp, nil
	case "INPUT_PULLDOWN", "PULLDOWN":
		return ModeInputPullDown, nil
	case "OPEN_DRAIN":
		return ModeOpenDrain, nil
	case "OUTPUT_OPEN_DRAIN":
		return ModeOutputOpenDrain, nil
	case "ANALOG":
		return ModeUnset, fmt.Errorf("%w: %s", ErrUnsupportedMode, s)
	default:
		return ModeUnset, fmt.Errorf("%w: %s", ErrInvalidMode, s)
	}
}

// Level is a logical digital value.
type Level uint8

const (
	// Low is logic 0.
	Low Level = iota

	// High is logic 1.
	High
)

// String returns the interpreter symbol for the level.
func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// ParseLevel converts LOW/HIGH to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "LOW":
		return Low, nil
	case "HIGH":
		return High, nil
	default:
		return Low, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}
