package pin

// Driver performs physical GPIO access for the Registry and Mediator.
// Implemented by gpio.Periph and gpio.Memory.
type Driver interface {
	// Configure applies the hardware mode to the line.
	Configure(line Line, mode Mode) error

	// Read samples the line.
	Read(line Line) (Level, error)

	// Write drives the line.
	Write(line Line, level Level) error

	// Reset returns the line to a safe floating input.
	Reset(line Line) error
}

// InstanceMirror is the interpreter-side object store that mirrors pin
// records as PIN instances with "mode" and "value" slots.
// Implemented by engine.Environment.
type InstanceMirror interface {
	// HasInstance reports whether an instance with the name exists.
	HasInstance(name string) bool

	// MakeInstance creates an instance of class with symbolic slot values.
	MakeInstance(name, class string, slots map[string]string) error

	// SetSlot updates one slot of an existing instance.
	SetSlot(name, slot, value string) error

	// DeleteInstance removes the instance; deleting a missing instance is a no-op.
	DeleteInstance(name string) error
}

// Slot and class names used in the mirror.
const (
	ClassPin  = "PIN"
	SlotMode  = "mode"
	SlotValue = "value"
)
