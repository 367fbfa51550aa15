package pin

import (
	"fmt"
	"log/slog"
)

// Mediator translates interpreter-level pin requests into Registry
// operations and keeps the mirrored PIN instances synchronized.
// It holds no pin state of its own.
type Mediator struct {
	registry *Registry
	driver   Driver
	mirror   InstanceMirror
	logger   *slog.Logger
}

// NewMediator creates a mediator. mirror may be nil when no interpreter-level
// object store is attached.
func NewMediator(registry *Registry, mirror InstanceMirror, logger *slog.Logger) *Mediator {
	return &Mediator{
		registry: registry,
		driver:   registry.driver,
		mirror:   mirror,
		logger:   logger,
	}
}

// Registry returns the underlying registry.
func (m *Mediator) Registry() *Registry {
	return m.registry
}

// Configure assigns mode to the pin and creates the mirrored PIN instance on
// first use. Reconfiguring re-validates without duplicating state.
func (m *Mediator) Configure(name string, mode Mode) error {
	if err := m.registry.SetMode(name, mode); err != nil {
		return err
	}
	if m.mirror == nil {
		return nil
	}

	rec, _ := m.registry.Record(name)
	if !m.mirror.HasInstance(name) {
		return m.mirror.MakeInstance(name, ClassPin, map[string]string{
			SlotMode:  mode.String(),
			SlotValue: rec.Level.String(),
		})
	}
	return m.mirror.SetSlot(name, SlotMode, mode.String())
}

// Read samples an input-family pin and records the observed level.
func (m *Mediator) Read(name string) (Level, error) {
	rec, err := m.lookup(name)
	if err != nil {
		return Low, err
	}
	if !rec.Mode.IsInput() {
		return Low, fmt.Errorf("%w: %s is %s", ErrModeMismatch, name, rec.Mode)
	}

	level, err := m.driver.Read(rec.Line)
	if err != nil {
		return Low, fmt.Errorf("%w: read %s (line %d): %v", ErrHardware, name, rec.Line, err)
	}

	m.registry.setLevel(name, level)
	m.mirrorValue(name, level)
	return level, nil
}

// Write drives an output-family pin and records the written level.
func (m *Mediator) Write(name string, level Level) error {
	rec, err := m.lookup(name)
	if err != nil {
		return err
	}
	if !rec.Mode.IsOutput() {
		return fmt.Errorf("%w: %s is %s", ErrModeMismatch, name, rec.Mode)
	}

	if err := m.driver.Write(rec.Line, level); err != nil {
		return fmt.Errorf("%w: write %s (line %d): %v", ErrHardware, name, rec.Line, err)
	}

	m.registry.setLevel(name, level)
	m.mirrorValue(name, level)
	return nil
}

// Value returns the last observed or written level without touching hardware.
func (m *Mediator) Value(name string) (Level, error) {
	rec, err := m.lookup(name)
	if err != nil {
		return Low, err
	}
	return rec.Level, nil
}

// Teardown releases the hardware line and removes the mirrored instance.
// It is safe to call from the mirror's delete hook. If the line cannot be
// reset the record stays and the instance is restored, so the interpreter
// keeps seeing a pin that is still driven.
func (m *Mediator) Teardown(name string) error {
	rec, held := m.registry.Record(name)
	if err := m.registry.Release(name); err != nil {
		if held {
			m.restoreInstance(rec)
		}
		return err
	}
	if m.mirror != nil && m.mirror.HasInstance(name) {
		return m.mirror.DeleteInstance(name)
	}
	return nil
}

func (m *Mediator) restoreInstance(rec Record) {
	if m.mirror == nil || m.mirror.HasInstance(rec.Name) {
		return
	}
	err := m.mirror.MakeInstance(rec.Name, ClassPin, map[string]string{
		SlotMode:  rec.Mode.String(),
		SlotValue: rec.Level.String(),
	})
	if err != nil && m.logger != nil {
		m.logger.Warn("failed to restore pin instance", "pin", rec.Name, "error", err)
	}
}

// lookup resolves the name against the board table first, then the registry.
func (m *Mediator) lookup(name string) (Record, error) {
	if _, err := m.registry.ResolveLine(name); err != nil {
		return Record{}, err
	}
	rec, ok := m.registry.Record(name)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return rec, nil
}

func (m *Mediator) mirrorValue(name string, level Level) {
	if m.mirror == nil || !m.mirror.HasInstance(name) {
		return
	}
	if err := m.mirror.SetSlot(name, SlotValue, level.String()); err != nil && m.logger != nil {
		m.logger.Warn("failed to mirror pin value", "pin", name, "error", err)
	}
}
