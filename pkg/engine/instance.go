package engine

import (
	"errors"
	"fmt"
	"sort"
)

// Instance errors.
var (
	ErrInstanceExists = errors.New("instance already exists")
	ErrNoSuchInstance = errors.New("no such instance")
	ErrNoSuchSlot     = errors.New("no such slot")
)

// Instance is a named object with symbolic slots.
type Instance struct {
	Name  string
	Class string
	Slots map[string]Value
	seq   int
}

// DeleteHook runs after an instance of a class has been removed.
type DeleteHook func(name string) error

// HasInstance reports whether an instance with the name exists.
func (e *Environment) HasInstance(name string) bool {
	e.instMu.RLock()
	defer e.instMu.RUnlock()
	_, ok := e.instances[name]
	return ok
}

// MakeInstance creates an instance with symbol-valued slots.
func (e *Environment) MakeInstance(name, class string, slots map[string]string) error {
	e.instMu.Lock()
	defer e.instMu.Unlock()

	if _, ok := e.instances[name]; ok {
		return fmt.Errorf("%w: [%s]", ErrInstanceExists, name)
	}
	vals := make(map[string]Value, len(slots))
	for k, v := range slots {
		vals[k] = Symbol(v)
	}
	e.instSeq++
	e.instances[name] = &Instance{Name: name, Class: class, Slots: vals, seq: e.instSeq}
	return nil
}

// SetSlot updates one slot with a symbol value.
func (e *Environment) SetSlot(name, slot, value string) error {
	e.instMu.Lock()
	defer e.instMu.Unlock()

	inst, ok := e.instances[name]
	if !ok {
		return fmt.Errorf("%w: [%s]", ErrNoSuchInstance, name)
	}
	inst.Slots[slot] = Symbol(value)
	return nil
}

// Slot returns the value of one slot.
func (e *Environment) Slot(name, slot string) (Value, error) {
	e.instMu.RLock()
	defer e.instMu.RUnlock()

	inst, ok := e.instances[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: [%s]", ErrNoSuchInstance, name)
	}
	v, ok := inst.Slots[slot]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s in [%s]", ErrNoSuchSlot, slot, name)
	}
	return v, nil
}

// Instances returns copies of all instances in creation order.
func (e *Environment) Instances() []Instance {
	e.instMu.RLock()
	defer e.instMu.RUnlock()

	out := make([]Instance, 0, len(e.instances))
	for _, inst := range e.instances {
		cp := *inst
		cp.Slots = make(map[string]Value, len(inst.Slots))
		for k, v := range inst.Slots {
			cp.Slots[k] = v
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// DeleteInstance removes the instance and then runs the delete hooks of its
// class. Deleting a missing instance is a no-op.
func (e *Environment) DeleteInstance(name string) error {
	e.instMu.Lock()
	inst, ok := e.instances[name]
	if !ok {
		e.instMu.Unlock()
		return nil
	}
	delete(e.instances, name)
	hooks := append([]DeleteHook(nil), e.deleteHooks[inst.Class]...)
	e.instMu.Unlock()

	var errs []error
	for _, h := range hooks {
		if err := h(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OnDelete registers a hook for deletions of class instances.
func (e *Environment) OnDelete(class string, fn DeleteHook) {
	e.instMu.Lock()
	defer e.instMu.Unlock()
	e.deleteHooks[class] = append(e.deleteHooks[class], fn)
}
