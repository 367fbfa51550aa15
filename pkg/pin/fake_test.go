package pin

import (
	"errors"
	"fmt"
)

// fakeDriver is a loopback driver: outputs latch, inputs return the latched
// level, pull-ups read high.
type fakeDriver struct {
	levels     map[Line]Level
	modes      map[Line]Mode
	configures int
	resets     int
	failNext   error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		levels: make(map[Line]Level),
		modes:  make(map[Line]Mode),
	}
}

func (d *fakeDriver) takeFail() error {
	err := d.failNext
	d.failNext = nil
	return err
}

func (d *fakeDriver) Configure(line Line, mode Mode) error {
	if err := d.takeFail(); err != nil {
		return err
	}
	d.configures++
	d.modes[line] = mode
	if mode == ModeInputPullUp {
		d.levels[line] = High
	}
	return nil
}

func (d *fakeDriver) Read(line Line) (Level, error) {
	if err := d.takeFail(); err != nil {
		return Low, err
	}
	return d.levels[line], nil
}

func (d *fakeDriver) Write(line Line, level Level) error {
	if err := d.takeFail(); err != nil {
		return err
	}
	d.levels[line] = level
	return nil
}

func (d *fakeDriver) Reset(line Line) error {
	if err := d.takeFail(); err != nil {
		return err
	}
	d.resets++
	delete(d.modes, line)
	return nil
}

type fakeInstance struct {
	class string
	slots map[string]string
}

type fakeMirror struct {
	instances map[string]*fakeInstance
	makes     int
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{instances: make(map[string]*fakeInstance)}
}

func (m *fakeMirror) HasInstance(name string) bool {
	_, ok := m.instances[name]
	return ok
}

func (m *fakeMirror) MakeInstance(name, class string, slots map[string]string) error {
	if _, ok := m.instances[name]; ok {
		return fmt.Errorf("instance %s exists", name)
	}
	m.makes++
	cp := make(map[string]string, len(slots))
	for k, v := range slots {
		cp[k] = v
	}
	m.instances[name] = &fakeInstance{class: class, slots: cp}
	return nil
}

func (m *fakeMirror) SetSlot(name, slot, value string) error {
	inst, ok := m.instances[name]
	if !ok {
		return errors.New("no such instance")
	}
	inst.slots[slot] = value
	return nil
}

func (m *fakeMirror) DeleteInstance(name string) error {
	delete(m.instances, name)
	return nil
}
