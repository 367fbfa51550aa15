package pin

import (
	"errors"
	"testing"
)

func newTestMediator(t *testing.T) (*Mediator, *fakeDriver, *fakeMirror) {
	t.Helper()
	reg, drv := newTestRegistry(t)
	mir := newFakeMirror()
	return NewMediator(reg, mir, nil), drv, mir
}

func TestMediatorConfigureCreatesInstance(t *testing.T) {
	med, _, mir := newTestMediator(t)

	if err := med.Configure("D2", ModeOutput); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	inst, ok := mir.instances["D2"]
	if !ok {
		t.Fatal("no PIN instance created")
	}
	if inst.class != ClassPin {
		t.Errorf("class = %q, want %q", inst.class, ClassPin)
	}
	if inst.slots[SlotMode] != "OUTPUT" || inst.slots[SlotValue] != "LOW" {
		t.Errorf("slots = %v", inst.slots)
	}

	// Reconfigure updates the slot without creating a second instance.
	if err := med.Configure("D2", ModeInputPullUp); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if mir.makes != 1 {
		t.Errorf("makes = %d, want 1", mir.makes)
	}
	if inst.slots[SlotMode] != "INPUT_PULLUP" {
		t.Errorf("mode slot = %q, want INPUT_PULLUP", inst.slots[SlotMode])
	}
}

func TestMediatorConfigureIdempotent(t *testing.T) {
	med, drv, mir := newTestMediator(t)

	for i := 0; i < 2; i++ {
		if err := med.Configure("D5", ModeInput); err != nil {
			t.Fatalf("Configure #%d: %v", i, err)
		}
	}
	if drv.configures != 1 {
		t.Errorf("configures = %d, want 1", drv.configures)
	}
	if len(mir.instances) != 1 {
		t.Errorf("instances = %d, want 1", len(mir.instances))
	}
}

func TestMediatorReadWriteErrors(t *testing.T) {
	med, _, _ := newTestMediator(t)

	if _, err := med.Read("D99"); !errors.Is(err, ErrUnknownPinName) {
		t.Errorf("Read(D99) error = %v, want ErrUnknownPinName", err)
	}
	if _, err := med.Read("D5"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Read(D5) error = %v, want ErrNotRegistered", err)
	}
	if err := med.Write("D5", High); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Write(D5) error = %v, want ErrNotRegistered", err)
	}

	_ = med.Configure("D5", ModeInput)
	if err := med.Write("D5", High); !errors.Is(err, ErrModeMismatch) {
		t.Errorf("Write on input error = %v, want ErrModeMismatch", err)
	}

	_ = med.Configure("D2", ModeOutput)
	if _, err := med.Read("D2"); !errors.Is(err, ErrModeMismatch) {
		t.Errorf("Read on output error = %v, want ErrModeMismatch", err)
	}
}

func TestMediatorWriteMirrorsValue(t *testing.T) {
	med, drv, mir := newTestMediator(t)
	_ = med.Configure("D2", ModeOutput)

	if err := med.Write("D2", High); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if drv.levels[2] != High {
		t.Errorf("line level = %v, want HIGH", drv.levels[2])
	}
	rec, _ := med.Registry().Record("D2")
	if rec.Level != High {
		t.Errorf("record level = %v, want HIGH", rec.Level)
	}
	if got := mir.instances["D2"].slots[SlotValue]; got != "HIGH" {
		t.Errorf("value slot = %q, want HIGH", got)
	}
}

func TestMediatorRoundTrip(t *testing.T) {
	med, _, _ := newTestMediator(t)

	for _, level := range []Level{High, Low} {
		if err := med.Configure("D2", ModeOutput); err != nil {
			t.Fatal(err)
		}
		if err := med.Write("D2", level); err != nil {
			t.Fatal(err)
		}
		if err := med.Configure("D2", ModeInput); err != nil {
			t.Fatal(err)
		}
		got, err := med.Read("D2")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if got != level {
			t.Errorf("Read after Write(%v) = %v", level, got)
		}
	}
}

func TestMediatorPullUpReadsHigh(t *testing.T) {
	med, _, mir := newTestMediator(t)

	if err := med.Configure("D5", ModeInputPullUp); err != nil {
		t.Fatal(err)
	}
	got, err := med.Read("D5")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != High {
		t.Errorf("Read = %v, want HIGH", got)
	}
	if mir.instances["D5"].slots[SlotValue] != "HIGH" {
		t.Errorf("value slot = %q", mir.instances["D5"].slots[SlotValue])
	}
}

func TestMediatorHardwareError(t *testing.T) {
	med, drv, _ := newTestMediator(t)
	_ = med.Configure("D2", ModeOutput)

	drv.failNext = errors.New("short")
	if err := med.Write("D2", High); !errors.Is(err, ErrHardware) {
		t.Errorf("Write error = %v, want ErrHardware", err)
	}
	rec, _ := med.Registry().Record("D2")
	if rec.Level != Low {
		t.Errorf("level after failed write = %v, want LOW", rec.Level)
	}
}

func TestMediatorTeardown(t *testing.T) {
	med, drv, mir := newTestMediator(t)
	_ = med.Configure("D2", ModeOutput)

	if err := med.Teardown("D2"); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if mir.HasInstance("D2") {
		t.Error("instance survived teardown")
	}
	if _, ok := med.Registry().Record("D2"); ok {
		t.Error("record survived teardown")
	}
	if drv.resets != 1 {
		t.Errorf("resets = %d, want 1", drv.resets)
	}

	if _, err := med.Read("D2"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Read after teardown error = %v, want ErrNotRegistered", err)
	}

	// A second teardown is a no-op.
	if err := med.Teardown("D2"); err != nil {
		t.Errorf("second Teardown: %v", err)
	}
	if drv.resets != 1 {
		t.Errorf("resets = %d, want 1", drv.resets)
	}
}

func TestMediatorWithoutMirror(t *testing.T) {
	reg, _ := newTestRegistry(t)
	med := NewMediator(reg, nil, nil)

	if err := med.Configure("D2", ModeOutput); err != nil {
		t.Fatal(err)
	}
	if err := med.Write("D2", High); err != nil {
		t.Fatal(err)
	}
	if v, _ := med.Value("D2"); v != High {
		t.Errorf("Value = %v, want HIGH", v)
	}
	if err := med.Teardown("D2"); err != nil {
		t.Fatal(err)
	}
}

func TestMediatorTeardownResetFailure(t *testing.T) {
	med, drv, mir := newTestMediator(t)
	_ = med.Configure("D2", ModeOutput)
	_ = med.Write("D2", High)

	drv.failNext = errors.New("bus")
	if err := med.Teardown("D2"); !errors.Is(err, ErrHardware) {
		t.Fatalf("Teardown error = %v, want ErrHardware", err)
	}
	if !mir.HasInstance("D2") {
		t.Error("instance removed although the line is still driven")
	}
	if rec, ok := med.Registry().Record("D2"); !ok || rec.Level != High {
		t.Errorf("record = %+v, %v; want HIGH kept", rec, ok)
	}
	if err := med.Write("D2", Low); err != nil {
		t.Errorf("Write after failed teardown: %v", err)
	}
}

func TestMediatorTeardownRestoresDeletedInstance(t *testing.T) {
	med, drv, mir := newTestMediator(t)
	_ = med.Configure("D2", ModeOutput)
	_ = med.Write("D2", High)

	// The mirror's delete hook runs after the instance is gone.
	_ = mir.DeleteInstance("D2")
	drv.failNext = errors.New("bus")
	if err := med.Teardown("D2"); !errors.Is(err, ErrHardware) {
		t.Fatalf("Teardown error = %v, want ErrHardware", err)
	}

	inst, ok := mir.instances["D2"]
	if !ok {
		t.Fatal("instance not restored")
	}
	if inst.class != ClassPin || inst.slots[SlotMode] != "OUTPUT" || inst.slots[SlotValue] != "HIGH" {
		t.Errorf("restored instance = %+v", inst)
	}
}
