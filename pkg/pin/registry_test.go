package pin

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T) (*Registry, *fakeDriver) {
	t.Helper()
	tbl, err := BoardTable(BoardNanoESP32)
	if err != nil {
		t.Fatal(err)
	}
	drv := newFakeDriver()
	return NewRegistry(tbl, drv, nil), drv
}

func TestRegistryResolveLine(t *testing.T) {
	reg, _ := newTestRegistry(t)

	line, err := reg.ResolveLine("D2")
	if err != nil || line != 2 {
		t.Errorf("ResolveLine(D2) = %d, %v; want 2, nil", line, err)
	}
	if _, err := reg.ResolveLine("D99"); !errors.Is(err, ErrUnknownPinName) {
		t.Errorf("ResolveLine(D99) error = %v, want ErrUnknownPinName", err)
	}
}

func TestRegistryGetOrCreateDoesNotStore(t *testing.T) {
	reg, drv := newTestRegistry(t)

	rec := reg.GetOrCreate("D2")
	if rec.Mode != ModeUnset || rec.Level != Low || rec.Line != 2 {
		t.Errorf("GetOrCreate(D2) = %+v, want unset low line 2", rec)
	}
	if _, ok := reg.Record("D2"); ok {
		t.Error("GetOrCreate stored a record")
	}
	if drv.configures != 0 {
		t.Errorf("configures = %d, want 0", drv.configures)
	}
}

func TestRegistrySetModeIdempotent(t *testing.T) {
	reg, drv := newTestRegistry(t)

	for i := 0; i < 3; i++ {
		if err := reg.SetMode("D2", ModeOutput); err != nil {
			t.Fatalf("SetMode: %v", err)
		}
	}
	if drv.configures != 1 {
		t.Errorf("configures = %d, want 1", drv.configures)
	}
	if len(reg.Records()) != 1 {
		t.Errorf("records = %d, want 1", len(reg.Records()))
	}

	if err := reg.SetMode("D2", ModeInput); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if drv.configures != 2 {
		t.Errorf("configures after mode change = %d, want 2", drv.configures)
	}
}

func TestRegistrySetModeErrors(t *testing.T) {
	reg, drv := newTestRegistry(t)

	if err := reg.SetMode("D2", ModeUnset); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("SetMode(Unset) error = %v, want ErrInvalidMode", err)
	}
	if err := reg.SetMode("NOPE", ModeInput); !errors.Is(err, ErrUnknownPinName) {
		t.Errorf("SetMode(NOPE) error = %v, want ErrUnknownPinName", err)
	}

	drv.failNext = errors.New("bus fault")
	if err := reg.SetMode("D3", ModeOutput); !errors.Is(err, ErrHardware) {
		t.Errorf("SetMode with failing driver error = %v, want ErrHardware", err)
	}
	if _, ok := reg.Record("D3"); ok {
		t.Error("failed SetMode stored a record")
	}
}

func TestRegistryRelease(t *testing.T) {
	reg, drv := newTestRegistry(t)

	if err := reg.Release("D2"); err != nil {
		t.Errorf("Release of unknown record: %v", err)
	}
	if drv.resets != 0 {
		t.Errorf("resets = %d, want 0", drv.resets)
	}

	_ = reg.SetMode("D2", ModeOutput)
	if err := reg.Release("D2"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if drv.resets != 1 {
		t.Errorf("resets = %d, want 1", drv.resets)
	}
	if _, ok := reg.Record("D2"); ok {
		t.Error("record survived Release")
	}
}

func TestRegistryRecordsSorted(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_ = reg.SetMode("D5", ModeInput)
	_ = reg.SetMode("A0", ModeInput)
	_ = reg.SetMode("D2", ModeOutput)

	recs := reg.Records()
	if len(recs) != 3 || recs[0].Name != "A0" || recs[1].Name != "D2" || recs[2].Name != "D5" {
		t.Errorf("Records() = %+v", recs)
	}
}

func TestRegistryReleaseFailureKeepsRecord(t *testing.T) {
	reg, drv := newTestRegistry(t)
	_ = reg.SetMode("D2", ModeOutput)

	drv.failNext = errors.New("bus")
	if err := reg.Release("D2"); !errors.Is(err, ErrHardware) {
		t.Fatalf("Release error = %v, want ErrHardware", err)
	}
	rec, ok := reg.Record("D2")
	if !ok || rec.Mode != ModeOutput {
		t.Errorf("record after failed Release = %+v, %v; want OUTPUT kept", rec, ok)
	}

	if err := reg.Release("D2"); err != nil {
		t.Fatalf("retry Release: %v", err)
	}
	if _, ok := reg.Record("D2"); ok {
		t.Error("record survived successful Release")
	}
}

func TestRegistryAliasLineInUse(t *testing.T) {
	reg, drv := newTestRegistry(t)

	if err := reg.SetMode("D11", ModeOutput); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetMode("MOSI", ModeInput); !errors.Is(err, ErrLineInUse) {
		t.Errorf("SetMode(MOSI) error = %v, want ErrLineInUse", err)
	}
	if drv.modes[11] != ModeOutput {
		t.Errorf("line 11 mode = %v, want OUTPUT", drv.modes[11])
	}
	if _, ok := reg.Record("MOSI"); ok {
		t.Error("alias record was stored")
	}

	// Releasing an alias that holds nothing leaves the owner alone.
	if err := reg.Release("MOSI"); err != nil {
		t.Fatal(err)
	}
	if rec, ok := reg.Record("D11"); !ok || rec.Mode != ModeOutput {
		t.Errorf("D11 record = %+v, %v", rec, ok)
	}

	// Once released, the line may be taken under the alias.
	if err := reg.Release("D11"); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetMode("MOSI", ModeInput); err != nil {
		t.Errorf("SetMode(MOSI) after release: %v", err)
	}
}
