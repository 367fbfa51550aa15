package pin

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Pin errors.
var (
	ErrUnknownPinName  = errors.New("unknown pin name")
	ErrNotRegistered   = errors.New("pin has not yet been registered")
	ErrModeMismatch    = errors.New("pin mode does not allow this operation")
	ErrInvalidMode     = errors.New("invalid pin mode")
	ErrUnsupportedMode = errors.New("unsupported pin mode")
	ErrInvalidLevel    = errors.New("invalid pin level")
	ErrUnknownBoard    = errors.New("unknown board")
	ErrHardware        = errors.New("hardware error")
	ErrLineInUse       = errors.New("pin line is held under another name")
)

// Record is the logical state of one configured pin.
type Record struct {
	Name  string
	Line  Line
	Mode  Mode
	Level Level
}

// Registry owns all pin records and is the only component issuing hardware
// mode configuration. A hardware line is held by at most one name at a time;
// board aliases of a held line are refused until it is released.
//
// Records are mutated from the interpreter's execution context only; the
// lock keeps read-only inspection from other goroutines race free.
type Registry struct {
	mu      sync.RWMutex
	table   Table
	driver  Driver
	records map[string]*Record
	owners  map[Line]string
	logger  *slog.Logger
}

// NewRegistry creates a registry over the given table and hardware driver.
// A nil logger disables debug output.
func NewRegistry(table Table, driver Driver, logger *slog.Logger) *Registry {
	return &Registry{
		table:   table,
		driver:  driver,
		records: make(map[string]*Record),
		owners:  make(map[Line]string),
		logger:  logger,
	}
}

// ResolveLine looks up the hardware line for a symbolic name.
func (r *Registry) ResolveLine(name string) (Line, error) {
	line, ok := r.table.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPinName, name)
	}
	return line, nil
}

// GetOrCreate returns the existing record for name or a fresh Unset record.
// The fresh record is not stored and no hardware is touched.
func (r *Registry) GetOrCreate(name string) Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rec, ok := r.records[name]; ok {
		return *rec
	}
	line, _ := r.table.Lookup(name)
	return Record{Name: name, Line: line, Mode: ModeUnset, Level: Low}
}

// Record returns a copy of the stored record for name.
func (r *Registry) Record(name string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[name]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns copies of all stored records sorted by name.
func (r *Registry) Records() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetMode assigns a mode to the pin, configuring the hardware line only when
// the mode actually changes.
func (r *Registry) SetMode(name string, mode Mode) error {
	if mode == ModeUnset {
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
	line, err := r.ResolveLine(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, held := r.owners[line]; held && owner != name {
		return fmt.Errorf("%w: %s (line %d) is configured as %s", ErrLineInUse, name, line, owner)
	}

	rec, exists := r.records[name]
	if exists && rec.Mode == mode {
		return nil
	}

	if err := r.driver.Configure(line, mode); err != nil {
		return fmt.Errorf("%w: configure %s (line %d) as %s: %v", ErrHardware, name, line, mode, err)
	}

	if !exists {
		rec = &Record{Name: name, Line: line, Level: Low}
		r.records[name] = rec
		r.owners[line] = name
	}
	rec.Mode = mode
	r.debugLog("pin mode set", "pin", name, "line", int(line), "mode", mode.String())
	return nil
}

// Release resets the hardware line to a floating input and drops the record.
// It is a no-op if the pin has no record. When the reset fails the record is
// kept, since the line is still configured.
func (r *Registry) Release(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[name]
	if !ok {
		return nil
	}
	if err := r.driver.Reset(rec.Line); err != nil {
		return fmt.Errorf("%w: reset %s (line %d): %v", ErrHardware, name, rec.Line, err)
	}
	delete(r.records, name)
	delete(r.owners, rec.Line)
	r.debugLog("pin released", "pin", name, "line", int(rec.Line))
	return nil
}

// setLevel stores the last observed or written level.
func (r *Registry) setLevel(name string, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[name]; ok {
		rec.Level = level
	}
}

// debugLog logs a debug message if logging is enabled.
func (r *Registry) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
