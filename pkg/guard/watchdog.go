package guard

import (
	"sync"
	"time"
)

// DefaultTimeout is the default watchdog window.
const DefaultTimeout = 30 * time.Second

// WatchdogState is the state of a Watchdog.
type WatchdogState uint8

const (
	// WatchdogIdle means the watchdog is not running.
	WatchdogIdle WatchdogState = iota

	// WatchdogArmed means the timer is running.
	WatchdogArmed

	// WatchdogExpired means the timer fired and has not been re-armed.
	WatchdogExpired
)

// String returns a human-readable state name.
func (s WatchdogState) String() string {
	switch s {
	case WatchdogIdle:
		return "IDLE"
	case WatchdogArmed:
		return "ARMED"
	case WatchdogExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Watchdog fires a callback if it is not disarmed within its timeout.
// A zero timeout disables it.
type Watchdog struct {
	mu sync.Mutex

	state   WatchdogState
	timeout time.Duration
	timer   *time.Timer
	armedAt time.Time

	// generation invalidates timers that fire after a re-arm or disarm.
	generation uint64

	onExpire      func()
	onStateChange func(oldState, newState WatchdogState)
}

// NewWatchdog creates an idle watchdog.
func NewWatchdog(timeout time.Duration) *Watchdog {
	return &Watchdog{timeout: timeout}
}

// Timeout returns the configured window.
func (w *Watchdog) Timeout() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeout
}

// State returns the current state.
func (w *Watchdog) State() WatchdogState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Arm starts or restarts the timer.
func (w *Watchdog) Arm() {
	w.mu.Lock()

	if w.timeout <= 0 {
		w.mu.Unlock()
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.generation++
	gen := w.generation
	w.armedAt = time.Now()
	w.timer = time.AfterFunc(w.timeout, func() {
		w.expire(gen)
	})

	old := w.state
	w.state = WatchdogArmed
	stateChangeFn := w.onStateChange
	w.mu.Unlock()

	if stateChangeFn != nil && old != WatchdogArmed {
		stateChangeFn(old, WatchdogArmed)
	}
}

// Disarm stops the timer and returns to idle.
func (w *Watchdog) Disarm() {
	w.mu.Lock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.generation++

	old := w.state
	w.state = WatchdogIdle
	w.armedAt = time.Time{}
	stateChangeFn := w.onStateChange
	w.mu.Unlock()

	if stateChangeFn != nil && old != WatchdogIdle {
		stateChangeFn(old, WatchdogIdle)
	}
}

// Remaining returns the time until expiry, or 0 if not armed.
func (w *Watchdog) Remaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != WatchdogArmed {
		return 0
	}
	remaining := w.timeout - time.Since(w.armedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (w *Watchdog) expire(gen uint64) {
	w.mu.Lock()

	if w.state != WatchdogArmed || gen != w.generation {
		w.mu.Unlock()
		return
	}

	w.state = WatchdogExpired
	w.timer = nil

	expireFn := w.onExpire
	stateChangeFn := w.onStateChange
	w.mu.Unlock()

	if stateChangeFn != nil {
		stateChangeFn(WatchdogArmed, WatchdogExpired)
	}
	if expireFn != nil {
		expireFn()
	}
}

// OnExpire sets the expiry callback.
func (w *Watchdog) OnExpire(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onExpire = fn
}

// OnStateChange sets a callback for state changes.
func (w *Watchdog) OnStateChange(fn func(oldState, newState WatchdogState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onStateChange = fn
}
