package engine

import (
	"errors"
	"fmt"
	"sort"
)

// Logical output names.
const (
	StdOut = "stdout"
	StdErr = "stderr"
	StdWrn = "stdwrn"
)

// ErrDuplicateRouter is returned when a router name is already installed.
var ErrDuplicateRouter = errors.New("router already installed")

// Router receives interpreter output. The highest-priority router whose
// Query accepts a logical name gets the write exclusively.
type Router interface {
	Query(logicalName string) bool
	Write(logicalName, text string)
}

// RouterFunc adapts a function to a Router that accepts every logical name.
type RouterFunc func(logicalName, text string)

func (f RouterFunc) Query(string) bool { return true }
func (f RouterFunc) Write(logicalName, text string) { f(logicalName, text) }

type routerEntry struct {
	name     string
	priority int
	router   Router
	seq      int
}

// AddRouter installs a router. Among equal priorities the most recently
// added router wins.
func (e *Environment) AddRouter(name string, priority int, r Router) error {
	e.routerMu.Lock()
	defer e.routerMu.Unlock()

	for _, ent := range e.routers {
		if ent.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateRouter, name)
		}
	}
	e.routerSeq++
	e.routers = append(e.routers, routerEntry{name: name, priority: priority, router: r, seq: e.routerSeq})
	sort.SliceStable(e.routers, func(i, j int) bool {
		if e.routers[i].priority != e.routers[j].priority {
			return e.routers[i].priority > e.routers[j].priority
		}
		return e.routers[i].seq > e.routers[j].seq
	})
	return nil
}

// DeleteRouter removes a router by name and reports whether it was present.
func (e *Environment) DeleteRouter(name string) bool {
	e.routerMu.Lock()
	defer e.routerMu.Unlock()

	for i, ent := range e.routers {
		if ent.name == name {
			e.routers = append(e.routers[:i], e.routers[i+1:]...)
			return true
		}
	}
	return false
}

// HasRouter reports whether a router with the name is installed.
func (e *Environment) HasRouter(name string) bool {
	e.routerMu.RLock()
	defer e.routerMu.RUnlock()

	for _, ent := range e.routers {
		if ent.name == name {
			return true
		}
	}
	return false
}

// Write sends text to the first router accepting logicalName. Output no
// router claims is discarded.
func (e *Environment) Write(logicalName, text string) {
	if text == "" {
		return
	}

	e.routerMu.RLock()
	var target Router
	for _, ent := range e.routers {
		if ent.router.Query(logicalName) {
			target = ent.router
			break
		}
	}
	e.routerMu.RUnlock()

	if target != nil {
		target.Write(logicalName, text)
	}
}
