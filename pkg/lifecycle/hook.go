// Package lifecycle observes test execution and reacts to outcomes: it logs
// every transition, gathers failure evidence and tears browser sessions down.
package lifecycle

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/entrhq/storefront-e2e/pkg/driver"
	"github.com/entrhq/storefront-e2e/pkg/logging"
)

// Outcome is how a test ended.
type Outcome int

const (
	Passed Outcome = iota + 1
	Failed
	Aborted
	Disabled
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	case Disabled:
		return "disabled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// TestInfo identifies a running test.
type TestInfo struct {
	Name    string
	Worker  driver.WorkerID
	Started time.Time
}

// Event reports the end of a test. Cause is empty for passed tests.
type Event struct {
	TestInfo
	Outcome  Outcome
	Cause    string
	Duration time.Duration
}

// Hook is notified around suites and tests.
type Hook interface {
	BeforeSuite(name string)
	BeforeTest(info TestInfo)
	AfterTest(ev Event)
	AfterSuite(name string)
}

// Hooks is an ordered hook list that is itself a Hook. Each call is guarded:
// a hook that panics is logged and the remaining hooks still run.
type Hooks []Hook

var hooksLog = sync.OnceValue(func() *logging.Logger {
	return logging.MustLogger("lifecycle")
})

func guard(step string, i int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			hooksLog().Errorf("Hook %d panicked in %s: %v\n%s", i, step, r, debug.Stack())
		}
	}()
	fn()
}

func (hs Hooks) BeforeSuite(name string) {
	for i, h := range hs {
		guard("BeforeSuite", i, func() { h.BeforeSuite(name) })
	}
}

func (hs Hooks) BeforeTest(info TestInfo) {
	for i, h := range hs {
		guard("BeforeTest", i, func() { h.BeforeTest(info) })
	}
}

func (hs Hooks) AfterTest(ev Event) {
	for i, h := range hs {
		guard("AfterTest", i, func() { h.AfterTest(ev) })
	}
}

func (hs Hooks) AfterSuite(name string) {
	for i, h := range hs {
		guard("AfterSuite", i, func() { h.AfterSuite(name) })
	}
}

// Funcs adapts plain functions to Hook. Nil fields are skipped.
type Funcs struct {
	OnBeforeSuite func(name string)
	OnBeforeTest  func(info TestInfo)
	OnAfterTest   func(ev Event)
	OnAfterSuite  func(name string)
}

func (f Funcs) BeforeSuite(name string) {
	if f.OnBeforeSuite != nil {
		f.OnBeforeSuite(name)
	}
}

func (f Funcs) BeforeTest(info TestInfo) {
	if f.OnBeforeTest != nil {
		f.OnBeforeTest(info)
	}
}

func (f Funcs) AfterTest(ev Event) {
	if f.OnAfterTest != nil {
		f.OnAfterTest(ev)
	}
}

func (f Funcs) AfterSuite(name string) {
	if f.OnAfterSuite != nil {
		f.OnAfterSuite(name)
	}
}
