// Package harness runs storefront cases under go test.
//
// A Suite wraps every case in a subtest, hands it a Worker with its own
// browser session, and turns the subtest's result into a lifecycle event for
// the suite's hooks:
//
//	failed or panicked   -> lifecycle.Failed
//	skipped in the body  -> lifecycle.Aborted
//	Disable              -> lifecycle.Disabled
//	otherwise            -> lifecycle.Passed
package harness

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/entrhq/storefront-e2e/pkg/driver"
	"github.com/entrhq/storefront-e2e/pkg/lifecycle"
	"github.com/entrhq/storefront-e2e/pkg/logging"
)

// Suite is a named group of cases sharing one session registry and hook list.
type Suite struct {
	Name     string
	Registry *driver.Registry
	Hooks    lifecycle.Hooks

	// Parallel runs every case with t.Parallel
	Parallel bool

	seq   atomic.Int64
	begin sync.Once
	end   sync.Once
	log   *logging.Logger
}

func NewSuite(name string, registry *driver.Registry, hooks ...lifecycle.Hook) *Suite {
	return &Suite{
		Name:     name,
		Registry: registry,
		Hooks:    lifecycle.Hooks(hooks),
		log:      logging.MustLogger("harness"),
	}
}

// Begin fires BeforeSuite once.
func (s *Suite) Begin() {
	s.begin.Do(func() {
		s.log.Infof("Suite %s starting with %d hooks", s.Name, len(s.Hooks))
		s.Hooks.BeforeSuite(s.Name)
	})
}

// End fires AfterSuite once.
func (s *Suite) End() {
	s.end.Do(func() {
		s.Hooks.AfterSuite(s.Name)
		s.log.Infof("Suite %s finished", s.Name)
	})
}

// Main wraps m.Run between Begin and End. Use it from TestMain.
func (s *Suite) Main(m *testing.M) int {
	s.Begin()
	defer s.End()
	return m.Run()
}

func (s *Suite) nextWorker(name string) driver.WorkerID {
	return driver.WorkerID(fmt.Sprintf("%s#%d", name, s.seq.Add(1)))
}

// Run runs fn as the subtest name.
func (s *Suite) Run(t *testing.T, name string, fn func(w *Worker)) bool {
	t.Helper()
	return t.Run(name, func(t *testing.T) {
		if s.Parallel {
			t.Parallel()
		}
		s.run(t, fn)
	})
}

// run executes one case and reports its outcome. Hooks fire from a deferred
// call, so FailNow and Skip inside fn still produce an event.
func (s *Suite) run(t T, fn func(w *Worker)) {
	w := newWorker(t, s.nextWorker(t.Name()), s.Registry)
	info := lifecycle.TestInfo{Name: t.Name(), Worker: w.ID, Started: time.Now()}
	s.Hooks.BeforeTest(info)

	defer func() {
		r := recover()
		ev := lifecycle.Event{TestInfo: info, Duration: time.Since(info.Started)}
		switch {
		case r != nil:
			ev.Outcome = lifecycle.Failed
			ev.Cause = fmt.Sprintf("panic: %v", r)
		case t.Failed():
			ev.Outcome = lifecycle.Failed
			ev.Cause = w.cause()
		case t.Skipped():
			ev.Outcome = lifecycle.Aborted
			ev.Cause = w.skipReason()
		default:
			ev.Outcome = lifecycle.Passed
		}
		s.Hooks.AfterTest(ev)
		if r != nil {
			t.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	fn(w)
}

// Disable reports name as a disabled case without running it.
func (s *Suite) Disable(t *testing.T, name, reason string) bool {
	t.Helper()
	return t.Run(name, func(t *testing.T) {
		s.disable(t, reason)
	})
}

func (s *Suite) disable(t T, reason string) {
	s.Hooks.AfterTest(lifecycle.Event{
		TestInfo: lifecycle.TestInfo{Name: t.Name(), Started: time.Now()},
		Outcome:  lifecycle.Disabled,
		Cause:    reason,
	})
	t.Skipf("disabled: %s", reason)
}
