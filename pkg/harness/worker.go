package harness

import (
	"fmt"
	"strings"
	"sync"

	"github.com/entrhq/storefront-e2e/pkg/driver"
	"github.com/entrhq/storefront-e2e/pkg/pages"
)

// T is the part of *testing.T a case runs against.
type T interface {
	Name() string
	Helper()
	Logf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	FailNow()
	Skipf(format string, args ...interface{})
	Failed() bool
	Skipped() bool
}

// Worker is the per-test context handed to a case. It owns the test's
// browser session and records failure messages so they can be reported as
// the failure cause. It satisfies require.TestingT.
type Worker struct {
	ID driver.WorkerID

	t        T
	registry *driver.Registry

	mu       sync.Mutex
	messages []string
	skip     string
}

func newWorker(t T, id driver.WorkerID, registry *driver.Registry) *Worker {
	return &Worker{ID: id, t: t, registry: registry}
}

func (w *Worker) Helper() { w.t.Helper() }

func (w *Worker) Logf(format string, args ...interface{}) {
	w.t.Helper()
	w.t.Logf(format, args...)
}

// Errorf records the message as part of the failure cause and marks the test
// failed.
func (w *Worker) Errorf(format string, args ...interface{}) {
	w.t.Helper()
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	w.mu.Lock()
	w.messages = append(w.messages, msg)
	w.mu.Unlock()
	w.t.Errorf(format, args...)
}

func (w *Worker) FailNow() {
	w.t.Helper()
	w.t.FailNow()
}

// Skipf aborts the test. The message becomes the abort cause.
func (w *Worker) Skipf(format string, args ...interface{}) {
	w.t.Helper()
	w.mu.Lock()
	w.skip = fmt.Sprintf(format, args...)
	w.mu.Unlock()
	w.t.Skipf(format, args...)
}

// Name is the full test name.
func (w *Worker) Name() string { return w.t.Name() }

// cause joins the recorded failure messages.
func (w *Worker) cause() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.messages) == 0 {
		return "test failed"
	}
	return strings.Join(w.messages, "\n")
}

func (w *Worker) skipReason() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.skip
}

// Session returns the worker's browser session, starting it on first use.
// A session that cannot start fails the test.
func (w *Worker) Session() *driver.Session {
	w.t.Helper()
	s, err := w.registry.Session(w.ID)
	if err != nil {
		w.Errorf("browser session unavailable: %v", err)
		w.FailNow()
	}
	return s
}

// LoginPage binds a login page object to the worker's session.
func (w *Worker) LoginPage() *pages.LoginPage {
	w.t.Helper()
	return pages.NewLoginPage(w.Session())
}

// ProductsPage binds a products page object to the worker's session.
func (w *Worker) ProductsPage() *pages.ProductsPage {
	w.t.Helper()
	return pages.NewProductsPage(w.Session())
}
