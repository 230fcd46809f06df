package driver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/entrhq/storefront-e2e/pkg/logging"
)

// Registry hands out one browser session per worker.
//
// Per worker the lifecycle is Uninitialized -> Active -> Closed. Session is
// idempotent while Active; Close returns the worker to a state where the next
// Session call launches a fresh browser. The map is guarded by a mutex but a
// session itself is only ever touched by its worker.
type Registry struct {
	mu       sync.Mutex
	sessions map[WorkerID]*Session
	launcher Launcher
	opts     Options
	log      *logging.Logger
}

// NewRegistry creates a registry that launches sessions with launcher.
func NewRegistry(launcher Launcher, opts Options) *Registry {
	return &Registry{
		sessions: make(map[WorkerID]*Session),
		launcher: launcher,
		opts:     opts,
		log:      logging.MustLogger("driver"),
	}
}

// Session returns the worker's active session, launching one on first use.
// Launch failures are returned as-is and not retried.
func (r *Registry) Session(worker WorkerID) (*Session, error) {
	if s, ok := r.Lookup(worker); ok {
		return s, nil
	}

	r.log.Infof("Initializing %s session for worker %s", r.opts.Backend, worker)
	s, err := r.launcher.Launch(LaunchSpec{
		Backend:  r.opts.Backend,
		Headless: r.opts.Headless,
	})
	if err != nil {
		r.log.Errorf("Failed to start %s session for worker %s: %v", r.opts.Backend, worker, err)
		return nil, fmt.Errorf("start %s session: %w", r.opts.Backend, err)
	}
	s.Worker = worker
	s.Backend = r.opts.Backend

	s.applyTimeouts(r.opts.Timeouts)
	r.log.Debugf("Timeouts for worker %s: implicit=%s pageLoad=%s",
		worker, r.opts.Timeouts.ImplicitWait, r.opts.Timeouts.PageLoad)

	if err := s.Maximize(); err != nil {
		r.log.Warnf("Could not maximize window for worker %s: %v", worker, err)
	}

	r.mu.Lock()
	r.sessions[worker] = s
	r.mu.Unlock()

	r.log.Infof("Session %s ready for worker %s", s.ID, worker)
	return s, nil
}

// Lookup returns the worker's active session without creating one.
func (r *Registry) Lookup(worker WorkerID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[worker]
	return s, ok
}

// Close tears down the worker's session. Teardown failures are logged and
// never returned; the worker's state is removed either way.
func (r *Registry) Close(worker WorkerID) {
	r.mu.Lock()
	s, ok := r.sessions[worker]
	delete(r.sessions, worker)
	r.mu.Unlock()

	if !ok {
		return
	}
	r.quit(s)
}

func (r *Registry) quit(s *Session) {
	r.log.Infof("Closing session %s for worker %s", s.ID, s.Worker)
	if err := s.Quit(); err != nil {
		r.log.Errorf("Error closing session %s for worker %s: %v", s.ID, s.Worker, err)
		return
	}
	r.log.Debugf("Session %s closed", s.ID)
}

// CloseAll closes every session of every worker and stops the launcher.
// Safe to call with no sessions and more than once.
func (r *Registry) CloseAll() {
	for _, info := range r.List() {
		r.log.Debugf("Sweeping session %s", info)
	}

	r.mu.Lock()
	remaining := make([]*Session, 0, len(r.sessions))
	for worker, s := range r.sessions {
		remaining = append(remaining, s)
		delete(r.sessions, worker)
	}
	r.mu.Unlock()

	for _, s := range remaining {
		r.quit(s)
	}
	if err := r.launcher.Stop(); err != nil {
		r.log.Errorf("Error stopping browser driver: %v", err)
	}
	r.log.Infof("All sessions closed (%d swept)", len(remaining))
}

// Active returns the number of live sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// List returns metadata about every live session, ordered by worker.
func (r *Registry) List() []SessionInfo {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Worker < infos[j].Worker })
	return infos
}
