package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/storefront-e2e/pkg/config"
)

var (
	// ErrElementNotFound is returned when an element is still absent after
	// the implicit wait elapsed.
	ErrElementNotFound = errors.New("element not found")

	// ErrNoSession is returned when a worker has no active session.
	ErrNoSession = errors.New("no active session")
)

// WorkerID identifies the execution unit that owns a session. The harness
// assigns one per running test.
type WorkerID string

// Timeouts applied to a session right after launch.
type Timeouts struct {
	// ImplicitWait bounds every element lookup and action
	ImplicitWait time.Duration

	// PageLoad bounds every navigation
	PageLoad time.Duration
}

// Options configures the sessions a Registry creates.
type Options struct {
	Backend  Backend
	Headless bool
	Timeouts Timeouts
}

// OptionsFromConfig resolves session options from configuration. An
// unsupported browser name or malformed timeout is fatal.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	backend, err := ParseBackend(cfg.Browser())
	if err != nil {
		return Options{}, err
	}
	headless, err := cfg.Headless()
	if err != nil {
		return Options{}, err
	}
	implicit, err := cfg.ImplicitWait()
	if err != nil {
		return Options{}, err
	}
	pageLoad, err := cfg.PageLoadTimeout()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Backend:  backend,
		Headless: headless,
		Timeouts: Timeouts{ImplicitWait: implicit, PageLoad: pageLoad},
	}, nil
}

// SessionInfo contains metadata about a live session.
type SessionInfo struct {
	ID        string
	Worker    WorkerID
	Backend   Backend
	URL       string
	Maximized bool
	CreatedAt time.Time
}

func (i SessionInfo) String() string {
	return fmt.Sprintf("%s/%s (%s)", i.Worker, i.Backend, i.ID)
}

const (
	defaultViewportWidth  = 1920
	defaultViewportHeight = 1080
)
