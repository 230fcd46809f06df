package driver

import (
	"fmt"
	"io"
	"sync"

	"github.com/entrhq/storefront-e2e/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// LaunchSpec describes the browser a Launcher should start.
type LaunchSpec struct {
	Backend  Backend
	Headless bool
}

// Launcher starts browser sessions. The Registry owns one Launcher and
// serializes nothing beyond what the Launcher itself guards.
type Launcher interface {
	// Launch starts a browser with a fresh context and page.
	Launch(spec LaunchSpec) (*Session, error)

	// Stop releases process-wide resources. Safe to call when nothing started.
	Stop() error
}

// PlaywrightLauncher launches sessions through a single Playwright driver
// process started on first use.
type PlaywrightLauncher struct {
	// SkipInstall assumes browsers and the driver are already installed
	SkipInstall bool

	once   sync.Once
	mu     sync.Mutex
	pw     *playwright.Playwright
	err    error
	output io.Writer
	log    *logging.Logger
}

// NewPlaywrightLauncher creates a launcher. Nothing starts until the first Launch.
func NewPlaywrightLauncher(skipInstall bool) *PlaywrightLauncher {
	log := logging.MustLogger("driver")
	return &PlaywrightLauncher{
		SkipInstall: skipInstall,
		output:      log.Writer(),
		log:         log,
	}
}

// start installs (unless skipped) and runs the Playwright driver exactly once
// per launcher.
func (l *PlaywrightLauncher) start(backend Backend) error {
	l.once.Do(func() {
		opts := &playwright.RunOptions{
			Browsers: []string{backend.InstallName()},
			Verbose:  false,
			Stdout:   l.output,
			Stderr:   l.output,
		}
		if !l.SkipInstall {
			l.log.Infof("Installing Playwright driver and %s", backend.InstallName())
			if err := playwright.Install(opts); err != nil {
				l.err = fmt.Errorf("failed to install playwright: %w", err)
				return
			}
		}
		pw, err := playwright.Run(opts)
		if err != nil {
			l.err = fmt.Errorf("failed to start playwright: %w", err)
			return
		}
		l.mu.Lock()
		l.pw = pw
		l.mu.Unlock()
		l.log.Debugf("Playwright driver started")
	})
	return l.err
}

func browserType(pw *playwright.Playwright, backend Backend) playwright.BrowserType {
	switch backend.Engine() {
	case EngineFirefox:
		return pw.Firefox
	case EngineWebKit:
		return pw.WebKit
	default:
		return pw.Chromium
	}
}

// Launch starts the backend described by spec.
func (l *PlaywrightLauncher) Launch(spec LaunchSpec) (*Session, error) {
	if err := l.start(spec.Backend); err != nil {
		return nil, err
	}
	l.mu.Lock()
	pw := l.pw
	l.mu.Unlock()
	if pw == nil {
		return nil, fmt.Errorf("playwright driver already stopped")
	}

	l.log.Debugf("Launching %s (engine=%s headless=%v)", spec.Backend, spec.Backend.Engine(), spec.Headless)
	browser, err := browserType(pw, spec.Backend).Launch(spec.Backend.LaunchOptions(spec.Headless))
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", spec.Backend, err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		// An empty grant list denies notification prompts.
		Permissions: []string{},
		Viewport: &playwright.Size{
			Width:  defaultViewportWidth,
			Height: defaultViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return NewSession(browser, context, page), nil
}

// Stop shuts the Playwright driver down.
func (l *PlaywrightLauncher) Stop() error {
	l.mu.Lock()
	pw := l.pw
	l.pw = nil
	l.mu.Unlock()

	if pw == nil {
		return nil
	}
	if err := pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	l.log.Debugf("Playwright driver stopped")
	return nil
}
