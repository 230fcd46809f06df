package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ErrUnsupportedBrowser is returned for browser names outside the supported set.
var ErrUnsupportedBrowser = errors.New("unsupported browser")

// Backend is one of the supported browsers.
type Backend int

const (
	Chrome Backend = iota + 1
	Firefox
	Edge
	Safari
)

// Backends lists every supported backend.
var Backends = []Backend{Chrome, Firefox, Edge, Safari}

// Engine is the Playwright browser type a backend runs on.
type Engine string

const (
	EngineChromium Engine = "chromium"
	EngineFirefox  Engine = "firefox"
	EngineWebKit   Engine = "webkit"
)

// ParseBackend maps a configured browser name to a Backend. Matching is
// exact after lower-casing and trimming.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome":
		return Chrome, nil
	case "firefox":
		return Firefox, nil
	case "edge":
		return Edge, nil
	case "safari":
		return Safari, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedBrowser, name)
	}
}

func (b Backend) String() string {
	switch b {
	case Chrome:
		return "chrome"
	case Firefox:
		return "firefox"
	case Edge:
		return "edge"
	case Safari:
		return "safari"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// Engine returns the Playwright browser type for b.
func (b Backend) Engine() Engine {
	switch b {
	case Chrome, Edge:
		return EngineChromium
	case Firefox:
		return EngineFirefox
	case Safari:
		return EngineWebKit
	default:
		panic(fmt.Sprintf("driver: unknown backend %d", int(b)))
	}
}

// Channel returns the branded Chromium channel, empty for the other engines.
func (b Backend) Channel() string {
	switch b {
	case Chrome:
		return "chrome"
	case Edge:
		return "msedge"
	case Firefox, Safari:
		return ""
	default:
		panic(fmt.Sprintf("driver: unknown backend %d", int(b)))
	}
}

// InstallName is the name Playwright's installer knows the backend by.
func (b Backend) InstallName() string {
	if ch := b.Channel(); ch != "" {
		return ch
	}
	return string(b.Engine())
}

var chromiumArgs = []string{
	"--start-maximized",
	"--disable-notifications",
	"--disable-extensions",
	"--disable-gpu",
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--password-store=basic",
	"--disable-features=PasswordLeakDetection",
}

var firefoxPrefs = map[string]interface{}{
	"dom.webnotifications.enabled": false,
	"dom.push.enabled":             false,
	"signon.rememberSignons":       false,
	"extensions.enabledScopes":     0,
}

// LaunchOptions returns the Playwright launch options with the stability
// flags that apply to b.
func (b Backend) LaunchOptions(headless bool) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	}
	switch b.Engine() {
	case EngineChromium:
		opts.Args = append([]string(nil), chromiumArgs...)
		opts.Channel = playwright.String(b.Channel())
	case EngineFirefox:
		prefs := make(map[string]interface{}, len(firefoxPrefs))
		for k, v := range firefoxPrefs {
			prefs[k] = v
		}
		opts.FirefoxUserPrefs = prefs
	case EngineWebKit:
	}
	return opts
}
