package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/entrhq/storefront-e2e/pkg/logging"
)

// Setting keys recognized by the suite.
const (
	KeyBaseURL              = "base.url"
	KeyBrowser              = "browser"
	KeyStandardUser         = "standard.user"
	KeyStandardPassword     = "standard.password"
	KeyLockedUser           = "locked.user"
	KeyPerformanceUser      = "performance.user"
	KeyImplicitWait         = "implicit.wait"
	KeyPageLoadTimeout      = "page.load.timeout"
	KeyScreenshotOnFailure  = "screenshot.on.failure"
	KeyScreenshotDirectory  = "screenshot.directory"
	KeyHeadless             = "headless"
	KeyResultsDirectory     = "results.directory"
	KeyDOMSnapshotOnFailure = "dom.snapshot.on.failure"
	KeyLogDirectory         = "log.directory"
	KeyLogLevel             = "log.level"
	KeyScenarioFilter       = "scenario.filter"
)

// KnownKeys lists every key that may be supplied through the environment
// even when the file does not mention it.
var KnownKeys = []string{
	KeyBaseURL, KeyBrowser, KeyStandardUser, KeyStandardPassword, KeyLockedUser,
	KeyPerformanceUser, KeyImplicitWait, KeyPageLoadTimeout,
	KeyScreenshotOnFailure, KeyScreenshotDirectory, KeyHeadless, KeyResultsDirectory,
	KeyDOMSnapshotOnFailure, KeyLogDirectory, KeyLogLevel, KeyScenarioFilter,
}

const (
	defaultBrowser          = "chrome"
	defaultScreenshotDir    = "screenshots"
	defaultResultsDirectory = "allure-results"
)

var (
	// ErrConfigNotFound is returned when the configuration source is missing.
	ErrConfigNotFound = errors.New("configuration source not found")

	// ErrInvalidValue is returned when a typed lookup cannot parse a value or the value is missing.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Config is an immutable view of the suite settings. It is safe for
// concurrent use because nothing mutates it after construction.
type Config struct {
	source string
	values map[string]string

	logOnce sync.Once
	log     *logging.Logger
}

// Load reads the configuration at path once. A missing file is fatal.
func Load(path string) (*Config, error) {
	values, err := readSource(path)
	if err != nil {
		return nil, err
	}

	return newConfig(path, values), nil
}

// FromMap builds a Config from literal values.
func FromMap(values map[string]string) *Config {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return newConfig("", copied)
}

func newConfig(source string, values map[string]string) *Config {
	return &Config{
		source: source,
		values: values,
	}
}

// logger is created on first use so that loading the configuration does not
// open the run log before logging.Configure has seen the log settings.
func (c *Config) logger() *logging.Logger {
	c.logOnce.Do(func() {
		c.log = logging.MustLogger("config")
	})
	return c.log
}

// Source returns the path the configuration was loaded from.
func (c *Config) Source() string {
	return c.source
}

// Keys returns the loaded keys in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value for key. An absent key is logged as a warning.
func (c *Config) Get(key string) (string, bool) {
	value, ok := c.values[key]
	if !ok {
		c.logger().Warnf("Setting %s not found in configuration", key)
	}
	return value, ok
}

// GetOr returns the value for key or def when the key is absent.
func (c *Config) GetOr(key, def string) string {
	value, ok := c.values[key]
	if !ok {
		value = def
	}
	c.logger().Debugf("Setting %s = %s", key, value)
	return value
}

// GetInt parses the value for key as an integer. Missing or malformed
// values are fatal configuration errors.
func (c *Config) GetInt(key string) (int, error) {
	value, ok := c.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not set", ErrInvalidValue, key)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		c.logger().Errorf("Malformed integer for %s: %q", key, value)
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, key, value)
	}
	return n, nil
}

// GetBool parses the value for key as a boolean.
func (c *Config) GetBool(key string) (bool, error) {
	value, ok := c.Get(key)
	if !ok {
		return false, fmt.Errorf("%w: %s is not set", ErrInvalidValue, key)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		c.logger().Errorf("Malformed boolean for %s: %q", key, value)
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, key, value)
	}
	return b, nil
}

func (c *Config) boolOr(key string, def bool) (bool, error) {
	if _, ok := c.values[key]; !ok {
		return def, nil
	}
	return c.GetBool(key)
}

func (c *Config) seconds(key string) (time.Duration, error) {
	n, err := c.GetInt(key)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, key)
	}
	return time.Duration(n) * time.Second, nil
}

// BaseURL is the application entry point, always ending in a slash.
func (c *Config) BaseURL() string {
	u, _ := c.Get(KeyBaseURL)
	if u != "" && u[len(u)-1] != '/' {
		u += "/"
	}
	return u
}

// Browser is the configured backend name, "chrome" when unset.
func (c *Config) Browser() string {
	return c.GetOr(KeyBrowser, defaultBrowser)
}

func (c *Config) StandardUser() string {
	v, _ := c.Get(KeyStandardUser)
	return v
}

func (c *Config) StandardPassword() string {
	v, _ := c.Get(KeyStandardPassword)
	return v
}

func (c *Config) LockedUser() string {
	v, _ := c.Get(KeyLockedUser)
	return v
}

func (c *Config) PerformanceUser() string {
	v, _ := c.Get(KeyPerformanceUser)
	return v
}

// ImplicitWait bounds every element lookup.
func (c *Config) ImplicitWait() (time.Duration, error) {
	return c.seconds(KeyImplicitWait)
}

// PageLoadTimeout bounds every navigation.
func (c *Config) PageLoadTimeout() (time.Duration, error) {
	return c.seconds(KeyPageLoadTimeout)
}

func (c *Config) ScreenshotOnFailure() (bool, error) {
	return c.GetBool(KeyScreenshotOnFailure)
}

func (c *Config) ScreenshotDirectory() string {
	return c.anchor(c.GetOr(KeyScreenshotDirectory, defaultScreenshotDir))
}

// Headless defaults to true so CI runs need no display.
func (c *Config) Headless() (bool, error) {
	return c.boolOr(KeyHeadless, true)
}

func (c *Config) ResultsDirectory() string {
	return c.anchor(c.GetOr(KeyResultsDirectory, defaultResultsDirectory))
}

func (c *Config) DOMSnapshotOnFailure() (bool, error) {
	return c.boolOr(KeyDOMSnapshotOnFailure, false)
}

// ScenarioFilter is the scenario selection expression, empty for all.
func (c *Config) ScenarioFilter() string {
	return c.GetOr(KeyScenarioFilter, "")
}

// LogDirectory is empty when unset; the logging package then picks its default.
// It is read before logging is configured and therefore logs nothing.
func (c *Config) LogDirectory() string {
	return c.anchor(c.values[KeyLogDirectory])
}

// anchor resolves a relative directory against the directory holding the
// configuration file, so output lands in the same place whichever package
// the tests run from. Configs built with FromMap leave paths untouched.
func (c *Config) anchor(dir string) string {
	if dir == "" || c.source == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(filepath.Dir(c.source), dir)
}

func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.values[KeyLogLevel])
}

// Validate checks every setting the suite cannot start without, reporting
// all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if u, ok := c.values[KeyBaseURL]; !ok || u == "" {
		errs = append(errs, fmt.Errorf("%w: %s is required", ErrInvalidValue, KeyBaseURL))
	}
	if _, err := c.ImplicitWait(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.PageLoadTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ScreenshotOnFailure(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Headless(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.DOMSnapshotOnFailure(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	c.logger().Infof("Loaded %d settings from %s", len(c.values), c.source)
	return nil
}
