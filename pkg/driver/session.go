package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// Session is a live browser owned by exactly one worker. It is not safe for
// concurrent use; the owning worker is the only caller.
type Session struct {
	ID        string
	Worker    WorkerID
	Backend   Backend
	CreatedAt time.Time
	Maximized bool
	Timeouts  Timeouts

	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// NewSession wraps Playwright resources. browser and context may be nil when
// the page owns its own lifecycle.
func NewSession(browser playwright.Browser, context playwright.BrowserContext, page playwright.Page) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		browser:   browser,
		context:   context,
		page:      page,
	}
}

// Info returns a snapshot of the session metadata.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		Worker:    s.Worker,
		Backend:   s.Backend,
		URL:       s.page.URL(),
		Maximized: s.Maximized,
		CreatedAt: s.CreatedAt,
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

func (s *Session) applyTimeouts(t Timeouts) {
	s.page.SetDefaultTimeout(millis(t.ImplicitWait))
	s.page.SetDefaultNavigationTimeout(millis(t.PageLoad))
	s.Timeouts = t
}

// Maximize sizes the viewport to the available screen area.
func (s *Session) Maximize() error {
	raw, err := s.page.Evaluate(`() => [window.screen.availWidth, window.screen.availHeight]`)
	if err != nil {
		return fmt.Errorf("read screen size: %w", err)
	}
	width, height := defaultViewportWidth, defaultViewportHeight
	if dims, ok := raw.([]interface{}); ok && len(dims) == 2 {
		if w, ok := toInt(dims[0]); ok && w > 0 {
			width = w
		}
		if h, ok := toInt(dims[1]); ok && h > 0 {
			height = h
		}
	}
	if err := s.page.SetViewportSize(width, height); err != nil {
		return fmt.Errorf("resize viewport to %dx%d: %w", width, height, err)
	}
	s.Maximized = true
	return nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// lookupError converts a Playwright timeout into ErrElementNotFound.
func lookupError(action, selector string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s %s: %w: %v", action, selector, ErrElementNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", action, selector, err)
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// URL returns the current page URL.
func (s *Session) URL() string {
	return s.page.URL()
}

// Fill replaces the value of the input matching selector.
func (s *Session) Fill(selector, value string) error {
	return lookupError("fill", selector, s.page.Locator(selector).Fill(value))
}

// Clear empties the input matching selector.
func (s *Session) Clear(selector string) error {
	return lookupError("clear", selector, s.page.Locator(selector).Clear())
}

// Click clicks the element matching selector.
func (s *Session) Click(selector string) error {
	return lookupError("click", selector, s.page.Locator(selector).Click())
}

// Text returns the rendered text of the element matching selector.
func (s *Session) Text(selector string) (string, error) {
	text, err := s.page.Locator(selector).InnerText()
	if err != nil {
		return "", lookupError("read text of", selector, err)
	}
	return text, nil
}

// Visible waits up to the implicit wait for the element to exist and then
// reports whether it is displayed. Absence after the wait is an error.
func (s *Session) Visible(selector string) (bool, error) {
	loc := s.page.Locator(selector)
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateAttached,
	})
	if err != nil {
		return false, lookupError("locate", selector, err)
	}
	visible, err := loc.IsVisible()
	if err != nil {
		return false, lookupError("check visibility of", selector, err)
	}
	return visible, nil
}

// Present reports whether at least one element matches selector right now,
// without waiting.
func (s *Session) Present(selector string) (bool, error) {
	n, err := s.page.Locator(selector).Count()
	if err != nil {
		return false, fmt.Errorf("count %s: %w", selector, err)
	}
	return n > 0, nil
}

// Screenshot captures the full page as PNG.
func (s *Session) Screenshot() ([]byte, error) {
	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return data, nil
}

// HTML returns the serialized DOM of the current page.
func (s *Session) HTML() (string, error) {
	content, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}
	return content, nil
}

// Quit closes page, context and browser. Every step runs even when an
// earlier one fails; the failures are joined.
func (s *Session) Quit() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	return errors.Join(errs...)
}
