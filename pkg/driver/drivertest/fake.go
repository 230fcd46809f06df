// Package drivertest provides in-memory stand-ins for Playwright pages so
// sessions can be exercised without a browser.
package drivertest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/entrhq/storefront-e2e/pkg/driver"
	"github.com/playwright-community/playwright-go"
)

// The playwright interfaces are re-declared so embedding them does not
// produce a field named Locator, which would hide the Locator method.
type (
	pageAPI    interface{ playwright.Page }
	locatorAPI interface{ playwright.Locator }
)

// Element is a fake DOM element addressed by selector.
type Element struct {
	Text    string
	Value   string
	Visible bool
	Clicks  int

	// OnClick runs after every click
	OnClick func()
}

// Page is a fake playwright.Page. Only the methods a driver.Session calls
// are implemented; anything else panics on the nil embedded interface.
type Page struct {
	pageAPI

	mu       sync.Mutex
	url      string
	elements map[string]*Element

	// Screen is what window.screen reports as available size
	Screen [2]int

	// OnNavigate runs after every successful Goto
	OnNavigate func(url string)

	ScreenshotData []byte
	ScreenshotErr  error
	ContentHTML    string
	ContentErr     error
	GotoErr        error
	EvaluateErr    error
	ViewportErr    error
	CloseErr       error

	DefaultTimeout    float64
	NavigationTimeout float64
	TimeoutCalls      int
	Viewport          [2]int
	Screenshots       int
	Closed            bool
}

// NewPage returns an empty page with a 2560x1440 screen.
func NewPage() *Page {
	return &Page{
		elements:       make(map[string]*Element),
		Screen:         [2]int{2560, 1440},
		ScreenshotData: []byte("\x89PNG\r\n\x1a\nfake"),
		ContentHTML:    "<html><head><title>Swag Labs</title></head><body></body></html>",
	}
}

// Add registers an element under selector and returns it.
func (p *Page) Add(selector string, el *Element) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = el
	return el
}

// Remove drops the element registered under selector.
func (p *Page) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

// Element returns the element registered under selector.
func (p *Page) Element(selector string) (*Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.elements[selector]
	return el, ok
}

// SetURL moves the page without a navigation.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

func (p *Page) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	if p.GotoErr != nil {
		return nil, p.GotoErr
	}
	p.SetURL(url)
	if p.OnNavigate != nil {
		p.OnNavigate(url)
	}
	return nil, nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator {
	return &Locator{page: p, selector: selector}
}

func (p *Page) SetDefaultTimeout(timeout float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DefaultTimeout = timeout
	p.TimeoutCalls++
}

func (p *Page) SetDefaultNavigationTimeout(timeout float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.NavigationTimeout = timeout
}

func (p *Page) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	if p.EvaluateErr != nil {
		return nil, p.EvaluateErr
	}
	return []interface{}{float64(p.Screen[0]), float64(p.Screen[1])}, nil
}

func (p *Page) SetViewportSize(width, height int) error {
	if p.ViewportErr != nil {
		return p.ViewportErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Viewport = [2]int{width, height}
	return nil
}

func (p *Page) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Screenshots++
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return p.ScreenshotData, nil
}

func (p *Page) Content() (string, error) {
	if p.ContentErr != nil {
		return "", p.ContentErr
	}
	return p.ContentHTML, nil
}

func (p *Page) Close(options ...playwright.PageCloseOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return p.CloseErr
}

// Locator is a fake playwright.Locator bound to a Page. A selector with no
// registered element times out.
type Locator struct {
	locatorAPI

	page     *Page
	selector string
}

func (l *Locator) element() (*Element, error) {
	el, ok := l.page.Element(l.selector)
	if !ok {
		return nil, fmt.Errorf("waiting for locator(%q): %w", l.selector, playwright.ErrTimeout)
	}
	return el, nil
}

func (l *Locator) WaitFor(options ...playwright.LocatorWaitForOptions) error {
	_, err := l.element()
	return err
}

func (l *Locator) IsVisible(options ...playwright.LocatorIsVisibleOptions) (bool, error) {
	el, ok := l.page.Element(l.selector)
	if !ok {
		return false, nil
	}
	return el.Visible, nil
}

func (l *Locator) Count() (int, error) {
	if _, ok := l.page.Element(l.selector); ok {
		return 1, nil
	}
	return 0, nil
}

func (l *Locator) Fill(value string, options ...playwright.LocatorFillOptions) error {
	el, err := l.element()
	if err != nil {
		return err
	}
	l.page.mu.Lock()
	el.Value = value
	l.page.mu.Unlock()
	return nil
}

func (l *Locator) Clear(options ...playwright.LocatorClearOptions) error {
	return l.Fill("")
}

func (l *Locator) Click(options ...playwright.LocatorClickOptions) error {
	el, err := l.element()
	if err != nil {
		return err
	}
	l.page.mu.Lock()
	el.Clicks++
	onClick := el.OnClick
	l.page.mu.Unlock()
	if onClick != nil {
		onClick()
	}
	return nil
}

func (l *Locator) InnerText(options ...playwright.LocatorInnerTextOptions) (string, error) {
	el, err := l.element()
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

// Launcher is a fake driver.Launcher handing out sessions over fake pages.
type Launcher struct {
	// NewPage builds the page for each launch; defaults to NewPage
	NewPage func() *Page

	// LaunchErr fails every launch when set
	LaunchErr error

	mu    sync.Mutex
	pages []*Page
	specs []driver.LaunchSpec
	stops int
}

// ErrLaunch is a convenient LaunchErr value.
var ErrLaunch = errors.New("browser failed to start")

func (l *Launcher) Launch(spec driver.LaunchSpec) (*driver.Session, error) {
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	build := l.NewPage
	if build == nil {
		build = NewPage
	}
	page := build()

	l.mu.Lock()
	l.pages = append(l.pages, page)
	l.specs = append(l.specs, spec)
	l.mu.Unlock()

	return driver.NewSession(nil, nil, page), nil
}

func (l *Launcher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stops++
	return nil
}

// Launches returns how many sessions were launched.
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pages)
}

// Pages returns every launched page in launch order.
func (l *Launcher) Pages() []*Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Page(nil), l.pages...)
}

// Specs returns the launch specs in launch order.
func (l *Launcher) Specs() []driver.LaunchSpec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]driver.LaunchSpec(nil), l.specs...)
}

// Stops returns how many times Stop was called.
func (l *Launcher) Stops() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stops
}
