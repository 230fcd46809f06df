// Package pages models the storefront screens as page objects.
//
// A page object is bound to one Driver when it is built and keeps nothing but
// its selectors; every selector is resolved at the moment an interaction
// runs, so a page object never holds a stale element.
package pages

import "github.com/entrhq/storefront-e2e/pkg/logging"

// Driver is the browser surface page objects need. *driver.Session
// implements it.
type Driver interface {
	Navigate(url string) error
	URL() string
	Fill(selector, value string) error
	Clear(selector string) error
	Click(selector string) error
	Text(selector string) (string, error)
	Visible(selector string) (bool, error)
	Present(selector string) (bool, error)
}

// Selectors of the storefront screens.
const (
	SelectorUsername      = "#user-name"
	SelectorPassword      = "#password"
	SelectorLoginButton   = "#login-button"
	SelectorError         = "[data-test='error']"
	SelectorLoginLogo     = ".login_logo"
	SelectorTitle         = ".title"
	SelectorMenuButton    = "#react-burger-menu-btn"
	SelectorInventoryList = "#inventory_container"
)

// base is embedded by every page object.
type base struct {
	d   Driver
	log *logging.Logger
}

func newBase(d Driver, name string) base {
	log := logging.MustLogger("pages")
	log.Debugf("Initialized page: %s", name)
	return base{d: d, log: log}
}

// displayed reports visibility only when the element is already present, so
// asking about an element that is not on the page does not wait.
func (b base) displayed(selector string) (bool, error) {
	present, err := b.d.Present(selector)
	if err != nil || !present {
		return false, err
	}
	return b.d.Visible(selector)
}
