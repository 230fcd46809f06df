// Package pagestest emulates the storefront's login flow on top of a fake
// page, so page objects and suites can be exercised without a browser.
package pagestest

import (
	"strings"
	"sync"
	"time"

	"github.com/entrhq/storefront-e2e/pkg/driver/drivertest"
	"github.com/entrhq/storefront-e2e/pkg/fixtures"
	"github.com/entrhq/storefront-e2e/pkg/pages"
)

// Storefront describes the accounts the fake storefront knows.
type Storefront struct {
	BaseURL  string
	Password string

	// Users can sign in with Password
	Users []string

	// Locked users are refused even with the right password
	Locked []string

	// Delay slows down the login of individual users
	Delay map[string]time.Duration
}

// Default mirrors the public demo storefront.
func Default() *Storefront {
	return &Storefront{
		BaseURL:  "https://www.saucedemo.com/",
		Password: "secret_sauce",
		Users:    []string{"standard_user", "performance_glitch_user", "problem_user"},
		Locked:   []string{"locked_out_user"},
	}
}

// NewPage returns a fake page wired to the storefront's behavior. It has
// the signature drivertest.Launcher.NewPage expects.
func (s *Storefront) NewPage() *drivertest.Page {
	app := &app{store: s, page: drivertest.NewPage()}
	app.page.OnNavigate = app.navigate
	return app.page
}

type app struct {
	store *Storefront
	page  *drivertest.Page

	mu       sync.Mutex
	loggedIn bool
}

func (a *app) inventoryURL() string {
	return strings.TrimSuffix(a.store.BaseURL, "/") + "/" + pages.InventoryPath
}

func (a *app) navigate(url string) {
	a.mu.Lock()
	loggedIn := a.loggedIn
	a.mu.Unlock()

	if url == a.inventoryURL() && loggedIn {
		a.showInventory()
		return
	}
	a.showLogin()
	if url == a.inventoryURL() {
		a.page.SetURL(a.store.BaseURL)
		a.showError("Epic sadface: You can only access '/" + pages.InventoryPath + "' when you are logged in.")
	}
}

func (a *app) showLogin() {
	for _, sel := range []string{pages.SelectorTitle, pages.SelectorMenuButton, pages.SelectorInventoryList, pages.SelectorError} {
		a.page.Remove(sel)
	}
	a.page.Add(pages.SelectorLoginLogo, &drivertest.Element{Text: "Swag Labs", Visible: true})
	a.page.Add(pages.SelectorUsername, &drivertest.Element{Visible: true})
	a.page.Add(pages.SelectorPassword, &drivertest.Element{Visible: true})
	a.page.Add(pages.SelectorLoginButton, &drivertest.Element{Visible: true, OnClick: a.submit})
}

func (a *app) showInventory() {
	for _, sel := range []string{pages.SelectorLoginLogo, pages.SelectorUsername, pages.SelectorPassword, pages.SelectorLoginButton, pages.SelectorError} {
		a.page.Remove(sel)
	}
	a.page.SetURL(a.inventoryURL())
	a.page.Add(pages.SelectorTitle, &drivertest.Element{Text: pages.ProductsTitle, Visible: true})
	a.page.Add(pages.SelectorMenuButton, &drivertest.Element{Visible: true})
	a.page.Add(pages.SelectorInventoryList, &drivertest.Element{Visible: true})
}

func (a *app) showError(msg string) {
	a.page.Add(pages.SelectorError, &drivertest.Element{Text: msg, Visible: true})
}

func (a *app) value(selector string) string {
	el, ok := a.page.Element(selector)
	if !ok {
		return ""
	}
	return el.Value
}

func (a *app) submit() {
	user := a.value(pages.SelectorUsername)
	pass := a.value(pages.SelectorPassword)

	switch {
	case user == "":
		a.showError(fixtures.ErrorEmptyUsername)
	case pass == "":
		a.showError(fixtures.ErrorEmptyPassword)
	case pass == a.store.Password && contains(a.store.Locked, user):
		a.showError(fixtures.ErrorLockedUser)
	case pass == a.store.Password && contains(a.store.Users, user):
		if d := a.store.Delay[user]; d > 0 {
			time.Sleep(d)
		}
		a.mu.Lock()
		a.loggedIn = true
		a.mu.Unlock()
		a.showInventory()
	default:
		a.showError(fixtures.ErrorInvalidCredentials)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
