package pages

import "strings"

// ProductsTitle is the heading of the inventory screen.
const ProductsTitle = "Products"

// InventoryPath is the inventory screen relative to the base URL.
const InventoryPath = "inventory.html"

// ProductsPage is the inventory screen shown after a successful login.
type ProductsPage struct {
	base
}

func NewProductsPage(d Driver) *ProductsPage {
	return &ProductsPage{base: newBase(d, "ProductsPage")}
}

// Open navigates straight to the inventory screen under baseURL. The
// storefront sends visitors without a session back to the login screen.
func (p *ProductsPage) Open(baseURL string) error {
	url := strings.TrimSuffix(baseURL, "/") + "/" + InventoryPath
	if err := p.d.Navigate(url); err != nil {
		return err
	}
	p.log.Infof("Opened page: %s", url)
	return nil
}

func (p *ProductsPage) Title() (string, error) {
	title, err := p.d.Text(SelectorTitle)
	if err != nil {
		return "", err
	}
	p.log.Infof("Page title: %s", title)
	return title, nil
}

// IsDisplayed requires the inventory and the title to be visible and the
// title to read "Products".
func (p *ProductsPage) IsDisplayed() (bool, error) {
	displayed, err := p.isDisplayed()
	if err != nil {
		return false, err
	}
	p.log.Debugf("Products page displayed: %v", displayed)
	return displayed, nil
}

func (p *ProductsPage) isDisplayed() (bool, error) {
	inventory, err := p.d.Visible(SelectorInventoryList)
	if err != nil || !inventory {
		return false, err
	}
	title, err := p.d.Visible(SelectorTitle)
	if err != nil || !title {
		return false, err
	}
	text, err := p.d.Text(SelectorTitle)
	if err != nil {
		return false, err
	}
	return text == ProductsTitle, nil
}

func (p *ProductsPage) IsMenuDisplayed() (bool, error) {
	shown, err := p.d.Visible(SelectorMenuButton)
	if err != nil {
		return false, err
	}
	p.log.Debugf("Menu displayed: %v", shown)
	return shown, nil
}
