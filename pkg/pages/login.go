package pages

// LoginPage is the storefront sign-in screen.
type LoginPage struct {
	base
}

func NewLoginPage(d Driver) *LoginPage {
	return &LoginPage{base: newBase(d, "LoginPage")}
}

// Open navigates to url.
func (p *LoginPage) Open(url string) error {
	if err := p.d.Navigate(url); err != nil {
		return err
	}
	p.log.Infof("Opened page: %s", url)
	return nil
}

// EnterUsername replaces the username field's content.
func (p *LoginPage) EnterUsername(username string) error {
	if err := p.d.Clear(SelectorUsername); err != nil {
		return err
	}
	if err := p.d.Fill(SelectorUsername, username); err != nil {
		return err
	}
	p.log.Infof("Entered username: %s", username)
	return nil
}

// EnterPassword replaces the password field's content. The password itself
// is never logged.
func (p *LoginPage) EnterPassword(password string) error {
	if err := p.d.Clear(SelectorPassword); err != nil {
		return err
	}
	if err := p.d.Fill(SelectorPassword, password); err != nil {
		return err
	}
	p.log.Infof("Entered password (empty=%v)", password == "")
	return nil
}

func (p *LoginPage) ClickLogin() error {
	if err := p.d.Click(SelectorLoginButton); err != nil {
		return err
	}
	p.log.Infof("Clicked login button")
	return nil
}

// Login fills both fields and submits. Whether the credentials were accepted
// is for the caller to check.
func (p *LoginPage) Login(username, password string) error {
	if err := p.EnterUsername(username); err != nil {
		return err
	}
	if err := p.EnterPassword(password); err != nil {
		return err
	}
	if err := p.ClickLogin(); err != nil {
		return err
	}
	p.log.Infof("Submitted login for user: %s", username)
	return nil
}

// ErrorMessage returns the error banner text. A missing banner is an error.
func (p *LoginPage) ErrorMessage() (string, error) {
	text, err := p.d.Text(SelectorError)
	if err != nil {
		return "", err
	}
	p.log.Infof("Error message: %s", text)
	return text, nil
}

// IsErrorMessageDisplayed checks the banner as the page stands now and does
// not wait for it: a banner that has not rendered yet reads as false. Call
// ErrorMessage first when the banner is expected, since that waits.
func (p *LoginPage) IsErrorMessageDisplayed() (bool, error) {
	shown, err := p.displayed(SelectorError)
	if err != nil {
		return false, err
	}
	p.log.Debugf("Error message displayed: %v", shown)
	return shown, nil
}

// IsLogoDisplayed reports whether the login screen has rendered.
func (p *LoginPage) IsLogoDisplayed() (bool, error) {
	shown, err := p.d.Visible(SelectorLoginLogo)
	if err != nil {
		return false, err
	}
	p.log.Debugf("Login logo displayed: %v", shown)
	return shown, nil
}
