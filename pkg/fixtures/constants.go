// Package fixtures holds the test data of the login suites.
package fixtures

import "time"

// Credentials that no storefront account uses.
const (
	InvalidUser     = "invalid_user"
	InvalidPassword = "invalid_password"
)

// Error banner texts shown by the storefront.
const (
	ErrorEmptyUsername      = "Epic sadface: Username is required"
	ErrorEmptyPassword      = "Epic sadface: Password is required"
	ErrorInvalidCredentials = "Epic sadface: Username and password do not match any user in this service"
	ErrorLockedUser         = "Epic sadface: Sorry, this user has been locked out."
)

// PerformanceThreshold is the longest an accepted login may take, even for
// the deliberately slow account.
const PerformanceThreshold = 10 * time.Second
