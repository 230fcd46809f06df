// Package login holds the storefront sign-in cases. They drive a real
// browser and only build with the e2e tag:
//
//	go test -tags e2e ./pkg/suites/login -skip-install
package login
