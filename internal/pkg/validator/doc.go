// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Business code depends on the Validator interface. The go-playground v10
// implementation adds two rules: "password" (6 to 72 characters) and "otp"
// (exactly the configured number of ASCII digits).
package validator
