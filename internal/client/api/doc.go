// Package api is the HTTP client for the otpgate auth endpoints.
//
// Failed calls return *Error carrying the server's message, or the
// operation's fallback message when the server sent none.
package api
