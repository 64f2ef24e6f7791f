// Package clock provides a tiny time abstraction.
//
// Challenge expiry and token lifetimes read time through Clocker so tests can
// move a Manual clock past a deadline instead of sleeping.
package clock
