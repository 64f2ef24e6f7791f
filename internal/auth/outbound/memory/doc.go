// Package memory holds process-local implementations of the auth stores.
// They are the default backends and need no external service.
package memory
