// Package uid generates identifiers: numeric ids for persisted records and
// string ids for tokens and request correlation.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
