package validator

// Validator validates a struct and returns a field error on failure.
type Validator interface {
	Validate(data any) error
}
