package config

// Section is a typed, self-validating group of settings stored under one
// top-level key.
type Section interface {
	// ID returns the top-level key of the section
	ID() string

	// Title returns a human-readable name
	Title() string

	// Description explains what the section configures
	Description() string

	// Data returns the current values keyed by field name
	Data() map[string]interface{}

	// SetData updates the fields present in data
	SetData(data map[string]interface{}) error

	// Validate checks the current values
	Validate() error

	// Reset restores the defaults
	Reset()
}
