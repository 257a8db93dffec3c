package entities

import "fmt"

// ConfigurationError indicates malformed or inconsistent configuration:
// proportions that do not sum to one, non-ascending age thresholds, or an
// attribute name collision. It is fatal to the run that triggered it and is
// never silently corrected.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigurationError creates a ConfigurationError from a format string
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// MissingAttributeError indicates a subpopulation lacks an attribute the
// calculation requires. Required attributes are never defaulted.
type MissingAttributeError struct {
	Attribute AttributeName
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing required attribute %q", string(e.Attribute))
}
