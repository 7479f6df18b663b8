package identifiers

import (
	"fmt"
)

// This error type is returned when a value matches no known identifier scheme.
type InvalidIdentifierError struct {
	Value string
}

func (e InvalidIdentifierError) Error() string {
	return "Not a valid persistent identifier."
}

// indicates that a value declared a scheme that doesn't match its lexical form
type SchemeMismatchError struct {
	Value, Scheme string
}

func (e SchemeMismatchError) Error() string {
	return fmt.Sprintf("Not a valid %s identifier.", e.Scheme)
}
