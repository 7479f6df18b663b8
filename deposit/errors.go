package deposit

import (
	"fmt"
	"strings"
)

// a single field-level validation failure; Field is the fully-qualified
// dotted path of the failing field ("creators.0.orcid")
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field-level failure found during a
// validation run. The validator never stops at the first error.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationErrors) Error() string {
	messages := make([]string, len(e.Errors))
	for i, fieldErr := range e.Errors {
		messages[i] = fieldErr.Error()
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// Add records a failure for the given field path.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// AddError records a failure carried by an error value.
func (e *ValidationErrors) AddError(field string, err error) {
	e.Add(field, err.Error())
}

// Empty reports whether no failures were recorded.
func (e *ValidationErrors) Empty() bool {
	return len(e.Errors) == 0
}

// OrNil returns the collection as an error, or nil if it is empty.
func (e *ValidationErrors) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// This error type is returned when a value doesn't look like a DOI.
type InvalidDOIError struct {
	Value string
}

func (e InvalidDOIError) Error() string {
	return "The provided DOI is invalid - it should look similar to '10.1234/foo.bar'."
}

// indicates that a DOI uses a prefix issued internally, which cannot be
// supplied by a client
type ManagedPrefixError struct {
	Prefix string
}

func (e ManagedPrefixError) Error() string {
	return fmt.Sprintf("The prefix %s is administrated locally.", e.Prefix)
}

// indicates that a DOI uses a banned prefix
type BannedPrefixError struct {
	Prefix string
}

func (e BannedPrefixError) Error() string {
	return fmt.Sprintf("The prefix %s is invalid.", e.Prefix)
}

// indicates an attempt to change a DOI that is fixed for this record
type RequiredDOIError struct {
	Required string
}

func (e RequiredDOIError) Error() string {
	return "The DOI cannot be changed."
}

// indicates that a DOI is already assigned to a different record
type OwnedDOIError struct {
	DOI string
}

func (e OwnedDOIError) Error() string {
	return "DOI already exists in the repository."
}

// indicates that a license or grant reference pointer doesn't resolve
type UnresolvableReferenceError struct {
	Field string
}

func (e UnresolvableReferenceError) Error() string {
	if e.Field == "grants" {
		return "Invalid grant."
	}
	return "Invalid choice."
}
