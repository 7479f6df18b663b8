package pidstore

import (
	"fmt"
)

// This error type is returned when a PID is sought but not found. Callers
// generally treat it as "does not exist yet" rather than as a failure.
type NotFoundError struct {
	Type, Value string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("No '%s' identifier found for '%s'", e.Type, e.Value)
}

// indicates that a PID is already minted and an attempt has been made to
// mint it again
type AlreadyMintedError struct {
	Type, Value string
}

func (e AlreadyMintedError) Error() string {
	return fmt.Sprintf("The '%s' identifier '%s' is already minted", e.Type, e.Value)
}

// indicates that the store itself could not be opened or updated
type StoreError struct {
	Message string
}

func (e StoreError) Error() string {
	return fmt.Sprintf("PID store error: %s", e.Message)
}

// indicates that a reference pointer could not be dereferenced
type ReferenceResolutionError struct {
	Ref, Message string
}

func (e ReferenceResolutionError) Error() string {
	return fmt.Sprintf("Unable to resolve reference '%s': %s", e.Ref, e.Message)
}
