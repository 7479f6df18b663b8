package licenses

import (
	"fmt"
)

// This error type is returned when a bundled license entry is malformed.
type InvalidLicenseError struct {
	Message string
}

func (e InvalidLicenseError) Error() string {
	return fmt.Sprintf("Invalid license: %s", e.Message)
}
