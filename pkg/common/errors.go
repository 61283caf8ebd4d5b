// File: pkg/common/errors.go
package common

import (
	"fmt"
	"strings"
)

// UnsupportedProviderError is returned when a provider name is not in the endpoint table
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %q. Supported providers are: %s", e.Name, strings.Join(SupportedProviders(), ", "))
}

// MissingArgumentError lists the required arguments that were empty
type MissingArgumentError struct {
	Fields []string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required arguments: %s", strings.Join(e.Fields, ", "))
}
