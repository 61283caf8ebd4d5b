// File: pkg/formatter/config_formatter.go
package formatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FormatYAML renders any config value the way it is stored on disk
func FormatYAML(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("error rendering yaml: %w", err)
	}
	return string(out), nil
}
