package match

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteReport saves a YAML summary of a run next to its output.
func WriteReport(path string, result *Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
