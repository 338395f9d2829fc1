package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/truckfactor/internal/runner"
)

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, result *runner.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(NewDocument(result)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// WriteYAML writes the result as YAML.
func WriteYAML(w io.Writer, result *runner.Result) error {
	encoder := yaml.NewEncoder(w)

	if err := encoder.Encode(NewDocument(result)); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("flush yaml report: %w", err)
	}

	return nil
}
