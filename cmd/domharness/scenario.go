package main

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Scenario is one {html, steps} fixture loaded from a YAML scenario file.
// It mirrors the shape a test author would otherwise express as calls
// against the harness façade (from_html, click, assert_text, ...), but
// data-driven so the demo runner can replay a batch of them without
// recompiling anything.
type Scenario struct {
	Name  string `yaml:"name"`
	HTML  string `yaml:"html"`
	Steps []Step `yaml:"steps"`
}

// Step is one imperative action against a running Harness. Op selects
// which of the host operations to invoke; the remaining fields are the
// arguments that operation needs, left zero when unused.
type Step struct {
	Op          string `yaml:"op"`
	Selector    string `yaml:"selector,omitempty"`
	Expected    string `yaml:"expected,omitempty"`
	Ms          int64  `yaml:"ms,omitempty"`
	ExpectError bool   `yaml:"expect_error,omitempty"`
}

// ScenarioFile is the top-level document shape: a bare list of scenarios.
type ScenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

func loadScenarios(data []byte) ([]Scenario, error) {
	var file ScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file declares no scenarios")
	}
	for i, sc := range file.Scenarios {
		if sc.HTML == "" {
			return nil, fmt.Errorf("scenario %d (%q): missing html", i, sc.Name)
		}
	}
	return file.Scenarios, nil
}
