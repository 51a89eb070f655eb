package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/llm-d/snc-bounds/internal/logging"
	"github.com/llm-d/snc-bounds/pkg/config"
)

// LoadScenario reads the first scenario of the YAML file at path.
func LoadScenario(path string) (*config.ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	scenarios, err := ParseScenarios(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenarios[0], nil
}

// ParseScenario parses and validates a single YAML scenario document.
func ParseScenario(data []byte) (*config.ScenarioSpec, error) {
	scenarios, err := ParseScenarios(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(scenarios) > 1 {
		return nil, fmt.Errorf("expected one scenario, found %d", len(scenarios))
	}
	return &scenarios[0], nil
}

// ParseScenarios decodes every YAML document of r. Unknown fields are
// rejected and each scenario is validated. Scenarios sharing a name are
// dropped after the first one.
func ParseScenarios(r io.Reader) ([]config.ScenarioSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []config.ScenarioSpec
	seen := make(map[string]int)
	for doc := 0; ; doc++ {
		var spec config.ScenarioSpec
		err := dec.Decode(&spec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("document %d: invalid scenario: %w", doc, err)
		}

		if spec.Name != "" {
			if first, exists := seen[spec.Name]; exists {
				logging.Log().Info("Duplicate scenario name - first document wins",
					"name", spec.Name,
					"winningDocument", first,
					"duplicateDocument", doc)
				continue
			}
			seen[spec.Name] = doc
		}
		out = append(out, spec)
	}

	if len(out) == 0 {
		return nil, errors.New("no scenario found")
	}
	logging.Log().V(logging.DEBUG).Info("Parsed scenarios", "count", len(out))
	return out, nil
}

// MonteCarloHeuristics returns the heuristics of a Monte-Carlo scenario,
// each merged on top of the scenario's optimizer: fields a heuristic leaves
// zero inherit the scenario-wide tuning.
func MonteCarloHeuristics(spec *config.ScenarioSpec) []config.OptimizerSpec {
	if spec.MonteCarlo == nil {
		return nil
	}
	out := make([]config.OptimizerSpec, len(spec.MonteCarlo.Heuristics))
	for i, h := range spec.MonteCarlo.Heuristics {
		base := spec.Optimizer
		// the heuristic name must not leak between entries
		base.Heuristic = ""
		out[i] = config.MergeOptimizerSpec(base, h)
	}
	return out
}
