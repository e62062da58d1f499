package cycle

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// policyFile is the YAML shape of a phase policy:
//
//	phases:
//	  - name: Menstrual
//	    through_day: 5
//	  - name: Luteal
type policyFile struct {
	Phases []struct {
		Name       string `yaml:"name"`
		ThroughDay *int   `yaml:"through_day"`
	} `yaml:"phases"`
}

// ParsePhasePolicy decodes and validates a YAML phase policy.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func ParsePhasePolicy(data []byte) (PhasePolicy, error) {
	var doc policyFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return PhasePolicy{}, fmt.Errorf("decode phase policy: %w", err)
	}

	boundaries := make([]PhaseBoundary, 0, len(doc.Phases))
	for _, p := range doc.Phases {
		through := OpenEnded
		if p.ThroughDay != nil {
			through = *p.ThroughDay
			if through < 0 {
				return PhasePolicy{}, fmt.Errorf("phase %q: through_day must not be negative", p.Name)
			}
		}
		boundaries = append(boundaries, PhaseBoundary{
			Phase:      Phase(p.Name),
			ThroughDay: through,
		})
	}

	policy, err := NewPhasePolicy(boundaries)
	if err != nil {
		return PhasePolicy{}, fmt.Errorf("invalid phase policy: %w", err)
	}
	return policy, nil
}

// LoadPhasePolicy reads a policy file. An empty path yields DefaultPolicy.
func LoadPhasePolicy(path string) (PhasePolicy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return PhasePolicy{}, fmt.Errorf("read phase policy: %w", err)
	}

	return ParsePhasePolicy(data)
}
