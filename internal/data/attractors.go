package data

import (
	"fmt"
	"os"

	"github.com/hearthmod/attract/internal/world"
	"gopkg.in/yaml.v3"
)

// AttractorEntry places one structure in the demo world.
type AttractorEntry struct {
	ID          world.AttractorID `yaml:"id"`
	Kind        world.Kind        `yaml:"kind"`
	X           int               `yaml:"x"`
	Z           int               `yaml:"z"`
	Activated   bool              `yaml:"activated"`
	CapOverride int               `yaml:"cap_override"`
}

type attractorListFile struct {
	Attractors []AttractorEntry `yaml:"attractors"`
}

// LoadAttractorList loads attractors.yaml.
func LoadAttractorList(path string) ([]AttractorEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attractor list: %w", err)
	}
	var f attractorListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse attractor list: %w", err)
	}
	seen := make(map[world.AttractorID]struct{}, len(f.Attractors))
	for _, e := range f.Attractors {
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("attractor %d listed twice", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return f.Attractors, nil
}
