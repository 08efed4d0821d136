package data

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/hearthmod/attract/internal/world"
	"gopkg.in/yaml.v3"
)

// KindProfile configures the lifecycle engine for one entity kind. The same
// spawn/track/despawn loop runs for every profile; only these numbers differ.
type KindProfile struct {
	Name           string           `yaml:"name"`
	EntityKind     world.EntityKind `yaml:"entity_kind"`
	AttractorKinds []world.Kind     `yaml:"attractor_kinds"`
	Spawn          SpawnProfile     `yaml:"spawn"`
	Steering       SteerProfile     `yaml:"steering"`
}

// SpawnProfile drives spawn gating, placement, and tracked lifetime.
type SpawnProfile struct {
	Enabled         bool               `yaml:"enabled"`
	SpawnChance     float64            `yaml:"spawn_chance"`   // per check, 0.0-1.0
	CooldownTicks   int64              `yaml:"cooldown_ticks"` // between successful spawns
	SpawnCap        int                `yaml:"spawn_cap"`      // concurrently tracked per attractor
	LifetimeTicks   int64              `yaml:"lifetime_ticks"` // tracked time before disposition
	StayChance      float64            `yaml:"stay_chance"`    // 0.5 = coin flip
	SearchRadius    int                `yaml:"search_radius"`
	MinSeparation   float64            `yaml:"min_separation"`
	GroundWhitelist []string           `yaml:"ground_whitelist"`
	Variants        int                `yaml:"variants"`
	Attributes      map[string]float64 `yaml:"attributes"`
}

// StandMinDistance keeps steering goals out of the structure's footprint, in
// cells along either horizontal axis.
const StandMinDistance = 2

// SteerProfile drives attraction of entities the engine did not create.
type SteerProfile struct {
	Enabled          bool             `yaml:"enabled"`
	EntityKind       world.EntityKind `yaml:"entity_kind"` // defaults to the profile's kind
	AttractionRadius float64          `yaml:"attraction_radius"`
	ArriveDistance   float64          `yaml:"arrive_distance"`
	StandRadius      int              `yaml:"stand_radius"`
}

type profileFile struct {
	Profiles []KindProfile `yaml:"profiles"`
}

// ProfileTable indexes profiles by name and by attractor kind.
type ProfileTable struct {
	byName map[string]*KindProfile
	byKind map[world.Kind]*KindProfile
	names  []string
}

// LoadProfiles loads kind_profiles.yaml.
func LoadProfiles(path string) (*ProfileTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kind profiles %s: %w", path, err)
	}
	var f profileFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse kind profiles: %w", err)
	}
	return NewProfileTable(f.Profiles)
}

// NewProfileTable validates profiles and fills defaults.
func NewProfileTable(profiles []KindProfile) (*ProfileTable, error) {
	t := &ProfileTable{
		byName: make(map[string]*KindProfile, len(profiles)),
		byKind: make(map[world.Kind]*KindProfile),
	}
	for i := range profiles {
		p := profiles[i]
		if err := p.normalize(); err != nil {
			return nil, err
		}
		if _, dup := t.byName[p.Name]; dup {
			return nil, fmt.Errorf("profile %q: duplicate name", p.Name)
		}
		t.byName[p.Name] = &p
		t.names = append(t.names, p.Name)
		for _, k := range p.AttractorKinds {
			if other, dup := t.byKind[k]; dup {
				return nil, fmt.Errorf("attractor kind %q claimed by %q and %q", k, other.Name, p.Name)
			}
			t.byKind[k] = &p
		}
	}
	sort.Strings(t.names)
	return t, nil
}

func (p *KindProfile) normalize() error {
	if p.Name == "" {
		return fmt.Errorf("profile without name")
	}
	if p.EntityKind == "" {
		p.EntityKind = world.EntityKind(p.Name)
	}
	if len(p.AttractorKinds) == 0 {
		return fmt.Errorf("profile %q: no attractor kinds", p.Name)
	}
	s := &p.Spawn
	if s.SpawnChance < 0 || s.SpawnChance > 1 {
		return fmt.Errorf("profile %q: spawn_chance %v outside [0,1]", p.Name, s.SpawnChance)
	}
	if s.StayChance < 0 || s.StayChance > 1 {
		return fmt.Errorf("profile %q: stay_chance %v outside [0,1]", p.Name, s.StayChance)
	}
	if s.SpawnCap < 0 || s.CooldownTicks < 0 {
		return fmt.Errorf("profile %q: negative cap or cooldown", p.Name)
	}
	if s.Enabled {
		if s.LifetimeTicks <= 0 {
			return fmt.Errorf("profile %q: lifetime_ticks must be positive", p.Name)
		}
		if len(s.GroundWhitelist) == 0 {
			return fmt.Errorf("profile %q: empty ground_whitelist", p.Name)
		}
		if s.SearchRadius <= 0 {
			s.SearchRadius = 16
		}
	}
	st := &p.Steering
	if st.EntityKind == "" {
		st.EntityKind = p.EntityKind
	}
	if st.Enabled {
		if st.AttractionRadius <= 0 {
			return fmt.Errorf("profile %q: attraction_radius must be positive", p.Name)
		}
		if st.ArriveDistance <= 0 {
			st.ArriveDistance = 3
		}
		if st.StandRadius <= 0 {
			st.StandRadius = int(st.ArriveDistance)
		}
		// Stand spots must count as arrival or the entity never gets there.
		if float64(st.StandRadius) > st.ArriveDistance {
			return fmt.Errorf("profile %q: stand_radius %d exceeds arrive_distance %v",
				p.Name, st.StandRadius, st.ArriveDistance)
		}
		if st.ArriveDistance < StandMinDistance*math.Sqrt2 {
			return fmt.Errorf("profile %q: arrive_distance %v cannot reach a spot %d cells clear of the structure",
				p.Name, st.ArriveDistance, StandMinDistance)
		}
	}
	return nil
}

// ForAttractorKind returns the profile handling an attractor kind, or nil.
func (t *ProfileTable) ForAttractorKind(k world.Kind) *KindProfile {
	return t.byKind[k]
}

// Get returns a profile by name, or nil.
func (t *ProfileTable) Get(name string) *KindProfile {
	return t.byName[name]
}

// All returns profiles in name order.
func (t *ProfileTable) All() []*KindProfile {
	out := make([]*KindProfile, 0, len(t.names))
	for _, n := range t.names {
		out = append(out, t.byName[n])
	}
	return out
}

// Count returns the number of loaded profiles.
func (t *ProfileTable) Count() int {
	return len(t.byName)
}
