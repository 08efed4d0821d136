package world

import "fmt"

// Factory builds baseline entities for the spawn loop.
type Factory struct {
	host Entities
}

func NewFactory(host Entities) *Factory {
	return &Factory{host: host}
}

// SpawnSpec carries the per-kind parts of the template.
type SpawnSpec struct {
	Kind       EntityKind
	Owner      AttractorID
	Variants   int
	Attributes map[string]float64
}

// Create places an adult, default-facing entity standing in pos. A rejected
// placement is returned as an error; the caller skips this cycle.
func (f *Factory) Create(spec SpawnSpec, pos Coord, rng Rand) (EntityID, error) {
	variant := 0
	if spec.Variants > 1 {
		variant = rng.Intn(spec.Variants)
	}
	attrs := make(map[string]float64, len(spec.Attributes))
	for k, v := range spec.Attributes {
		attrs[k] = v
	}
	id, err := f.host.Spawn(Template{
		Kind:       spec.Kind,
		Pos:        pos.Center(),
		Adult:      true,
		Variant:    variant,
		Attributes: attrs,
		Owner:      spec.Owner,
	})
	if err != nil {
		return EntityID{}, fmt.Errorf("create %s at %s: %w", spec.Kind, pos, err)
	}
	return id, nil
}

// Discard removes an entity Create made that the caller could not keep.
func (f *Factory) Discard(id EntityID) bool {
	return f.host.Destroy(id)
}
