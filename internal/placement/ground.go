package placement

// GroundSet is the whitelist of natural ground materials an entity may be
// placed on. Worked materials (planks, bricks, cobblestone) never belong here.
type GroundSet map[string]struct{}

func NewGroundSet(materials ...string) GroundSet {
	g := make(GroundSet, len(materials))
	for _, m := range materials {
		g[m] = struct{}{}
	}
	return g
}

func (g GroundSet) Contains(material string) bool {
	_, ok := g[material]
	return ok
}
