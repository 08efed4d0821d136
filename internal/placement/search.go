// Package placement finds safe places to put an entity near a reference
// point. Every strategy has a fixed attempt budget; a search never loops
// unbounded and reports false when all strategies are exhausted.
package placement

import (
	"math"

	"github.com/hearthmod/attract/internal/world"
)

// Params bounds the work of one search.
type Params struct {
	RandomAttempts int // strategy 1: random samples
	RingStep       int // strategy 2: radius increment
	RingAngleStep  int // strategy 2: bearing increment in degrees
	CardinalStep   int // strategy 3: distance increment
	GridCap        int // strategy 4: half-width cap of the grid
	GridSkip       int // strategy 4: skip cells this close to the reference
	ScanAbove      int // ground resolution starts this far above the reference
	ScanDown       int // cells scanned downward first
	ScanUp         int // cells scanned upward as a last resort
}

func DefaultParams() Params {
	return Params{
		RandomAttempts: 24,
		RingStep:       2,
		RingAngleStep:  30,
		CardinalStep:   2,
		GridCap:        8,
		GridSkip:       2,
		ScanAbove:      3,
		ScanDown:       8,
		ScanUp:         6,
	}
}

// Request describes one search.
type Request struct {
	Reference     world.Coord
	Radius        int
	Ground        GroundSet
	MinSeparation float64          // no entity of Kind this close to the spot
	Kind          world.EntityKind // crowding check kind
	MinDistance   int              // horizontal cells to keep clear of Reference
}

// Searcher runs layered position searches against the host world.
type Searcher struct {
	blocks   world.Blocks
	entities world.Entities
	params   Params
}

func NewSearcher(blocks world.Blocks, entities world.Entities, params Params) *Searcher {
	return &Searcher{blocks: blocks, entities: entities, params: params}
}

// Search returns a safe standing cell near req.Reference, or false.
func (s *Searcher) Search(rng world.Rand, req Request) (world.Coord, bool) {
	if req.Radius <= 0 {
		return world.Coord{}, false
	}
	c := &cursor{s: s, req: req, tried: make(map[[2]int]struct{}, 64)}
	for _, strategy := range []func(world.Rand, *cursor) (world.Coord, bool){
		randomSample,
		expandingRings,
		cardinalOffsets,
		gridScan,
	} {
		if pos, ok := strategy(rng, c); ok {
			return pos, true
		}
	}
	return world.Coord{}, false
}

// cursor carries one search's request and the columns already rejected.
type cursor struct {
	s     *Searcher
	req   Request
	tried map[[2]int]struct{}
}

// try resolves ground at the column offset (dx, dz) and checks safety.
func (c *cursor) try(dx, dz int) (world.Coord, bool) {
	if dx*dx+dz*dz > c.req.Radius*c.req.Radius {
		return world.Coord{}, false
	}
	if md := c.req.MinDistance; md > 0 && abs(dx) < md && abs(dz) < md {
		return world.Coord{}, false
	}
	key := [2]int{dx, dz}
	if _, done := c.tried[key]; done {
		return world.Coord{}, false
	}
	c.tried[key] = struct{}{}

	ref := c.req.Reference
	pos, ok := c.s.resolveGround(ref.X+dx, ref.Z+dz, ref.Y)
	if !ok || !c.s.safe(pos, c.req) {
		return world.Coord{}, false
	}
	return pos, true
}

func randomSample(rng world.Rand, c *cursor) (world.Coord, bool) {
	r := float64(c.req.Radius)
	for i := 0; i < c.s.params.RandomAttempts; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := math.Sqrt(rng.Float64()) * r
		dx := int(math.Round(math.Cos(angle) * dist))
		dz := int(math.Round(math.Sin(angle) * dist))
		if pos, ok := c.try(dx, dz); ok {
			return pos, true
		}
	}
	return world.Coord{}, false
}

func expandingRings(_ world.Rand, c *cursor) (world.Coord, bool) {
	step := max(c.s.params.RingStep, 1)
	angleStep := max(c.s.params.RingAngleStep, 1)
	for r := step; r <= c.req.Radius; r += step {
		for deg := 0; deg < 360; deg += angleStep {
			rad := float64(deg) * math.Pi / 180
			dx := int(math.Round(math.Cos(rad) * float64(r)))
			dz := int(math.Round(math.Sin(rad) * float64(r)))
			if pos, ok := c.try(dx, dz); ok {
				return pos, true
			}
		}
	}
	return world.Coord{}, false
}

var compass = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

func cardinalOffsets(_ world.Rand, c *cursor) (world.Coord, bool) {
	step := max(c.s.params.CardinalStep, 1)
	for d := step; d <= c.req.Radius; d += step {
		for _, dir := range compass {
			if pos, ok := c.try(dir[0]*d, dir[1]*d); ok {
				return pos, true
			}
		}
	}
	return world.Coord{}, false
}

func gridScan(_ world.Rand, c *cursor) (world.Coord, bool) {
	half := min(c.req.Radius, c.s.params.GridCap)
	skip := c.s.params.GridSkip
	for dx := -half; dx <= half; dx++ {
		for dz := -half; dz <= half; dz++ {
			if abs(dx) < skip && abs(dz) < skip {
				continue
			}
			if pos, ok := c.try(dx, dz); ok {
				return pos, true
			}
		}
	}
	return world.Coord{}, false
}

// resolveGround finds a standing cell in column (x, z). It scans downward
// from just above refY first so roofs above the reference level are not
// picked, and only then upward.
func (s *Searcher) resolveGround(x, z, refY int) (world.Coord, bool) {
	top := refY + s.params.ScanAbove
	for y := top; y >= top-s.params.ScanDown; y-- {
		c := world.Coord{X: x, Y: y, Z: z}
		if s.isGround(c) {
			return c, true
		}
	}
	for y := top + 1; y <= top+s.params.ScanUp; y++ {
		c := world.Coord{X: x, Y: y, Z: z}
		if s.isGround(c) {
			return c, true
		}
	}
	return world.Coord{}, false
}

// isGround: solid opaque floor, two passable cells of headroom.
func (s *Searcher) isGround(c world.Coord) bool {
	below := s.blocks.Block(c.Below())
	if !below.Solid || !below.Opaque {
		return false
	}
	return s.blocks.Block(c).Passable() && s.blocks.Block(c.Above()).Passable()
}

func (s *Searcher) safe(c world.Coord, req Request) bool {
	if !req.Ground.Contains(s.blocks.Block(c.Below()).Material) {
		return false
	}
	if s.blocks.Block(c).Liquid || s.blocks.Block(c.Above()).Liquid {
		return false
	}
	if req.MinSeparation > 0 && s.entities != nil {
		if len(s.entities.Nearby(req.Kind, c.Center(), req.MinSeparation)) > 0 {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
