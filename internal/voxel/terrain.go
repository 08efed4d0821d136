package voxel

import (
	"github.com/hearthmod/attract/internal/config"
	"github.com/hearthmod/attract/internal/world"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// World is one dimension: a column heightmap plus explicit block overrides.
// Column (x, z) has stone below height-3, dirt up to height-2, its surface
// material at height-1, water up to the sea level, and air above.
type World struct {
	Name     string
	size     int // columns span [0, size) on both axes
	height   []int
	surface  []string
	seaLevel int
	edits    map[world.Coord]string
}

// NewFlat builds a size×size world whose walkable surface is at groundY.
func NewFlat(name string, size, groundY int, surface string) *World {
	w := newWorld(name, size, groundY-100)
	for i := range w.height {
		w.height[i] = groundY
		w.surface[i] = surface
	}
	return w
}

// Generate builds a noise heightmap world. Columns at or below sea level
// get sand and are flooded.
func Generate(name string, seed int64, cfg config.TerrainConfig) *World {
	w := newWorld(name, cfg.Size, cfg.SeaLevel)
	noise := opensimplex.New(seed)
	for x := 0; x < cfg.Size; x++ {
		for z := 0; z < cfg.Size; z++ {
			n := octaveNoise(noise, float64(x), float64(z), 3, cfg.Frequency, 0.5)
			h := cfg.BaseHeight + int(n*cfg.Amplitude)
			i := w.index(x, z)
			w.height[i] = h
			switch {
			case h <= cfg.SeaLevel:
				w.surface[i] = Sand
			case n > 0.7:
				w.surface[i] = Gravel
			default:
				w.surface[i] = Grass
			}
		}
	}
	return w
}

func newWorld(name string, size, seaLevel int) *World {
	return &World{
		Name:     name,
		size:     size,
		height:   make([]int, size*size),
		surface:  make([]string, size*size),
		seaLevel: seaLevel,
		edits:    make(map[world.Coord]string),
	}
}

// octaveNoise layers frequencies for natural-looking terrain; result in [-1,1].
func octaveNoise(noise opensimplex.Noise, x, z float64, octaves int, frequency, persistence float64) float64 {
	total, amplitude, maxVal := 0.0, 1.0, 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, z*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

func (w *World) index(x, z int) int { return x*w.size + z }

func (w *World) inBounds(x, z int) bool {
	return x >= 0 && z >= 0 && x < w.size && z < w.size
}

// Size is the edge length in columns.
func (w *World) Size() int { return w.size }

// Material returns the material at c.
func (w *World) Material(c world.Coord) string {
	if m, ok := w.edits[c]; ok {
		return m
	}
	if !w.inBounds(c.X, c.Z) {
		return Air
	}
	i := w.index(c.X, c.Z)
	h := w.height[i]
	switch {
	case c.Y < h-3:
		return Stone
	case c.Y < h-1:
		return Dirt
	case c.Y == h-1:
		return w.surface[i]
	case c.Y < w.seaLevel:
		return Water
	default:
		return Air
	}
}

func (w *World) Block(c world.Coord) world.BlockState { return State(w.Material(c)) }

// SetBlock overrides one cell.
func (w *World) SetBlock(c world.Coord, material string) { w.edits[c] = material }

// Fill sets every cell of the box spanned by a and b, inclusive.
func (w *World) Fill(a, b world.Coord, material string) {
	for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
		for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
			for z := min(a.Z, b.Z); z <= max(a.Z, b.Z); z++ {
				w.edits[world.Coord{X: x, Y: y, Z: z}] = material
			}
		}
	}
}

// SurfaceY returns the first standing cell above column (x, z), ignoring
// edits, or false outside the world or under water.
func (w *World) SurfaceY(x, z int) (int, bool) {
	if !w.inBounds(x, z) {
		return 0, false
	}
	h := w.height[w.index(x, z)]
	if h < w.seaLevel {
		return 0, false
	}
	return h, true
}
