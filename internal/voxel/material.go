// Package voxel is a small in-memory block world used by cmd/lifesim and by
// tests. It implements the host-world and owner surfaces the lifecycle
// engine consumes.
package voxel

import "github.com/hearthmod/attract/internal/world"

// Block materials. Natural ground first, then worked blocks.
const (
	Air         = "air"
	Grass       = "grass"
	Dirt        = "dirt"
	Sand        = "sand"
	Gravel      = "gravel"
	Stone       = "stone"
	Water       = "water"
	Lava        = "lava"
	Planks      = "planks"
	Cobblestone = "cobblestone"
	Bricks      = "bricks"
	Glass       = "glass"
	Leaves      = "leaves"
)

var materials = map[string]world.BlockState{
	Air:         {Material: Air},
	Grass:       {Material: Grass, Solid: true, Opaque: true},
	Dirt:        {Material: Dirt, Solid: true, Opaque: true},
	Sand:        {Material: Sand, Solid: true, Opaque: true},
	Gravel:      {Material: Gravel, Solid: true, Opaque: true},
	Stone:       {Material: Stone, Solid: true, Opaque: true},
	Water:       {Material: Water, Liquid: true},
	Lava:        {Material: Lava, Liquid: true},
	Planks:      {Material: Planks, Solid: true, Opaque: true},
	Cobblestone: {Material: Cobblestone, Solid: true, Opaque: true},
	Bricks:      {Material: Bricks, Solid: true, Opaque: true},
	Glass:       {Material: Glass, Solid: true},
	Leaves:      {Material: Leaves, Solid: true},
}

// State returns the block state of a material; unknown names are air.
func State(material string) world.BlockState {
	if s, ok := materials[material]; ok {
		return s
	}
	return materials[Air]
}
