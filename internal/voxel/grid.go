package voxel

import (
	"math"

	"github.com/hearthmod/attract/internal/world"
)

const cellSize = 16

type cellKey struct {
	world  string
	cx, cz int
}

func toCell(v float64) int { return int(math.Floor(v / cellSize)) }

// Grid is a cell-based spatial index of entities per dimension. Nearby
// queries scan the cells overlapping the query box; callers do the
// fine-grained distance check. Game loop only, no locks.
type Grid struct {
	cells map[cellKey]map[world.EntityID]struct{}
}

func NewGrid() *Grid {
	return &Grid{cells: make(map[cellKey]map[world.EntityID]struct{})}
}

func (g *Grid) key(worldName string, pos world.Vec3) cellKey {
	return cellKey{world: worldName, cx: toCell(pos.X), cz: toCell(pos.Z)}
}

func (g *Grid) Add(id world.EntityID, worldName string, pos world.Vec3) {
	k := g.key(worldName, pos)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[world.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

func (g *Grid) Remove(id world.EntityID, worldName string, pos world.Vec3) {
	k := g.key(worldName, pos)
	if cell := g.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates an entity's cell when it changes position or dimension.
func (g *Grid) Move(id world.EntityID, oldWorld string, oldPos world.Vec3, newWorld string, newPos world.Vec3) {
	if g.key(oldWorld, oldPos) == g.key(newWorld, newPos) {
		return
	}
	g.Remove(id, oldWorld, oldPos)
	g.Add(id, newWorld, newPos)
}

// Candidates returns ids in every cell the square of half-width radius
// around center touches.
func (g *Grid) Candidates(worldName string, center world.Vec3, radius float64) []world.EntityID {
	minX, maxX := toCell(center.X-radius), toCell(center.X+radius)
	minZ, maxZ := toCell(center.Z-radius), toCell(center.Z+radius)
	var out []world.EntityID
	for cx := minX; cx <= maxX; cx++ {
		for cz := minZ; cz <= maxZ; cz++ {
			for id := range g.cells[cellKey{world: worldName, cx: cx, cz: cz}] {
				out = append(out, id)
			}
		}
	}
	return out
}
