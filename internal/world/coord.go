package world

import (
	"fmt"
	"math"
)

// Coord is an integer block position.
type Coord struct {
	X, Y, Z int
}

func (c Coord) Add(dx, dy, dz int) Coord { return Coord{c.X + dx, c.Y + dy, c.Z + dz} }
func (c Coord) Below() Coord             { return Coord{c.X, c.Y - 1, c.Z} }
func (c Coord) Above() Coord             { return Coord{c.X, c.Y + 1, c.Z} }

// Center returns the point at the middle of the block's floor, where an
// entity standing in this cell would be placed.
func (c Coord) Center() Vec3 {
	return Vec3{X: float64(c.X) + 0.5, Y: float64(c.Y), Z: float64(c.Z) + 0.5}
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z) }

// Vec3 is a continuous entity position.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) DistSq(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return dx*dx + dy*dy + dz*dz
}

func (v Vec3) Dist(o Vec3) float64 { return math.Sqrt(v.DistSq(o)) }

// HorizDist ignores height.
func (v Vec3) HorizDist(o Vec3) float64 { return math.Hypot(v.X-o.X, v.Z-o.Z) }

// Block returns the cell containing v.
func (v Vec3) Block() Coord {
	return Coord{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}

func (v Vec3) String() string { return fmt.Sprintf("(%.1f,%.1f,%.1f)", v.X, v.Y, v.Z) }
