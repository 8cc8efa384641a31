// food.go places the single food item on free interior cells.

package game

import (
	"math/rand"
)

// PlaceFood picks a uniformly random Free interior cell of g.
// If rng is nil, we use deterministic pseudo-random logic seeded by salt.
// Returns false when no free cell remains (the board is full).
func PlaceFood(g *Grid, rng *rand.Rand, salt uint64) (Point, bool) {
	freeSpots := make([]Point, 0, (g.Width-2)*(g.Height-2))
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			p := Point{X: x, Y: y}
			if g.At(p) == Free {
				freeSpots = append(freeSpots, p)
			}
		}
	}
	if len(freeSpots) == 0 {
		return Point{}, false
	}

	var idx int
	if rng != nil {
		idx = rng.Intn(len(freeSpots))
	} else {
		idx = int(deterministicU64Fast(uint64(len(freeSpots)), salt) % uint64(len(freeSpots)))
	}
	return freeSpots[idx], true
}

// deterministicU64Fast is a simple deterministic hasher for reproducibility.
func deterministicU64Fast(a, b uint64) uint64 {
	// Variant of splitmix64
	x := a + b
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
