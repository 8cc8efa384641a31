package planner

import (
	"math/rand"
	"testing"

	"github.com/brensch/snekstar/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridWith(t *testing.T, size int, blocked ...game.Point) *game.Grid {
	t.Helper()
	b := game.MustBoard(size, size)
	for _, p := range blocked {
		require.NoError(t, b.AddObstacle(p))
	}
	return b.Fresh()
}

func TestHazardPenalty(t *testing.T) {
	tests := []struct {
		name    string
		blocked []game.Point
		at      game.Point
		dir     game.Direction
		want    int
	}{
		{"open horizontal", nil, game.Point{X: 13, Y: 13}, game.Right, 3},
		{"open vertical", nil, game.Point{X: 13, Y: 13}, game.Up, 3},
		{"horizontal pinch", []game.Point{{X: 13, Y: 12}, {X: 13, Y: 14}}, game.Point{X: 13, Y: 13}, game.Left, 10},
		{"vertical pinch", []game.Point{{X: 12, Y: 13}, {X: 14, Y: 13}}, game.Point{X: 13, Y: 13}, game.Down, 10},
		{"horizontal single side", []game.Point{{X: 13, Y: 12}}, game.Point{X: 13, Y: 13}, game.Right, 0},
		{"vertical single side", []game.Point{{X: 14, Y: 13}}, game.Point{X: 13, Y: 13}, game.Up, 0},
		{"pinch across the other axis is ignored", []game.Point{{X: 12, Y: 13}, {X: 14, Y: 13}}, game.Point{X: 13, Y: 13}, game.Right, 3},
		{"last column, above blocked", []game.Point{{X: 25, Y: 9}}, game.Point{X: 25, Y: 10}, game.Right, 10},
		{"last column, below blocked", []game.Point{{X: 25, Y: 11}}, game.Point{X: 25, Y: 10}, game.Right, 0},
		{"first column, below blocked", []game.Point{{X: 1, Y: 11}}, game.Point{X: 1, Y: 10}, game.Left, 10},
		{"first column, above blocked", []game.Point{{X: 1, Y: 9}}, game.Point{X: 1, Y: 10}, game.Left, 0},
		{"first column, open", nil, game.Point{X: 1, Y: 10}, game.Left, 3},
		{"last row, left blocked", []game.Point{{X: 9, Y: 25}}, game.Point{X: 10, Y: 25}, game.Down, 10},
		{"first row, right blocked", []game.Point{{X: 11, Y: 1}}, game.Point{X: 10, Y: 1}, game.Up, 10},
		{"vertical along side wall", nil, game.Point{X: 1, Y: 13}, game.Down, 0},
		{"horizontal along top wall", nil, game.Point{X: 13, Y: 1}, game.Right, 0},
		{"top-left corner, vertical", nil, game.Point{X: 1, Y: 1}, game.Up, 0},
		{"top-right corner, horizontal", nil, game.Point{X: 25, Y: 1}, game.Right, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := gridWith(t, 27, tc.blocked...)
			assert.Equal(t, tc.want, DefaultHazard.Penalty(g, tc.at, tc.dir), "\n%s", g)
		})
	}
}

func TestHazardPenalty_GoalNeighbourIsNotOccupied(t *testing.T) {
	b := game.MustBoard(27, 27)
	g, err := b.Occupancy([]game.Point{{X: 13, Y: 12}}, game.Point{X: 13, Y: 14})
	require.NoError(t, err)
	// Above is body, below is the goal: one side only.
	assert.Equal(t, 0, DefaultHazard.Penalty(g, game.Point{X: 13, Y: 13}, game.Right))
}

func TestHazardPenalty_CustomConfig(t *testing.T) {
	cfg := HazardConfig{Pinch: 7, Wall: 5, Baseline: 1, EdgeInset: 2}

	g := gridWith(t, 27, game.Point{X: 24, Y: 9})
	assert.Equal(t, 5, cfg.Penalty(g, game.Point{X: 24, Y: 10}, game.Right))
	assert.Equal(t, 1, cfg.Penalty(g, game.Point{X: 12, Y: 12}, game.Right))

	g = gridWith(t, 27, game.Point{X: 12, Y: 11}, game.Point{X: 12, Y: 13})
	assert.Equal(t, 7, cfg.Penalty(g, game.Point{X: 12, Y: 12}, game.Left))
}

func transposeDir(d game.Direction) game.Direction {
	switch d {
	case game.Up:
		return game.Left
	case game.Down:
		return game.Right
	case game.Left:
		return game.Up
	case game.Right:
		return game.Down
	}
	return game.None
}

func TestHazardPenalty_SymmetricUnderTranspose(t *testing.T) {
	const size = 15
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 20; trial++ {
		b := game.MustBoard(size, size)
		bt := game.MustBoard(size, size)
		for i := 0; i < 40; i++ {
			p := game.Point{X: 1 + rng.Intn(size-2), Y: 1 + rng.Intn(size-2)}
			require.NoError(t, b.AddObstacle(p))
			require.NoError(t, bt.AddObstacle(game.Point{X: p.Y, Y: p.X}))
		}
		g, gt := b.Fresh(), bt.Fresh()

		for y := 1; y < size-1; y++ {
			for x := 1; x < size-1; x++ {
				for _, d := range game.Directions {
					p := game.Point{X: x, Y: y}
					pt := game.Point{X: y, Y: x}
					require.Equal(t,
						DefaultHazard.Penalty(g, p, d),
						DefaultHazard.Penalty(gt, pt, transposeDir(d)),
						"trial %d at %v moving %s\n%s", trial, p, d, g)
				}
			}
		}
	}
}
