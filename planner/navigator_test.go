package planner

import (
	"context"
	"testing"

	"github.com/brensch/snekstar/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toWorld(m game.Mapper, cells ...game.Point) []game.Vec {
	out := make([]game.Vec, len(cells))
	for i, c := range cells {
		out[i] = m.ToWorld(c)
	}
	return out
}

func TestNavigator_DrainsPathBeforeReplanning(t *testing.T) {
	m := game.DefaultMapper
	nav := NewNavigator(New(game.MustBoard(27, 27)), m)
	body := toWorld(m, straightBody()...)
	food := m.ToWorld(game.Point{X: 18, Y: 13})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := nav.NextDirection(ctx, body, food)
		require.NoError(t, err)
		assert.Equal(t, game.Right, d)
		assert.Equal(t, 1, nav.Plans(), "call %d", i)
		assert.Equal(t, 4-i, nav.Buffered(), "call %d", i)
	}

	d, err := nav.NextDirection(ctx, body, food)
	require.NoError(t, err)
	assert.Equal(t, game.Right, d)
	assert.Equal(t, 2, nav.Plans())
	assert.Equal(t, OutcomeFound, nav.LastResult().Outcome)
}

func TestNavigator_Reset(t *testing.T) {
	m := game.DefaultMapper
	nav := NewNavigator(New(game.MustBoard(27, 27)), m)
	body := toWorld(m, straightBody()...)

	_, err := nav.NextDirection(context.Background(), body, m.ToWorld(game.Point{X: 18, Y: 13}))
	require.NoError(t, err)
	require.Equal(t, 4, nav.Buffered())

	nav.Reset()
	assert.Zero(t, nav.Buffered())

	d, err := nav.NextDirection(context.Background(), body, m.ToWorld(game.Point{X: 13, Y: 18}))
	require.NoError(t, err)
	assert.Equal(t, 2, nav.Plans())
	assert.NotEqual(t, game.Left, d)
}

func TestNavigator_NoMove(t *testing.T) {
	nav := NewNavigator(New(game.MustBoard(7, 7)), game.DefaultMapper)
	body := []game.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}

	d, err := nav.NextDirectionGrid(context.Background(), body, game.Point{X: 5, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, game.None, d)
	assert.Zero(t, nav.Buffered())
	assert.Equal(t, OutcomeNoMove, nav.LastResult().Outcome)
}

func TestNavigator_MappingErrors(t *testing.T) {
	m := game.DefaultMapper
	nav := NewNavigator(New(game.MustBoard(27, 27)), m)
	body := toWorld(m, straightBody()...)

	_, err := nav.NextDirection(context.Background(), body, game.Vec{X: 600, Y: 330})
	assert.ErrorIs(t, err, game.ErrOutOfBounds)

	_, err = nav.NextDirection(context.Background(), []game.Vec{{X: 250, Y: 0}}, m.ToWorld(game.Point{X: 3, Y: 3}))
	assert.ErrorIs(t, err, game.ErrOutOfBounds)
	assert.Zero(t, nav.Plans())
}
