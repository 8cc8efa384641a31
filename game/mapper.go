package game

import "fmt"

// Vec is a position in the host's continuous (pixel-like) coordinate space.
type Vec struct {
	X int
	Y int
}

// Mapper converts host positions to grid cells: subtract the origin offset,
// floor-divide by the cell size, add one for the wall border.
type Mapper struct {
	OriginX  int
	OriginY  int
	CellSize int
}

// DefaultMapper matches a 500px play area drawn at (10, 90) with 20px cells,
// which is a 25×25 interior on a 27×27 board.
var DefaultMapper = Mapper{OriginX: 10, OriginY: 90, CellSize: 20}

func (m Mapper) ToGrid(v Vec) Point {
	return Point{
		X: floorDiv(v.X-m.OriginX, m.CellSize) + 1,
		Y: floorDiv(v.Y-m.OriginY, m.CellSize) + 1,
	}
}

// ToWorld returns the top-left host position of a grid cell.
func (m Mapper) ToWorld(p Point) Vec {
	return Vec{
		X: (p.X-1)*m.CellSize + m.OriginX,
		Y: (p.Y-1)*m.CellSize + m.OriginY,
	}
}

// BodyToGrid maps a head-first host body and checks each cell lands inside the
// board interior.
func (m Mapper) BodyToGrid(b *Board, body []Vec) ([]Point, error) {
	if m.CellSize <= 0 {
		return nil, fmt.Errorf("mapper cell size %d must be positive", m.CellSize)
	}
	out := make([]Point, len(body))
	for i, v := range body {
		p := m.ToGrid(v)
		if !b.static.Interior(p) {
			return nil, fmt.Errorf("body[%d] %v -> %v: %w", i, v, p, ErrOutOfBounds)
		}
		out[i] = p
	}
	return out, nil
}

// PointToGrid maps one host position, checking it lands inside the interior.
func (m Mapper) PointToGrid(b *Board, v Vec) (Point, error) {
	if m.CellSize <= 0 {
		return Point{}, fmt.Errorf("mapper cell size %d must be positive", m.CellSize)
	}
	p := m.ToGrid(v)
	if !b.static.Interior(p) {
		return Point{}, fmt.Errorf("position %v -> %v: %w", v, p, ErrOutOfBounds)
	}
	return p, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
