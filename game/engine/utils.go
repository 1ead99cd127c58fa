package engine

import "fmt"

// Position is an immutable (row, col) board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pos is a shorthand constructor for Position
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// Add returns the position offset by the given deltas
func (p Position) Add(dr, dc int) Position {
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Chebyshev returns max(|drow|, |dcol|) between p and q
func (p Position) Chebyshev(q Position) int {
	dr, dc := p.Deltas(q)
	if dr > dc {
		return dr
	}
	return dc
}

// Deltas returns the absolute row and column distances between p and q
func (p Position) Deltas(q Position) (int, int) {
	return abs(p.Row - q.Row), abs(p.Col - q.Col)
}

// Adjacent reports whether q is one of the 8 neighbours of p
func (p Position) Adjacent(q Position) bool {
	return p.Chebyshev(q) == 1
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// neighbours lists the 8 surrounding offsets in row-major order
var neighbours = []struct{ dr, dc int }{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
