package engine

import (
	"fmt"
	"strings"
)

// Board is a fixed-size square grid of cell tags
type Board struct {
	size int
	grid [][]CellTag
}

// NewBoard creates an empty board of the given side length
func NewBoard(size int) (*Board, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: board size must be > 0, got %d", ErrInvalidConfig, size)
	}
	grid := make([][]CellTag, size)
	for r := range grid {
		grid[r] = make([]CellTag, size)
		for c := range grid[r] {
			grid[r][c] = Empty
		}
	}
	return &Board{size: size, grid: grid}, nil
}

// Size returns the side length of the board
func (b *Board) Size() int {
	return b.size
}

// InBounds reports whether p lies inside [0,size)²
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.size && p.Col >= 0 && p.Col < b.size
}

// Get returns the content of the cell at p
func (b *Board) Get(p Position) (CellTag, error) {
	if err := b.requireInBounds(p); err != nil {
		return "", err
	}
	return b.grid[p.Row][p.Col], nil
}

// Set replaces the content of the cell at p
func (b *Board) Set(p Position, tag CellTag) error {
	if err := b.requireInBounds(p); err != nil {
		return err
	}
	b.grid[p.Row][p.Col] = tag
	return nil
}

// IsEmpty reports whether the cell at p holds nothing
func (b *Board) IsEmpty(p Position) (bool, error) {
	tag, err := b.Get(p)
	if err != nil {
		return false, err
	}
	return tag == Empty, nil
}

// EmptyCells lists every empty cell in row-major order
func (b *Board) EmptyCells() []Position {
	cells := make([]Position, 0, b.size*b.size)
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if b.grid[r][c] == Empty {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	return cells
}

// Rows renders the board one string per row using CellTag.Symbol
func (b *Board) Rows() []string {
	rows := make([]string, 0, b.size)
	for r := 0; r < b.size; r++ {
		var sb strings.Builder
		for c := 0; c < b.size; c++ {
			sb.WriteByte(b.grid[r][c].Symbol())
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// at reads a cell the caller already bounds-checked
func (b *Board) at(p Position) CellTag {
	return b.grid[p.Row][p.Col]
}

// put writes a cell the caller already bounds-checked
func (b *Board) put(p Position, tag CellTag) {
	b.grid[p.Row][p.Col] = tag
}

func (b *Board) clone() *Board {
	grid := make([][]CellTag, b.size)
	for r := range b.grid {
		grid[r] = append([]CellTag(nil), b.grid[r]...)
	}
	return &Board{size: b.size, grid: grid}
}

func (b *Board) requireInBounds(p Position) error {
	if !b.InBounds(p) {
		return fmt.Errorf("%w: %s size=%d", ErrOutOfRange, p, b.size)
	}
	return nil
}
