package blockdrop

import (
	"errors"
	"fmt"
)

// ErrLockConflict is returned when a piece can't be locked into the board
// because one of its cells is taken or outside the board.
var ErrLockConflict = errors.New("lock conflict")

// Board is the playfield. Cells are stored row by row, row 0 first.
// An empty Shape is an empty cell, otherwise it holds the shape that was
// locked there so it can be rendered with its color.
type Board struct {
	width, height int
	cells         []Shape
}

func NewBoard(width, height int) *Board {
	return &Board{
		width:  width,
		height: height,
		cells:  make([]Shape, width*height),
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) inside(col, row int) bool {
	return col >= 0 && col < b.width && row >= 0 && row < b.height
}

// At returns the shape locked at the cell. Out of range cells are empty.
func (b *Board) At(col, row int) Shape {
	if !b.inside(col, row) {
		return ""
	}
	return b.cells[row*b.width+col]
}

// IsOccupied reports whether an in-range cell holds a block. Cells outside the
// board are never occupied: bounds are a collision concern.
func (b *Board) IsOccupied(col, row int) bool {
	return b.At(col, row) != ""
}

// Set places a block, out of range cells are ignored.
func (b *Board) Set(col, row int, s Shape) {
	if b.inside(col, row) {
		b.cells[row*b.width+col] = s
	}
}

// LockPiece transfers the cells of the piece to the board. Nothing is written
// if any of the cells is already taken or out of the board.
func (b *Board) LockPiece(p Piece) error {
	cells := p.Cells()
	for _, c := range cells {
		if !b.inside(c.Col, c.Row) {
			return fmt.Errorf("%w: cell (%d, %d) is outside the board", ErrLockConflict, c.Col, c.Row)
		}
		if b.IsOccupied(c.Col, c.Row) {
			return fmt.Errorf("%w: cell (%d, %d) is already occupied", ErrLockConflict, c.Col, c.Row)
		}
	}
	for _, c := range cells {
		b.cells[c.Row*b.width+c.Col] = p.Shape
	}
	return nil
}

// FindCompleteRows returns the index of every full row, bottom to top.
func (b *Board) FindCompleteRows() []int {
	var rows []int
	for row := b.height - 1; row >= 0; row-- {
		if b.isComplete(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (b *Board) isComplete(row int) bool {
	for _, c := range b.cells[row*b.width : (row+1)*b.width] {
		if c == "" {
			return false
		}
	}
	return true
}

// ClearRows removes the given rows at once. The surviving rows are copied
// bottom up into a new grid so every row falls by the number of cleared rows
// below it, the vacated rows at the top are empty.
func (b *Board) ClearRows(rows []int) {
	cleared := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r >= 0 && r < b.height {
			cleared[r] = true
		}
	}
	if len(cleared) == 0 {
		return
	}

	next := make([]Shape, len(b.cells))
	dst := b.height - 1
	for src := b.height - 1; src >= 0; src-- {
		if cleared[src] {
			continue
		}
		copy(next[dst*b.width:(dst+1)*b.width], b.cells[src*b.width:(src+1)*b.width])
		dst--
	}
	b.cells = next
}

// Rows returns a copy of the board, one slice per row.
func (b *Board) Rows() [][]Shape {
	rows := make([][]Shape, b.height)
	for r := range rows {
		rows[r] = make([]Shape, b.width)
		copy(rows[r], b.cells[r*b.width:(r+1)*b.width])
	}
	return rows
}

// Reset empties the board.
func (b *Board) Reset() {
	clear(b.cells)
}
