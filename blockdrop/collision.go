package blockdrop

// CanPlace reports whether the piece, moved by dCol and dRow and rotated
// dRotation steps clockwise, fits on the board. Cells above the board
// (negative rows) are allowed so pieces can spawn partly hidden.
//
//	.	0 1 2 3 4 5 6 7 8 9		.	0 1 2
//	-1	. . . O . . . . . .		0	O . .
//	0	. . . O O O . . . .		1	O O O
//	1	. . . . . X . . . .		2	. . .
func CanPlace(p Piece, b *Board, dCol, dRow, dRotation int) bool {
	for _, c := range p.moved(dCol, dRow, dRotation).Cells() {
		if c.Col < 0 || c.Col >= b.Width() || c.Row >= b.Height() {
			return false
		}
		if c.Row >= 0 && b.IsOccupied(c.Col, c.Row) {
			return false
		}
	}
	return true
}

func CanMoveLeft(p Piece, b *Board) bool  { return CanPlace(p, b, -1, 0, 0) }
func CanMoveRight(p Piece, b *Board) bool { return CanPlace(p, b, 1, 0, 0) }
func CanMoveDown(p Piece, b *Board) bool  { return CanPlace(p, b, 0, 1, 0) }
func CanRotate(p Piece, b *Board) bool    { return CanPlace(p, b, 0, 0, 1) }

// dropDistance returns how many rows the piece can fall before touching down.
func dropDistance(p Piece, b *Board) int {
	d := 0
	for CanPlace(p, b, 0, d+1, 0) {
		d++
	}
	return d
}
