package blockdrop

import (
	"errors"
	"reflect"
	"testing"
)

func fillRow(b *Board, row int) {
	for col := range b.Width() {
		b.Set(col, row, I)
	}
}

func TestBoard(t *testing.T) {
	t.Run("New board is empty", func(t *testing.T) {
		b := NewBoard(10, 20)
		for _, row := range b.Rows() {
			for _, c := range row {
				if c != "" {
					t.Errorf("Expected cell to be an empty string, got %v", c)
				}
			}
		}
	})

	t.Run("Out of range cells are never occupied", func(t *testing.T) {
		b := NewBoard(10, 20)
		for row := range 20 {
			fillRow(b, row)
		}
		for _, c := range []Cell{{-1, 0}, {10, 0}, {0, -1}, {0, 20}} {
			if b.IsOccupied(c.Col, c.Row) {
				t.Errorf("Expected %v to be reported as empty", c)
			}
		}
	})
}

func TestLockPiece(t *testing.T) {
	t.Run("Locks the cells of the piece", func(t *testing.T) {
		b := NewBoard(10, 20)
		p := Piece{Shape: J, Anchor: Cell{Col: 0, Row: 18}}
		if err := b.LockPiece(p); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		for _, c := range p.Cells() {
			if b.At(c.Col, c.Row) != J {
				t.Errorf("Expected %v to hold J, got %q", c, b.At(c.Col, c.Row))
			}
		}
	})

	tests := []struct {
		name  string
		piece Piece
	}{
		{"occupied cell", Piece{Shape: O, Anchor: Cell{Col: 4, Row: 18}}},
		{"above the board", Piece{Shape: O, Anchor: Cell{Col: 0, Row: -1}}},
		{"below the board", Piece{Shape: O, Anchor: Cell{Col: 0, Row: 19}}},
		{"outside the walls", Piece{Shape: O, Anchor: Cell{Col: 9, Row: 5}}},
	}
	for _, tt := range tests {
		t.Run("Fails on "+tt.name, func(t *testing.T) {
			b := NewBoard(10, 20)
			b.Set(5, 19, S)
			before := b.Rows()
			err := b.LockPiece(tt.piece)
			if !errors.Is(err, ErrLockConflict) {
				t.Errorf("Expected ErrLockConflict, got %v", err)
			}
			if !reflect.DeepEqual(before, b.Rows()) {
				t.Error("Expected the board to be left untouched")
			}
		})
	}
}

func TestFindCompleteRows(t *testing.T) {
	t.Run("Empty board", func(t *testing.T) {
		if rows := NewBoard(10, 20).FindCompleteRows(); len(rows) != 0 {
			t.Errorf("Expected no complete rows, got %v", rows)
		}
	})

	t.Run("Only row 5", func(t *testing.T) {
		b := NewBoard(10, 20)
		fillRow(b, 5)
		// almost complete rows don't count.
		fillRow(b, 19)
		b.Set(3, 19, "")
		if rows := b.FindCompleteRows(); !reflect.DeepEqual(rows, []int{5}) {
			t.Errorf("Expected [5], got %v", rows)
		}
	})

	t.Run("Bottom to top", func(t *testing.T) {
		b := NewBoard(10, 20)
		fillRow(b, 0)
		fillRow(b, 12)
		fillRow(b, 19)
		if rows := b.FindCompleteRows(); !reflect.DeepEqual(rows, []int{19, 12, 0}) {
			t.Errorf("Expected [19 12 0], got %v", rows)
		}
	})
}

// markedBoard returns a board where every row other than full has a single
// block in a column derived from its index, so shifts are visible.
func markedBoard(full ...int) *Board {
	b := NewBoard(10, 20)
	for row := range 20 {
		b.Set(row%10, row, Shapes[row%7])
	}
	for _, row := range full {
		fillRow(b, row)
	}
	return b
}

func expectedAfterClear(before [][]Shape, cleared ...int) [][]Shape {
	skip := map[int]bool{}
	for _, r := range cleared {
		skip[r] = true
	}
	var want [][]Shape
	for range len(skip) {
		want = append(want, make([]Shape, len(before[0])))
	}
	for i, row := range before {
		if !skip[i] {
			want = append(want, row)
		}
	}
	return want
}

func TestClearRows(t *testing.T) {
	t.Run("Single row", func(t *testing.T) {
		b := markedBoard(5)
		before := b.Rows()
		b.ClearRows([]int{5})
		after := b.Rows()
		for row := 1; row <= 5; row++ {
			if !reflect.DeepEqual(after[row], before[row-1]) {
				t.Errorf("Expected row %d to hold former row %d %v, got %v", row, row-1, before[row-1], after[row])
			}
		}
		if !reflect.DeepEqual(after[0], make([]Shape, 10)) {
			t.Errorf("Expected row 0 to be empty, got %v", after[0])
		}
		for row := 6; row < 20; row++ {
			if !reflect.DeepEqual(after[row], before[row]) {
				t.Errorf("Expected row %d to be untouched", row)
			}
		}
	})

	tests := []struct {
		name  string
		full  []int
		clear []int
	}{
		{"Two non adjacent rows", []int{3, 7}, []int{3, 7}},
		{"Two non adjacent rows in any order", []int{3, 7}, []int{7, 3}},
		{"Four adjacent rows", []int{16, 17, 18, 19}, []int{19, 18, 17, 16}},
		{"Duplicated rows", []int{5}, []int{5, 5}},
		{"Out of range rows", []int{5}, []int{-1, 5, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := markedBoard(tt.full...)
			want := expectedAfterClear(b.Rows(), tt.full...)
			b.ClearRows(tt.clear)
			if got := b.Rows(); !reflect.DeepEqual(got, want) {
				t.Errorf("Expected\n%v\ngot\n%v", want, got)
			}
		})
	}

	t.Run("Rows {3, 7} drop by the rows cleared below them", func(t *testing.T) {
		b := markedBoard(3, 7)
		b.ClearRows([]int{3, 7})
		// rows above 3 fall two rows, rows between 3 and 7 fall one.
		checks := map[int]int{2: 4, 4: 5, 6: 7, 8: 8, 0: 2}
		for from, to := range checks {
			if got := b.At(from%10, to); got != Shapes[from%7] {
				t.Errorf("Expected former row %d to be at row %d, got %q", from, to, got)
			}
		}
	})

	t.Run("Empty set of rows", func(t *testing.T) {
		b := markedBoard()
		before := b.Rows()
		b.ClearRows(nil)
		if !reflect.DeepEqual(before, b.Rows()) {
			t.Error("Expected the board to be left untouched")
		}
	})
}
