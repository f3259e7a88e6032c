// Package blockdrop contains the simulation engine of the game: the piece
// catalog, the board, collision detection, scoring and the game loop.
package blockdrop

import (
	"math/rand/v2"
	"time"
)

// Shape identifies one of the seven pieces.
type Shape string

const (
	O Shape = "O"
	I Shape = "I"
	S Shape = "S"
	Z Shape = "Z"
	L Shape = "L"
	J Shape = "J"
	T Shape = "T"
)

// Shapes lists every shape of the catalog in a stable order.
var Shapes = [...]Shape{O, I, S, Z, L, J, T}

// Cell is a board coordinate. Column 0 is the left wall and row 0 is the top
// row of the visible board, rows grow downwards.
type Cell struct {
	Col, Row int
}

type blueprint struct {
	// size is the side of the bounding box the offsets live in.
	size      int
	rotations [4][4]Cell
}

/*
.	Offsets are {col, row} inside the bounding box.

.	O		J		I
.	0 1		0 1 2		0 1 2 3
0	O O		O . .		. . . .
1	O O		O O O		O O O O
2			. . .		. . . .
3					. . . .
*/
var catalog = map[Shape]blueprint{
	O: {size: 2, rotations: [4][4]Cell{
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	}},
	L: {size: 3, rotations: [4][4]Cell{
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	}},
	J: {size: 3, rotations: [4][4]Cell{
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 0}, {1, 1}, {0, 2}, {1, 2}},
	}},
	S: {size: 3, rotations: [4][4]Cell{
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 1}, {2, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	}},
	Z: {size: 3, rotations: [4][4]Cell{
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{2, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	}},
	T: {size: 3, rotations: [4][4]Cell{
		{{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {1, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {1, 2}},
	}},
	I: {size: 4, rotations: [4][4]Cell{
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{2, 0}, {2, 1}, {2, 2}, {2, 3}},
		{{0, 2}, {1, 2}, {2, 2}, {3, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
	}},
}

// ShapeCount returns the number of shapes in the catalog.
func ShapeCount() int { return len(Shapes) }

// RotationOffsets returns the four cell offsets of a shape at the given
// rotation. The rotation index is taken modulo 4, negative values included.
func RotationOffsets(s Shape, rotation int) [4]Cell {
	return catalog[s].rotations[wrap(rotation)]
}

// BoxSize returns the side of the bounding box of a shape.
func BoxSize(s Shape) int { return catalog[s].size }

func wrap(rotation int) int {
	return ((rotation % 4) + 4) % 4
}

// RandomShape picks one of the seven shapes with uniform probability.
func RandomShape(r *rand.Rand) Shape {
	return Shapes[r.IntN(len(Shapes))]
}

// Randomizer hands out the shapes for the next spawns.
type Randomizer interface {
	Next() Shape
}

// UniformRandomizer draws every shape independently.
type UniformRandomizer struct {
	rng *rand.Rand
}

func NewUniformRandomizer(seed uint64) *UniformRandomizer {
	return &UniformRandomizer{rng: newRand(seed)}
}

func (u *UniformRandomizer) Next() Shape { return RandomShape(u.rng) }

// BagRandomizer deals the seven shapes in shuffled bags so every shape shows
// up once per bag. Based on https://tetris.wiki/Random_Generator
type BagRandomizer struct {
	rng   *rand.Rand
	bag   []Shape
	first bool
}

func NewBagRandomizer(seed uint64) *BagRandomizer {
	return &BagRandomizer{rng: newRand(seed), first: true}
}

func (b *BagRandomizer) Next() Shape {
	if len(b.bag) == 0 {
		b.refill()
	}
	s := b.bag[0]
	b.bag = b.bag[1:]
	return s
}

func (b *BagRandomizer) refill() {
	b.bag = append(b.bag[:0], Shapes[:]...)
	b.rng.Shuffle(len(b.bag), func(i, j int) { b.bag[i], b.bag[j] = b.bag[j], b.bag[i] })
	if !b.first {
		return
	}
	b.first = false
	// the first piece of a game is never an S, Z or O.
	for i, s := range b.bag {
		if s == I || s == J || s == L || s == T {
			b.bag[0], b.bag[i] = b.bag[i], b.bag[0]
			return
		}
	}
}

// seed 0 means "seed from the clock".
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// Piece is the active, player controlled piece.
type Piece struct {
	Shape    Shape
	Rotation int
	// Anchor is the board position of the top left corner of the bounding box.
	Anchor Cell
}

// Cells returns the absolute board cells covered by the piece.
func (p Piece) Cells() [4]Cell {
	cells := RotationOffsets(p.Shape, p.Rotation)
	for i := range cells {
		cells[i].Col += p.Anchor.Col
		cells[i].Row += p.Anchor.Row
	}
	return cells
}

func (p Piece) moved(dCol, dRow, dRotation int) Piece {
	return Piece{
		Shape:    p.Shape,
		Rotation: wrap(p.Rotation + dRotation),
		Anchor:   Cell{Col: p.Anchor.Col + dCol, Row: p.Anchor.Row + dRow},
	}
}
