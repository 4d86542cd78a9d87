package main

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	Side = 7
	// JumpLimit consecutive jumps without an extend end the game in a tie.
	JumpLimit = 25
)

type undoRecord struct {
	move     Move
	mover    PieceColor
	flipped  []int
	numJumps int
}

// Board is a mutable Ataxx position with a make/undo history.
type Board struct {
	cells    []PieceColor
	toMove   PieceColor
	numJumps int
	pieces   [4]int
	history  []undoRecord
}

func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset sets up the standard starting position with red to move.
func (b *Board) Reset() {
	b.Clear()
	b.set(0, Side-1, Red)
	b.set(Side-1, 0, Red)
	b.set(0, 0, Blue)
	b.set(Side-1, Side-1, Blue)
}

// Clear empties every square and history, leaving red to move.
func (b *Board) Clear() {
	b.cells = make([]PieceColor, Side*Side)
	b.toMove = Red
	b.numJumps = 0
	b.pieces = [4]int{}
	b.pieces[Empty] = Side * Side
	b.history = nil
}

func (b *Board) At(col, row int) PieceColor {
	if !inBounds(col, row) {
		return Blocked
	}
	return b.cells[index(col, row)]
}

func (b *Board) WhoseMove() PieceColor {
	return b.toMove
}

func (b *Board) NumJumps() int {
	return b.numJumps
}

func (b *Board) MoveCount() int {
	return len(b.history)
}

func (b *Board) PieceCount(color PieceColor) int {
	return b.pieces[color]
}

func (b *Board) RedPieces() int {
	return b.pieces[Red]
}

func (b *Board) BluePieces() int {
	return b.pieces[Blue]
}

// LastMove returns the most recently applied move, if any.
func (b *Board) LastMove() (Move, bool) {
	if len(b.history) == 0 {
		return Move{}, false
	}
	return b.history[len(b.history)-1].move, true
}

func (b *Board) LegalMove(m Move) bool {
	if m.Pass {
		return !b.CanMove(b.toMove)
	}
	if !inBounds(m.FromCol, m.FromRow) || !inBounds(m.ToCol, m.ToRow) {
		return false
	}
	if b.At(m.FromCol, m.FromRow) != b.toMove || b.At(m.ToCol, m.ToRow) != Empty {
		return false
	}
	d := m.Distance()
	return d == 1 || d == 2
}

// CanMove reports whether color has a piece with an empty square within
// jumping distance.
func (b *Board) CanMove(color PieceColor) bool {
	if !color.IsPiece() || b.pieces[color] == 0 {
		return false
	}
	for row := 0; row < Side; row++ {
		for col := 0; col < Side; col++ {
			if b.cells[index(col, row)] != color {
				continue
			}
			for dr := -2; dr <= 2; dr++ {
				for dc := -2; dc <= 2; dc++ {
					if b.At(col+dc, row+dr) == Empty {
						return true
					}
				}
			}
		}
	}
	return false
}

// MakeMove applies m for the side to move, converting adjacent enemy pieces.
// It returns ErrIllegalMove without touching the board when m is not legal.
func (b *Board) MakeMove(m Move) error {
	if !b.LegalMove(m) {
		return errors.Wrapf(ErrIllegalMove, "%s by %s", m, b.toMove)
	}
	mover := b.toMove
	rec := undoRecord{move: m, mover: mover, numJumps: b.numJumps}
	if !m.Pass {
		if m.IsJump() {
			b.set(m.FromCol, m.FromRow, Empty)
			b.numJumps++
		} else {
			b.numJumps = 0
		}
		b.set(m.ToCol, m.ToRow, mover)
		opponent := mover.Opposite()
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				col, row := m.ToCol+dc, m.ToRow+dr
				if b.At(col, row) != opponent {
					continue
				}
				b.set(col, row, mover)
				rec.flipped = append(rec.flipped, index(col, row))
			}
		}
	}
	b.toMove = mover.Opposite()
	b.history = append(b.history, rec)
	return nil
}

// Undo reverses exactly the most recent MakeMove.
func (b *Board) Undo() error {
	n := len(b.history)
	if n == 0 {
		return ErrNothingToUndo
	}
	rec := b.history[n-1]
	b.history = b.history[:n-1]
	m := rec.move
	if !m.Pass {
		opponent := rec.mover.Opposite()
		for _, idx := range rec.flipped {
			b.setIndex(idx, opponent)
		}
		b.set(m.ToCol, m.ToRow, Empty)
		if m.IsJump() {
			b.set(m.FromCol, m.FromRow, rec.mover)
		}
	}
	b.toMove = rec.mover
	b.numJumps = rec.numJumps
	return nil
}

func (b *Board) Winner() Outcome {
	if b.numJumps >= JumpLimit {
		return OutcomeTie
	}
	red, blue := b.pieces[Red], b.pieces[Blue]
	if red == 0 && blue > 0 {
		return OutcomeBlue
	}
	if blue == 0 && red > 0 {
		return OutcomeRed
	}
	if b.CanMove(Red) || b.CanMove(Blue) {
		return OutcomeNone
	}
	switch {
	case red > blue:
		return OutcomeRed
	case blue > red:
		return OutcomeBlue
	default:
		return OutcomeTie
	}
}

// SetBlock blocks the square and its reflections about both axes. Only
// allowed before the first move.
func (b *Board) SetBlock(col, row int) error {
	if len(b.history) > 0 {
		return errors.Wrap(ErrBlockPlacement, "game already started")
	}
	if !inBounds(col, row) {
		return errors.Wrapf(ErrBlockPlacement, "%s off board", squareName(col, row))
	}
	squares := [4][2]int{
		{col, row},
		{Side - 1 - col, row},
		{col, Side - 1 - row},
		{Side - 1 - col, Side - 1 - row},
	}
	for _, sq := range squares {
		if cell := b.At(sq[0], sq[1]); cell != Empty && cell != Blocked {
			return errors.Wrapf(ErrBlockPlacement, "%s is occupied", squareName(sq[0], sq[1]))
		}
	}
	for _, sq := range squares {
		b.set(sq[0], sq[1], Blocked)
	}
	return nil
}

// Clone returns an independent deep copy, history included.
func (b *Board) Clone() *Board {
	clone := &Board{
		toMove:   b.toMove,
		numJumps: b.numJumps,
		pieces:   b.pieces,
	}
	clone.cells = make([]PieceColor, len(b.cells))
	copy(clone.cells, b.cells)
	if len(b.history) > 0 {
		clone.history = make([]undoRecord, len(b.history))
		for i, rec := range b.history {
			rec.flipped = append([]int(nil), rec.flipped...)
			clone.history[i] = rec
		}
	}
	return clone
}

// String renders rows 7 down to 1, one character per square.
func (b *Board) String() string {
	var sb strings.Builder
	for row := Side - 1; row >= 0; row-- {
		sb.WriteString(" ")
		for col := 0; col < Side; col++ {
			sb.WriteByte(' ')
			sb.WriteByte(cellChar(b.At(col, row)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// positionKey identifies squares, side to move and jump count.
func (b *Board) positionKey() string {
	var sb strings.Builder
	for _, cell := range b.cells {
		sb.WriteByte(cellChar(cell))
	}
	sb.WriteByte(cellChar(b.toMove))
	sb.WriteByte(byte('A' + b.numJumps))
	return sb.String()
}

func (b *Board) set(col, row int, color PieceColor) {
	b.setIndex(index(col, row), color)
}

func (b *Board) setIndex(idx int, color PieceColor) {
	b.pieces[b.cells[idx]]--
	b.cells[idx] = color
	b.pieces[color]++
}

func cellChar(cell PieceColor) byte {
	switch cell {
	case Red:
		return 'r'
	case Blue:
		return 'b'
	case Blocked:
		return 'X'
	default:
		return '-'
	}
}

func inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < Side && row < Side
}

func index(col, row int) int {
	return row*Side + col
}
