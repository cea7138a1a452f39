package model

import (
	"encoding/json"
	"fmt"
)

// Board owns the 8x8 grid and the side-to-move flag. All mutation goes
// through ApplyMove; everything else only reads.
type Board struct {
	squares [8][8]*Piece
	toMove  Color
}

var backRankOrder = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns a board in the canonical starting position with white
// to move.
func NewBoard() *Board {
	b := &Board{toMove: White}
	for x := 0; x < 8; x++ {
		b.squares[0][x] = &Piece{Type: backRankOrder[x], Color: Black}
		b.squares[1][x] = &Piece{Type: Pawn, Color: Black}
		b.squares[6][x] = &Piece{Type: Pawn, Color: White}
		b.squares[7][x] = &Piece{Type: backRankOrder[x], Color: White}
	}
	return b
}

// Get returns the occupant of pos, or nil if the square is empty or out
// of bounds. Out-of-bounds reads degrade to "no piece" so the rule
// functions can probe neighbours without bounds checks of their own.
func (b *Board) Get(pos Position) *Piece {
	if !pos.InBounds() {
		return nil
	}
	return b.squares[pos.Y][pos.X]
}

func (b *Board) ToMove() Color {
	return b.toMove
}

// ApplyMove is the single mutation entry point, used identically for
// human and engine moves. It validates everything first and only then
// commits, so a rejected move leaves the board untouched.
func (b *Board) ApplyMove(from, to Position) error {
	if !from.InBounds() || !to.InBounds() {
		return ErrInvalidPosition
	}
	piece := b.Get(from)
	if piece == nil {
		return ErrNoPieceAtSource
	}
	if piece.Color != b.toMove {
		return fmt.Errorf("%w: it is %s's turn", ErrWrongTurn, b.toMove)
	}
	if !legalMove(b, from, to, piece) {
		return fmt.Errorf("%w: %s %s %s -> %s", ErrIllegalMove, piece.Color, piece.Type, from.Square(), to.Square())
	}

	b.squares[to.Y][to.X] = piece
	b.squares[from.Y][from.X] = nil
	piece.HasMoved = true
	b.switchTurn()
	return nil
}

func (b *Board) switchTurn() {
	b.toMove = b.toMove.Opponent()
}

// MarshalJSON exposes the grid row-major, the shape the frontend expects.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Board  [8][8]*Piece `json:"board"`
		ToMove Color        `json:"toMove"`
	}{b.squares, b.toMove})
}
