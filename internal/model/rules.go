package model

// Per-kind legality rules. Every rule gets read-only board access and
// must not mutate anything; ApplyMove commits only after a rule says
// yes.
//
// Not modeled, deliberately: castling, en passant, promotion and check
// detection. A king may be left in or moved into attack.

// legalMove dispatches to the rule for the piece's kind after the shared
// preconditions: destination in bounds and not occupied by a same-color
// piece.
func legalMove(b *Board, from, to Position, piece *Piece) bool {
	if !to.InBounds() || from == to {
		return false
	}
	if target := b.Get(to); target != nil && target.Color == piece.Color {
		return false
	}
	switch piece.Type {
	case Pawn:
		return legalPawnMove(b, from, to, piece)
	case Rook:
		return legalRookMove(b, from, to)
	case Knight:
		return legalKnightMove(from, to)
	case Bishop:
		return legalBishopMove(b, from, to)
	case Queen:
		return legalRookMove(b, from, to) || legalBishopMove(b, from, to)
	case King:
		return legalKingMove(from, to)
	}
	return false
}

func legalPawnMove(b *Board, from, to Position, piece *Piece) bool {
	// White pawns advance toward row 0.
	dir := -1
	if piece.Color == Black {
		dir = 1
	}

	// Forward one square onto an empty square.
	if to.X == from.X && to.Y == from.Y+dir {
		return b.Get(to) == nil
	}

	// Forward two squares, only before the pawn has moved and only
	// through empty squares.
	if to.X == from.X && to.Y == from.Y+2*dir && !piece.HasMoved {
		return b.Get(to) == nil && b.Get(Position{X: from.X, Y: from.Y + dir}) == nil
	}

	// Diagonal step is a capture or nothing.
	if abs(to.X-from.X) == 1 && to.Y == from.Y+dir {
		target := b.Get(to)
		return target != nil && target.Color != piece.Color
	}

	return false
}

func legalRookMove(b *Board, from, to Position) bool {
	if from.X != to.X && from.Y != to.Y {
		return false
	}
	return pathClear(b, from, to)
}

func legalBishopMove(b *Board, from, to Position) bool {
	if abs(to.X-from.X) != abs(to.Y-from.Y) {
		return false
	}
	return pathClear(b, from, to)
}

func legalKnightMove(from, to Position) bool {
	dx, dy := abs(to.X-from.X), abs(to.Y-from.Y)
	return (dx == 2 && dy == 1) || (dx == 1 && dy == 2)
}

func legalKingMove(from, to Position) bool {
	return max(abs(to.X-from.X), abs(to.Y-from.Y)) == 1
}

// pathClear walks one unit step at a time from just past `from` and
// stops at `to` exclusive. The destination square itself is the shared
// precondition's job.
func pathClear(b *Board, from, to Position) bool {
	step := Position{X: sign(to.X - from.X), Y: sign(to.Y - from.Y)}
	cur := Position{X: from.X + step.X, Y: from.Y + step.Y}
	for cur != to {
		if b.Get(cur) != nil {
			return false
		}
		cur.X += step.X
		cur.Y += step.Y
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
