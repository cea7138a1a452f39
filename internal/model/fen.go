package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFEN = errors.New("invalid FEN")

// FEN serializes the board in the notation the engine consumes: eight
// ranks top row first, run-length compressed, uppercase for white, then
// the side to move. Castling rights, en passant target and the clocks
// are not modeled here, so those fields are pinned to static defaults.
func (b *Board) FEN() string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for x := 0; x < 8; x++ {
			piece := b.squares[y][x]
			if piece == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			letter := piece.Type.fenLetter()
			if piece.Color == Black {
				letter += 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	sb.WriteByte(' ')
	if b.toMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteString(" - - 0 1")
	return sb.String()
}

// ParseFEN is the inverse of FEN. It needs the piece placement and
// side-to-move fields and ignores anything after them. HasMoved cannot
// be recovered from the notation; it is inferred for pawns off their
// home rank (the one case where it changes legality) and left unset
// otherwise.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: want at least placement and side to move", ErrInvalidFEN)
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: got %d ranks", ErrInvalidFEN, len(ranks))
	}

	b := &Board{}
	for y, rank := range ranks {
		x := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '8' {
				x += int(ch - '0')
				continue
			}
			if x >= 8 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-y)
			}
			color := White
			lower := ch
			if ch >= 'a' && ch <= 'z' {
				color = Black
			} else {
				lower = ch + 'a' - 'A'
			}
			pieceType, ok := letterToPieceType[lower]
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			piece := &Piece{Type: pieceType, Color: color}
			if pieceType == Pawn && y != pawnHomeRow(color) {
				piece.HasMoved = true
			}
			b.squares[y][x] = piece
			x++
		}
		if x != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-y, x)
		}
	}

	switch fields[1] {
	case "w":
		b.toMove = White
	case "b":
		b.toMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}
	return b, nil
}

func pawnHomeRow(c Color) int {
	if c == Black {
		return 1
	}
	return 6
}
