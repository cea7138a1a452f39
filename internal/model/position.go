package model

import "fmt"

// Position addresses a board square. X is the file (0 = a-file), Y is the
// row with Y=0 being black's back rank, so white pieces start on rows 6
// and 7.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < 8 && p.Y >= 0 && p.Y < 8
}

// Square renders the position in external notation, e.g. {X: 4, Y: 6}
// becomes "e2".
func (p Position) Square() string {
	return fmt.Sprintf("%c%d", p.X+'a', 8-p.Y)
}

// ParseSquare converts external notation like "e2" into board indices.
// The mapping is col = letter - 'a', row = 8 - digit and must stay the
// exact inverse of Square or the engine adapter will target the wrong
// square.
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return Position{X: int(file - 'a'), Y: 8 - int(rank-'0')}, nil
}
