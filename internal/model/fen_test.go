package model

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFENInitialPosition(t *testing.T) {
	want := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"
	if got := NewBoard().FEN(); got != want {
		t.Errorf("initial FEN\n got %s\nwant %s", got, want)
	}
}

func TestFENAfterMove(t *testing.T) {
	b := NewBoard()
	if err := b.ApplyMove(mustSquare(t, "e2"), mustSquare(t, "e4")); err != nil {
		t.Fatalf("e2-e4: %v", err)
	}
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1"
	if got := b.FEN(); got != want {
		t.Errorf("FEN after e2-e4\n got %s\nwant %s", got, want)
	}
}

// randomBoard scatters pieces with the constraints ParseFEN can
// represent: no pawns on the back ranks, HasMoved set exactly for pawns
// off their home rank.
func randomBoard(rng *rand.Rand) *Board {
	types := []PieceType{King, Queen, Rook, Bishop, Knight, Pawn}
	b := &Board{toMove: White}
	if rng.Intn(2) == 1 {
		b.toMove = Black
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if rng.Intn(100) >= 30 {
				continue
			}
			piece := &Piece{Type: types[rng.Intn(len(types))], Color: White}
			if rng.Intn(2) == 1 {
				piece.Color = Black
			}
			if piece.Type == Pawn {
				if y == 0 || y == 7 {
					continue
				}
				piece.HasMoved = y != pawnHomeRow(piece.Color)
			}
			b.squares[y][x] = piece
		}
	}
	return b
}

func TestFENRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		b := randomBoard(rng)
		fen := b.FEN()
		got, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if diff := cmp.Diff(b.squares, got.squares); diff != "" {
			t.Fatalf("round trip of %q mismatch (-want +got):\n%s", fen, diff)
		}
		if got.toMove != b.toMove {
			t.Fatalf("round trip of %q: side to move %s, want %s", fen, got.toMove, b.toMove)
		}
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"missing side to move", "8/8/8/8/8/8/8/8"},
		{"seven ranks", "8/8/8/8/8/8/8 w - - 0 1"},
		{"unknown piece", "8/8/8/3X4/8/8/8/8 w - - 0 1"},
		{"rank overflow", "9p/8/8/8/8/8/8/8 w - - 0 1"},
		{"short rank", "7/8/8/8/8/8/8/8 w - - 0 1"},
		{"bad side to move", "8/8/8/8/8/8/8/8 x - - 0 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFEN(tt.fen); !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("ParseFEN(%q) = %v, want ErrInvalidFEN", tt.fen, err)
			}
		})
	}
}

func TestSquareNotationRoundTrip(t *testing.T) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			pos := Position{X: x, Y: y}
			got, err := ParseSquare(pos.Square())
			if err != nil {
				t.Fatalf("ParseSquare(%q): %v", pos.Square(), err)
			}
			if got != pos {
				t.Errorf("ParseSquare(Square(%v)) = %v", pos, got)
			}
		}
	}
}

func TestParseSquareKnownValues(t *testing.T) {
	tests := []struct {
		square string
		want   Position
	}{
		{"a8", Position{X: 0, Y: 0}},
		{"h8", Position{X: 7, Y: 0}},
		{"a1", Position{X: 0, Y: 7}},
		{"h1", Position{X: 7, Y: 7}},
		{"e2", Position{X: 4, Y: 6}},
		{"e4", Position{X: 4, Y: 4}},
	}
	for _, tt := range tests {
		got, err := ParseSquare(tt.square)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", tt.square, err)
		}
		if got != tt.want {
			t.Errorf("ParseSquare(%q) = %v, want %v", tt.square, got, tt.want)
		}
	}
}

func TestParseSquareErrors(t *testing.T) {
	for _, s := range []string{"", "e", "e22", "i2", "e9", "e0", "22", "E2"} {
		if _, err := ParseSquare(s); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("ParseSquare(%q) = %v, want ErrInvalidPosition", s, err)
		}
	}
}
