package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

// newFakeEngine wires an Engine to a scripted counterpart: outputLines
// are what the fake process says, and everything the adapter sends
// lands in the returned builder.
func newFakeEngine(outputLines []string) (*Engine, *strings.Builder) {
	pr, pw := io.Pipe()
	go func() {
		for _, line := range outputLines {
			_, _ = fmt.Fprintln(pw, line)
		}
		_ = pw.Close()
	}()

	var sb strings.Builder
	e := &Engine{
		in:    bufio.NewWriter(&sb),
		out:   bufio.NewScanner(pr),
		ready: true,
	}
	e.startReader()
	return e, &sb
}

func TestBestMoveParsesReply(t *testing.T) {
	e, sb := newFakeEngine([]string{
		"info depth 5 score cp 30 pv e7e5",
		"bestmove e7e5 ponder g1f3",
	})

	from, to, err := e.BestMove(context.Background(), "test-fen")
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if from != "e7" || to != "e5" {
		t.Errorf("BestMove = %s, %s, want e7, e5", from, to)
	}

	sent := sb.String()
	if !strings.Contains(sent, "position fen test-fen") {
		t.Errorf("position command not sent: %q", sent)
	}
	if !strings.Contains(sent, "go depth 10") {
		t.Errorf("default depth not used: %q", sent)
	}
}

func TestBestMoveUsesConfiguredDepth(t *testing.T) {
	e, sb := newFakeEngine([]string{"bestmove e7e5"})
	e.depth = 15

	if _, _, err := e.BestMove(context.Background(), "fen"); err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if !strings.Contains(sb.String(), "go depth 15") {
		t.Errorf("configured depth not used: %q", sb.String())
	}
}

func TestBestMoveChannelClosed(t *testing.T) {
	e, _ := newFakeEngine(nil)

	if _, _, err := e.BestMove(context.Background(), "fen"); !errors.Is(err, ErrProtocol) {
		t.Errorf("BestMove on closed channel = %v, want ErrProtocol", err)
	}
}

func TestBestMoveMalformedReply(t *testing.T) {
	e, _ := newFakeEngine([]string{"bestmove xx"})

	if _, _, err := e.BestMove(context.Background(), "fen"); !errors.Is(err, ErrProtocol) {
		t.Errorf("BestMove with malformed reply = %v, want ErrProtocol", err)
	}
}

func TestBestMoveHonorsContextDeadline(t *testing.T) {
	// A fake that never answers: the pipe stays open and silent.
	pr, _ := io.Pipe()
	var sb strings.Builder
	e := &Engine{in: bufio.NewWriter(&sb), out: bufio.NewScanner(pr), ready: true}
	e.startReader()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := e.BestMove(ctx, "fen")
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("BestMove against silent engine = %v, want ErrProtocol", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("BestMove blocked for %s, wait was not bounded", elapsed)
	}
	if !strings.Contains(sb.String(), "stop") {
		t.Errorf("engine was not told to stop: %q", sb.String())
	}
}

func TestBestMoveRecoversAfterTimeout(t *testing.T) {
	// First request times out against a silent engine; the reply then
	// arrives late. The next request must pick it up instead of racing
	// a stale reader or losing the line.
	pr, pw := io.Pipe()
	var sb strings.Builder
	e := &Engine{in: bufio.NewWriter(&sb), out: bufio.NewScanner(pr), ready: true}
	e.startReader()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, _, err := e.BestMove(ctx, "fen"); !errors.Is(err, ErrProtocol) {
		t.Fatalf("BestMove against silent engine = %v, want ErrProtocol", err)
	}

	go func() {
		_, _ = fmt.Fprintln(pw, "bestmove e7e5")
	}()

	from, to, err := e.BestMove(context.Background(), "fen")
	if err != nil {
		t.Fatalf("BestMove after timed-out request: %v", err)
	}
	if from != "e7" || to != "e5" {
		t.Errorf("BestMove = %s, %s, want e7, e5", from, to)
	}
}

func TestBestMoveNotReady(t *testing.T) {
	e := &Engine{}
	if _, _, err := e.BestMove(context.Background(), "fen"); !errors.Is(err, ErrProtocol) {
		t.Errorf("BestMove on unstarted engine = %v, want ErrProtocol", err)
	}
}

func TestConfigureSendsOptions(t *testing.T) {
	tests := []struct {
		tier      Tier
		wantSkill int
		wantDepth int
	}{
		{TierBeginner, 3, 5},
		{TierIntermediate, 10, 10},
		{TierProfessional, 15, 15},
		{TierTopStar, 20, 20},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			e, sb := newFakeEngine(nil)
			if err := e.Configure(tt.tier); err != nil {
				t.Fatalf("Configure(%s): %v", tt.tier, err)
			}
			sent := sb.String()
			want := fmt.Sprintf("setoption name Skill Level value %d", tt.wantSkill)
			if !strings.Contains(sent, want) {
				t.Errorf("Configure sent %q, want %q", sent, want)
			}
			if !strings.Contains(sent, "ucinewgame") {
				t.Errorf("Configure did not announce a new game: %q", sent)
			}
			if e.depth != tt.wantDepth {
				t.Errorf("depth = %d, want %d", e.depth, tt.wantDepth)
			}
		})
	}
}

func TestConfigureUnknownTierSendsNothing(t *testing.T) {
	e, sb := newFakeEngine(nil)
	if err := e.Configure("expert"); !errors.Is(err, ErrUnknownTier) {
		t.Fatalf("Configure(expert) = %v, want ErrUnknownTier", err)
	}
	if sb.Len() != 0 {
		t.Errorf("unknown tier still wrote to the engine: %q", sb.String())
	}
}

func TestStartValidatesTierBeforeSpawning(t *testing.T) {
	// The binary path is bogus; an unknown tier must fail first.
	_, err := Start("/no/such/engine", "expert")
	if !errors.Is(err, ErrUnknownTier) {
		t.Errorf("Start with unknown tier = %v, want ErrUnknownTier", err)
	}
}

func TestNewMissingBinary(t *testing.T) {
	if _, err := New("/no/such/engine"); !errors.Is(err, ErrStartup) {
		t.Errorf("New with missing binary = %v, want ErrStartup", err)
	}
}

func TestCloseWithoutProcess(t *testing.T) {
	e, _ := newFakeEngine(nil)
	if err := e.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
