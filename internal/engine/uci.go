// Package engine runs an external UCI move-generation process and
// exposes it as a best-move oracle. It speaks the line-oriented UCI
// protocol over the subprocess's stdin/stdout.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

var (
	// ErrStartup is fatal: the binary is missing or the handshake never
	// completed, so the session cannot use an engine at all.
	ErrStartup = errors.New("engine startup failed")
	// ErrProtocol covers mid-session failures: a closed or silent
	// channel, or a malformed response. Recoverable per attempt.
	ErrProtocol = errors.New("engine protocol failure")
	// ErrUnknownTier is rejected before anything is sent to the process.
	ErrUnknownTier = errors.New("unknown difficulty tier")
)

// handshakeTimeout bounds the wait for each acknowledgment line. An
// engine that never answers is a startup failure, not a hang.
const handshakeTimeout = 5 * time.Second

type Engine struct {
	cmd   *exec.Cmd
	in    *bufio.Writer
	out   *bufio.Scanner
	lines chan string
	mu    sync.Mutex
	depth int
	ready bool
}

// startReader owns the scanner for the engine's lifetime: it is the
// only Scan caller, so a timed-out request can never race a later one
// over the same reader. A reply that misses a request's grace window
// stays queued on the channel for the next request instead of being
// lost. The channel closes when the engine's output does.
func (e *Engine) startReader() {
	e.lines = make(chan string)
	go func() {
		for e.out.Scan() {
			e.lines <- e.out.Text()
		}
		close(e.lines)
	}()
}

// Start spawns the engine at path, completes the UCI handshake and
// applies the difficulty tier. The tier is validated before the process
// is even spawned. On any failure the process is reaped before return.
func Start(path string, tier Tier) (*Engine, error) {
	settings, err := settingsFor(tier)
	if err != nil {
		return nil, err
	}
	e, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := e.configure(settings); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// New spawns the engine process and performs the identification
// handshake: "uci" -> wait for "uciok", then "isready" -> "readyok".
func New(path string) (*Engine, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartup, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartup, err)
	}

	e := &Engine{
		cmd: cmd,
		in:  bufio.NewWriter(stdin),
		out: bufio.NewScanner(stdout),
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartup, err)
	}
	e.startReader()
	if err := e.handshake(); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, err
	}
	e.ready = true
	return e, nil
}

func (e *Engine) handshake() error {
	if err := e.send("uci"); err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	if err := e.waitFor("uciok"); err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	if err := e.send("isready"); err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	if err := e.waitFor("readyok"); err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	return nil
}

// waitFor blocks until the engine emits the acknowledgment line,
// bounded by handshakeTimeout.
func (e *Engine) waitFor(ack string) error {
	timeout := time.After(handshakeTimeout)
	for {
		select {
		case line, ok := <-e.lines:
			if !ok {
				if err := e.out.Err(); err != nil {
					return err
				}
				return fmt.Errorf("channel closed before %q", ack)
			}
			if line == ack {
				return nil
			}
		case <-timeout:
			return fmt.Errorf("no %q within %s", ack, handshakeTimeout)
		}
	}
}

// Configure applies a difficulty tier: a Skill Level option sent to the
// engine plus the search depth used by BestMove. An unknown tier is
// rejected before any command is written.
func (e *Engine) Configure(tier Tier) error {
	settings, err := settingsFor(tier)
	if err != nil {
		return err
	}
	return e.configure(settings)
}

func (e *Engine) configure(settings tierSettings) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Option commands are fire-and-forget; the engine sends no reply.
	if err := e.send(fmt.Sprintf("setoption name Skill Level value %d", settings.skill)); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if err := e.send("ucinewgame"); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	e.depth = settings.depth
	return nil
}

// BestMove loads fen into the engine, searches to the configured depth
// and returns the move as a pair of squares ("e7", "e5"). The context
// deadline bounds the wait; on cancellation the engine is told to stop
// and given a short grace period to answer.
func (e *Engine) BestMove(ctx context.Context, fen string) (string, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return "", "", fmt.Errorf("%w: engine not ready", ErrProtocol)
	}

	if err := e.send("position fen " + fen); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	depth := e.depth
	if depth <= 0 {
		depth = 10
	}
	if err := e.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	for {
		select {
		case line, ok := <-e.lines:
			if !ok {
				if err := e.out.Err(); err != nil {
					return "", "", fmt.Errorf("%w: %v", ErrProtocol, err)
				}
				return "", "", fmt.Errorf("%w: channel closed before bestmove", ErrProtocol)
			}
			// Search chatter ("info depth ...") streams by until the
			// line we want: "bestmove e7e5" or "bestmove e7e5 ponder g1f3".
			if !strings.HasPrefix(line, "bestmove") {
				continue
			}
			from, to, err := parseBestMove(line)
			if err != nil {
				return "", "", fmt.Errorf("%w: %v", ErrProtocol, err)
			}
			return from, to, nil
		case <-ctx.Done():
			_ = e.send("stop")
			grace := time.After(500 * time.Millisecond)
			for {
				select {
				case line, ok := <-e.lines:
					if !ok {
						return "", "", fmt.Errorf("%w: %v", ErrProtocol, ctx.Err())
					}
					if !strings.HasPrefix(line, "bestmove") {
						continue
					}
					if from, to, err := parseBestMove(line); err == nil {
						return from, to, nil
					}
					return "", "", fmt.Errorf("%w: %v", ErrProtocol, ctx.Err())
				case <-grace:
					return "", "", fmt.Errorf("%w: %v", ErrProtocol, ctx.Err())
				}
			}
		}
	}
}

func parseBestMove(line string) (string, string, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields[1]) < 4 {
		return "", "", fmt.Errorf("malformed bestmove line %q", line)
	}
	mv := fields[1]
	return mv[:2], mv[2:4], nil
}

// Close tells the engine to quit and reaps the process.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_ = e.send("quit")
	e.ready = false
	if e.cmd == nil {
		return nil
	}
	return e.cmd.Wait()
}

func (e *Engine) send(cmd string) error {
	if _, err := fmt.Fprintln(e.in, cmd); err != nil {
		return err
	}
	return e.in.Flush()
}
