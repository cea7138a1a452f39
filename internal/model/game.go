package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/asim-wecodethat/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

// ErrEngineMove wraps every failure of the automated side: protocol
// errors from the engine and moves the board rejects. The session stays
// alive either way.
var ErrEngineMove = errors.New("automated move failed")

// MoveEngine produces moves for the automated side. The UCI adapter in
// internal/engine implements it; tests stub it. It speaks strings (FEN
// in, squares out) so the adapter stays decoupled from board internals.
type MoveEngine interface {
	BestMove(ctx context.Context, fen string) (from, to string, err error)
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

// Game owns a single session: board state, the players watching it over
// websockets, and the engine subprocess playing the automated side. The
// engine handle lives for the session and is released by Close.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       GameState
	connections *GameConnections
	engine      MoveEngine
}

type GameState struct {
	Board          *Board         `json:"boardState"`
	ToMove         Color          `json:"toMove"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	LastMove       *SimpleMove    `json:"lastMove"`
	Players        struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

// NewGame creates a session. A non-nil engine takes the black side; a
// nil engine leaves black open for a second human.
func NewGame(id string, engine MoveEngine) *Game {
	g := &Game{
		ID:          id,
		state:       newGameState(),
		connections: NewGameConnections(),
		engine:      engine,
	}
	if engine != nil {
		g.state.Players.Black = ClientPlayer{ID: "engine", Color: Black}
	}
	return g
}

func newGameState() GameState {
	return GameState{
		Board:  NewBoard(),
		ToMove: White,
		CapturedPieces: CapturedPieces{
			White: make([]Piece, 0),
			Black: make([]Piece, 0),
		},
	}
}

func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Players.White.ID == "" {
		g.state.Players.White = ClientPlayer{ID: playerID, Color: White}
		return White, nil
	}
	if g.engine == nil && g.state.Players.Black.ID == "" {
		g.state.Players.Black = ClientPlayer{ID: playerID, Color: Black}
		return Black, nil
	}
	return "", errors.New("game is full")
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

// playerColor resolves the seat playerID holds. Callers hold g.mu.
func (g *Game) playerColor(playerID string) (Color, bool) {
	if g.state.Players.White.ID != "" && g.state.Players.White.ID == playerID {
		return White, true
	}
	if g.state.Players.Black.ID != "" && g.state.Players.Black.ID == playerID {
		return Black, true
	}
	return "", false
}

func (g *Game) isPlayerInGame(playerID string) bool {
	_, ok := g.playerColor(playerID)
	return ok
}

func (g *Game) canSpectate() bool {
	return g.state.Players.White.ID == "" || g.state.Players.Black.ID == ""
}

// MakeMove plays a human move for playerID. The player must be seated
// in the game and own the side to move; board-level validation and
// mutation stay the board's job, this layer only checks who is asking
// and records capture bookkeeping.
func (g *Game) MakeMove(playerID string, move Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.playerColor(playerID)
	if !ok {
		return ErrNotPlayer
	}
	if color != g.state.Board.ToMove() {
		return fmt.Errorf("%w: playing %s", ErrWrongTurn, color)
	}

	if err := g.applyMove(move.From, move.To); err != nil {
		return err
	}

	go g.broadcastState()
	return nil
}

// EngineMove asks the engine for a move in the current position and
// feeds it through the same apply path as human moves. Any failure is
// reported as ErrEngineMove and leaves the board as it was.
func (g *Game) EngineMove(ctx context.Context) (SimpleMove, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.engine == nil {
		return SimpleMove{}, fmt.Errorf("%w: no engine attached", ErrEngineMove)
	}

	fromSq, toSq, err := g.engine.BestMove(ctx, g.state.Board.FEN())
	if err != nil {
		return SimpleMove{}, fmt.Errorf("%w: %v", ErrEngineMove, err)
	}
	from, err := ParseSquare(fromSq)
	if err != nil {
		return SimpleMove{}, fmt.Errorf("%w: bad square %q", ErrEngineMove, fromSq)
	}
	to, err := ParseSquare(toSq)
	if err != nil {
		return SimpleMove{}, fmt.Errorf("%w: bad square %q", ErrEngineMove, toSq)
	}

	if err := g.applyMove(from, to); err != nil {
		return SimpleMove{}, fmt.Errorf("%w: %v", ErrEngineMove, err)
	}

	go g.broadcastState()
	return SimpleMove{From: from, To: to}, nil
}

// applyMove routes through Board.ApplyMove, the single mutation entry
// point, and syncs the client-facing state on success. Callers hold g.mu.
func (g *Game) applyMove(from, to Position) error {
	captured := g.state.Board.Get(to)

	if err := g.state.Board.ApplyMove(from, to); err != nil {
		return err
	}

	if captured != nil {
		switch captured.Color {
		case White:
			g.state.CapturedPieces.White = append(g.state.CapturedPieces.White, *captured)
		case Black:
			g.state.CapturedPieces.Black = append(g.state.CapturedPieces.Black, *captured)
		}
	}
	g.state.ToMove = g.state.Board.ToMove()
	g.state.LastMove = &SimpleMove{From: from, To: to}
	return nil
}

// Close releases the engine subprocess. Safe to call more than once.
func (g *Game) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.engine == nil {
		return nil
	}
	err := g.engine.Close()
	g.engine = nil
	return err
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return errors.New("not authorized to join this game")
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the existing connection and reject the duplicate.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	go g.broadcastState()
	return nil
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	delete(g.connections.connections, playerID)
}

func (g *Game) broadcastState() {
	// Marshal under the game lock: the state snapshot shares the board
	// pointer with the live game.
	g.mu.Lock()
	jsonGameState, err := json.Marshal(g.state)
	g.mu.Unlock()
	if err != nil {
		log.Printf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(jsonGameState),
		}); err != nil {
			log.Printf("game %s: send state to %s: %v", g.ID, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
}
