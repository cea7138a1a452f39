package service

import (
	"context"
	"fmt"
	"time"

	"github.com/asim-wecodethat/chess-backend/internal/engine"
	"github.com/asim-wecodethat/chess-backend/internal/model"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
	moveTimeout time.Duration
}

// NewGameService wraps the manager. moveTimeout bounds every engine
// best-move wait; zero means the caller's context is the only bound.
func NewGameService(gameManager *GameManager, moveTimeout time.Duration) *GameService {
	return &GameService{
		gameManager: gameManager,
		moveTimeout: moveTimeout,
	}
}

// CreateGame starts a new session against the engine at the given
// difficulty tier and returns its ID.
func (gs *GameService) CreateGame(tier string) (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID, engine.Tier(tier)); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

// HandleMove plays the human move and, if it is accepted, the engine's
// reply. An engine failure after an accepted human move is returned to
// the caller but the session stays usable.
func (gs *GameService) HandleMove(ctx context.Context, gameID string, playerID string, move model.Move) error {
	if err := gs.gameManager.MakeMove(gameID, playerID, move); err != nil {
		return err
	}

	if gs.moveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gs.moveTimeout)
		defer cancel()
	}
	if _, err := gs.gameManager.EngineMove(ctx, gameID); err != nil {
		return err
	}
	return nil
}

func (gs *GameService) EndGame(gameID string) error {
	return gs.gameManager.RemoveGame(gameID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}
