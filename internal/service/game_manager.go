// service/game_manager.go
package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/asim-wecodethat/chess-backend/internal/engine"
	"github.com/asim-wecodethat/chess-backend/internal/model"
	"github.com/gofiber/websocket/v2"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// EngineFactory starts one engine subprocess configured for a tier.
// Injected so tests can substitute a stub for a real UCI binary.
type EngineFactory func(tier engine.Tier) (model.MoveEngine, error)

type GameManager struct {
	games     map[string]*model.Game
	newEngine EngineFactory
	mu        sync.RWMutex
}

func NewGameManager(newEngine EngineFactory) *GameManager {
	return &GameManager{
		games:     make(map[string]*model.Game),
		newEngine: newEngine,
	}
}

// CreateGame starts the engine for the tier and registers the session.
// The factory validates the tier before the process is spawned, so an
// unknown tier never costs a subprocess.
func (gm *GameManager) CreateGame(gameID string, tier engine.Tier) error {
	gm.mu.RLock()
	_, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return ErrGameExists
	}

	eng, err := gm.newEngine(tier)
	if err != nil {
		return err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, exists := gm.games[gameID]; exists {
		eng.Close()
		return ErrGameExists
	}
	gm.games[gameID] = model.NewGame(gameID, eng)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.Move) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

// EngineMove plays the automated side's reply for the game.
func (gm *GameManager) EngineMove(ctx context.Context, gameID string) (model.SimpleMove, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.SimpleMove{}, err
	}
	return game.EngineMove(ctx)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID)
}

// RemoveGame drops the session and reaps its engine subprocess.
func (gm *GameManager) RemoveGame(gameID string) error {
	gm.mu.Lock()
	game, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if !exists {
		return ErrGameNotFound
	}
	return game.Close()
}

// CloseAll shuts down every session's engine. Called on server exit so
// no subprocess outlives the server.
func (gm *GameManager) CloseAll() {
	gm.mu.Lock()
	games := gm.games
	gm.games = make(map[string]*model.Game)
	gm.mu.Unlock()

	for id, game := range games {
		if err := game.Close(); err != nil {
			log.Printf("closing engine for game %s: %v", id, err)
		}
	}
}
