package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/asim-wecodethat/chess-backend/internal/config"
	"github.com/asim-wecodethat/chess-backend/internal/controller"
	"github.com/asim-wecodethat/chess-backend/internal/engine"
	"github.com/asim-wecodethat/chess-backend/internal/middleware"
	"github.com/asim-wecodethat/chess-backend/internal/model"
	"github.com/asim-wecodethat/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

func main() {
	cfg := config.Load()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize services
	newEngine := func(tier engine.Tier) (model.MoveEngine, error) {
		return engine.Start(cfg.Engine.Path, tier)
	}
	gameManager := service.NewGameManager(newEngine)
	gameService := service.NewGameService(gameManager, cfg.Engine.MoveTimeout)

	// Initialize controllers
	gameController := controller.NewGameController(gameService, cfg.Engine.DefaultTier)
	wsController := controller.NewWebSocketController(gameService)

	// Set up WebSocket routes
	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(func(c *websocket.Conn) {
		wsController.HandleConnection(c)
	}, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         []string{cfg.AllowOrigins},
	}))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())

	// Game routes
	gameRoutes := api.Group("/game")
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
	gameRoutes.Get("/:gameId", gameController.GetGameState)

	// Engine subprocesses must not outlive the server, so drain on
	// SIGINT/SIGTERM instead of letting log.Fatal tear the process down.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	if err := app.Listen(cfg.Addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
	gameManager.CloseAll()
}
