package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pollboard-backend/cache"
	"pollboard-backend/config"
	"pollboard-backend/database"
	"pollboard-backend/handlers"
	"pollboard-backend/mq"
	"pollboard-backend/routes"
	"pollboard-backend/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := database.InitDB(cfg); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := cache.InitRedis(cfg); err != nil {
		log.Printf("warning: redis unavailable, continuing without it: %v", err)
	}
	cache.InitDistLock()

	hub := websocket.NewHub()
	go hub.Run()

	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	bridge := mq.NewBridge(hub)
	bridge.Start(bridgeCtx)

	handlers.InitHandlers(bridge)

	router := routes.SetupRouter(websocket.NewHandler(hub))
	srv := routes.StartServer(router)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	stopBridge()
	database.CloseDB()
	cache.CloseRedis()

	log.Println("server stopped")
}
