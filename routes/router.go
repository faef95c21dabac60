package routes

import (
	"log"
	"net/http"
	"time"

	"pollboard-backend/auth"
	"pollboard-backend/config"
	"pollboard-backend/handlers"
	"pollboard-backend/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP server so main can drive graceful shutdown.
type Server struct {
	*http.Server
}

// SetupRouter configures the gin engine with middleware and all routes.
func SetupRouter(wsHandler *websocket.Handler) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // restrict to the frontend domain in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		if config.C.RateLimitEnabled() {
			api.Use(handlers.RateLimitMiddleware())
		}

		api.GET("/health", handlers.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", handlers.Signup)
			authGroup.POST("/login", handlers.Login)
		}

		protected := api.Group("")
		protected.Use(auth.RequireSession(config.C.JWTSecret()))
		{
			protected.POST("/auth/logout", handlers.Logout)
			protected.GET("/auth/me", handlers.Me)

			protected.GET("/profile", handlers.WithSession(handlers.Profile))

			protected.GET("/dashboard", handlers.WithSession(handlers.Dashboard))
			protected.GET("/dashboard/created", handlers.WithSession(handlers.CreatedPolls))
			protected.GET("/dashboard/open", handlers.WithSession(handlers.OpenPolls))

			polls := protected.Group("/polls")
			{
				polls.POST("", handlers.WithSession(handlers.CreatePoll))
				polls.GET("", handlers.WithSession(handlers.GetPolls))
				polls.GET("/:id", handlers.WithSession(handlers.GetPoll))
				polls.GET("/:id/results", handlers.WithSession(handlers.GetPollResults))
				polls.DELETE("/:id", handlers.WithSession(handlers.DeletePoll))
				polls.POST("/:id/vote", handlers.WithSession(handlers.SubmitVote))
			}
		}

		// Live results go over WebSocket; browsers cannot attach an
		// Authorization header to the upgrade request, so this route
		// stays outside the session group.
		api.GET("/polls/:id/ws", wsHandler.Subscribe)
	}

	return router
}

// StartServer starts the HTTP server in a goroutine and returns it so
// the caller can shut it down.
func StartServer(router *gin.Engine) *Server {
	addr := ":" + config.C.ServerPort()

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	return srv
}
