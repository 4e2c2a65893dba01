package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/skillbridge/skillbridge-chat/internal/database"
	"github.com/skillbridge/skillbridge-chat/internal/handlers"
	"github.com/skillbridge/skillbridge-chat/internal/notifications"
	ws "github.com/skillbridge/skillbridge-chat/internal/websocket"
	"github.com/skillbridge/skillbridge-chat/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	Hub        *ws.Hub
	JWTManager *auth.JWTManager
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("MySQL connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	hub := ws.NewHub()
	go hub.Run()

	bridge := notifications.NewBridge(dbConn, hub)

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	chatH := handlers.NewChatHandler(dbConn, hub, bridge)
	wsH := handlers.NewWebSocketHandler(hub, chatH)
	httpChatH := handlers.NewHTTPChatHandler(dbConn)
	notifH := handlers.NewNotificationHandler(dbConn)
	appH := handlers.NewApplicationHandler(dbConn, bridge)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, wsH, httpChatH, notifH, appH)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		Hub:        hub,
		JWTManager: jwtMgr,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
