package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/skillbridge/skillbridge-chat/internal/handlers"
	"github.com/skillbridge/skillbridge-chat/internal/middleware"
	jwtauth "github.com/skillbridge/skillbridge-chat/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *jwtauth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	wsH *handlers.WebSocketHandler,
	chatH *handlers.HTTPChatHandler,
	notifH *handlers.NotificationHandler,
	appH *handlers.ApplicationHandler,
) {
	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", authH.Logout)
	}

	// Realtime канал
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)

	// API endpoints
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.POST("/chat/rooms", chatH.ResolveRoom)
		api.GET("/chat/rooms", chatH.GetMyRooms)
		api.GET("/chat/rooms/:id/messages", chatH.GetRoomMessages)
		api.PUT("/chat/rooms/:id/read", chatH.MarkRoomRead)

		api.GET("/notifications", notifH.GetNotifications)
		api.GET("/notifications/unread-count", notifH.GetUnreadCount)
		api.PUT("/notifications/:id/read", notifH.MarkRead)
		api.PUT("/notifications/read-all", notifH.MarkAllRead)

		api.PUT("/applications/:id/status", appH.UpdateStatus)
	}
}
