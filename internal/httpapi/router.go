package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mycollege/chatbot-engine/internal/httpapi/handlers"
	"github.com/mycollege/chatbot-engine/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	// The browser client is served from anywhere (even file://).
	r.Use(cors.Default())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "method not allowed"})
	})

	r.GET("/ping", h.Ping)

	api := r.Group("/api")
	api.POST("/chat", h.Chat)
	api.POST("/chat/reset", h.ResetChat)
	api.POST("/feedback/comment", h.FeedbackComment)
	api.POST("/feedback/rate", h.FeedbackRate)
	api.GET("/history", h.ListHistory)
	api.GET("/history/:chatId", h.GetHistoryTurns)

	return r
}
