package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mycollege/chatbot-engine/internal/chat"
	"github.com/mycollege/chatbot-engine/internal/store/rabbitmq"
)

type Handler struct {
	ChatSvc *chat.Service
	Events  *rabbitmq.Publisher // nil when the feedback event feed is disabled
}

func NewHandler(svc *chat.Service, events *rabbitmq.Publisher) *Handler {
	return &Handler{ChatSvc: svc, Events: events}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
