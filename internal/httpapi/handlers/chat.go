package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mycollege/chatbot-engine/internal/chat"
)

type chatReq struct {
	Query            string  `json:"query"`
	UserID           uint64  `json:"userId"`
	ImageData        []byte  `json:"image_data"`
	MimeType         string  `json:"mime_type"`
	CurrentSessionID *uint64 `json:"currentSessionId"`
}

// Chat relays one user message to the model and returns the cleaned reply
// plus the persistent chat id (null when logging failed).
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	_ = c.ShouldBindJSON(&req) // empty or malformed body fails the query check below

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"response": "Query cannot be empty."})
		return
	}
	if req.UserID == 0 {
		req.UserID = 1
	}

	reply, chatID, err := h.ChatSvc.SendMessage(c.Request.Context(), chat.ChatRequest{
		UserID:   req.UserID,
		Query:    req.Query,
		Image:    req.ImageData,
		MimeType: req.MimeType,
		ChatID:   req.CurrentSessionID,
	})
	if err != nil {
		// Only the two fixed provider failures reach here.
		c.JSON(http.StatusInternalServerError, gin.H{"response": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": reply,
		"chatId":   chatID,
	})
}

type resetReq struct {
	UserID uint64 `json:"userId"`
}

func (h *Handler) ResetChat(c *gin.Context) {
	var req resetReq
	_ = c.ShouldBindJSON(&req)
	if req.UserID == 0 {
		req.UserID = 1
	}

	if h.ChatSvc.ResetSession(req.UserID) {
		c.JSON(http.StatusOK, gin.H{"message": "Session cleared."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "No session found to clear."})
}
