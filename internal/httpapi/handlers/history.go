package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mycollege/chatbot-engine/pkg/zlog"
)

// ListHistory returns one entry per conversation for a user, newest first.
func (h *Handler) ListHistory(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("userId"), 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required."})
		return
	}

	sessions, err := h.ChatSvc.ListSessions(c.Request.Context(), userID)
	if err != nil {
		zlog.Errorf("history listing failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch chat history."})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetHistoryTurns returns the full conversation for a chat id as alternating
// user/ai turns.
func (h *Handler) GetHistoryTurns(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chatId"), 10, 64)
	if err != nil || chatID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "chatId must be a positive integer."})
		return
	}

	turns, err := h.ChatSvc.ListTurns(c.Request.Context(), chatID)
	if err != nil {
		zlog.Errorf("turn fetch failed for chat %d: %v", chatID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch chat messages."})
		return
	}
	c.JSON(http.StatusOK, turns)
}
