package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mycollege/chatbot-engine/internal/chat"
	"github.com/mycollege/chatbot-engine/internal/store/rabbitmq"
	"github.com/mycollege/chatbot-engine/pkg/zlog"
)

type feedbackCommentReq struct {
	UserID  uint64 `json:"userId"`
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) FeedbackComment(c *gin.Context) {
	var req feedbackCommentReq
	_ = c.ShouldBindJSON(&req)

	if req.UserID == 0 || req.Rating == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID and rating are required."})
		return
	}
	rating, ok := chat.NormalizeRating(req.Rating)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rating must be UPVOTE or DOWNVOTE."})
		return
	}

	f := &chat.Feedback{UserID: req.UserID, Rating: rating, Comment: req.Comment}
	if err := h.ChatSvc.SubmitFeedback(c.Request.Context(), f); err != nil {
		zlog.Errorf("feedback comment insert failed for user %d: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to log feedback to database."})
		return
	}

	h.publishFeedback(c, f)
	c.JSON(http.StatusOK, gin.H{"message": "Feedback logged successfully."})
}

type feedbackRateReq struct {
	UserID uint64  `json:"userId"`
	ChatID *uint64 `json:"chatId"`
	Rating string  `json:"rating"`
}

func (h *Handler) FeedbackRate(c *gin.Context) {
	var req feedbackRateReq
	_ = c.ShouldBindJSON(&req)

	if req.UserID == 0 || req.ChatID == nil || req.Rating == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID, Chat ID, and rating are required."})
		return
	}
	rating, ok := chat.NormalizeRating(req.Rating)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rating must be UPVOTE or DOWNVOTE."})
		return
	}

	f := &chat.Feedback{UserID: req.UserID, ChatID: req.ChatID, Rating: rating}
	if err := h.ChatSvc.SubmitFeedback(c.Request.Context(), f); err != nil {
		zlog.Errorf("rating insert failed for user %d: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to log rating to database."})
		return
	}

	h.publishFeedback(c, f)
	c.JSON(http.StatusOK, gin.H{"message": "Rating logged successfully."})
}

// publishFeedback mirrors accepted feedback onto the event queue, best
// effort: a publish failure never affects the response.
func (h *Handler) publishFeedback(c *gin.Context, f *chat.Feedback) {
	if h.Events == nil {
		return
	}
	ev := rabbitmq.FeedbackEvent{
		UserID:  f.UserID,
		ChatID:  f.ChatID,
		Rating:  f.Rating,
		Comment: f.Comment,
	}
	if err := h.Events.PublishFeedback(c.Request.Context(), ev); err != nil {
		zlog.Warnf("feedback event publish failed for user %d: %v", f.UserID, err)
	}
}
