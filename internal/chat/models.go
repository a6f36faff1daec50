package chat

import (
	"strings"
	"time"
)

// Turn is one direction of a conversation in the flat chats table: a user row
// carries a non-empty Query and an empty Response, an assistant row the
// opposite. Rows within a chat strictly alternate user then assistant; the
// history fold depends on that ordering.
type Turn struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"user_id"`
	ChatID    *uint64   `gorm:"index" json:"chat_id"` // nil until back-patched on the opening row
	Query     string    `gorm:"type:text" json:"query"`
	Response  string    `gorm:"type:text" json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

func (Turn) TableName() string { return "chats" }

const (
	RatingUpvote   = "UPVOTE"
	RatingDownvote = "DOWNVOTE"
)

// Feedback is write-only from this service; nothing here reads it back.
type Feedback struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	UserID    uint64  `gorm:"index;not null"`
	ChatID    *uint64 `gorm:"index"`
	Rating    string  `gorm:"type:varchar(16);not null"`
	Comment   string  `gorm:"type:text"`
	CreatedAt time.Time
}

func (Feedback) TableName() string { return "feedback" }

// NormalizeRating maps client input onto the stored rating enum.
func NormalizeRating(raw string) (string, bool) {
	switch {
	case strings.EqualFold(raw, RatingUpvote):
		return RatingUpvote, true
	case strings.EqualFold(raw, RatingDownvote):
		return RatingDownvote, true
	default:
		return "", false
	}
}
