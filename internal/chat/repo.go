package chat

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const missingResponsePlaceholder = "AI response missing"

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// LogTurn persists one exchange as two rows. A nil chatID starts a new
// conversation: the opening row is inserted first and then back-patched so
// its chat_id points at its own row id, which becomes the session's
// persistent identifier. A non-nil chatID reuses that identifier and skips
// the back-patch.
func (r *Repo) LogTurn(ctx context.Context, userID uint64, chatID *uint64, query, response string) (uint64, error) {
	var sid uint64
	if chatID == nil {
		opening := &Turn{UserID: userID, Query: query}
		if err := r.db.WithContext(ctx).Create(opening).Error; err != nil {
			return 0, err
		}
		sid = opening.ID
		if err := r.db.WithContext(ctx).Model(&Turn{}).
			Where("id = ?", opening.ID).
			Update("chat_id", opening.ID).Error; err != nil {
			return 0, err
		}
	} else {
		sid = *chatID
		userRow := &Turn{UserID: userID, ChatID: &sid, Query: query}
		if err := r.db.WithContext(ctx).Create(userRow).Error; err != nil {
			return 0, err
		}
	}

	assistantRow := &Turn{UserID: userID, ChatID: &sid, Response: response}
	if err := r.db.WithContext(ctx).Create(assistantRow).Error; err != nil {
		return 0, err
	}
	return sid, nil
}

type SessionSummary struct {
	ChatID    uint64    `json:"chat_id"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// ListSessions returns one entry per conversation the user has, carrying the
// opening query, newest conversation first.
func (r *Repo) ListSessions(ctx context.Context, userID uint64) ([]SessionSummary, error) {
	openers := r.db.WithContext(ctx).Model(&Turn{}).
		Select("MIN(id)").
		Where("user_id = ? AND chat_id IS NOT NULL", userID).
		Group("chat_id")

	var rows []Turn
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", openers).
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(rows))
	for _, t := range rows {
		out = append(out, SessionSummary{ChatID: *t.ChatID, Query: t.Query, Timestamp: t.CreatedAt})
	}
	return out, nil
}

type TurnEntry struct {
	Sender    string    `json:"sender"` // "user" or "ai"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ListTurns fetches a conversation's rows in insertion order and folds them
// back into alternating user/assistant entries.
func (r *Repo) ListTurns(ctx context.Context, chatID uint64) ([]TurnEntry, error) {
	var rows []Turn
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return foldTurns(rows), nil
}

// foldTurns pairs consecutive rows positionally: row 2k is the user turn,
// row 2k+1 its assistant reply. A trailing user row without a partner gets a
// fixed placeholder instead of failing. Consecutive same-sender rows would
// mis-pair here; the write path never produces them.
func foldTurns(rows []Turn) []TurnEntry {
	out := make([]TurnEntry, 0, len(rows))
	for i := 0; i < len(rows); i += 2 {
		if rows[i].Query != "" {
			out = append(out, TurnEntry{Sender: "user", Text: rows[i].Query, Timestamp: rows[i].CreatedAt})
		}
		if i+1 < len(rows) {
			if rows[i+1].Response != "" {
				out = append(out, TurnEntry{Sender: "ai", Text: rows[i+1].Response, Timestamp: rows[i+1].CreatedAt})
			}
		} else {
			out = append(out, TurnEntry{Sender: "ai", Text: missingResponsePlaceholder, Timestamp: rows[i].CreatedAt})
		}
	}
	return out
}

func (r *Repo) InsertFeedback(ctx context.Context, f *Feedback) error {
	return r.db.WithContext(ctx).Create(f).Error
}
