package chat

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSessions struct {
	sender   Sender
	resolved int
	live     bool
}

func (f *fakeSessions) Resolve(userID uint64) Sender {
	_ = userID
	f.resolved++
	f.live = true
	return f.sender
}

func (f *fakeSessions) Clear(userID uint64) bool {
	_ = userID
	had := f.live
	f.live = false
	return had
}

func quietCaller(maxAttempts int) *Caller {
	c := NewCaller(maxAttempts, time.Millisecond)
	c.sleep = func(time.Duration) {}
	return c
}

func TestSendMessage_LogsSanitizedReply(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	sender := &scriptedSender{replies: []string{"pre ```python\n<b>x</b> = *y*\n```"}}
	sessions := &fakeSessions{sender: sender}
	svc := NewService(repo, sessions, quietCaller(MaxRetries))

	reply, chatID, err := svc.SendMessage(context.Background(), ChatRequest{UserID: 1, Query: "show me code"})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	want := "```python\nx = y\n```"
	if reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if chatID == nil {
		t.Fatalf("expected a chat id")
	}

	var rows []Turn
	if err := repo.db.Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("query rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Query != "show me code" {
		t.Fatalf("unexpected logged query: %q", rows[0].Query)
	}
	// The sanitized text is what gets persisted, so replay matches display.
	if rows[1].Response != want {
		t.Fatalf("logged response = %q, want %q", rows[1].Response, want)
	}
}

func TestSendMessage_ContinuesExistingConversation(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	sender := &scriptedSender{replies: []string{"first", "second"}}
	sessions := &fakeSessions{sender: sender}
	svc := NewService(repo, sessions, quietCaller(MaxRetries))
	ctx := context.Background()

	_, chatID, err := svc.SendMessage(ctx, ChatRequest{UserID: 1, Query: "hi"})
	if err != nil {
		t.Fatalf("first exchange: %v", err)
	}

	_, next, err := svc.SendMessage(ctx, ChatRequest{UserID: 1, Query: "more", ChatID: chatID})
	if err != nil {
		t.Fatalf("second exchange: %v", err)
	}
	if next == nil || *next != *chatID {
		t.Fatalf("expected the conversation id to be reused, got %v want %v", next, chatID)
	}
}

func TestSendMessage_PersistenceFailureStillReturnsReply(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	sender := &scriptedSender{replies: []string{"the answer"}}
	sessions := &fakeSessions{sender: sender}
	svc := NewService(repo, sessions, quietCaller(MaxRetries))

	// Break the write path after migration.
	if err := db.Migrator().DropTable(&Turn{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	reply, chatID, err := svc.SendMessage(context.Background(), ChatRequest{UserID: 1, Query: "hi"})
	if err != nil {
		t.Fatalf("the request must survive a logging failure, got %v", err)
	}
	if reply != "the answer" {
		t.Fatalf("reply = %q", reply)
	}
	if chatID != nil {
		t.Fatalf("expected a nil chat id when logging failed, got %v", *chatID)
	}
}

func TestSendMessage_ProviderExhaustionSurfacesFixedMessage(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	sender := &scriptedSender{} // always empty
	sessions := &fakeSessions{sender: sender}
	svc := NewService(repo, sessions, quietCaller(MaxRetries))

	_, chatID, err := svc.SendMessage(context.Background(), ChatRequest{UserID: 1, Query: "hi"})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	if chatID != nil {
		t.Fatalf("no chat id expected on failure")
	}

	// Nothing was logged for the failed exchange.
	var count int64
	if err := repo.db.Model(&Turn{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}

func TestResetSession_ReportsBothOutcomes(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	sessions := &fakeSessions{sender: &scriptedSender{replies: []string{"ok"}}}
	svc := NewService(repo, sessions, quietCaller(MaxRetries))

	if svc.ResetSession(1) {
		t.Fatalf("nothing to clear yet")
	}
	if _, _, err := svc.SendMessage(context.Background(), ChatRequest{UserID: 1, Query: "hi"}); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if !svc.ResetSession(1) {
		t.Fatalf("expected a session to be cleared")
	}
}
