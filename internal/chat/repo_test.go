package chat

import (
	"context"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Turn{}, &Feedback{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestLogTurn_NewSessionBackPatchesOpeningRow(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	sid, err := repo.LogTurn(ctx, 1, nil, "hi", "hello")
	if err != nil {
		t.Fatalf("log turn: %v", err)
	}
	if sid == 0 {
		t.Fatalf("expected a non-zero session id")
	}

	var rows []Turn
	if err := repo.db.Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("query rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	opening, reply := rows[0], rows[1]
	if opening.ID != sid {
		t.Fatalf("session id must be the opening row id: got %d, want %d", sid, opening.ID)
	}
	if opening.ChatID == nil || *opening.ChatID != opening.ID {
		t.Fatalf("opening row must point at itself, got %v", opening.ChatID)
	}
	if opening.Query != "hi" || opening.Response != "" {
		t.Fatalf("unexpected opening row: query=%q response=%q", opening.Query, opening.Response)
	}
	if reply.ChatID == nil || *reply.ChatID != sid {
		t.Fatalf("assistant row must carry the session id, got %v", reply.ChatID)
	}
	if reply.Query != "" || reply.Response != "hello" {
		t.Fatalf("unexpected assistant row: query=%q response=%q", reply.Query, reply.Response)
	}
}

func TestLogTurn_ReusedSessionSkipsBackPatch(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	sid, err := repo.LogTurn(ctx, 1, nil, "hi", "hello")
	if err != nil {
		t.Fatalf("first exchange: %v", err)
	}

	got, err := repo.LogTurn(ctx, 1, &sid, "and then?", "more")
	if err != nil {
		t.Fatalf("second exchange: %v", err)
	}
	if got != sid {
		t.Fatalf("expected the same session id back, got %d want %d", got, sid)
	}

	var rows []Turn
	if err := repo.db.Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("query rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.ChatID == nil || *r.ChatID != sid {
			t.Fatalf("row %d must carry session id %d, got %v", i, sid, r.ChatID)
		}
	}
	// Later rows never point at themselves; only the opening row does.
	if rows[2].ID == *rows[2].ChatID {
		t.Fatalf("continuation row must not be self-referential")
	}
}

func TestListTurns_OddRowCountGetsPlaceholder(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	sid, err := repo.LogTurn(ctx, 1, nil, "hi", "hello")
	if err != nil {
		t.Fatalf("log turn: %v", err)
	}
	// A user row whose assistant partner never made it to the table.
	if err := repo.db.Create(&Turn{UserID: 1, ChatID: &sid, Query: "bye"}).Error; err != nil {
		t.Fatalf("seed dangling row: %v", err)
	}

	turns, err := repo.ListTurns(ctx, sid)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}

	want := []TurnEntry{
		{Sender: "user", Text: "hi"},
		{Sender: "ai", Text: "hello"},
		{Sender: "user", Text: "bye"},
		{Sender: "ai", Text: missingResponsePlaceholder},
	}
	if len(turns) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(turns), turns)
	}
	for i, w := range want {
		if turns[i].Sender != w.Sender || turns[i].Text != w.Text {
			t.Fatalf("entry %d: got (%s, %q), want (%s, %q)",
				i, turns[i].Sender, turns[i].Text, w.Sender, w.Text)
		}
	}
}

func TestListTurns_UnknownChatIsEmpty(t *testing.T) {
	repo := NewRepo(openTestDB(t))

	turns, err := repo.ListTurns(context.Background(), 12345)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no entries, got %+v", turns)
	}
}

func TestListSessions_NewestSessionFirst(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	first, err := repo.LogTurn(ctx, 1, nil, "oldest question", "a")
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	// An unrelated user's session interleaves the row ids.
	if _, err := repo.LogTurn(ctx, 2, nil, "someone else", "b"); err != nil {
		t.Fatalf("other user session: %v", err)
	}
	second, err := repo.LogTurn(ctx, 1, nil, "newest question", "c")
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	// Late traffic on the old session must not reorder the listing.
	if _, err := repo.LogTurn(ctx, 1, &first, "follow-up", "d"); err != nil {
		t.Fatalf("follow-up: %v", err)
	}

	sessions, err := repo.ListSessions(ctx, 1)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d: %+v", len(sessions), sessions)
	}
	if sessions[0].ChatID != second || sessions[0].Query != "newest question" {
		t.Fatalf("expected the newest session first, got %+v", sessions[0])
	}
	if sessions[1].ChatID != first || sessions[1].Query != "oldest question" {
		t.Fatalf("expected the oldest session last, got %+v", sessions[1])
	}
}

func TestInsertFeedback(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	chatID := uint64(10)
	if err := repo.InsertFeedback(ctx, &Feedback{UserID: 1, ChatID: &chatID, Rating: RatingUpvote}); err != nil {
		t.Fatalf("insert rating: %v", err)
	}
	if err := repo.InsertFeedback(ctx, &Feedback{UserID: 1, Rating: RatingDownvote, Comment: "too slow"}); err != nil {
		t.Fatalf("insert comment: %v", err)
	}

	var count int64
	if err := repo.db.Model(&Feedback{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 feedback rows, got %d", count)
	}
}
