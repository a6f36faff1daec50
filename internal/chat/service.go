package chat

import (
	"context"

	"github.com/mycollege/chatbot-engine/pkg/zlog"
)

// SessionSource resolves and clears per-user session handles. The concrete
// implementation is Registry; tests substitute doubles.
type SessionSource interface {
	Resolve(userID uint64) Sender
	Clear(userID uint64) bool
}

type Service struct {
	repo     *Repo
	sessions SessionSource
	caller   *Caller
}

func NewService(repo *Repo, sessions SessionSource, caller *Caller) *Service {
	if caller == nil {
		caller = NewCaller(MaxRetries, BaseDelay)
	}
	return &Service{repo: repo, sessions: sessions, caller: caller}
}

type ChatRequest struct {
	UserID   uint64
	Query    string
	Image    []byte
	MimeType string
	ChatID   *uint64 // nil starts a new conversation
}

// SendMessage runs one exchange: resolve the session, call the model through
// the retry loop, sanitize the reply, then log both turns. Logging is best
// effort; on persistence failure the reply is still returned with a nil chat
// id, trading durability for availability.
func (s *Service) SendMessage(ctx context.Context, req ChatRequest) (string, *uint64, error) {
	sess := s.sessions.Resolve(req.UserID)

	raw, err := s.caller.Send(ctx, sess, req.Query, req.Image, req.MimeType)
	if err != nil {
		return "", nil, err
	}

	display := Clean(raw)

	chatID, logErr := s.repo.LogTurn(ctx, req.UserID, req.ChatID, req.Query, display)
	if logErr != nil {
		zlog.Errorf("conversation logging failed for user %d: %v", req.UserID, logErr)
		return display, nil, nil
	}
	zlog.Infof("response logged for user %d, chat id %d", req.UserID, chatID)
	return display, &chatID, nil
}

// ResetSession drops the user's in-memory session. Persisted history is
// unaffected. Reports whether there was anything to clear.
func (s *Service) ResetSession(userID uint64) bool {
	return s.sessions.Clear(userID)
}

func (s *Service) ListSessions(ctx context.Context, userID uint64) ([]SessionSummary, error) {
	return s.repo.ListSessions(ctx, userID)
}

func (s *Service) ListTurns(ctx context.Context, chatID uint64) ([]TurnEntry, error) {
	return s.repo.ListTurns(ctx, chatID)
}

func (s *Service) SubmitFeedback(ctx context.Context, f *Feedback) error {
	return s.repo.InsertFeedback(ctx, f)
}
