package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mycollege/chatbot-engine/internal/ai"
	"github.com/mycollege/chatbot-engine/pkg/zlog"
)

const (
	// MaxRetries bounds the attempts per request: at most one retry.
	MaxRetries = 2
	BaseDelay  = 5 * time.Second
)

// The two fixed user-facing failure messages. Handlers write these verbatim
// into the response body.
var (
	ErrInvalidAPIKey    = errors.New("Error 400: Invalid API Key. Please check your configuration and ensure the key is active.")
	ErrRetriesExhausted = errors.New("Error: The AI service failed to respond after multiple retries.")
)

// Caller wraps a session send with bounded retries and exponential backoff.
// A whitespace-only reply counts as a transient failure, same as a transient
// error; a classified hard error aborts without burning the remaining
// attempts.
type Caller struct {
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
}

func NewCaller(maxAttempts int, baseDelay time.Duration) *Caller {
	if maxAttempts <= 0 {
		maxAttempts = MaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = BaseDelay
	}
	return &Caller{maxAttempts: maxAttempts, baseDelay: baseDelay, sleep: time.Sleep}
}

func (c *Caller) Send(ctx context.Context, sess Sender, text string, image []byte, mimeType string) (string, error) {
	attempt := 0
	for attempt < c.maxAttempts {
		reply, err := sess.SendMessage(ctx, text, image, mimeType)
		switch {
		case err != nil && isHardError(err):
			zlog.Errorf("model call hard failure on attempt %d: %v", attempt+1, err)
			return "", ErrInvalidAPIKey
		case err != nil:
			zlog.Errorf("model call failed on attempt %d: %v", attempt+1, err)
		case strings.TrimSpace(reply) != "":
			return reply, nil
		default:
			zlog.Warnf("attempt %d: empty response from model, retrying", attempt+1)
		}

		attempt++
		if attempt < c.maxAttempts {
			// Doubling schedule starting at the base: base, 2*base, ...
			delay := c.baseDelay * time.Duration(1<<(attempt-1))
			zlog.Infof("waiting %s before next attempt", delay)
			c.sleep(delay)
		}
	}
	return "", ErrRetriesExhausted
}

// isHardError classifies non-retryable provider failures: an HTTP 400 reply
// or anything that reads like a rejected credential.
func isHardError(err error) bool {
	var apiErr *ai.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "api key not valid") || strings.Contains(msg, "invalid api key")
}
