package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mycollege/chatbot-engine/pkg/zlog"
)

// DefaultSystemInstruction keeps general answers in plain markdown and limits
// code fences to explicit code requests.
const DefaultSystemInstruction = "You are an extremely concise, professional assistant. " +
	"For general, non-code questions, respond using only clean, standard markdown paragraphs and lists. " +
	"STRICTLY avoid generating JSON, Python list structures, or any complex, unnecessary formatting. " +
	"ONLY use code blocks when the user explicitly asks for code."

const defaultMaxOutputTokens = 400

// APIError is a non-2xx reply from the generative API. The status code drives
// retry classification upstream.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	BaseURL           string
	APIKey            string
	Model             string
	SystemInstruction string
	MaxOutputTokens   int
	HTTPClient        *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Client{
		BaseURL:           baseURL,
		APIKey:            apiKey,
		Model:             model,
		SystemInstruction: DefaultSystemInstruction,
		MaxOutputTokens:   defaultMaxOutputTokens,
		HTTPClient:        &http.Client{Timeout: 90 * time.Second},
	}
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type geminiGenerateReq struct {
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerateResp struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ChatSession is an in-memory conversational handle. It accumulates the turn
// history it sends with every call; it is not persisted anywhere.
type ChatSession struct {
	ID      string
	client  *Client
	history []geminiContent
}

// NewChat starts a fresh session carrying the client's fixed configuration.
// The session id ties log lines from one conversation together.
func (c *Client) NewChat() *ChatSession {
	s := &ChatSession{ID: uuid.NewString(), client: c}
	zlog.Infof("gemini chat session %s created, model %s", s.ID, c.Model)
	return s
}

// SendMessage sends one user turn (optionally with an inline attachment) and
// returns the model's text. The turn is committed to the session history only
// when a non-empty reply comes back, so a retry resends a clean exchange.
func (s *ChatSession) SendMessage(ctx context.Context, text string, image []byte, mimeType string) (string, error) {
	c := s.client
	if c.HTTPClient == nil {
		return "", errors.New("gemini: http client is nil")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return "", &APIError{StatusCode: http.StatusBadRequest, Message: "API key not valid"}
	}

	parts := []geminiPart{{Text: text}}
	if len(image) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: mimeType, Data: image}})
	}
	userTurn := geminiContent{Role: "user", Parts: parts}

	reqBody := geminiGenerateReq{
		Contents:         append(append([]geminiContent(nil), s.history...), userTurn),
		GenerationConfig: geminiGenerationConfig{MaxOutputTokens: c.MaxOutputTokens},
	}
	if c.SystemInstruction != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: c.SystemInstruction}},
		}
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.BaseURL, "/"), c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		var decoded geminiGenerateResp
		if json.Unmarshal(body, &decoded) == nil && decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var decoded geminiGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &APIError{StatusCode: decoded.Error.Code, Message: decoded.Error.Message}
	}
	if len(decoded.Candidates) == 0 {
		// Empty but not an error; the caller treats this as transient.
		return "", nil
	}

	var sb strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	reply := sb.String()

	if strings.TrimSpace(reply) == "" {
		return reply, nil
	}

	s.history = append(s.history, userTurn, geminiContent{
		Role:  "model",
		Parts: []geminiPart{{Text: reply}},
	})
	return reply, nil
}
