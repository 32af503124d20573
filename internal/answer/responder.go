// Package answer renders ranked code context into a natural language
// answer through an Ollama-compatible chat endpoint. The LLM is a
// best-effort collaborator: when it is unreachable the responder
// degrades to returning the raw context so the query pipeline's work is
// never lost.
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	qerrors "github.com/csight/csight/internal/errors"
	"github.com/csight/csight/internal/query"
)

// Defaults for the responder.
const (
	DefaultHost        = "http://localhost:11434"
	DefaultModel       = "qwen2.5-coder"
	DefaultTemperature = 0.1
	DefaultTimeout     = 60 * time.Second
)

const systemPrompt = `You are a code assistant for a C codebase. Answer the question using only the provided code context. Cite files and functions by name. If the context is insufficient, say so.`

// Config configures the responder.
type Config struct {
	// Host is the Ollama API endpoint.
	Host string

	// Model is the chat model.
	Model string

	// Temperature controls sampling (low for factual answers).
	Temperature float64

	// Timeout bounds one chat request.
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Answer is the responder's output.
type Answer struct {
	// Text is the answer body. When Degraded it is the raw context.
	Text string

	// Degraded marks answers produced without the LLM.
	Degraded bool

	// Confidence is carried over from the ranked result.
	Confidence float64
}

// Responder turns ranked results into answers.
type Responder struct {
	client *http.Client
	config Config
	logger *slog.Logger
}

// NewResponder creates a responder.
func NewResponder(cfg Config, logger *slog.Logger) *Responder {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		client: &http.Client{},
		config: cfg,
		logger: logger,
	}
}

// Respond answers the question from the ranked context. LLM failures
// degrade to a context dump rather than an error; the only error path
// is a malformed question.
func (r *Responder) Respond(ctx context.Context, question string, result *query.RankedResult) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, qerrors.New(qerrors.ErrCodeQueryEmpty, "question is empty", nil)
	}

	contextText := result.ContextString()
	text, err := r.chat(ctx, question, contextText)
	if err != nil {
		r.logger.Warn("llm unavailable, degrading to context dump", "error", err)
		return &Answer{
			Text:       degradedAnswer(contextText),
			Degraded:   true,
			Confidence: result.Confidence,
		}, nil
	}

	return &Answer{Text: text, Confidence: result.Confidence}, nil
}

func (r *Responder) chat(ctx context.Context, question, contextText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	prompt := fmt.Sprintf("Code context:\n\n%s\nQuestion: %s", contextText, question)
	body, err := json.Marshal(chatRequest{
		Model: r.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream:  false,
		Options: map[string]any{"temperature": r.config.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.Host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", qerrors.New(qerrors.ErrCodeAnswerFailed, "chat request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", qerrors.New(qerrors.ErrCodeAnswerFailed,
			fmt.Sprintf("chat failed with status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", qerrors.New(qerrors.ErrCodeAnswerFailed, "decode chat response", err)
	}
	if strings.TrimSpace(result.Message.Content) == "" {
		return "", qerrors.New(qerrors.ErrCodeAnswerFailed, "empty answer returned", nil)
	}

	return result.Message.Content, nil
}

func degradedAnswer(contextText string) string {
	return "Language model unavailable. Most relevant code context:\n\n" + contextText
}
