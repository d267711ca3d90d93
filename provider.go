package partyhistory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel = "gemini-2.5-flash"

	DefaultQuestionCount = 5
	DefaultTimelineCount = 8
)

// ContentProvider is the remote generative service that supplies quiz
// questions, timeline events and tutor replies.
type ContentProvider interface {
	FetchQuestions(ctx context.Context, n int) ([]Question, error)
	FetchTimeline(ctx context.Context, n int) ([]TimelineEvent, error)
	ChatReply(ctx context.Context, history []ChatMessage, message string) (string, error)
	Name() string
}

// ProviderConfig carries everything needed to build a provider client.
// Clients are constructed from it explicitly; nothing is read from the
// environment here.
type ProviderConfig struct {
	Name    string
	APIKey  string
	Model   string
	BaseURL string // optional endpoint override (proxies, tests)

	Transcript *Transcript
	Logger     *zap.Logger
}

// NewProvider builds the provider named by cfg.Name. An empty name selects Gemini.
func NewProvider(ctx context.Context, cfg ProviderConfig) (ContentProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for %q", ErrMissingAPIKey, cfg.Name)
	}

	switch cfg.Name {
	case ProviderGemini, "":
		return NewGeminiProvider(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Name)
	}
}

// decodeList parses a JSON array returned by a provider. Models sometimes wrap
// JSON in a markdown fence, which is stripped first.
func decodeList[T any](raw string) ([]T, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var items []T
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyResponse
	}
	return items, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
