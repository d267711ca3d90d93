package partyhistory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	tutorWelcome      = "同志您好！我是您的党史学习助手。无论是关于建党初期的艰辛，还是改革开放的辉煌，我都可以为您解答。请问您想了解哪段历史？"
	tutorNoAnswer     = "抱歉，我暂时无法回答这个问题。"
	tutorNetworkIssue = "网络连接似乎出了点问题，请稍后再试。"
)

// ChatSession is the tutor transcript for one viewer. One reply may be
// pending at a time.
type ChatSession struct {
	mu       sync.Mutex
	provider ContentProvider
	logger   *zap.Logger
	messages []ChatMessage
	pending  bool
	now      func() time.Time
}

// NewChatSession creates a transcript seeded with the tutor's welcome.
func NewChatSession(provider ContentProvider, logger *zap.Logger) *ChatSession {
	c := &ChatSession{
		provider: provider,
		logger:   orNop(logger),
		now:      time.Now,
	}
	c.messages = []ChatMessage{{ID: "welcome", Role: RoleModel, Text: tutorWelcome, SentAt: c.now()}}
	return c
}

// Messages returns a copy of the transcript.
func (c *ChatSession) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.messages...)
}

// Send appends the user's message, asks the provider and appends its reply.
// On provider failure an apology is appended and the error is returned
// wrapped in ErrTutorUnavailable.
func (c *ChatSession) Send(ctx context.Context, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return ChatMessage{}, ErrChatBusy
	}
	history := append([]ChatMessage(nil), c.messages...)
	c.messages = append(c.messages, ChatMessage{ID: uuid.NewString(), Role: RoleUser, Text: text, SentAt: c.now()})
	c.pending = true
	c.mu.Unlock()

	reply, err := c.provider.ChatReply(ctx, history, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false

	msg := ChatMessage{ID: uuid.NewString(), Role: RoleModel, SentAt: c.now()}
	switch {
	case err != nil:
		c.logger.Warn("Tutor reply failed", zap.Error(err))
		msg.Text = tutorNetworkIssue
		c.messages = append(c.messages, msg)
		return msg, fmt.Errorf("%w: %w", ErrTutorUnavailable, err)
	case strings.TrimSpace(reply) == "":
		msg.Text = tutorNoAnswer
	default:
		msg.Text = reply
	}
	c.messages = append(c.messages, msg)
	return msg, nil
}
