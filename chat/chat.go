// Package chat runs the scripted assistant conversations. The caller owns the
// transcript; a failed send leaves it untouched.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Sender delivers one message to the backend and returns its reply.
type Sender func(ctx context.Context, text string) (string, error)

var ErrSendFailed = errors.New("failed to send message")

// SendError keeps the text the user typed so it can be offered back for a retry.
type SendError struct {
	Text string
	Err  error
}

func (e *SendError) Error() string { return fmt.Sprintf("%v: %v", ErrSendFailed, e.Err) }

func (e *SendError) Unwrap() []error { return []error{ErrSendFailed, e.Err} }

type Conversation struct {
	greeting string
	history  []Message
	send     Sender
	now      func() time.Time
}

// NewConversation resumes history behind an optional greeting.
func NewConversation(greeting string, history []Message, send Sender) *Conversation {
	return &Conversation{
		greeting: greeting,
		history:  append([]Message(nil), history...),
		send:     send,
		now:      time.Now,
	}
}

// Transcript is the greeting (when set) followed by every exchanged message.
func (c *Conversation) Transcript() []Message {
	out := make([]Message, 0, len(c.history)+1)
	if c.greeting != "" {
		out = append(out, Message{Role: RoleAssistant, Content: c.greeting})
	}
	return append(out, c.history...)
}

// Send appends the user message and the reply on success and returns both.
func (c *Conversation) Send(ctx context.Context, text string) ([]Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &SendError{Text: text, Err: errors.New("message is empty")}
	}
	sent := c.now()
	reply, err := c.send(ctx, text)
	if err != nil {
		return nil, &SendError{Text: text, Err: err}
	}
	exchanged := []Message{
		{Role: RoleUser, Content: text, CreatedAt: sent},
		{Role: RoleAssistant, Content: reply, CreatedAt: c.now()},
	}
	c.history = append(c.history, exchanged...)
	return exchanged, nil
}
