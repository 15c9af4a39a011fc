// Package chat holds the assistant conversation and its voice pipeline.
// Providers are reached through the Completer, Transcriber and Synthesizer
// interfaces; Client implements all of them on the OpenAI API.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/JustZavala/onboard/internal/logger"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one visible turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNoSpeech      = errors.New("no speech recognized")
	ErrMissingAPIKey = errors.New("an API key is required: set chat.api_key or OPENAI_API_KEY")
)

// Completer produces the assistant reply for a transcript.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// Synthesizer turns text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Conversation is a transcript seeded with a system prompt that History never
// returns. It is safe for concurrent use.
type Conversation struct {
	mu      sync.Mutex
	system  string
	history []Message
}

// NewConversation starts an empty transcript.
func NewConversation(system string) *Conversation {
	return &Conversation{system: system}
}

// System returns the hidden prompt.
func (c *Conversation) System() string {
	return c.system
}

// History returns a copy of the visible turns, oldest first.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

// Reset drops every turn but keeps the system prompt.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}

// Send records text as a user turn, asks completer for a reply and records it.
// A failed completion leaves the user turn in place so a retry sees it.
func (c *Conversation) Send(ctx context.Context, completer Completer, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	c.mu.Lock()
	c.history = append(c.history, Message{Role: RoleUser, Content: text})
	history := append([]Message(nil), c.history...)
	c.mu.Unlock()

	reply, err := completer.Complete(ctx, c.system, history)
	if err != nil {
		return "", fmt.Errorf("completing chat: %w", err)
	}

	c.mu.Lock()
	c.history = append(c.history, Message{Role: RoleAssistant, Content: reply})
	c.mu.Unlock()
	logger.Debug("chat: %d turns", len(history)+1)
	return reply, nil
}
