// Package protocol defines the message shapes exchanged with language model
// completers.
package protocol

import (
	"fmt"
	"strings"
)

// Role identifies the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is one turn of a prompt.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Prompt builds the usual two-message prompt: an optional system instruction
// followed by the user content. An empty system string is omitted.
func Prompt(system, user string) []Message {
	if strings.TrimSpace(system) == "" {
		return []Message{NewMessage(RoleUser, user)}
	}
	return []Message{
		NewMessage(RoleSystem, system),
		NewMessage(RoleUser, user),
	}
}

// Split separates system content from the conversation turns. Multiple system
// messages are joined with blank lines.
func Split(messages []Message) (system string, turns []Message) {
	var parts []string
	for _, m := range messages {
		if m.Role == RoleSystem {
			parts = append(parts, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(parts, "\n\n"), turns
}

// Validate rejects empty prompts and unknown roles.
func Validate(messages []Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("prompt has no messages")
	}
	for i, m := range messages {
		if !m.Role.Valid() {
			return fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
	}
	return nil
}
