// ABOUTME: Conversation and message records held by the conversation store.
// ABOUTME: JSON tags define the persisted snapshot format - changing them breaks old snapshots.

package store

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FileInfo is attachment metadata carried on a message. The file bytes are
// never stored; only this descriptor survives into the transcript.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type,omitempty"`
}

// Message is a single turn in a conversation. Timestamp is set at creation
// and never mutated.
type Message struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Agent       string    `json:"agent,omitempty"`
	Model       string    `json:"model,omitempty"`
	File        *FileInfo `json:"file,omitempty"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	IsError     bool      `json:"isError,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Conversation is a titled, ordered thread of messages. Messages are
// append-only; the only in-place edit is the title.
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Active      bool      `json:"active"`
	LastMessage string    `json:"lastMessage"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Timestamp   time.Time `json:"timestamp"`
}

// clone returns a deep copy so callers can never alias store-owned state.
func (c *Conversation) clone() Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
