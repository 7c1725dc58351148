// ABOUTME: ConversationStore is the sole writer of the conversation collection.
// ABOUTME: Every mutation is mirrored synchronously into the local snapshot.

package store

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jplx13/jplx-chat/internal/title"
)

// NewConversationTitle is used when a conversation is created without a
// first message to derive a title from.
const NewConversationTitle = "New Conversation"

// Store owns the set of conversation threads and the active selection.
// All reads return copies; nothing outside the store mutates the collection.
type Store struct {
	mu             sync.Mutex
	conversations  []Conversation
	activeID       string
	editingTitleID string
	snapshot       Snapshot
	logger         *slog.Logger
}

// New builds a store backed by the given snapshot. A corrupt or unreadable
// snapshot is logged and the store starts empty rather than failing.
// The previously active conversation is restored, falling back to the first
// conversation, falling back to none.
func New(snapshot Snapshot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		snapshot: snapshot,
		logger:   logger.With("component", "store"),
	}

	conversations, err := snapshot.Load()
	if err != nil {
		s.logger.Error("failed to load conversations, starting empty", "error", err)
		return s
	}
	s.conversations = conversations

	for i := range s.conversations {
		if s.conversations[i].Active {
			s.activeID = s.conversations[i].ID
			break
		}
	}
	if s.activeID == "" && len(s.conversations) > 0 {
		s.activeID = s.conversations[0].ID
	}
	s.normalizeActive()

	s.logger.Debug("conversations loaded", "count", len(s.conversations), "active_id", s.activeID)
	return s
}

// normalizeActive makes the Active flags agree with activeID.
// Caller must hold the lock (or be inside New).
func (s *Store) normalizeActive() {
	for i := range s.conversations {
		s.conversations[i].Active = s.conversations[i].ID == s.activeID
	}
}

// persist mirrors the collection into the snapshot. Persistence failures are
// logged, never surfaced; the in-memory state stays authoritative.
func (s *Store) persist() {
	if err := s.snapshot.Save(s.conversations); err != nil {
		s.logger.Error("failed to save conversations", "error", err)
	}
}

// NewConversation allocates a new conversation, makes it the only active
// one, and returns its id. When firstMessage is non-empty the title is
// derived from it; otherwise a placeholder title is used. The message itself
// is not appended here - AddMessage does that.
func (s *Store) NewConversation(firstMessage string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := NewConversationTitle
	if strings.TrimSpace(firstMessage) != "" {
		t = title.Generate(firstMessage)
	}

	now := time.Now()
	conv := Conversation{
		ID:          uuid.New().String(),
		Title:       t,
		Active:      true,
		LastMessage: firstMessage,
		CreatedAt:   now,
		UpdatedAt:   now,
		Timestamp:   now,
	}

	s.activeID = conv.ID
	s.conversations = append(s.conversations, conv)
	s.normalizeActive()
	s.persist()

	s.logger.Debug("conversation created", "conversation_id", conv.ID, "title", t)
	return conv.ID
}

// Switch makes the given conversation the active one. An unknown id is
// silently ignored; the return value lets callers print a hint.
func (s *Store) Switch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(id) {
		s.logger.Debug("switch ignored, unknown conversation", "conversation_id", id)
		return false
	}
	s.activeID = id
	s.normalizeActive()
	s.persist()
	return true
}

// AddMessage appends a message to the active conversation, refreshing the
// preview and activity markers. The first user message of a conversation
// re-derives its title; later messages never do. With no active conversation
// the append is silently dropped.
func (s *Store) AddMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(s.activeID)
	if idx < 0 {
		s.logger.Warn("message dropped, no active conversation")
		return
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	conv := &s.conversations[idx]
	firstMessage := len(conv.Messages) == 0

	conv.Messages = append(conv.Messages, msg)
	conv.LastMessage = msg.Content
	now := time.Now()
	conv.Timestamp = now
	conv.UpdatedAt = now
	if firstMessage && msg.Role == RoleUser {
		conv.Title = title.Generate(msg.Content)
	}

	s.persist()
	s.logger.Debug("message appended",
		"conversation_id", conv.ID,
		"message_id", msg.ID,
		"role", msg.Role,
		"is_error", msg.IsError)
}

// Delete removes a conversation. Deleting the active conversation promotes
// the most recently created remaining one; deleting the last conversation
// leaves the store empty with no active id. Unknown ids are silently ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Debug("delete ignored, unknown conversation", "conversation_id", id)
		return
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.editingTitleID == id {
		s.editingTitleID = ""
	}

	if s.activeID == id {
		if n := len(s.conversations); n > 0 {
			// Creation order is slice order, so the newest is last.
			s.activeID = s.conversations[n-1].ID
		} else {
			s.activeID = ""
		}
		s.normalizeActive()
	}
	s.persist()
	s.logger.Debug("conversation deleted", "conversation_id", id, "active_id", s.activeID)
}

// UpdateTitle overwrites a conversation's title with the trimmed input and
// clears any in-progress title edit. An empty trimmed title is a no-op.
func (s *Store) UpdateTitle(id, newTitle string) {
	trimmed := strings.TrimSpace(newTitle)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.conversations[idx].Title = trimmed
	s.conversations[idx].UpdatedAt = time.Now()
	s.editingTitleID = ""
	s.persist()
}

// StartEditingTitle marks a conversation as having its title edited.
func (s *Store) StartEditingTitle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(id) {
		s.editingTitleID = id
	}
}

// CancelEditingTitle clears the title-edit marker.
func (s *Store) CancelEditingTitle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingTitleID = ""
}

// EditingTitle returns the id of the conversation whose title is being
// edited, or the empty string.
func (s *Store) EditingTitle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingTitleID
}

// ClearAll empties the store and erases the persisted snapshot entirely.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	s.activeID = ""
	s.editingTitleID = ""
	if err := s.snapshot.Clear(); err != nil {
		s.logger.Error("failed to clear snapshot", "error", err)
	}
	s.logger.Debug("all conversations cleared")
}

// Active returns a copy of the active conversation, if any.
func (s *Store) Active() (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(s.activeID)
	if idx < 0 {
		return Conversation{}, false
	}
	return s.conversations[idx].clone(), true
}

// ActiveID returns the id of the active conversation, or the empty string.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Conversation{}, false
	}
	return s.conversations[idx].clone(), true
}

// List returns copies of all conversations in creation order.
func (s *Store) List() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Conversation, len(s.conversations))
	for i := range s.conversations {
		out[i] = s.conversations[i].clone()
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) exists(id string) bool {
	return s.indexOf(id) >= 0
}
