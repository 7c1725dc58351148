// ABOUTME: Tests for the conversation store.
// ABOUTME: Verifies active-selection, titling, deletion promotion, and persistence mirroring.

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSnapshot implements Snapshot in memory for store tests.
type memSnapshot struct {
	data      []Conversation
	loadErr   error
	saveErr   error
	saveCalls int
	cleared   bool
}

func (m *memSnapshot) Load() ([]Conversation, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memSnapshot) Save(conversations []Conversation) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = make([]Conversation, len(conversations))
	copy(m.data, conversations)
	return nil
}

func (m *memSnapshot) Clear() error {
	m.data = nil
	m.cleared = true
	return nil
}

func (m *memSnapshot) Close() error { return nil }

func newTestStore(t *testing.T) (*Store, *memSnapshot) {
	t.Helper()
	snap := &memSnapshot{}
	return New(snap, nil), snap
}

func TestNewConversationActivation(t *testing.T) {
	s, _ := newTestStore(t)

	a := s.NewConversation("")
	b := s.NewConversation("")

	assert.Equal(t, b, s.ActiveID())

	convA, ok := s.Get(a)
	require.True(t, ok)
	assert.False(t, convA.Active)

	convB, ok := s.Get(b)
	require.True(t, ok)
	assert.True(t, convB.Active)
}

func TestNewConversationTitles(t *testing.T) {
	s, _ := newTestStore(t)

	id := s.NewConversation("")
	conv, _ := s.Get(id)
	assert.Equal(t, NewConversationTitle, conv.Title)

	id = s.NewConversation("can you draft a project roadmap")
	conv, _ = s.Get(id)
	assert.Equal(t, "Draft Project Roadmap", conv.Title)
}

func TestSwitch(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.NewConversation("")
	b := s.NewConversation("")

	require.True(t, s.Switch(a))
	assert.Equal(t, a, s.ActiveID())

	convB, _ := s.Get(b)
	assert.False(t, convB.Active)

	// Unknown ids are silently ignored.
	assert.False(t, s.Switch("no-such-id"))
	assert.Equal(t, a, s.ActiveID())
}

func TestAddMessageTitlesOnlyOnce(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.NewConversation("")

	s.AddMessage(Message{Role: RoleUser, Content: "please review the deployment pipeline"})
	conv, _ := s.Get(id)
	assert.Equal(t, "Review Deployment Pipeline", conv.Title)

	s.AddMessage(Message{Role: RoleAssistant, Content: "Sure, here is the review."})
	s.AddMessage(Message{Role: RoleUser, Content: "now explain the rollback strategy"})
	conv, _ = s.Get(id)
	assert.Equal(t, "Review Deployment Pipeline", conv.Title)
	assert.Len(t, conv.Messages, 3)
}

func TestAddMessageFirstAssistantDoesNotTitle(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.NewConversation("")

	s.AddMessage(Message{Role: RoleAssistant, Content: "Welcome! How can I help?"})
	conv, _ := s.Get(id)
	assert.Equal(t, NewConversationTitle, conv.Title)
}

func TestAddMessageUpdatesPreviewAndTimestamps(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.NewConversation("")
	before, _ := s.Get(id)

	s.AddMessage(Message{Role: RoleUser, Content: "hello there"})
	after, _ := s.Get(id)

	assert.Equal(t, "hello there", after.LastMessage)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	assert.False(t, after.Timestamp.Before(before.Timestamp))
	require.Len(t, after.Messages, 1)
	assert.NotEmpty(t, after.Messages[0].ID)
	assert.False(t, after.Messages[0].Timestamp.IsZero())
}

func TestAddMessageNoActiveConversation(t *testing.T) {
	s, snap := newTestStore(t)
	saves := snap.saveCalls

	s.AddMessage(Message{Role: RoleUser, Content: "lost"})

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, saves, snap.saveCalls)
}

func TestDeleteActivePromotesNewest(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.NewConversation("")
	b := s.NewConversation("")
	c := s.NewConversation("")

	require.Equal(t, c, s.ActiveID())
	s.Delete(c)

	// The most recently created remaining conversation wins.
	assert.Equal(t, b, s.ActiveID())
	convA, _ := s.Get(a)
	assert.False(t, convA.Active)
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.NewConversation("")
	b := s.NewConversation("")

	s.Delete(a)
	assert.Equal(t, b, s.ActiveID())
	assert.Equal(t, 1, s.Len())
}

func TestDeleteLastLeavesStoreEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.NewConversation("")

	s.Delete(id)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.ActiveID())

	_, ok := s.Active()
	assert.False(t, ok)
}

func TestDeleteUnknownIgnored(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.NewConversation("")

	s.Delete("no-such-id")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, id, s.ActiveID())
}

func TestUpdateTitle(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.NewConversation("")

	s.StartEditingTitle(id)
	assert.Equal(t, id, s.EditingTitle())

	s.UpdateTitle(id, "  Sprint Planning  ")
	conv, _ := s.Get(id)
	assert.Equal(t, "Sprint Planning", conv.Title)
	assert.Empty(t, s.EditingTitle())
}

func TestUpdateTitleEmptyIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.NewConversation("budget forecast discussion")
	conv, _ := s.Get(id)
	original := conv.Title

	s.UpdateTitle(id, "   ")
	conv, _ = s.Get(id)
	assert.Equal(t, original, conv.Title)
}

func TestCancelEditingTitle(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.NewConversation("")

	s.StartEditingTitle(id)
	s.CancelEditingTitle()
	assert.Empty(t, s.EditingTitle())
}

func TestClearAll(t *testing.T) {
	s, snap := newTestStore(t)
	s.NewConversation("one")
	s.NewConversation("two")

	s.ClearAll()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.ActiveID())
	assert.True(t, snap.cleared)
}

func TestEveryMutationPersists(t *testing.T) {
	s, snap := newTestStore(t)

	id := s.NewConversation("")
	s.AddMessage(Message{Role: RoleUser, Content: "hi"})
	s.UpdateTitle(id, "Renamed")
	other := s.NewConversation("")
	s.Switch(id)
	s.Delete(other)

	assert.Equal(t, 6, snap.saveCalls)
}

func TestCorruptSnapshotFallsBackToEmpty(t *testing.T) {
	snap := &memSnapshot{loadErr: errors.New("unexpected end of JSON input")}
	s := New(snap, nil)

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.ActiveID())

	// The store still works after the failed load.
	id := s.NewConversation("recovery test")
	assert.Equal(t, id, s.ActiveID())
}

func TestSaveFailureNotSurfaced(t *testing.T) {
	snap := &memSnapshot{saveErr: errors.New("disk full")}
	s := New(snap, nil)

	id := s.NewConversation("still works")
	assert.Equal(t, id, s.ActiveID())
	assert.Equal(t, 1, s.Len())
}

func TestLoadRestoresActiveSelection(t *testing.T) {
	now := time.Now()
	snap := &memSnapshot{data: []Conversation{
		{ID: "a", Title: "First", CreatedAt: now, UpdatedAt: now, Timestamp: now},
		{ID: "b", Title: "Second", Active: true, CreatedAt: now, UpdatedAt: now, Timestamp: now},
	}}
	s := New(snap, nil)

	assert.Equal(t, "b", s.ActiveID())
}

func TestLoadFallsBackToFirstConversation(t *testing.T) {
	now := time.Now()
	snap := &memSnapshot{data: []Conversation{
		{ID: "a", Title: "First", CreatedAt: now, UpdatedAt: now, Timestamp: now},
		{ID: "b", Title: "Second", CreatedAt: now, UpdatedAt: now, Timestamp: now},
	}}
	s := New(snap, nil)

	assert.Equal(t, "a", s.ActiveID())
	conv, ok := s.Active()
	require.True(t, ok)
	assert.True(t, conv.Active)
}

func TestListReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	s.NewConversation("immutable view")
	s.AddMessage(Message{Role: RoleUser, Content: "original"})

	list := s.List()
	require.Len(t, list, 1)
	list[0].Title = "mutated"
	list[0].Messages[0].Content = "mutated"

	conv, _ := s.Active()
	assert.NotEqual(t, "mutated", conv.Title)
	assert.Equal(t, "original", conv.Messages[0].Content)
}
