// Package store owns the conversation collection and its local persistence.
//
// # Model
//
// A Conversation is a titled, ordered thread of Messages. At most one
// conversation is active at a time; the active conversation is the one
// receiving new messages and shown in the main view.
//
// # Store
//
// The Store is the sole writer of record:
//
//	snap, _ := store.OpenBoltSnapshot(path)
//	s := store.New(snap, logger)
//	id := s.NewConversation("plan the launch")
//	s.AddMessage(store.Message{Role: store.RoleUser, Content: "plan the launch"})
//
// Key operations:
//
//   - NewConversation(firstMessage): create and activate a thread
//   - Switch(id): change the active thread (unknown ids silently ignored)
//   - AddMessage(msg): append to the active thread; the first user message
//     derives the thread's title, later messages never re-derive it
//   - Delete(id): remove a thread; deleting the active one promotes the
//     most recently created remaining thread
//   - UpdateTitle(id, title): manual retitle
//   - ClearAll(): empty the store and erase the snapshot
//
// All reads return copies; callers never alias store-owned state.
//
// # Persistence
//
// Every mutation synchronously mirrors the full collection as one JSON
// array into a bbolt file, under a fixed bucket and key. On startup the
// snapshot is loaded and the previously active thread restored. A corrupt
// snapshot is logged and the store starts empty; it never fails the caller.
package store
