// Package memory keeps a short per-user conversation history for the mention
// responder. Everything lives in process memory and dies with it.
package memory

import "sync"

// Message is one conversation turn.
type Message struct {
	Role    string
	Content string
}

// Store maps user IDs to their recent exchanges. Each user's history is
// bounded to maxMessages entries; older turns fall off the front.
type Store struct {
	mu          sync.Mutex
	users       map[string][]Message
	maxMessages int
}

func NewStore(maxMessages int) *Store {
	if maxMessages < 1 {
		maxMessages = 1
	}
	return &Store{
		users:       map[string][]Message{},
		maxMessages: maxMessages,
	}
}

// Append records a turn for a user, trimming to the configured bound.
func (s *Store) Append(userID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.users[userID], Message{Role: role, Content: content})
	if len(list) > s.maxMessages {
		list = list[len(list)-s.maxMessages:]
	}
	s.users[userID] = list
}

// AppendExchange records a user turn and the assistant's reply atomically.
func (s *Store) AppendExchange(userID, userContent, assistantContent string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.users[userID],
		Message{Role: "user", Content: userContent},
		Message{Role: "assistant", Content: assistantContent},
	)
	if len(list) > s.maxMessages {
		list = list[len(list)-s.maxMessages:]
	}
	s.users[userID] = list
}

// History returns a copy of a user's recent turns, oldest first.
func (s *Store) History(userID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := make([]Message, len(s.users[userID]))
	copy(dst, s.users[userID])
	return dst
}

// Len reports how many turns are stored for a user.
func (s *Store) Len(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users[userID])
}
