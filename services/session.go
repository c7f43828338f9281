package services

import (
	"sync"
	"time"
)

// Flow is the multi-step dialog a conversation is currently in.
type Flow int

const (
	FlowNone Flow = iota
	FlowBooking
	FlowReview
	FlowBroadcast
	FlowGalleryUpload
)

// Conversation holds the transient state of one user's dialog with the bot.
// It is never persisted: a restart drops every draft.
type Conversation struct {
	TelegramID int64
	Flow       Flow
	Booking    BookingDraft
	Review     ReviewDraft

	touchedAt time.Time
}

// Reset returns the conversation to idle.
func (c *Conversation) Reset() {
	c.Flow = FlowNone
	c.Booking = BookingDraft{}
	c.Review = ReviewDraft{}
}

// SessionStore keeps conversations keyed by telegram id and expires idle ones.
type SessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[int64]*Conversation
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[int64]*Conversation),
	}
}

// Get returns the live conversation of the user, if any.
func (s *SessionStore) Get(telegramID int64) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.items[telegramID]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(conv, now) {
		delete(s.items, telegramID)
		return nil, false
	}
	conv.touchedAt = now
	return conv, true
}

// Open returns the user's conversation, starting an idle one when none is live.
func (s *SessionStore) Open(telegramID int64) *Conversation {
	if conv, ok := s.Get(telegramID); ok {
		return conv
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conv := &Conversation{TelegramID: telegramID, touchedAt: s.now()}
	s.items[telegramID] = conv
	return conv
}

func (s *SessionStore) Delete(telegramID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, telegramID)
}

// Sweep drops expired conversations and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, conv := range s.items {
		if s.expired(conv, now) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *SessionStore) expired(conv *Conversation, now time.Time) bool {
	return s.ttl > 0 && now.Sub(conv.touchedAt) > s.ttl
}
