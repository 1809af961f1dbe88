// Package messages implements sending, editing, removing, reacting to,
// pinning and searching channel messages, including deferred sends.
package messages

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/flockrhq/flockr/internal/apperr"
	"github.com/flockrhq/flockr/internal/sched"
	"github.com/flockrhq/flockr/internal/store"
	"github.com/flockrhq/flockr/internal/token"
)

const maxBodyLen = 1000

// Service provides message operations over the shared store.
type Service struct {
	store *store.Store
	codec *token.Codec
	sched *sched.Scheduler
	now   func() time.Time // injectable clock for testing
}

// NewService creates a message service.
func NewService(st *store.Store, codec *token.Codec, sc *sched.Scheduler) *Service {
	return &Service{store: st, codec: codec, sched: sc, now: time.Now}
}

// caller resolves tok to an authenticated user, or nil. Lock must be held.
func (s *Service) caller(tok string) *store.User {
	id, ok := s.codec.Resolve(tok)
	if !ok {
		return nil
	}
	return s.store.UserByID(id)
}

// Send appends a message to the channel and returns its id. The Nth message
// ever sent to channel C gets id C*10000+N.
func (s *Service) Send(tok string, channelID int, body string) (int, error) {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return 0, apperr.Access("Invalid token.")
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return 0, apperr.Input("Message exceeds 1000 characters.")
	}
	ch := s.store.ChannelByID(channelID)
	if ch == nil {
		return 0, apperr.Access("Invalid channel.")
	}
	if !ch.HasMember(u.ID) {
		return 0, apperr.Access("User is not a member of channel.")
	}

	msg := s.newMessage(ch, u.ID, body)
	ch.Messages = append(ch.Messages, msg)
	return msg.ID, nil
}

// SendLater validates everything up front, allocates the message id
// immediately (reserving its place in the channel's sequence), and appends
// the message to the visible list only once the delay elapses. Until then the
// id is reserved but the message is absent from listings.
func (s *Service) SendLater(tok string, channelID int, body string, sendAt int64) (int, error) {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return 0, apperr.Access("Invalid token.")
	}
	ch := s.store.ChannelByID(channelID)
	if ch == nil {
		return 0, apperr.Input("Invalid channel.")
	}
	if !ch.HasMember(u.ID) {
		return 0, apperr.Access("User is not a member of channel.")
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return 0, apperr.Input("Message exceeds 1000 characters.")
	}
	now := s.now()
	delay := time.Duration(sendAt-now.Unix()) * time.Second
	if delay < 0 {
		return 0, apperr.Input("Past time given.")
	}

	msg := s.newMessage(ch, u.ID, body)
	s.sched.Schedule(delay, func() {
		s.store.Lock()
		defer s.store.Unlock()
		ch.Messages = append(ch.Messages, msg)
	})
	return msg.ID, nil
}

// Edit replaces a message's body. Editing to an empty body is defined as
// removal and delegates to Remove wholesale. Permitted for the author and for
// channel owners (global owners included).
func (s *Service) Edit(tok string, messageID int, body string) error {
	if body == "" {
		return s.Remove(tok, messageID)
	}

	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	msg, ch := s.store.LocateMessage(messageID)
	if msg == nil {
		return apperr.Input("Invalid message ID.")
	}
	if !s.canMutate(u, msg, ch) {
		return apperr.Access("User must be an owner.")
	}

	msg.Body = body
	return nil
}

// Remove deletes a message. Same permission rule as Edit.
func (s *Service) Remove(tok string, messageID int) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	msg, ch := s.store.LocateMessage(messageID)
	if msg == nil {
		return apperr.Input("Invalid message ID.")
	}
	if !s.canMutate(u, msg, ch) {
		return apperr.Access("User must be an owner.")
	}

	ch.RemoveMessage(messageID)
	return nil
}

// React records the caller's reaction on a message. Reacting twice with the
// same kind is an input error, not a no-op; reactions are deliberately not
// idempotent the way channel invites are.
func (s *Service) React(tok string, messageID, reactID int) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	msg, ch := s.store.LocateMessage(messageID)
	if msg == nil {
		return apperr.Input("Invalid message_id.")
	}
	if !ch.HasMember(u.ID) {
		return apperr.Input("User is not a member of channel.")
	}
	if reactID != store.ReactThumbsUp {
		return apperr.Input("Invalid react_id.")
	}
	r := &msg.Reacts[0]
	if r.Contains(u.ID) {
		return apperr.Input("User has already reacted.")
	}

	r.UserIDs = append(r.UserIDs, u.ID)
	return nil
}

// Unreact removes the caller's reaction. Unreacting without an active
// reaction is an input error.
func (s *Service) Unreact(tok string, messageID, reactID int) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	msg, ch := s.store.LocateMessage(messageID)
	if msg == nil {
		return apperr.Input("Invalid message_id.")
	}
	if !ch.HasMember(u.ID) {
		return apperr.Input("User is not a member of channel.")
	}
	if reactID != store.ReactThumbsUp {
		return apperr.Input("Invalid react_id.")
	}
	r := &msg.Reacts[0]
	if !r.Contains(u.ID) {
		return apperr.Input("User has not reacted.")
	}

	for i, id := range r.UserIDs {
		if id == u.ID {
			r.UserIDs = append(r.UserIDs[:i], r.UserIDs[i+1:]...)
			break
		}
	}
	return nil
}

// Pin marks a message for special viewership. Requires membership and
// channel-owner (or global owner) standing; double pins are input errors.
func (s *Service) Pin(tok string, messageID int) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	msg, ch := s.store.LocateMessage(messageID)
	if msg == nil {
		return apperr.Input("Invalid message_id.")
	}
	if !ch.HasMember(u.ID) {
		return apperr.Access("Not a member of the channel that the message is within.")
	}
	if !store.IsChannelOwner(u, ch) {
		return apperr.Access("User is not an owner of the channel.")
	}
	if msg.Pinned {
		return apperr.Input("Message already pinned.")
	}

	msg.Pinned = true
	return nil
}

// Unpin clears a message's pin flag. Same gating as Pin; unpinning an
// unpinned message is an input error.
func (s *Service) Unpin(tok string, messageID int) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	msg, ch := s.store.LocateMessage(messageID)
	if msg == nil {
		return apperr.Input("Invalid message_id.")
	}
	if !ch.HasMember(u.ID) {
		return apperr.Access("Not a member of the channel that the message is within.")
	}
	if !store.IsChannelOwner(u, ch) {
		return apperr.Access("User is not an owner of the channel.")
	}
	if !msg.Pinned {
		return apperr.Input("Message not pinned.")
	}

	msg.Pinned = false
	return nil
}

// Search returns every message containing query across the channels the
// caller has joined, with the reacted flag projected for the caller.
func (s *Service) Search(tok, query string) ([]store.MessageView, error) {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return nil, apperr.Access("Unauthorised access.")
	}

	out := []store.MessageView{}
	for _, channelID := range u.Channels {
		ch := s.store.ChannelByID(channelID)
		for _, msg := range ch.Messages {
			if strings.Contains(msg.Body, query) {
				out = append(out, msg.View(u.ID))
			}
		}
	}
	return out, nil
}

// canMutate reports whether u may edit or remove msg: true for the author
// and for channel owners (global owners included). Lock must be held.
func (s *Service) canMutate(u *store.User, msg *store.Message, ch *store.Channel) bool {
	if msg.AuthorID == u.ID {
		return true
	}
	return store.IsChannelOwner(u, ch)
}

// newMessage allocates the next sequence id on ch and builds the message.
// Lock must be held; the caller decides when the message becomes visible.
func (s *Service) newMessage(ch *store.Channel, authorID int, body string) *store.Message {
	return &store.Message{
		ID:        ch.NextMessageID(),
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: s.now().Unix(),
		Reacts:    []store.React{{ID: store.ReactThumbsUp}},
	}
}
