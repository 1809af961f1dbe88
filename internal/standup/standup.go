// Package standup implements channel standups: a timed window during which
// messages are buffered and then flushed to the channel as a single message
// authored by whoever started the standup.
package standup

import (
	"time"
	"unicode/utf8"

	"github.com/flockrhq/flockr/internal/apperr"
	"github.com/flockrhq/flockr/internal/sched"
	"github.com/flockrhq/flockr/internal/store"
	"github.com/flockrhq/flockr/internal/token"
)

const maxBodyLen = 1000

// ActiveInfo reports whether a standup is running and when it finishes.
// TimeFinish is null when no standup is active.
type ActiveInfo struct {
	IsActive   bool   `json:"is_active"`
	TimeFinish *int64 `json:"time_finish"`
}

// Service provides standup operations over the shared store.
type Service struct {
	store *store.Store
	codec *token.Codec
	sched *sched.Scheduler
	now   func() time.Time // injectable clock for testing
}

// NewService creates a standup service.
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

// Start begins a standup lasting the given number of seconds and returns its
// finish time. Starting while one is already active is an input error. The
// flush task fires once, at or after the finish time, and takes the store
// lock like any synchronous handler.
func (s *Service) Start(tok string, channelID, length int) (int64, error) {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return 0, apperr.Access("Invalid token.")
	}
	ch := s.store.ChannelByID(channelID)
	if ch == nil {
		return 0, apperr.Input("Invalid channel_id.")
	}
	if ch.StandupActive() {
		return 0, apperr.Input("Standup has started.")
	}

	finish := s.now().Unix() + int64(length)
	ch.StandupEnd = finish
	ch.StandupBuffer = ""
	ch.StandupStarter = u.ID
	s.sched.Schedule(time.Duration(length)*time.Second, func() {
		s.flush(ch)
	})
	return finish, nil
}

// Active reports the channel's standup state.
func (s *Service) Active(tok string, channelID int) (ActiveInfo, error) {
	s.store.Lock()
	defer s.store.Unlock()

	if s.caller(tok) == nil {
		return ActiveInfo{}, apperr.Access("Invalid token.")
	}
	ch := s.store.ChannelByID(channelID)
	if ch == nil {
		return ActiveInfo{}, apperr.Input("Invalid channel_id.")
	}
	if !ch.StandupActive() {
		return ActiveInfo{IsActive: false}, nil
	}
	finish := ch.StandupEnd
	return ActiveInfo{IsActive: true, TimeFinish: &finish}, nil
}

// Send buffers a message into the running standup as "\n<handle>: <message>".
// The buffered text is attributed to the standup's starter at flush time, not
// to the individual contributors.
func (s *Service) Send(tok string, channelID int, message string) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	ch := s.store.ChannelByID(channelID)
	if ch == nil {
		return apperr.Input("Invalid channel_id.")
	}
	if !ch.StandupActive() {
		return apperr.Input("No active standup.")
	}
	if utf8.RuneCountInString(message) > maxBodyLen {
		return apperr.Input("Message is too long.")
	}
	if !u.InChannel(channelID) {
		return apperr.Access("Not a member.")
	}

	ch.StandupBuffer += "\n" + u.Handle + ": " + message
	return nil
}

// flush ends the standup: the active marker is cleared and a non-empty buffer
// becomes one ordinary channel message authored by the starter.
func (s *Service) flush(ch *store.Channel) {
	s.store.Lock()
	defer s.store.Unlock()

	ch.StandupEnd = 0
	if ch.StandupBuffer == "" {
		return
	}
	ch.Messages = append(ch.Messages, &store.Message{
		ID:        ch.NextMessageID(),
		AuthorID:  ch.StandupStarter,
		Body:      ch.StandupBuffer,
		CreatedAt: s.now().Unix(),
		Reacts:    []store.React{{ID: store.ReactThumbsUp}},
	})
}
