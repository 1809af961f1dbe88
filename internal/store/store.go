// Package store holds the process-wide registries of users and channels.
// There is no persistence: the store is the system of record and Reset wipes
// it between test scenarios.
//
// A single mutex serializes every mutation. Cross-entity operations (invite,
// join, leave) touch a user's channel list and a channel's member set in one
// critical section, so per-entity locking would not be enough. Services lock
// the store for the duration of each operation; scheduled callbacks acquire
// the same lock.
package store

import "sync"

// Store is the shared in-memory registry. The zero value is not usable; call
// New.
type Store struct {
	mu       sync.Mutex
	users    []*User
	channels []*Channel
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Lock acquires the store-wide mutex.
func (s *Store) Lock() { s.mu.Lock() }

// Unlock releases the store-wide mutex.
func (s *Store) Unlock() { s.mu.Unlock() }

// Reset clears both registries. Callers must not hold the lock.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
	s.channels = nil
}

// The accessors below require the caller to hold the lock.

// Users returns the user registry in registration order.
func (s *Store) Users() []*User { return s.users }

// Channels returns the channel registry in creation order.
func (s *Store) Channels() []*Channel { return s.channels }

// NextUserID returns the id the next registered user will get. Ids are dense
// because users are never deleted.
func (s *Store) NextUserID() int { return len(s.users) + 1 }

// NextChannelID returns the id the next created channel will get.
func (s *Store) NextChannelID() int { return len(s.channels) + 1 }

// AddUser appends a user to the registry.
func (s *Store) AddUser(u *User) { s.users = append(s.users, u) }

// AddChannel appends a channel to the registry.
func (s *Store) AddChannel(c *Channel) { s.channels = append(s.channels, c) }

// UserByID finds a user by id, or nil.
func (s *Store) UserByID(id int) *User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UserByEmail finds a user by email, or nil.
func (s *Store) UserByEmail(email string) *User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// UserByHandle finds a user by handle, or nil.
func (s *Store) UserByHandle(handle string) *User {
	for _, u := range s.users {
		if u.Handle == handle {
			return u
		}
	}
	return nil
}

// ChannelByID finds a channel by id, or nil.
func (s *Store) ChannelByID(id int) *Channel {
	for _, c := range s.channels {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// LocateMessage resolves a message id to the visible message and its owning
// channel. The channel id is derived from the message id itself; no lookup
// table exists. Returns nils when the channel does not exist or no visible
// message matches.
func (s *Store) LocateMessage(messageID int) (*Message, *Channel) {
	ch := s.ChannelByID(ChannelOf(messageID))
	if ch == nil {
		return nil, nil
	}
	msg := ch.MessageByID(messageID)
	if msg == nil {
		return nil, nil
	}
	return msg, ch
}
