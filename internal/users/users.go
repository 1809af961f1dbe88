// Package users implements profile reads and updates, the all-users listing
// and global permission changes.
package users

import (
	"unicode/utf8"

	"github.com/flockrhq/flockr/internal/apperr"
	"github.com/flockrhq/flockr/internal/auth"
	"github.com/flockrhq/flockr/internal/store"
	"github.com/flockrhq/flockr/internal/token"
)

const (
	maxNameLen   = 50
	minHandleLen = 3
	maxHandleLen = 20
)

// Profile is the public projection of a user.
type Profile struct {
	UserID          int    `json:"u_id"`
	Email           string `json:"email"`
	NameFirst       string `json:"name_first"`
	NameLast        string `json:"name_last"`
	Handle          string `json:"handle_str"`
	ProfileImageURL string `json:"profile_img_url"`
}

// Service provides user profile operations over the shared store.
type Service struct {
	store *store.Store
	codec *token.Codec
}

// NewService creates a users service.
func NewService(st *store.Store, codec *token.Codec) *Service {
	return &Service{store: st, codec: codec}
}

// caller resolves tok to an authenticated user, or nil. Lock must be held.
func (s *Service) caller(tok string) *store.User {
	id, ok := s.codec.Resolve(tok)
	if !ok {
		return nil
	}
	return s.store.UserByID(id)
}

// Profile returns the profile of the user with userID. Any authenticated
// user may view any profile.
func (s *Service) Profile(tok string, userID int) (Profile, error) {
	s.store.Lock()
	defer s.store.Unlock()

	if s.caller(tok) == nil {
		return Profile{}, apperr.Access("Invalid token.")
	}
	target := s.store.UserByID(userID)
	if target == nil {
		return Profile{}, apperr.Input("Invalid u_id.")
	}
	return project(target), nil
}

// SetName updates the caller's first and last name.
func (s *Service) SetName(tok, nameFirst, nameLast string) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	if nameFirst == "" || nameLast == "" {
		return apperr.Input("Name cannot be empty.")
	}
	if utf8.RuneCountInString(nameFirst) > maxNameLen || utf8.RuneCountInString(nameLast) > maxNameLen {
		return apperr.Input("Name too long.")
	}

	u.NameFirst = nameFirst
	u.NameLast = nameLast
	return nil
}

// SetEmail updates the caller's email address.
func (s *Service) SetEmail(tok, email string) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	if !auth.ValidEmail(email) {
		return apperr.Input("Invalid email.")
	}
	if s.store.UserByEmail(email) != nil {
		return apperr.Input("Email already in use.")
	}

	u.Email = email
	return nil
}

// SetHandle updates the caller's handle.
func (s *Service) SetHandle(tok, handle string) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	if n := utf8.RuneCountInString(handle); n < minHandleLen || n > maxHandleLen {
		return apperr.Input("Invalid length of handle.")
	}
	if s.store.UserByHandle(handle) != nil {
		return apperr.Input("Handle already in use.")
	}

	u.Handle = handle
	return nil
}

// All returns every registered user's profile, in registration order.
func (s *Service) All(tok string) ([]Profile, error) {
	s.store.Lock()
	defer s.store.Unlock()

	if s.caller(tok) == nil {
		return nil, apperr.Access("Unauthorised access.")
	}
	all := s.store.Users()
	out := make([]Profile, 0, len(all))
	for _, u := range all {
		out = append(out, project(u))
	}
	return out, nil
}

// ChangePermission sets the global permission level of the user with userID.
// Only global owners may change permissions.
func (s *Service) ChangePermission(tok string, userID int, permission int) error {
	s.store.Lock()
	defer s.store.Unlock()

	target := s.store.UserByID(userID)
	if target == nil {
		return apperr.Inputf("Cannot find user with ID of %d.", userID)
	}
	if permission != int(store.PermOwner) && permission != int(store.PermMember) {
		return apperr.Input("Invalid permission code.")
	}
	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Unauthorised access.")
	}
	if u.Permission != store.PermOwner {
		return apperr.Access("Members cannot modify permissions.")
	}

	target.Permission = store.Permission(permission)
	return nil
}

func project(u *store.User) Profile {
	return Profile{
		UserID:          u.ID,
		Email:           u.Email,
		NameFirst:       u.NameFirst,
		NameLast:        u.NameLast,
		Handle:          u.Handle,
		ProfileImageURL: u.ProfileImageURL,
	}
}
