// Package auth implements registration, login/logout and password reset.
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/flockrhq/flockr/internal/apperr"
	"github.com/flockrhq/flockr/internal/store"
	"github.com/flockrhq/flockr/internal/token"
)

const (
	minPasswordLen = 6
	maxNameLen     = 50
	maxHandleLen   = 20
	resetCodeLen   = 50
)

// emailPattern matches the address formats the frontend accepts.
var emailPattern = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@\w+\.\w{2,3}$`)

// resetCodeChars is the alphabet reset codes are drawn from.
const resetCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Session is the result of a successful register or login.
type Session struct {
	UserID int    `json:"u_id"`
	Token  string `json:"token"`
}

// Service provides authentication operations over the shared store.
type Service struct {
	store *store.Store
	codec *token.Codec
}

// NewService creates an auth service.
func NewService(st *store.Store, codec *token.Codec) *Service {
	return &Service{store: st, codec: codec}
}

// Register creates a new user and a logged-in session for them. The very
// first registered user becomes the Flockr owner; everyone after is a member.
// That decision is made once, at registration, and only explicit permission
// changes revisit it.
func (s *Service) Register(email, password, nameFirst, nameLast string) (Session, error) {
	s.store.Lock()
	defer s.store.Unlock()

	if !ValidEmail(email) {
		return Session{}, apperr.Input("Email is invalid.")
	}
	if s.store.UserByEmail(email) != nil {
		return Session{}, apperr.Input("Email already in use.")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return Session{}, apperr.Input("Password must be 6 characters or more.")
	}
	if nameFirst == "" || nameLast == "" {
		return Session{}, apperr.Input("Name cannot be empty.")
	}
	if utf8.RuneCountInString(nameFirst) > maxNameLen || utf8.RuneCountInString(nameLast) > maxNameLen {
		return Session{}, apperr.Input("Name too long.")
	}

	id := s.store.NextUserID()
	handle := s.generateHandle(nameFirst, nameLast, id)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hashing password: %w", err)
	}
	tok, err := s.codec.Issue(id, true)
	if err != nil {
		return Session{}, err
	}

	perm := store.PermMember
	if id == 1 {
		perm = store.PermOwner
	}
	s.store.AddUser(&store.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		NameFirst:    nameFirst,
		NameLast:     nameLast,
		Handle:       handle,
		Permission:   perm,
		Token:        tok,
	})
	return Session{UserID: id, Token: tok}, nil
}

// Login issues a fresh logged-in session for the user with the given email.
func (s *Service) Login(email, password string) (Session, error) {
	s.store.Lock()
	defer s.store.Unlock()

	if !ValidEmail(email) {
		return Session{}, apperr.Input("Email is invalid.")
	}
	u := s.store.UserByEmail(email)
	if u == nil {
		return Session{}, apperr.Input("Email not registered.")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, apperr.Input("Password is incorrect.")
	}

	tok, err := s.codec.Issue(u.ID, true)
	if err != nil {
		return Session{}, err
	}
	u.Token = tok
	return Session{UserID: u.ID, Token: tok}, nil
}

// Logout invalidates the session behind tok. There is no revocation list:
// the user's current token is replaced with one whose login flag is cleared,
// which resolves to nobody. Logging out an already logged-out session
// succeeds with Success=false; a token no user currently holds is an
// AccessError.
func (s *Service) Logout(tok string) (bool, error) {
	s.store.Lock()
	defer s.store.Unlock()

	var holder *store.User
	for _, u := range s.store.Users() {
		if u.Token == tok {
			holder = u
			break
		}
	}
	if holder == nil {
		return false, apperr.Access("Invalid token.")
	}

	if _, ok := s.codec.Resolve(tok); !ok {
		return false, nil
	}

	out, err := s.codec.Issue(holder.ID, false)
	if err != nil {
		return false, err
	}
	holder.Token = out
	return true, nil
}

// RequestReset stores a fresh single-use reset code on the user registered
// under email and returns it for delivery. Any previous code is overwritten.
func (s *Service) RequestReset(email string) (string, error) {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.store.UserByEmail(email)
	if u == nil {
		return "", apperr.Input("User does not exist.")
	}
	code, err := randomCode(resetCodeLen)
	if err != nil {
		return "", err
	}
	u.ResetCode = code
	return code, nil
}

// CompleteReset sets a new password for whichever user holds the given reset
// code, then clears the code so it cannot be replayed.
func (s *Service) CompleteReset(code, newPassword string) error {
	s.store.Lock()
	defer s.store.Unlock()

	if code == "" {
		return apperr.Input("Reset code cannot be empty.")
	}
	var u *store.User
	for _, candidate := range s.store.Users() {
		if candidate.ResetCode != "" && candidate.ResetCode == code {
			u = candidate
			break
		}
	}
	if u == nil {
		return apperr.Input("Invalid reset code.")
	}
	if utf8.RuneCountInString(newPassword) < minPasswordLen {
		return apperr.Input("Invalid new password.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.ResetCode = ""
	return nil
}

// ValidEmail reports whether email matches the accepted address format.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// generateHandle builds the handle for a new user: lower-cased first+last
// name truncated to 20 characters. On collision the new user's id is prefixed
// and the result re-truncated; a collision surviving even that is accepted
// as-is. Caller must hold the store lock.
func (s *Service) generateHandle(nameFirst, nameLast string, id int) string {
	handle := truncateRunes(strings.ToLower(nameFirst+nameLast), maxHandleLen)
	if s.store.UserByHandle(handle) != nil {
		handle = truncateRunes(strconv.Itoa(id)+handle, maxHandleLen)
	}
	return handle
}

// truncateRunes cuts s to at most n characters, never splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// randomCode draws length characters from the reset-code alphabet.
func randomCode(length int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(resetCodeChars)))
	for b.Len() < length {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating reset code: %w", err)
		}
		b.WriteByte(resetCodeChars[n.Int64()])
	}
	return b.String(), nil
}
