// Package channels implements channel lifecycle, membership and ownership
// operations, and the paginated message listing.
package channels

import (
	"unicode/utf8"

	"github.com/flockrhq/flockr/internal/apperr"
	"github.com/flockrhq/flockr/internal/store"
	"github.com/flockrhq/flockr/internal/token"
)

const maxNameLen = 20

// messagesPageSize is the fixed page size of the message listing.
const messagesPageSize = 50

// Summary is the id+name projection used by the channel listings.
type Summary struct {
	ChannelID int    `json:"channel_id"`
	Name      string `json:"name"`
}

// Member is the member projection used by channel details.
type Member struct {
	UserID          int    `json:"u_id"`
	NameFirst       string `json:"name_first"`
	NameLast        string `json:"name_last"`
	ProfileImageURL string `json:"profile_img_url"`
}

// Details describes a channel for one of its members.
type Details struct {
	Name         string   `json:"name"`
	OwnerMembers []Member `json:"owner_members"`
	AllMembers   []Member `json:"all_members"`
}

// MessagesPage is one page of the newest-first message listing. End is the
// start offset of the next page, or -1 when no older messages remain.
type MessagesPage struct {
	Messages []store.MessageView `json:"messages"`
	Start    int                 `json:"start"`
	End      int                 `json:"end"`
}

// Service provides channel operations over the shared store.
type Service struct {
	store *store.Store
	codec *token.Codec
}

// NewService creates a channel service.
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

// Create makes a new channel with the caller as sole owner and member.
// Channel ids are sequential and never reused.
func (s *Service) Create(tok, name string, public bool) (int, error) {
	s.store.Lock()
	defer s.store.Unlock()

	if utf8.RuneCountInString(name) > maxNameLen {
		return 0, apperr.Input("Name cannot be longer than 20 characters.")
	}
	u := s.caller(tok)
	if u == nil {
		return 0, apperr.Access("Unauthorised access.")
	}

	ch := &store.Channel{
		ID:      s.store.NextChannelID(),
		Name:    name,
		Public:  public,
		Owners:  []int{u.ID},
		Members: []int{u.ID},
	}
	s.store.AddChannel(ch)
	u.Channels = append(u.Channels, ch.ID)
	return ch.ID, nil
}

// List returns the channels the caller belongs to, in join order.
func (s *Service) List(tok string) ([]Summary, error) {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return nil, apperr.Access("Unauthorised access.")
	}
	out := make([]Summary, 0, len(u.Channels))
	for _, id := range u.Channels {
		ch := s.store.ChannelByID(id)
		out = append(out, Summary{ChannelID: ch.ID, Name: ch.Name})
	}
	return out, nil
}

// ListAll returns every channel, public and private alike.
func (s *Service) ListAll(tok string) ([]Summary, error) {
	s.store.Lock()
	defer s.store.Unlock()

	if s.caller(tok) == nil {
		return nil, apperr.Access("Unauthorised access.")
	}
	all := s.store.Channels()
	out := make([]Summary, 0, len(all))
	for _, ch := range all {
		out = append(out, Summary{ChannelID: ch.ID, Name: ch.Name})
	}
	return out, nil
}

// Invite adds the user with userID to the channel. Inviting someone who is
// already a member is a silent no-op; this asymmetry with AddOwner is
// deliberate.
func (s *Service) Invite(tok string, channelID, userID int) error {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return apperr.Access("Invalid token.")
	}
	invited := s.store.UserByID(userID)
	if invited == nil {
		return apperr.Input("Invalid u_id.")
	}
	ch := s.store.ChannelByID(channelID)
	if ch == nil {
		return apperr.Input("Invalid channel_id.")
	}
	if !ch.HasMember(u.ID) {
		return apperr.Access("Not a member.")
	}
	if ch.HasMember(invited.ID) {
		return nil
	}

	ch.Members = append(ch.Members, invited.ID)
	invited.Channels = append(invited.Channels, channelID)
	return nil
}

// Details returns a channel's name and member projections. Restricted to
// members.
func (s *Service) Details(tok string, channelID int) (Details, error) {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return Details{}, apperr.Access("Invalid token.")
	}
	ch := s.store.ChannelByID(channelID)
	if ch == nil {
		return Details{}, apperr.Input("Invalid channel_id.")
	}
	if !ch.HasMember(u.ID) {
		return Details{}, apperr.Access("Not a member.")
	}

	return Details{
		Name:         ch.Name,
		OwnerMembers: s.members(ch.Owners),
		AllMembers:   s.members(ch.Members),
	}, nil
}

// Messages returns up to 50 messages starting at the start-th most recent
// one. Messages are stored oldest-first but returned newest-first. End is
// start+50 when a further page exists, or -1 once the oldest message has been
// included. The reacted flag on each message is computed for the caller.
func (s *Service) Messages(tok string, channelID, start int) (MessagesPage, error) {
	s.store.Lock()
	defer s.store.Unlock()

	u := s.caller(tok)
	if u == nil {
		return MessagesPage{}, apperr.Access("Invalid token.")
	}
	ch := s.store.ChannelByID(channelID)
	if ch == nil {
		return MessagesPage{}, apperr.Input("Invalid channel_id.")
	}
	total := len(ch.Messages)
	if start < 0 || start > total {
		return MessagesPage{}, apperr.Input("Invalid start index.")
	}
	if !ch.HasMember(u.ID) {
		return MessagesPage{}, apperr.Access("Not a member.")
	}

	end := start + messagesPageSize
	if end >= total {
		end = -1
	}

	out := make([]store.MessageView, 0, messagesPageSize)
	// Walk newest-first from the start offset.
	last := 0
	if end != -1 {
		last = total - (start + messagesPageSize)
	}
	for i := total - 1 - start; i >= last; i-- {
		out = append(out, ch.Messages[i].View(u.ID))
	}
	return MessagesPage{Messages: out, Start: start, End: end}, nil
}

// Join adds the caller to the channel. Public channels accept anyone; private
// channels only admit global owners. Joining a channel the caller is already
// in is a no-op.
func (s *Service) Join(tok string, channelID int) error {
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
	if !ch.Public && u.Permission != store.PermOwner {
		return apperr.Access("Not permitted to join.")
	}
	if u.InChannel(channelID) {
		return nil
	}

	ch.Members = append(ch.Members, u.ID)
	u.Channels = append(u.Channels, channelID)
	return nil
}

// Leave removes the caller from the channel's member and owner sets. The
// channel itself persists even when its last member leaves.
func (s *Service) Leave(tok string, channelID int) error {
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
	if !ch.HasMember(u.ID) {
		return apperr.Access("Not a member.")
	}

	u.Channels = removeID(u.Channels, channelID)
	ch.Members = removeID(ch.Members, u.ID)
	ch.Owners = removeID(ch.Owners, u.ID)
	return nil
}

// AddOwner promotes the user with userID to channel owner. Unlike Invite,
// promoting someone who already owns the channel is an input error, not a
// no-op. Only channel owners and global owners may promote.
func (s *Service) AddOwner(tok string, channelID, userID int) error {
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
	target := s.store.UserByID(userID)
	if target == nil {
		return apperr.Input("Invalid u_id.")
	}
	if ch.HasOwner(target.ID) {
		return apperr.Input("Already an owner.")
	}
	if !store.IsChannelOwner(u, ch) {
		return apperr.Access("Not permitted to add.")
	}

	ch.Owners = append(ch.Owners, target.ID)
	return nil
}

// RemoveOwner demotes the user with userID from channel owner to member.
// Same gating as AddOwner; demoting a non-owner is an input error.
func (s *Service) RemoveOwner(tok string, channelID, userID int) error {
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
	target := s.store.UserByID(userID)
	if target == nil {
		return apperr.Input("Invalid u_id.")
	}
	if !ch.HasOwner(target.ID) {
		return apperr.Input("Not an owner of channel.")
	}
	if !store.IsChannelOwner(u, ch) {
		return apperr.Access("Not permitted to remove.")
	}

	ch.Owners = removeID(ch.Owners, target.ID)
	return nil
}

// members projects a set of user ids. Lock must be held.
func (s *Service) members(ids []int) []Member {
	out := make([]Member, 0, len(ids))
	for _, id := range ids {
		u := s.store.UserByID(id)
		out = append(out, Member{
			UserID:          u.ID,
			NameFirst:       u.NameFirst,
			NameLast:        u.NameLast,
			ProfileImageURL: u.ProfileImageURL,
		})
	}
	return out
}

// removeID deletes the first occurrence of id from ids, preserving order.
func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
