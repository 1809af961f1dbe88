package store

// Permission is a user's global permission level. The first user ever
// registered is the Flockr owner; everyone after is a member.
type Permission int

const (
	PermOwner  Permission = 1
	PermMember Permission = 2
)

// ReactThumbsUp is the only reaction kind the frontend supports today.
const ReactThumbsUp = 1

// User is a registered account. Password is stored as a bcrypt digest and
// never leaves the store. Token holds the user's current session credential;
// a logged-out user still has a token, it just fails to resolve.
type User struct {
	ID              int
	Email           string
	PasswordHash    string
	NameFirst       string
	NameLast        string
	Handle          string
	Permission      Permission
	Token           string
	ResetCode       string
	ProfileImageURL string
	Channels        []int // channel ids the user belongs to, join order
}

// InChannel reports whether the user belongs to the channel with id.
func (u *User) InChannel(id int) bool {
	for _, c := range u.Channels {
		if c == id {
			return true
		}
	}
	return false
}

// React is the per-kind reaction state on a message.
type React struct {
	ID      int
	UserIDs []int
}

// Contains reports whether userID has this reaction active.
func (r *React) Contains(userID int) bool {
	for _, id := range r.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Message is a single channel message. ID is channelID*10000 plus the
// message's 1-based sequence number within its channel, so the owning channel
// is derivable from the id alone.
type Message struct {
	ID        int
	AuthorID  int
	Body      string
	CreatedAt int64 // unix seconds
	Pinned    bool
	Reacts    []React
}

// ChannelOf returns the id of the channel a message id belongs to.
func ChannelOf(messageID int) int {
	return messageID / 10000
}

// Channel is a chat channel. Owners is always a subset of Members. Channels
// are never deleted, even once the last member leaves.
type Channel struct {
	ID       int
	Name     string
	Public   bool
	Owners   []int
	Members  []int
	Messages []*Message // oldest first

	// LatestSeq counts sequence numbers handed out, including deferred
	// messages that are not yet visible in Messages.
	LatestSeq int

	// Standup state. StandupEnd is the unix time the active standup
	// finishes, or zero when none is running.
	StandupEnd     int64
	StandupBuffer  string
	StandupStarter int
}

// HasMember reports whether userID is in the channel's member set.
func (c *Channel) HasMember(userID int) bool {
	for _, id := range c.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// HasOwner reports whether userID is in the channel's owner set.
func (c *Channel) HasOwner(userID int) bool {
	for _, id := range c.Owners {
		if id == userID {
			return true
		}
	}
	return false
}

// NextMessageID allocates the next message id for the channel, reserving its
// sequence slot. The message itself may become visible later (deferred send).
func (c *Channel) NextMessageID() int {
	c.LatestSeq++
	return c.ID*10000 + c.LatestSeq
}

// MessageByID finds a visible message in the channel, or nil.
func (c *Channel) MessageByID(id int) *Message {
	for _, m := range c.Messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// RemoveMessage deletes the message with id from the visible list.
func (c *Channel) RemoveMessage(id int) {
	for i, m := range c.Messages {
		if m.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			return
		}
	}
}

// StandupActive reports whether a standup is currently running.
func (c *Channel) StandupActive() bool {
	return c.StandupEnd != 0
}

// ReactView is the caller-relative projection of a reaction.
type ReactView struct {
	ReactID           int   `json:"react_id"`
	UserIDs           []int `json:"u_ids"`
	IsThisUserReacted bool  `json:"is_this_user_reacted"`
}

// MessageView is the wire shape of a message. IsThisUserReacted is computed
// per request for the viewing user; it is not stored state.
type MessageView struct {
	MessageID   int         `json:"message_id"`
	AuthorID    int         `json:"u_id"`
	Body        string      `json:"message"`
	TimeCreated int64       `json:"time_created"`
	Reacts      []ReactView `json:"reacts"`
	IsPinned    bool        `json:"is_pinned"`
}

// View projects the message for the given viewer.
func (m *Message) View(viewerID int) MessageView {
	reacts := make([]ReactView, len(m.Reacts))
	for i := range m.Reacts {
		r := &m.Reacts[i]
		ids := make([]int, len(r.UserIDs))
		copy(ids, r.UserIDs)
		reacts[i] = ReactView{
			ReactID:           r.ID,
			UserIDs:           ids,
			IsThisUserReacted: r.Contains(viewerID),
		}
	}
	return MessageView{
		MessageID:   m.ID,
		AuthorID:    m.AuthorID,
		Body:        m.Body,
		TimeCreated: m.CreatedAt,
		Reacts:      reacts,
		IsPinned:    m.Pinned,
	}
}
