package store

// ChannelRole is a user's effective standing in a channel. Global owners
// additionally cross-cut every channel for ownership-gated operations; that
// override lives in IsChannelOwner rather than in the role itself.
type ChannelRole int

const (
	RoleNonMember ChannelRole = iota
	RoleMember
	RoleOwner
)

// Role derives the channel-level role for a (user, channel) pair.
func Role(u *User, c *Channel) ChannelRole {
	switch {
	case c.HasOwner(u.ID):
		return RoleOwner
	case c.HasMember(u.ID):
		return RoleMember
	default:
		return RoleNonMember
	}
}

// IsChannelOwner is the central ownership predicate: true when the user holds
// global owner permission or sits in the channel's owner set. It gates
// add-owner, remove-owner and, combined with membership, message edit,
// delete and pin.
func IsChannelOwner(u *User, c *Channel) bool {
	if u.Permission == PermOwner {
		return true
	}
	return c.HasOwner(u.ID)
}
