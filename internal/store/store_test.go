package store

import "testing"

func TestNextIDs_Dense(t *testing.T) {
	s := New()
	s.Lock()
	defer s.Unlock()

	if got := s.NextUserID(); got != 1 {
		t.Errorf("expected first user id 1, got %d", got)
	}
	s.AddUser(&User{ID: 1})
	s.AddUser(&User{ID: 2})
	if got := s.NextUserID(); got != 3 {
		t.Errorf("expected next user id 3, got %d", got)
	}

	if got := s.NextChannelID(); got != 1 {
		t.Errorf("expected first channel id 1, got %d", got)
	}
	s.AddChannel(&Channel{ID: 1})
	if got := s.NextChannelID(); got != 2 {
		t.Errorf("expected next channel id 2, got %d", got)
	}
}

func TestLookups(t *testing.T) {
	s := New()
	s.Lock()
	defer s.Unlock()

	u := &User{ID: 1, Email: "ada@example.com", Handle: "adalovelace"}
	s.AddUser(u)

	if s.UserByID(1) != u || s.UserByEmail("ada@example.com") != u || s.UserByHandle("adalovelace") != u {
		t.Error("lookups should return the stored user")
	}
	if s.UserByID(2) != nil || s.UserByEmail("x@example.com") != nil || s.UserByHandle("nobody") != nil {
		t.Error("missing lookups should return nil")
	}

	ch := &Channel{ID: 1, Name: "general"}
	s.AddChannel(ch)
	if s.ChannelByID(1) != ch {
		t.Error("ChannelByID should return the stored channel")
	}
	if s.ChannelByID(2) != nil {
		t.Error("missing channel should return nil")
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.Lock()
	s.AddUser(&User{ID: 1})
	s.AddChannel(&Channel{ID: 1})
	s.Unlock()

	s.Reset()

	s.Lock()
	defer s.Unlock()
	if len(s.Users()) != 0 || len(s.Channels()) != 0 {
		t.Error("Reset should clear both registries")
	}
	if s.NextUserID() != 1 || s.NextChannelID() != 1 {
		t.Error("ids should restart after Reset")
	}
}

func TestNextMessageID_EncodesChannel(t *testing.T) {
	ch := &Channel{ID: 3}
	for n := 1; n <= 3; n++ {
		id := ch.NextMessageID()
		if id != 3*10000+n {
			t.Errorf("expected id %d, got %d", 3*10000+n, id)
		}
		if ChannelOf(id) != 3 {
			t.Errorf("ChannelOf(%d) = %d, want 3", id, ChannelOf(id))
		}
	}
}

func TestLocateMessage(t *testing.T) {
	s := New()
	s.Lock()
	defer s.Unlock()

	ch := &Channel{ID: 2}
	msg := &Message{ID: ch.NextMessageID(), Body: "hello"}
	ch.Messages = append(ch.Messages, msg)
	s.AddChannel(ch)

	gotMsg, gotCh := s.LocateMessage(msg.ID)
	if gotMsg != msg || gotCh != ch {
		t.Error("LocateMessage should resolve a visible message and its channel")
	}

	if m, c := s.LocateMessage(99999); m != nil || c != nil {
		t.Error("unknown channel should yield nils")
	}
	if m, c := s.LocateMessage(2*10000 + 99); m != nil || c != nil {
		t.Error("unknown message in a known channel should yield nils")
	}
}

func TestRemoveMessage(t *testing.T) {
	ch := &Channel{ID: 1}
	a := &Message{ID: ch.NextMessageID()}
	b := &Message{ID: ch.NextMessageID()}
	ch.Messages = []*Message{a, b}

	ch.RemoveMessage(a.ID)
	if len(ch.Messages) != 1 || ch.Messages[0] != b {
		t.Errorf("expected only the second message to remain, got %v", ch.Messages)
	}

	// Removal frees no sequence slot.
	if id := ch.NextMessageID(); id != 1*10000+3 {
		t.Errorf("expected id %d, got %d", 1*10000+3, id)
	}
}

func TestMessageView_ReactedFlagPerViewer(t *testing.T) {
	m := &Message{
		ID:     10001,
		Body:   "hello",
		Reacts: []React{{ID: ReactThumbsUp, UserIDs: []int{7}}},
	}

	if v := m.View(7); !v.Reacts[0].IsThisUserReacted {
		t.Error("viewer 7 has reacted")
	}
	if v := m.View(8); v.Reacts[0].IsThisUserReacted {
		t.Error("viewer 8 has not reacted")
	}
}

func TestMessageView_CopiesReactIDs(t *testing.T) {
	m := &Message{
		ID:     10001,
		Reacts: []React{{ID: ReactThumbsUp, UserIDs: []int{1}}},
	}
	v := m.View(1)
	v.Reacts[0].UserIDs[0] = 99

	if m.Reacts[0].UserIDs[0] != 1 {
		t.Error("mutating a view must not touch stored state")
	}
}

func TestRole(t *testing.T) {
	ch := &Channel{ID: 1, Owners: []int{1}, Members: []int{1, 2}}

	if got := Role(&User{ID: 1}, ch); got != RoleOwner {
		t.Errorf("expected RoleOwner, got %d", got)
	}
	if got := Role(&User{ID: 2}, ch); got != RoleMember {
		t.Errorf("expected RoleMember, got %d", got)
	}
	if got := Role(&User{ID: 3}, ch); got != RoleNonMember {
		t.Errorf("expected RoleNonMember, got %d", got)
	}
}

func TestIsChannelOwner(t *testing.T) {
	ch := &Channel{ID: 1, Owners: []int{1}, Members: []int{1, 2}}
	owner := &User{ID: 1, Permission: PermMember}
	member := &User{ID: 2, Permission: PermMember}
	admin := &User{ID: 3, Permission: PermOwner}

	if !IsChannelOwner(owner, ch) {
		t.Error("listed owner should qualify")
	}
	if IsChannelOwner(member, ch) {
		t.Error("plain member should not qualify")
	}
	if !IsChannelOwner(admin, ch) {
		t.Error("global owner should qualify everywhere")
	}
}
