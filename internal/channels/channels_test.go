package channels

import (
	"fmt"
	"strings"
	"testing"

	"github.com/flockrhq/flockr/internal/apperr"
	"github.com/flockrhq/flockr/internal/store"
	"github.com/flockrhq/flockr/internal/token"
)

func newTestService() *Service {
	return NewService(store.New(), token.NewCodec("test-secret"))
}

// seedUser registers a user directly in the store and returns their id and a
// live session token. The first seeded user is the global owner.
func seedUser(t *testing.T, svc *Service) (int, string) {
	t.Helper()
	svc.store.Lock()
	defer svc.store.Unlock()

	id := svc.store.NextUserID()
	tok, err := svc.codec.Issue(id, true)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	perm := store.PermMember
	if id == 1 {
		perm = store.PermOwner
	}
	svc.store.AddUser(&store.User{
		ID:         id,
		Email:      fmt.Sprintf("user%d@example.com", id),
		NameFirst:  "User",
		NameLast:   fmt.Sprintf("Num%d", id),
		Handle:     fmt.Sprintf("usernum%d", id),
		Permission: perm,
		Token:      tok,
	})
	return id, tok
}

// seedMessage appends a visible message to the channel.
func seedMessage(t *testing.T, svc *Service, channelID, authorID int, body string) int {
	t.Helper()
	svc.store.Lock()
	defer svc.store.Unlock()

	ch := svc.store.ChannelByID(channelID)
	if ch == nil {
		t.Fatalf("channel %d not found", channelID)
	}
	msg := &store.Message{
		ID:       ch.NextMessageID(),
		AuthorID: authorID,
		Body:     body,
		Reacts:   []store.React{{ID: store.ReactThumbsUp}},
	}
	ch.Messages = append(ch.Messages, msg)
	return msg.ID
}

// --- Create tests ---

func TestCreate_Basic(t *testing.T) {
	svc := newTestService()
	uid, tok := seedUser(t, svc)

	id, err := svc.Create(tok, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id != 1 {
		t.Errorf("expected channel id 1, got %d", id)
	}

	svc.store.Lock()
	defer svc.store.Unlock()
	ch := svc.store.ChannelByID(id)
	if !ch.HasMember(uid) || !ch.HasOwner(uid) {
		t.Error("creator should be both member and owner")
	}
	if !svc.store.UserByID(uid).InChannel(id) {
		t.Error("creator's channel list should include the new channel")
	}
}

func TestCreate_NameTooLong(t *testing.T) {
	svc := newTestService()
	_, tok := seedUser(t, svc)

	if _, err := svc.Create(tok, strings.Repeat("x", 21), true); !apperr.IsInput(err) {
		t.Errorf("expected InputError for 21-character name, got %v", err)
	}
	// The bound counts characters, so a 20-character multibyte name fits.
	if _, err := svc.Create(tok, strings.Repeat("é", 20), true); err != nil {
		t.Errorf("20-character multibyte name should be accepted: %v", err)
	}
}

// Name length is validated before the token, so a bad name wins even with a
// bad token.
func TestCreate_NameCheckedBeforeToken(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Create("bad-token", strings.Repeat("x", 21), true); !apperr.IsInput(err) {
		t.Errorf("expected InputError, got %v", err)
	}
	if _, err := svc.Create("bad-token", "fine", true); !apperr.IsAccess(err) {
		t.Errorf("expected AccessError for bad token with valid name, got %v", err)
	}
}

func TestCreate_SequentialIDs(t *testing.T) {
	svc := newTestService()
	_, tok := seedUser(t, svc)

	for want := 1; want <= 3; want++ {
		id, err := svc.Create(tok, fmt.Sprintf("chan%d", want), true)
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if id != want {
			t.Errorf("expected channel id %d, got %d", want, id)
		}
	}
}

// --- List / ListAll tests ---

func TestList_OnlyJoinedChannels(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	_, tokB := seedUser(t, svc)

	idA, err := svc.Create(tokA, "alpha", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := svc.Create(tokB, "beta", true); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := svc.List(tokA)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 1 || got[0].ChannelID != idA || got[0].Name != "alpha" {
		t.Errorf("expected only [alpha], got %+v", got)
	}
}

func TestListAll_IncludesPrivate(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	_, tokB := seedUser(t, svc)

	if _, err := svc.Create(tokA, "alpha", true); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := svc.Create(tokB, "secret", false); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := svc.ListAll(tokA)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected both channels, got %+v", got)
	}
}

func TestList_BadToken(t *testing.T) {
	svc := newTestService()
	if _, err := svc.List("bad-token"); !apperr.IsAccess(err) {
		t.Errorf("expected AccessError, got %v", err)
	}
	if _, err := svc.ListAll("bad-token"); !apperr.IsAccess(err) {
		t.Errorf("expected AccessError, got %v", err)
	}
}

// --- Invite tests ---

func TestInvite_AddsMember(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	uidB, _ := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Invite(tokA, id, uidB); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}

	svc.store.Lock()
	defer svc.store.Unlock()
	if !svc.store.ChannelByID(id).HasMember(uidB) {
		t.Error("invited user should be a member")
	}
	if !svc.store.UserByID(uidB).InChannel(id) {
		t.Error("invited user's channel list should include the channel")
	}
}

func TestInvite_AlreadyMemberIsNoOp(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	uidB, _ := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Invite(tokA, id, uidB); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}
	if err := svc.Invite(tokA, id, uidB); err != nil {
		t.Errorf("re-inviting a member should be a silent no-op, got %v", err)
	}

	svc.store.Lock()
	defer svc.store.Unlock()
	if n := len(svc.store.ChannelByID(id).Members); n != 2 {
		t.Errorf("expected 2 members after duplicate invite, got %d", n)
	}
}

func TestInvite_Errors(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	uidB, tokB := seedUser(t, svc)
	uidC, _ := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := svc.Invite("bad-token", id, uidB); !apperr.IsAccess(err) {
		t.Errorf("bad token: expected AccessError, got %v", err)
	}
	if err := svc.Invite(tokA, id, 999); !apperr.IsInput(err) {
		t.Errorf("bad u_id: expected InputError, got %v", err)
	}
	if err := svc.Invite(tokA, 999, uidB); !apperr.IsInput(err) {
		t.Errorf("bad channel: expected InputError, got %v", err)
	}
	if err := svc.Invite(tokB, id, uidC); !apperr.IsAccess(err) {
		t.Errorf("non-member inviter: expected AccessError, got %v", err)
	}
}

// --- Details tests ---

func TestDetails_MembersOnly(t *testing.T) {
	svc := newTestService()
	uidA, tokA := seedUser(t, svc)
	uidB, tokB := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := svc.Details(tokB, id); !apperr.IsAccess(err) {
		t.Errorf("non-member details: expected AccessError, got %v", err)
	}

	if err := svc.Invite(tokA, id, uidB); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}
	d, err := svc.Details(tokB, id)
	if err != nil {
		t.Fatalf("Details() error: %v", err)
	}
	if d.Name != "general" {
		t.Errorf("expected name general, got %q", d.Name)
	}
	if len(d.OwnerMembers) != 1 || d.OwnerMembers[0].UserID != uidA {
		t.Errorf("expected sole owner %d, got %+v", uidA, d.OwnerMembers)
	}
	if len(d.AllMembers) != 2 {
		t.Errorf("expected 2 members, got %+v", d.AllMembers)
	}
}

// --- Messages pagination tests ---

func TestMessages_PaginationAcross51(t *testing.T) {
	svc := newTestService()
	uid, tok := seedUser(t, svc)

	id, err := svc.Create(tok, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	for i := 1; i <= 51; i++ {
		seedMessage(t, svc, id, uid, fmt.Sprintf("message %d", i))
	}

	page, err := svc.Messages(tok, id, 0)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(page.Messages) != 50 {
		t.Fatalf("expected 50 messages on first page, got %d", len(page.Messages))
	}
	if page.Start != 0 || page.End != 50 {
		t.Errorf("expected start=0 end=50, got start=%d end=%d", page.Start, page.End)
	}
	// Newest first: message 51 leads, message 2 closes the page.
	if page.Messages[0].Body != "message 51" {
		t.Errorf("expected newest message first, got %q", page.Messages[0].Body)
	}
	if page.Messages[49].Body != "message 2" {
		t.Errorf("expected message 2 last on page, got %q", page.Messages[49].Body)
	}

	page, err = svc.Messages(tok, id, 50)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(page.Messages) != 1 || page.Messages[0].Body != "message 1" {
		t.Errorf("expected only the oldest message, got %+v", page.Messages)
	}
	if page.End != -1 {
		t.Errorf("expected end=-1 on final page, got %d", page.End)
	}
}

func TestMessages_StartEqualsTotal(t *testing.T) {
	svc := newTestService()
	uid, tok := seedUser(t, svc)

	id, err := svc.Create(tok, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	seedMessage(t, svc, id, uid, "only one")

	page, err := svc.Messages(tok, id, 1)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(page.Messages) != 0 || page.End != -1 {
		t.Errorf("expected empty final page, got %+v", page)
	}
}

func TestMessages_StartPastTotal(t *testing.T) {
	svc := newTestService()
	_, tok := seedUser(t, svc)

	id, err := svc.Create(tok, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := svc.Messages(tok, id, 1); !apperr.IsInput(err) {
		t.Errorf("expected InputError for start past total, got %v", err)
	}
}

func TestMessages_NegativeStart(t *testing.T) {
	svc := newTestService()
	uid, tok := seedUser(t, svc)

	id, err := svc.Create(tok, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		seedMessage(t, svc, id, uid, "hi")
	}

	for _, start := range []int{-1, -50} {
		if _, err := svc.Messages(tok, id, start); !apperr.IsInput(err) {
			t.Errorf("Messages(start=%d): expected InputError, got %v", start, err)
		}
	}
}

// Start bounds are validated before membership, so an out-of-range start on a
// foreign channel is an input error rather than an access error.
func TestMessages_StartCheckedBeforeMembership(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	_, tokB := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := svc.Messages(tokB, id, 5); !apperr.IsInput(err) {
		t.Errorf("expected InputError, got %v", err)
	}
	if _, err := svc.Messages(tokB, id, 0); !apperr.IsAccess(err) {
		t.Errorf("expected AccessError for non-member with valid start, got %v", err)
	}
}

// --- Join / Leave tests ---

func TestJoin_Public(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	uidB, tokB := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Join(tokB, id); err != nil {
		t.Fatalf("Join() error: %v", err)
	}

	svc.store.Lock()
	defer svc.store.Unlock()
	if !svc.store.ChannelByID(id).HasMember(uidB) {
		t.Error("joined user should be a member")
	}
}

func TestJoin_PrivateRequiresGlobalOwner(t *testing.T) {
	svc := newTestService()
	_, tokOwner := seedUser(t, svc) // user 1 is the global owner
	_, tokB := seedUser(t, svc)
	_, tokC := seedUser(t, svc)

	id, err := svc.Create(tokB, "secret", false)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := svc.Join(tokC, id); !apperr.IsAccess(err) {
		t.Errorf("member joining private channel: expected AccessError, got %v", err)
	}
	if err := svc.Join(tokOwner, id); err != nil {
		t.Errorf("global owner should join private channels: %v", err)
	}
}

func TestJoin_Idempotent(t *testing.T) {
	svc := newTestService()
	_, tok := seedUser(t, svc)

	id, err := svc.Create(tok, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Join(tok, id); err != nil {
		t.Errorf("rejoining should be a no-op, got %v", err)
	}

	svc.store.Lock()
	defer svc.store.Unlock()
	if n := len(svc.store.ChannelByID(id).Members); n != 1 {
		t.Errorf("expected 1 member after rejoin, got %d", n)
	}
}

func TestLeave_ChannelPersists(t *testing.T) {
	svc := newTestService()
	uid, tok := seedUser(t, svc)

	id, err := svc.Create(tok, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Leave(tok, id); err != nil {
		t.Fatalf("Leave() error: %v", err)
	}

	svc.store.Lock()
	defer svc.store.Unlock()
	ch := svc.store.ChannelByID(id)
	if ch == nil {
		t.Fatal("channel should persist after its last member leaves")
	}
	if ch.HasMember(uid) || ch.HasOwner(uid) {
		t.Error("leaver should be removed from members and owners")
	}
	if svc.store.UserByID(uid).InChannel(id) {
		t.Error("leaver's channel list should no longer include the channel")
	}
}

func TestLeave_NonMember(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	_, tokB := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Leave(tokB, id); !apperr.IsAccess(err) {
		t.Errorf("expected AccessError, got %v", err)
	}
}

// --- AddOwner / RemoveOwner tests ---

func TestAddOwner_Basic(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	uidB, _ := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Invite(tokA, id, uidB); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}
	if err := svc.AddOwner(tokA, id, uidB); err != nil {
		t.Fatalf("AddOwner() error: %v", err)
	}

	svc.store.Lock()
	defer svc.store.Unlock()
	if !svc.store.ChannelByID(id).HasOwner(uidB) {
		t.Error("promoted user should be an owner")
	}
}

// Promoting an existing owner errors instead of no-opping, unlike Invite.
func TestAddOwner_AlreadyOwnerIsError(t *testing.T) {
	svc := newTestService()
	uidA, tokA := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.AddOwner(tokA, id, uidA); !apperr.IsInput(err) {
		t.Errorf("expected InputError for duplicate promotion, got %v", err)
	}
}

func TestAddOwner_NonOwnerCannotPromote(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	uidB, tokB := seedUser(t, svc)
	uidC, _ := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Invite(tokA, id, uidB); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}
	if err := svc.Invite(tokA, id, uidC); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}

	if err := svc.AddOwner(tokB, id, uidC); !apperr.IsAccess(err) {
		t.Errorf("expected AccessError, got %v", err)
	}
}

func TestAddOwner_GlobalOwnerMayPromote(t *testing.T) {
	svc := newTestService()
	_, tokOwner := seedUser(t, svc) // global owner
	_, tokB := seedUser(t, svc)
	uidC, _ := seedUser(t, svc)

	id, err := svc.Create(tokB, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Invite(tokB, id, uidC); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}

	if err := svc.AddOwner(tokOwner, id, uidC); err != nil {
		t.Errorf("global owner should be able to promote: %v", err)
	}
}

func TestRemoveOwner_Basic(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	uidB, _ := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Invite(tokA, id, uidB); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}
	if err := svc.AddOwner(tokA, id, uidB); err != nil {
		t.Fatalf("AddOwner() error: %v", err)
	}
	if err := svc.RemoveOwner(tokA, id, uidB); err != nil {
		t.Fatalf("RemoveOwner() error: %v", err)
	}

	svc.store.Lock()
	defer svc.store.Unlock()
	ch := svc.store.ChannelByID(id)
	if ch.HasOwner(uidB) {
		t.Error("demoted user should no longer be an owner")
	}
	if !ch.HasMember(uidB) {
		t.Error("demoted user should remain a member")
	}
}

func TestRemoveOwner_NotAnOwner(t *testing.T) {
	svc := newTestService()
	_, tokA := seedUser(t, svc)
	uidB, _ := seedUser(t, svc)

	id, err := svc.Create(tokA, "general", true)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Invite(tokA, id, uidB); err != nil {
		t.Fatalf("Invite() error: %v", err)
	}
	if err := svc.RemoveOwner(tokA, id, uidB); !apperr.IsInput(err) {
		t.Errorf("expected InputError for demoting a non-owner, got %v", err)
	}
}
