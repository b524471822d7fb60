package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/replyflow/internal/identity"
	"github.com/teemow/replyflow/internal/mailbox"
	"github.com/teemow/replyflow/internal/profile"
)

type fakeProfiles struct {
	records map[string]*profile.Record
}

func (p *fakeProfiles) Get(email string) (*profile.Record, bool) {
	rec, ok := p.records[email]
	return rec, ok
}

func TestReplyDrafter_DraftsEveryMessage(t *testing.T) {
	mb := &fakeMailbox{}
	profiles := &fakeProfiles{records: map[string]*profile.Record{
		"alice@example.com": {Email: "alice@example.com", Name: "Alice Liddell", Company: "Wonderland Inc"},
	}}
	d := NewReplyDrafter(mb, profiles, identity.NewExtractor(nil), nil)

	msgs := []*mailbox.Message{
		testMessage("m1", "t1", "Alice <alice@example.com>"),
		testMessage("m2", "t2", "unknown@example.org"),
	}
	require.NoError(t, d.Draft(context.Background(), FormatBatch(msgs), msgs))
	assert.Equal(t, []string{"draft-m1", "draft-m2"}, mb.draftIDs)
}

func TestReplyDrafter_PartialFailure(t *testing.T) {
	mb := &fakeMailbox{draftErr: errors.New("quota exceeded")}
	d := NewReplyDrafter(mb, &fakeProfiles{}, identity.NewExtractor(nil), nil)

	msgs := []*mailbox.Message{testMessage("m1", "t1", "alice@example.com")}
	err := d.Draft(context.Background(), "", msgs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "m1")
}

func TestComposeReply_WithProfile(t *testing.T) {
	msg := testMessage("m1", "t1", "alice@example.com")
	rec := &profile.Record{
		Name:    "Alice Liddell",
		Company: "Wonderland Inc",
		Role:    "CTO",
	}

	body := ComposeReply(msg, rec)
	assert.Contains(t, body, "Hi Alice,")
	assert.Contains(t, body, "CTO at Wonderland Inc")
}

func TestComposeReply_CompanyOnly(t *testing.T) {
	body := ComposeReply(testMessage("m1", "t1", "x@y.com"), &profile.Record{Company: "Acme"})
	assert.Contains(t, body, "Hi,")
	assert.Contains(t, body, "from Acme")
}

func TestComposeReply_NoProfile(t *testing.T) {
	body := ComposeReply(testMessage("m1", "t1", "x@y.com"), nil)
	assert.Contains(t, body, "Hi,")
	assert.Contains(t, body, "Thanks for reaching out")
	assert.NotContains(t, body, "at ")
}
