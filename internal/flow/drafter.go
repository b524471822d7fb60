package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teemow/replyflow/internal/identity"
	"github.com/teemow/replyflow/internal/logging"
	"github.com/teemow/replyflow/internal/mailbox"
	"github.com/teemow/replyflow/internal/profile"
)

// ProfileReader is the read side of the profile store the drafter needs.
type ProfileReader interface {
	Get(email string) (*profile.Record, bool)
}

// ReplyDrafter writes a personalized reply draft for every message in a
// batch. Drafts are saved to the mailbox for human review, never sent.
type ReplyDrafter struct {
	mailbox   mailbox.Mailbox
	profiles  ProfileReader
	extractor *identity.Extractor
	logger    *slog.Logger
}

// NewReplyDrafter creates a drafter backed by the given mailbox and
// profile store.
func NewReplyDrafter(mb mailbox.Mailbox, profiles ProfileReader, ex *identity.Extractor, logger *slog.Logger) *ReplyDrafter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplyDrafter{
		mailbox:   mb,
		profiles:  profiles,
		extractor: ex,
		logger:    logger,
	}
}

// Draft creates one reply draft per message. A failure on one message
// does not stop the rest; all failures are joined into the returned
// error.
func (d *ReplyDrafter) Draft(ctx context.Context, _ string, msgs []*mailbox.Message) error {
	var errs []error
	for _, msg := range msgs {
		var rec *profile.Record
		if id, err := d.extractor.Extract(msg.Sender); err == nil {
			if r, ok := d.profiles.Get(id.Email); ok {
				rec = r
			}
		}

		body := ComposeReply(msg, rec)
		draftID, err := d.mailbox.CreateReplyDraft(ctx, msg, body)
		if err != nil {
			errs = append(errs, fmt.Errorf("draft reply for message %s: %w", msg.ID, err))
			continue
		}
		d.logger.Info("reply draft created",
			logging.Operation("draft.reply"),
			slog.String("message_id", msg.ID),
			slog.String("draft_id", draftID))
	}
	return errors.Join(errs...)
}

// ComposeReply renders the reply body. Profile details are woven in when
// known; an unknown sender gets the generic acknowledgement.
func ComposeReply(msg *mailbox.Message, rec *profile.Record) string {
	var b strings.Builder

	name := ""
	if rec != nil && rec.Name != "" {
		name = strings.Fields(rec.Name)[0]
	}
	if name != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", name)
	} else {
		b.WriteString("Hi,\n\n")
	}

	b.WriteString("Thanks for reaching out. I've received your message and will get back to you with a proper answer shortly.\n")

	if rec != nil && rec.Company != "" {
		if rec.Role != "" {
			fmt.Fprintf(&b, "\nAlways good to hear from the %s at %s.\n", rec.Role, rec.Company)
		} else {
			fmt.Fprintf(&b, "\nAlways good to hear from %s.\n", rec.Company)
		}
	}

	b.WriteString("\nBest regards")
	return b.String()
}
