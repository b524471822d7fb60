package mailbox

import "context"

// Message is a single inbound email as seen by the responder flow.
type Message struct {
	// ID is the provider's message identifier
	ID string

	// ThreadID is the conversation identifier the message belongs to
	ThreadID string

	// Sender is the raw From header, e.g. `Alice <alice@example.com>`
	Sender string

	// Subject is the decoded Subject header
	Subject string

	// Snippet is a short plain-text preview of the body
	Snippet string

	// Body is the plain-text message body
	Body string

	// MessageID is the RFC 2822 Message-ID header, used for reply threading
	MessageID string

	// References is the RFC 2822 References header of the original message
	References string
}

// Mailbox is the mail transport the responder flow runs against.
// The production implementation talks to Gmail; tests substitute fakes.
type Mailbox interface {
	// Search returns up to limit messages matching the provider query,
	// newest first.
	Search(ctx context.Context, query string, limit int64) ([]*Message, error)

	// CreateReplyDraft creates a draft reply to msg in the same thread and
	// returns the provider's draft identifier. The draft is left unsent so
	// a human reviews it before it goes out.
	CreateReplyDraft(ctx context.Context, msg *Message, body string) (string, error)
}
