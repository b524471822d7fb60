package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/replyflow/internal/google"
	"github.com/teemow/replyflow/internal/instrumentation"
	"github.com/teemow/replyflow/internal/logging"
)

// GmailClient implements Mailbox on top of the Gmail API.
type GmailClient struct {
	svc       *gmail.UsersService
	account   string
	signature string // Cached signature for this account
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// GmailOption configures a GmailClient.
type GmailOption func(*GmailClient)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) GmailOption {
	return func(c *GmailClient) { c.logger = logger }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *instrumentation.Metrics) GmailOption {
	return func(c *GmailClient) { c.metrics = m }
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewGmailClientForAccount creates a new Gmail mailbox with OAuth2
// authentication for a specific account.
func NewGmailClientForAccount(ctx context.Context, account string, opts ...GmailOption) (*GmailClient, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	c := &GmailClient{
		svc:     svc.Users,
		account: account,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewGmailClient creates a Gmail mailbox for the default account.
func NewGmailClient(ctx context.Context, opts ...GmailOption) (*GmailClient, error) {
	return NewGmailClientForAccount(ctx, "default", opts...)
}

// Account returns the account name this client is associated with
func (c *GmailClient) Account() string {
	return c.account
}

// Search lists up to limit messages matching the query and hydrates each
// with headers and a plain-text body.
func (c *GmailClient) Search(ctx context.Context, query string, limit int64) ([]*Message, error) {
	start := time.Now()

	refs, err := c.listMessageRefs(ctx, query, limit)
	if err != nil {
		c.metrics.RecordMailOperationForAccount(ctx, instrumentation.OperationSearch, instrumentation.StatusError, c.account, time.Since(start))
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	c.metrics.RecordMailOperationForAccount(ctx, instrumentation.OperationSearch, instrumentation.StatusSuccess, c.account, time.Since(start))

	messages := make([]*Message, 0, len(refs))
	for _, ref := range refs {
		msg, err := c.getMessage(ctx, ref.Id)
		if err != nil {
			// One unreadable message should not sink the whole batch
			c.logger.Warn("failed to fetch message",
				logging.Operation("mailbox.search"),
				slog.String("message_id", ref.Id),
				logging.Err(err))
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// listMessageRefs pages through the message list until limit is reached.
func (c *GmailClient) listMessageRefs(ctx context.Context, query string, limit int64) ([]*gmail.Message, error) {
	var refs []*gmail.Message
	pageToken := ""

	for {
		remaining := limit - int64(len(refs))
		if remaining <= 0 {
			break
		}

		// Gmail API has a max page size, typically 100
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(query).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, err
		}

		refs = append(refs, res.Messages...)

		if res.NextPageToken == "" || int64(len(refs)) >= limit {
			break
		}

		pageToken = res.NextPageToken
	}

	if int64(len(refs)) > limit {
		refs = refs[:limit]
	}

	return refs, nil
}

// getMessage fetches a full message and maps it to the transport-neutral type.
func (c *GmailClient) getMessage(ctx context.Context, id string) (*Message, error) {
	start := time.Now()

	full, err := c.svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		c.metrics.RecordMailOperationForAccount(ctx, instrumentation.OperationGet, instrumentation.StatusError, c.account, time.Since(start))
		return nil, err
	}
	c.metrics.RecordMailOperationForAccount(ctx, instrumentation.OperationGet, instrumentation.StatusSuccess, c.account, time.Since(start))

	msg := &Message{
		ID:         full.Id,
		ThreadID:   full.ThreadId,
		Sender:     headerValue(full, "From"),
		Subject:    headerValue(full, "Subject"),
		Snippet:    full.Snippet,
		Body:       messageBody(full),
		MessageID:  headerValue(full, "Message-ID"),
		References: headerValue(full, "References"),
	}
	if msg.Subject == "" {
		msg.Subject = "No Subject"
	}
	if msg.Body == "" {
		msg.Body = full.Snippet
	}

	return msg, nil
}

// CreateReplyDraft creates an unsent draft reply to msg in the same thread.
func (c *GmailClient) CreateReplyDraft(ctx context.Context, msg *Message, body string) (string, error) {
	if msg.ID == "" {
		return "", fmt.Errorf("message ID is required")
	}
	if msg.ThreadID == "" {
		return "", fmt.Errorf("thread ID is required")
	}

	raw, err := buildReply(msg, c.appendSignature(body))
	if err != nil {
		return "", err
	}

	start := time.Now()
	draft, err := c.svc.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{
			Raw:      base64.URLEncoding.EncodeToString([]byte(raw)),
			ThreadId: msg.ThreadID,
		},
	}).Context(ctx).Do()
	if err != nil {
		c.metrics.RecordMailOperationForAccount(ctx, instrumentation.OperationDraft, instrumentation.StatusError, c.account, time.Since(start))
		return "", fmt.Errorf("failed to create draft: %w", err)
	}
	c.metrics.RecordMailOperationForAccount(ctx, instrumentation.OperationDraft, instrumentation.StatusSuccess, c.account, time.Since(start))

	return draft.Id, nil
}

// GetSignature fetches the user's Gmail signature (primary send-as address)
// The signature is cached after the first fetch
func (c *GmailClient) GetSignature() (string, error) {
	if c.signature != "" {
		return c.signature, nil
	}

	sendAs, err := c.svc.Settings.SendAs.Get("me", "me").Do()
	if err != nil {
		// If we can't fetch the signature, return empty string (not an error)
		// This allows drafts to be created even if signature fetching fails
		return "", nil
	}

	if sendAs.Signature != "" {
		c.signature = sendAs.Signature
	}

	return c.signature, nil
}

// appendSignature adds the user's signature to the reply body
func (c *GmailClient) appendSignature(body string) string {
	signature, err := c.GetSignature()
	if err != nil || signature == "" {
		return body
	}

	return body + "\n\n-- \n" + signature
}
