package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/teemow/replyflow/internal/logging"
	"github.com/teemow/replyflow/internal/mailbox"
)

const (
	mailFile   = "emails.json"
	draftsFile = "drafts.json"
)

// MailEntry is one archived inbound email.
type MailEntry struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	Sender   string `json:"sender"`
	Subject  string `json:"subject"`
	Snippet  string `json:"snippet"`
	Body     string `json:"body"`

	// FetchedAt records when the message was first archived.
	FetchedAt time.Time `json:"fetched_at"`
}

// DraftEntry is one archived draft batch submission.
type DraftEntry struct {
	// DraftID is a generated identifier of the form draft_<seq>_<epoch>.
	DraftID   string    `json:"draft_id"`
	CreatedAt time.Time `json:"created_at"`

	// MessageIDs lists the inbound messages the batch replied to.
	MessageIDs []string `json:"message_ids"`

	// Result records the submission outcome.
	Result string `json:"result"`
}

// Archive keeps append-style JSON records of fetched mail and submitted
// draft batches under a storage directory. It exists for operator review
// and debugging; the responder flow never reads it back.
type Archive struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) { a.logger = logger }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(a *Archive) { a.now = now }
}

// New creates an Archive rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Archive, error) {
	a := &Archive{
		dir:    dir,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return a, nil
}

// SaveMail appends messages to the mail archive, skipping ids already
// recorded. Returns the number of newly archived messages.
func (a *Archive) SaveMail(msgs []*mailbox.Message) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, err := a.loadMail()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.ID] = true
	}

	added := 0
	for _, msg := range msgs {
		if msg == nil || seen[msg.ID] {
			continue
		}
		seen[msg.ID] = true
		existing = append(existing, MailEntry{
			ID:        msg.ID,
			ThreadID:  msg.ThreadID,
			Sender:    msg.Sender,
			Subject:   msg.Subject,
			Snippet:   msg.Snippet,
			Body:      msg.Body,
			FetchedAt: a.now(),
		})
		added++
	}

	if added == 0 {
		return 0, nil
	}

	if err := a.writeJSON(mailFile, existing); err != nil {
		return 0, err
	}

	a.logger.Debug("archived mail",
		logging.Operation("archive.save_mail"),
		slog.Int("added", added),
		slog.Int("total", len(existing)))

	return added, nil
}

// LoadMail returns all archived mail entries.
func (a *Archive) LoadMail() ([]MailEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadMail()
}

func (a *Archive) loadMail() ([]MailEntry, error) {
	var entries []MailEntry
	if err := a.readJSON(mailFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveDraftBatch appends a draft batch record and returns its generated id.
func (a *Archive) SaveDraftBatch(messageIDs []string, result string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, err := a.loadDrafts()
	if err != nil {
		return "", err
	}

	now := a.now()
	entry := DraftEntry{
		DraftID:    fmt.Sprintf("draft_%d_%d", len(existing)+1, now.Unix()),
		CreatedAt:  now,
		MessageIDs: messageIDs,
		Result:     result,
	}
	existing = append(existing, entry)

	if err := a.writeJSON(draftsFile, existing); err != nil {
		return "", err
	}

	a.logger.Debug("archived draft batch",
		logging.Operation("archive.save_drafts"),
		slog.String("draft_id", entry.DraftID),
		slog.Int("messages", len(messageIDs)))

	return entry.DraftID, nil
}

// LoadDrafts returns all archived draft batch records.
func (a *Archive) LoadDrafts() ([]DraftEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadDrafts()
}

func (a *Archive) loadDrafts() ([]DraftEntry, error) {
	var entries []DraftEntry
	if err := a.readJSON(draftsFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ClearMail truncates the mail archive.
func (a *Archive) ClearMail() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeJSON(mailFile, []MailEntry{})
}

// ClearDrafts truncates the draft archive.
func (a *Archive) ClearDrafts() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeJSON(draftsFile, []DraftEntry{})
}

func (a *Archive) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(a.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (a *Archive) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(a.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
