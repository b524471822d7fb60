package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/replyflow/internal/archive"
	"github.com/teemow/replyflow/internal/identity"
	"github.com/teemow/replyflow/internal/instrumentation"
	"github.com/teemow/replyflow/internal/logging"
	"github.com/teemow/replyflow/internal/mailbox"
)

// State names the stages of the responder cycle.
type State string

const (
	StateFetchMail        State = "fetch_mail"
	StateFetchUserDetails State = "fetch_user_details"
	StateGenerateDrafts   State = "generate_drafts"
	StateWait             State = "wait"
)

// Enricher researches a batch of sender identities and persists their
// profiles, with its own bounded parallelism. The production
// implementation is enrich.Coordinator.
type Enricher interface {
	EnrichBatch(ctx context.Context, ids []identity.Identity)
}

// Drafter receives the formatted pending batch and produces reply drafts.
type Drafter interface {
	Draft(ctx context.Context, batch string, msgs []*mailbox.Message) error
}

// Config holds the flow's operating parameters.
type Config struct {
	// OwnAddress is the operator's address; messages from it are ignored.
	OwnAddress string

	// Query is the provider search filter for new mail.
	Query string

	// FetchLimit caps how many messages one cycle processes.
	FetchLimit int64

	// WaitInterval is the pause between cycles.
	WaitInterval time.Duration
}

// Flow is the recurring polling state machine: fetch new mail, enrich
// senders, generate drafts, wait, repeat. One Flow instance owns its
// dedup state; independent instances do not share anything.
type Flow struct {
	cfg       Config
	mailbox   mailbox.Mailbox
	extractor *identity.Extractor
	enricher  Enricher
	drafter   Drafter

	archive *archive.Archive
	audit   *instrumentation.AuditLogger
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	state State
	cycle uint64

	// checkedIDs holds every message id seen this run, so no message is
	// considered twice.
	checkedIDs map[string]struct{}

	// enriched holds sender addresses already attempted this run,
	// successfully or not. Consulted before the store.
	enriched map[string]struct{}

	// pending is the batch fetched by the current cycle, cleared by
	// GenerateDrafts regardless of the drafting outcome.
	pending []*mailbox.Message
}

// Option configures a Flow.
type Option func(*Flow)

// WithArchive records fetched mail and draft batches to disk.
func WithArchive(a *archive.Archive) Option {
	return func(f *Flow) { f.archive = a }
}

// WithAuditLogger attaches an audit trail for enrichment and drafting.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(f *Flow) { f.audit = al }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(f *Flow) { f.metrics = m }
}

// New creates a Flow. The mailbox, extractor, enricher and drafter are
// required; archive, audit, logger and metrics are optional.
func New(cfg Config, mb mailbox.Mailbox, ex *identity.Extractor, en Enricher, dr Drafter, opts ...Option) *Flow {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 5
	}
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = 180 * time.Second
	}

	f := &Flow{
		cfg:        cfg,
		mailbox:    mb,
		extractor:  ex,
		enricher:   en,
		drafter:    dr,
		logger:     slog.Default(),
		state:      StateFetchMail,
		checkedIDs: make(map[string]struct{}),
		enriched:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// State returns the flow's current state.
func (f *Flow) State() State {
	return f.state
}

// Cycle returns the number of completed cycles.
func (f *Flow) Cycle() uint64 {
	return f.cycle
}

// Run drives the cycle until ctx is cancelled. Cancellation takes effect
// at the Wait boundary only; a started cycle always runs to completion.
// Only a mail transport failure during FetchMail terminates the flow with
// an error.
func (f *Flow) Run(ctx context.Context) error {
	for {
		if err := f.RunCycle(ctx); err != nil {
			return err
		}

		f.state = StateWait
		f.logger.Info("cycle complete, waiting",
			logging.Operation("flow.wait"),
			logging.Cycle(f.cycle),
			slog.Duration("interval", f.cfg.WaitInterval))

		timer := time.NewTimer(f.cfg.WaitInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			f.logger.Info("flow stopped", logging.Cycle(f.cycle))
			return nil
		case <-timer.C:
		}
	}
}

// RunCycle executes one FetchMail -> FetchUserDetails -> GenerateDrafts
// pass. Exposed for single-shot CLI runs and tests.
func (f *Flow) RunCycle(ctx context.Context) error {
	start := time.Now()
	f.cycle++

	f.state = StateFetchMail
	if err := f.fetchMail(ctx); err != nil {
		f.metrics.RecordCycle(ctx, instrumentation.StatusError, time.Since(start))
		return fmt.Errorf("cycle %d: fetch mail: %w", f.cycle, err)
	}

	f.state = StateFetchUserDetails
	f.fetchUserDetails(ctx)

	f.state = StateGenerateDrafts
	f.generateDrafts(ctx)

	f.metrics.RecordCycle(ctx, instrumentation.StatusSuccess, time.Since(start))
	return nil
}

// fetchMail pulls new messages, drops the operator's own mail, keeps at
// most one message per thread (first seen wins) and records every fetched
// id as checked. A transport failure here is fatal for the flow.
func (f *Flow) fetchMail(ctx context.Context) error {
	msgs, err := f.mailbox.Search(ctx, f.cfg.Query, f.cfg.FetchLimit)
	if err != nil {
		return err
	}

	threadSeen := make(map[string]struct{})
	var fresh []*mailbox.Message
	for _, msg := range msgs {
		_, checked := f.checkedIDs[msg.ID]
		_, dupThread := threadSeen[msg.ThreadID]
		own := f.cfg.OwnAddress != "" && strings.Contains(msg.Sender, f.cfg.OwnAddress)

		// Every fetched id is marked checked, including the skipped ones
		f.checkedIDs[msg.ID] = struct{}{}

		if checked || dupThread || own {
			continue
		}
		threadSeen[msg.ThreadID] = struct{}{}
		fresh = append(fresh, msg)
	}

	f.pending = fresh
	f.logger.Info("fetched mail",
		logging.Operation("flow.fetch_mail"),
		logging.Cycle(f.cycle),
		slog.Int("fetched", len(msgs)),
		slog.Int("new", len(fresh)))

	if f.archive != nil && len(fresh) > 0 {
		if _, err := f.archive.SaveMail(fresh); err != nil {
			f.logger.Warn("failed to archive mail",
				logging.Operation("flow.fetch_mail"),
				logging.Err(err))
		}
	}

	return nil
}

// fetchUserDetails collects the pending senders not yet enriched this
// run and hands them to the enricher as one batch, so identity-level
// parallelism stays inside the enricher's concurrency bound. Every
// identity of the batch is marked processed afterwards, failed ones
// included; nothing here can abort the cycle.
func (f *Flow) fetchUserDetails(ctx context.Context) {
	var batch []identity.Identity
	inBatch := make(map[string]struct{})
	for _, msg := range f.pending {
		id, err := f.extractor.Extract(msg.Sender)
		if err != nil {
			if errors.Is(err, identity.ErrSystemSender) {
				f.logger.Debug("skipping system sender",
					logging.Operation("flow.fetch_user_details"),
					logging.Cycle(f.cycle))
			} else {
				f.logger.Warn("skipping unparseable sender",
					logging.Operation("flow.fetch_user_details"),
					logging.Cycle(f.cycle),
					logging.Err(err))
			}
			continue
		}

		if _, done := f.enriched[id.Email]; done {
			f.logger.Debug("sender already enriched this run",
				logging.Operation("flow.fetch_user_details"),
				logging.UserHash(id.Email))
			continue
		}
		if _, dup := inBatch[id.Email]; dup {
			continue
		}
		inBatch[id.Email] = struct{}{}
		batch = append(batch, id)
	}

	if len(batch) == 0 {
		return
	}

	invs := make([]*instrumentation.Invocation, len(batch))
	for i, id := range batch {
		invs[i] = instrumentation.NewInvocation("enrich").
			WithUser(id.Email).
			WithSpanContext(ctx)
	}

	f.enricher.EnrichBatch(ctx, batch)

	for i, id := range batch {
		f.enriched[id.Email] = struct{}{}
		f.audit.LogInvocation(invs[i].CompleteSuccess())
		f.logger.Info("sender enriched",
			logging.Operation("flow.fetch_user_details"),
			logging.Cycle(f.cycle),
			logging.UserHash(id.Email))
	}
}

// generateDrafts formats the pending batch, hands it to the drafter once
// and clears the batch whatever the outcome. Failed batches are not
// requeued.
func (f *Flow) generateDrafts(ctx context.Context) {
	if len(f.pending) == 0 {
		return
	}

	batch := f.pending
	f.pending = nil

	formatted := FormatBatch(batch)
	err := f.drafter.Draft(ctx, formatted, batch)

	result := "submitted"
	status := instrumentation.StatusSuccess
	if err != nil {
		result = "failed: " + err.Error()
		status = instrumentation.StatusError
		f.logger.Error("draft batch failed",
			logging.Operation("flow.generate_drafts"),
			logging.Cycle(f.cycle),
			logging.Err(err))
	}
	for range batch {
		f.metrics.RecordDraftCreated(ctx, status)
	}

	if f.archive != nil {
		ids := make([]string, 0, len(batch))
		for _, msg := range batch {
			ids = append(ids, msg.ID)
		}
		draftID, archiveErr := f.archive.SaveDraftBatch(ids, result)
		if archiveErr != nil {
			f.logger.Warn("failed to archive draft batch",
				logging.Operation("flow.generate_drafts"),
				logging.Err(archiveErr))
		} else {
			f.logger.Info("draft batch archived",
				logging.Operation("flow.generate_drafts"),
				logging.Cycle(f.cycle),
				slog.String("draft_id", draftID),
				logging.Status(status))
		}
	}
}

// FormatBatch renders pending messages into the block format the drafting
// collaborator consumes.
func FormatBatch(msgs []*mailbox.Message) string {
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, strings.Join([]string{
			"ID: " + msg.ID,
			"- Thread ID: " + msg.ThreadID,
			"- Snippet: " + msg.Snippet,
			"- From: " + msg.Sender,
			"--------",
		}, "\n"))
	}
	return strings.Join(blocks, "\n")
}
