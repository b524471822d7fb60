package enrich

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/replyflow/internal/identity"
	"github.com/teemow/replyflow/internal/instrumentation"
	"github.com/teemow/replyflow/internal/logging"
	"github.com/teemow/replyflow/internal/parse"
	"github.com/teemow/replyflow/internal/profile"
	"github.com/teemow/replyflow/internal/research"
)

// Store is the slice of the profile store the coordinator needs.
type Store interface {
	Exists(email, name string) bool
	Get(email string) (*profile.Record, bool)
	Put(rec *profile.Record) error
}

// Enrichment result values for logs and metrics.
const (
	ResultCached  = "cached"
	ResultFresh   = "fresh"
	ResultRefresh = "refresh"
)

// Coordinator drives the enrichment pipeline for one identity at a time:
// consult the store, fan out to the research backends, parse, persist.
// A batch entry point adds bounded identity-level parallelism.
type Coordinator struct {
	store       Store
	backends    []research.Backend
	parser      *parse.Parser
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	concurrency int
	now         func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithConcurrency bounds how many identities a batch enriches in parallel.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a coordinator over the given store and backends.
// Backend order is priority order: earlier backends contribute more
// authoritative text to the parser.
func NewCoordinator(store Store, backends []research.Backend, parser *parse.Parser, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		backends:    backends,
		parser:      parser,
		logger:      slog.Default(),
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enrich researches one identity and returns its profile record.
//
// Without forceRefresh, an existing store entry short-circuits the
// backends entirely; an index hit whose detail document cannot be read
// falls through to a fresh fetch instead of failing. Persistence failure
// is logged and the freshly parsed record is returned anyway. Enrich has
// no retry of its own; callers wanting one re-invoke with forceRefresh.
func (c *Coordinator) Enrich(ctx context.Context, email, name string, forceRefresh bool) *profile.Record {
	email = identity.Normalize(email)
	start := c.now()

	if !forceRefresh && c.store.Exists(email, name) {
		if rec, ok := c.store.Get(email); ok {
			c.logger.Debug("profile served from store",
				logging.Operation("enrich"),
				logging.UserHash(email),
				logging.Status(logging.StatusSkipped))
			c.metrics.RecordEnrichment(ctx, ResultCached, c.now().Sub(start))
			return rec
		}
		// Index claims existence but the detail is gone; research again.
		c.logger.Warn("profile index out of sync with detail, refetching",
			logging.Operation("enrich"),
			logging.UserHash(email))
	}

	query := email
	if name != "" {
		query = name + " " + email
	}

	results := c.queryBackends(ctx, query)

	var texts, tags []string
	for _, res := range results {
		texts = append(texts, res.Text)
		tags = append(tags, res.Backend)
	}

	rec := c.parser.Parse(email, name, strings.Join(tags, "+"), strings.Join(texts, "\n\n"), c.now())

	if err := c.store.Put(rec); err != nil {
		// Non-fatal: the caller still gets the record, a later cycle can
		// research again.
		c.logger.Warn("failed to persist profile",
			logging.Operation("enrich"),
			logging.UserHash(email),
			logging.Err(err))
		c.metrics.RecordStoreWriteFailure(ctx)
	}

	result := ResultFresh
	if forceRefresh {
		result = ResultRefresh
	}
	c.metrics.RecordEnrichment(ctx, result, c.now().Sub(start))

	c.logger.Info("profile enriched",
		logging.Operation("enrich"),
		logging.UserHash(email),
		slog.String("source", rec.Source),
		logging.Status(logging.StatusSuccess))

	return rec
}

// queryBackends fans the query out to every backend concurrently and
// returns the successful results in backend priority order. Failures are
// logged and dropped; an empty result set is a valid outcome.
func (c *Coordinator) queryBackends(ctx context.Context, query string) []*research.Result {
	slots := make([]*research.Result, len(c.backends))

	var wg sync.WaitGroup
	for i, backend := range c.backends {
		wg.Add(1)
		go func(i int, backend research.Backend) {
			defer wg.Done()
			start := c.now()
			res, err := backend.Query(ctx, query)
			c.metrics.RecordBackendCall(ctx, backend.Name(), c.now().Sub(start), err)
			if err != nil {
				c.logger.Warn("research backend failed",
					logging.Backend(backend.Name()),
					logging.Err(err))
				return
			}
			slots[i] = res
		}(i, backend)
	}
	wg.Wait()

	results := make([]*research.Result, 0, len(slots))
	for _, res := range slots {
		if res != nil {
			results = append(results, res)
		}
	}
	return results
}

// EnrichBatch enriches identities with bounded parallelism. Writes for
// distinct identities proceed concurrently; the store serializes writes
// per address. The call returns only after every identity has settled.
func (c *Coordinator) EnrichBatch(ctx context.Context, ids []identity.Identity) {
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			c.Enrich(ctx, id.Email, id.Name, false)
			return nil
		})
	}

	// Enrich never returns an error; Wait is for settlement only.
	_ = g.Wait()
}
