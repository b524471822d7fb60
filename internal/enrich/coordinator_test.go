package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/replyflow/internal/identity"
	"github.com/teemow/replyflow/internal/parse"
	"github.com/teemow/replyflow/internal/profile"
	"github.com/teemow/replyflow/internal/research"
)

type fakeBackend struct {
	name    string
	text    string
	err     error
	mu      sync.Mutex
	queries []string
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Query(_ context.Context, text string) (*research.Result, error) {
	b.mu.Lock()
	b.queries = append(b.queries, text)
	b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return &research.Result{Backend: b.name, Text: b.text}, nil
}

func (b *fakeBackend) queryCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queries)
}

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*profile.Record
	putErr  error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*profile.Record{}}
}

func (s *fakeStore) Exists(email, _ string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[email]
	return ok
}

func (s *fakeStore) Get(email string) (*profile.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	return rec, ok
}

func (s *fakeStore) Put(rec *profile.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.records[rec.Email] = rec
	return nil
}

func newTestCoordinator(store Store, backends ...research.Backend) *Coordinator {
	return NewCoordinator(store, backends, parse.NewParser())
}

func TestEnrich_FreshIdentity(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{name: "exa", text: "Company: Acme Corp. Role: Senior Engineer."}
	c := newTestCoordinator(store, backend)

	rec := c.Enrich(context.Background(), "Bob@Acme.com", "Bob Smith", false)
	require.NotNil(t, rec)

	assert.Equal(t, "bob@acme.com", rec.Email)
	assert.Equal(t, "Acme Corp", rec.Company)
	assert.Equal(t, "Senior Engineer", rec.Role)
	assert.Equal(t, "exa", rec.Source)
	assert.Equal(t, []string{"Bob Smith bob@acme.com"}, backend.queries)
	assert.True(t, store.Exists("bob@acme.com", ""))
}

func TestEnrich_QueryWithoutName(t *testing.T) {
	backend := &fakeBackend{name: "exa", text: "irrelevant"}
	c := newTestCoordinator(newFakeStore(), backend)

	c.Enrich(context.Background(), "bob@acme.com", "", false)
	assert.Equal(t, []string{"bob@acme.com"}, backend.queries)
}

func TestEnrich_CachedSkipsBackends(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{name: "exa", text: "Company: Acme Corp."}
	c := newTestCoordinator(store, backend)

	first := c.Enrich(context.Background(), "bob@acme.com", "Bob", false)
	second := c.Enrich(context.Background(), "bob@acme.com", "Bob", false)

	assert.Equal(t, 1, backend.queryCount(), "second call must not hit the backends")
	assert.Equal(t, first, second)
}

func TestEnrich_ForceRefreshQueriesAgain(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{name: "exa", text: "Company: Acme Corp."}

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := created
	c := NewCoordinator(store, []research.Backend{backend}, parse.NewParser(),
		WithClock(func() time.Time { return clock }))

	c.Enrich(context.Background(), "bob@acme.com", "Bob", false)

	clock = created.Add(48 * time.Hour)
	backend.text = "Company: Initech."
	rec := c.Enrich(context.Background(), "bob@acme.com", "Bob", true)

	assert.Equal(t, 2, backend.queryCount())
	assert.Equal(t, "Initech", rec.Company)
	assert.Equal(t, created, rec.CreatedAt, "refresh keeps the original created_at")
	assert.Equal(t, clock, rec.UpdatedAt)
}

func TestEnrich_BackendFailureIsolated(t *testing.T) {
	store := newFakeStore()
	good := &fakeBackend{name: "exa", text: "Company: Acme Corp."}
	bad := &fakeBackend{name: "serper", err: errors.New("rate limited")}
	c := newTestCoordinator(store, good, bad)

	rec := c.Enrich(context.Background(), "bob@acme.com", "Bob", false)
	require.NotNil(t, rec)

	assert.Equal(t, "Acme Corp", rec.Company)
	assert.Equal(t, "exa", rec.Source, "failed backend must not appear in the source tag")
}

func TestEnrich_AllBackendsFail(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(store,
		&fakeBackend{name: "exa", err: errors.New("down")},
		&fakeBackend{name: "serper", err: errors.New("down")})

	rec := c.Enrich(context.Background(), "bob@acme.com", "Bob", false)
	require.NotNil(t, rec, "a minimal record is still produced and stored")

	assert.Empty(t, rec.Company)
	assert.Empty(t, rec.Source)
	assert.True(t, store.Exists("bob@acme.com", ""))
}

func TestEnrich_SourceTagJoinsBackends(t *testing.T) {
	c := newTestCoordinator(newFakeStore(),
		&fakeBackend{name: "exa", text: "Company: Acme Corp."},
		&fakeBackend{name: "serper", text: "Role: CTO."})

	rec := c.Enrich(context.Background(), "bob@acme.com", "Bob", false)
	assert.Equal(t, "exa+serper", rec.Source)
}

func TestEnrich_FirstBackendWinsPerField(t *testing.T) {
	c := newTestCoordinator(newFakeStore(),
		&fakeBackend{name: "exa", text: "Company: Acme Corp."},
		&fakeBackend{name: "serper", text: "Company: Initech."})

	rec := c.Enrich(context.Background(), "bob@acme.com", "Bob", false)
	assert.Equal(t, "Acme Corp", rec.Company)
}

func TestEnrich_PutFailureStillReturnsRecord(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("disk full")
	c := newTestCoordinator(store, &fakeBackend{name: "exa", text: "Company: Acme Corp."})

	rec := c.Enrich(context.Background(), "bob@acme.com", "Bob", false)
	require.NotNil(t, rec)
	assert.Equal(t, "Acme Corp", rec.Company)
}

func TestEnrich_StaleIndexRefetches(t *testing.T) {
	// Index hit whose detail document is unreadable: Exists true, Get false.
	store := &staleStore{}
	backend := &fakeBackend{name: "exa", text: "Company: Acme Corp."}
	c := newTestCoordinator(store, backend)

	rec := c.Enrich(context.Background(), "bob@acme.com", "Bob", false)
	require.NotNil(t, rec)
	assert.Equal(t, 1, backend.queryCount())
	assert.Equal(t, "Acme Corp", rec.Company)
}

type staleStore struct {
	puts int
}

func (s *staleStore) Exists(string, string) bool         { return true }
func (s *staleStore) Get(string) (*profile.Record, bool) { return nil, false }
func (s *staleStore) Put(rec *profile.Record) error      { s.puts++; return nil }

func TestEnrichBatch_AllSettle(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{name: "exa", text: "Company: Acme Corp."}
	c := NewCoordinator(store, []research.Backend{backend}, parse.NewParser(),
		WithConcurrency(2))

	ids := []identity.Identity{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
		{Email: "c@example.com"},
	}
	c.EnrichBatch(context.Background(), ids)

	for _, id := range ids {
		assert.True(t, store.Exists(id.Email, ""), "identity %s should be stored", id.Email)
	}
	assert.Equal(t, 3, backend.queryCount())
}

func TestEnrich_EndToEndWithFileStore(t *testing.T) {
	store, err := profile.NewStore(t.TempDir())
	require.NoError(t, err)

	backend := &fakeBackend{name: "exa",
		text: "Company: Acme Corp. Role: VP of Engineering. Bio: Jane has over a decade of experience scaling platform teams across three continents and beyond."}
	c := newTestCoordinator(store, backend)

	rec := c.Enrich(context.Background(), "jane@acme.com", "Jane Doe", false)
	require.NotNil(t, rec)
	assert.Equal(t, "Acme Corp", rec.Company)

	reloaded, ok := store.Get("jane@acme.com")
	require.True(t, ok)
	assert.Equal(t, rec.Company, reloaded.Company)
	assert.Equal(t, rec.Role, reloaded.Role)

	// Second run is served from the store.
	c.Enrich(context.Background(), "jane@acme.com", "Jane Doe", false)
	assert.Equal(t, 1, backend.queryCount())
}
