package profile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/teemow/replyflow/internal/logging"
)

const (
	indexFileName  = "users.json"
	profilesSubdir = "profiles"
)

// Store persists profile records under a storage directory. It keeps a
// compact index document (email to summary) plus one detail document per
// identity. Both are plain JSON and rewritten in full on every write, so
// concurrent readers may observe a transient read failure; callers treat
// that as a cache miss, never as corruption.
type Store struct {
	dir         string
	profilesDir string
	matchByName bool
	logger      *slog.Logger
	now         func() time.Time

	// indexMu guards index read-modify-write sequences.
	indexMu sync.Mutex

	// emailMu serializes writes per identity so parallel enrichment of the
	// same address cannot interleave detail-document writes.
	emailMuMu sync.Mutex
	emailMu   map[string]*sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithNameMatching controls the broad existence heuristic that treats a
// case-insensitive display-name match as an existing profile. It avoids
// duplicate research under name variants at the cost of false positives
// for common names.
func WithNameMatching(enabled bool) StoreOption {
	return func(s *Store) { s.matchByName = enabled }
}

// WithLogger sets the logger used for non-fatal storage failures.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates the storage layout under dir and initializes an empty
// index if none exists yet.
func NewStore(dir string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		dir:         dir,
		profilesDir: filepath.Join(dir, profilesSubdir),
		matchByName: true,
		logger:      slog.Default(),
		now:         time.Now,
		emailMu:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.profilesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile storage: %w", err)
	}

	indexPath := filepath.Join(s.dir, indexFileName)
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := s.saveIndex(map[string]indexEntry{}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// lockEmail returns the per-identity write lock, creating it on first use.
func (s *Store) lockEmail(email string) *sync.Mutex {
	s.emailMuMu.Lock()
	defer s.emailMuMu.Unlock()
	mu, ok := s.emailMu[email]
	if !ok {
		mu = &sync.Mutex{}
		s.emailMu[email] = mu
	}
	return mu
}

// loadIndex reads the index document. A missing or unreadable index is an
// empty index, not an error.
func (s *Store) loadIndex() map[string]indexEntry {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFileName))
	if err != nil {
		return map[string]indexEntry{}
	}
	var index map[string]indexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return map[string]indexEntry{}
	}
	return index
}

func (s *Store) saveIndex(index map[string]indexEntry) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile index: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, indexFileName), data); err != nil {
		return fmt.Errorf("failed to write profile index: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target's directory and
// renames it into place, so readers never observe a partially written
// document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// detailPath maps an email to its detail document path. The address is
// flattened so it is safe as a file name.
func (s *Store) detailPath(email string) string {
	name := strings.ReplaceAll(email, "@", "_at_")
	name = strings.ReplaceAll(name, ".", "_")
	return filepath.Join(s.profilesDir, name+".json")
}

// Exists reports whether a profile for email is already stored. When name
// is non-empty and name matching is enabled, a case-insensitive match on a
// stored record's display name also counts, even under a different
// address. That broad heuristic is deliberate; see WithNameMatching.
func (s *Store) Exists(email, name string) bool {
	index := s.loadIndex()

	if _, ok := index[normalizeEmail(email)]; ok {
		return true
	}

	if name != "" && s.matchByName {
		for _, entry := range index {
			if strings.EqualFold(entry.Name, name) {
				return true
			}
		}
	}

	return false
}

// Get retrieves the full record for email. An index hit with a missing or
// unreadable detail document is reported as absent so the caller falls
// through to a fresh fetch.
func (s *Store) Get(email string) (*Record, bool) {
	email = normalizeEmail(email)

	index := s.loadIndex()
	if _, ok := index[email]; !ok {
		return nil, false
	}

	data, err := os.ReadFile(s.detailPath(email))
	if err != nil {
		s.logger.Debug("profile detail unreadable, treating as miss",
			logging.UserHash(email), logging.Err(err))
		return nil, false
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Debug("profile detail corrupt, treating as miss",
			logging.UserHash(email), logging.Err(err))
		return nil, false
	}

	return &rec, true
}

// Put writes rec, replacing any prior record for the same address in full.
// CreatedAt is preserved from the prior record if one existed. The caller
// treats a returned error as non-fatal.
func (s *Store) Put(rec *Record) error {
	email := normalizeEmail(rec.Email)

	mu := s.lockEmail(email)
	mu.Lock()
	defer mu.Unlock()

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	now := s.now()

	stored := *rec
	stored.Email = email
	stored.UpdatedAt = now

	index := s.loadIndex()
	if prior, ok := index[email]; ok && !prior.CreatedAt.IsZero() {
		stored.CreatedAt = prior.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}

	data, err := json.MarshalIndent(&stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile for %s: %w", logging.AnonymizeEmail(email), err)
	}
	if err := writeFileAtomic(s.detailPath(email), data); err != nil {
		return fmt.Errorf("failed to write profile detail: %w", err)
	}

	index[email] = indexEntry{
		Email:     email,
		Name:      stored.Name,
		Company:   stored.Company,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
		Source:    stored.Source,
	}
	if err := s.saveIndex(index); err != nil {
		return err
	}

	*rec = stored
	return nil
}

// Search returns all records whose email, name or company contains query,
// case-insensitively. Results are ordered by email so a fixed store yields
// a fixed order.
func (s *Store) Search(query string) []*Record {
	index := s.loadIndex()
	query = strings.ToLower(query)

	emails := make([]string, 0, len(index))
	for email, entry := range index {
		if strings.Contains(strings.ToLower(entry.Email), query) ||
			strings.Contains(strings.ToLower(entry.Name), query) ||
			strings.Contains(strings.ToLower(entry.Company), query) {
			emails = append(emails, email)
		}
	}
	sort.Strings(emails)

	results := make([]*Record, 0, len(emails))
	for _, email := range emails {
		if rec, ok := s.Get(email); ok {
			results = append(results, rec)
		}
	}
	return results
}

// ListAll returns every stored record, ordered by email.
func (s *Store) ListAll() []*Record {
	index := s.loadIndex()

	emails := make([]string, 0, len(index))
	for email := range index {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	results := make([]*Record, 0, len(emails))
	for _, email := range emails {
		if rec, ok := s.Get(email); ok {
			results = append(results, rec)
		}
	}
	return results
}

// Delete removes the record for email. It reports whether a record
// existed.
func (s *Store) Delete(email string) (bool, error) {
	email = normalizeEmail(email)

	mu := s.lockEmail(email)
	mu.Lock()
	defer mu.Unlock()

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	index := s.loadIndex()
	if _, ok := index[email]; !ok {
		return false, nil
	}

	delete(index, email)
	if err := s.saveIndex(index); err != nil {
		return false, err
	}

	if err := os.Remove(s.detailPath(email)); err != nil && !os.IsNotExist(err) {
		return true, fmt.Errorf("failed to remove profile detail: %w", err)
	}

	return true, nil
}
