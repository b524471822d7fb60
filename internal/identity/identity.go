package identity

import (
	"errors"
	"strings"
)

// ErrUnparseableSender indicates a sender string that contains no address.
// Callers skip enrichment for the message instead of failing the cycle.
var ErrUnparseableSender = errors.New("sender contains no email address")

// ErrSystemSender indicates an address whose local part matches the
// configured system-mail denylist. Such senders are never enriched.
var ErrSystemSender = errors.New("sender is a system address")

// Identity is the extracted sender identity. Email is the stable key,
// lowercased and trimmed. Name is advisory only and may be empty.
type Identity struct {
	Email string
	Name  string
}

// Extractor parses raw sender header strings into identities.
type Extractor struct {
	denylist []string
}

// NewExtractor creates an extractor with the given denylist of system-mail
// local-part markers (e.g. "no-reply", "mailer-daemon"). Markers are
// matched case-insensitively as substrings of the local part so that
// variants like "no-reply-1234" are caught too.
func NewExtractor(denylist []string) *Extractor {
	markers := make([]string, 0, len(denylist))
	for _, m := range denylist {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			markers = append(markers, m)
		}
	}
	return &Extractor{denylist: markers}
}

// Normalize lowercases and trims an email address. All storage and
// comparison operations use the normalized form.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Extract parses a raw sender string. Two shapes are recognized:
// "Display Name <email>" and a bare email address. Anything else fails
// with ErrUnparseableSender. Denylisted system addresses fail with
// ErrSystemSender.
func (e *Extractor) Extract(sender string) (Identity, error) {
	sender = strings.TrimSpace(sender)

	var id Identity
	lb := strings.Index(sender, "<")
	rb := strings.Index(sender, ">")

	switch {
	case lb >= 0 && rb > lb:
		id.Email = Normalize(sender[lb+1 : rb])
		id.Name = strings.Trim(strings.TrimSpace(sender[:lb]), `"`)
	case strings.Contains(sender, "@"):
		id.Email = Normalize(sender)
	default:
		return Identity{}, ErrUnparseableSender
	}

	if id.Email == "" || !strings.Contains(id.Email, "@") {
		return Identity{}, ErrUnparseableSender
	}

	if e.isSystemAddress(id.Email) {
		return Identity{}, ErrSystemSender
	}

	return id, nil
}

// isSystemAddress reports whether the local part matches a denylist marker.
func (e *Extractor) isSystemAddress(email string) bool {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return false
	}
	for _, marker := range e.denylist {
		if strings.Contains(local, marker) {
			return true
		}
	}
	return false
}
