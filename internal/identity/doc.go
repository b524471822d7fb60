// Package identity extracts sender identities from raw mail header strings.
//
// A sender header arrives in arbitrary format; the extractor recognizes the
// "Display Name <email>" shape and bare addresses, normalizes the address
// (lowercase, trimmed) and filters out system senders such as no-reply
// addresses before any enrichment is attempted.
package identity
