// Package profile defines researched sender profiles and their persistent
// store.
//
// The store keeps two kinds of JSON documents under its storage directory:
// a single index (users.json) mapping each address to a compact summary,
// and one detail document per identity under profiles/. The split keeps
// existence checks and searches cheap; the detail documents carry the full
// record. Every write rewrites the affected documents in full, so the
// files stay human-diffable and a reader racing a writer at worst sees a
// cache miss.
package profile
