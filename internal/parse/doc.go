// Package parse converts unstructured research text into structured
// profile records.
//
// Extraction is a prioritized rule cascade: each profile field has an
// ordered list of label-anchored patterns (company:, works at:, ...) with
// a minimum-length gate, evaluated against the lowercased text. The first
// satisfying match fills the field and scanning stops. A bio that no label
// yields falls back to scanning sentences for professional keywords.
// Social URLs are recognized by domain and rebuilt as canonical https
// links. The whole pass is best-effort and never returns an error.
package parse
