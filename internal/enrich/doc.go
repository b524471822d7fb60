// Package enrich coordinates the sender research pipeline.
//
// The Coordinator decides per identity whether a stored profile can be
// served as-is or whether the research backends must be queried. Fresh
// lookups fan out to every configured backend concurrently, concatenate
// the successful responses in backend priority order, run the profile
// parser over the combined text and persist the result. Backend and
// persistence failures degrade the outcome but never fail the call.
package enrich
