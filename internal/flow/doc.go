// Package flow implements the recurring mail responder cycle.
//
// A Flow polls the mailbox for new messages, enriches each sender
// through the research pipeline, turns the batch into reply drafts and
// then sleeps until the next cycle. Dedup state (seen message ids,
// enriched senders) lives on the Flow instance and persists for the
// lifetime of the run.
//
// Cancellation is honored at the wait boundary between cycles; a cycle
// that has started always runs to completion. The only error that stops
// a running flow is a mail transport failure while fetching: enrichment
// and drafting problems are logged, counted and skipped.
package flow
