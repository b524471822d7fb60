// Package archive keeps append-style JSON records of the responder's work:
// every fetched email (emails.json) and every submitted draft batch
// (drafts.json) under the storage directory. The records are for operator
// review and debugging only; the flow never reads them back.
package archive
