// Package google handles Google OAuth authentication for Gmail access.
//
// Tokens are stored per account under the user cache directory
// (e.g. ~/.cache/replyflow/google-default.token), so one installation can
// drive several mailboxes. OAuth client credentials are read from the
// GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables.
package google
