// Package cmd implements the command-line interface for replyflow.
//
// This package provides the following commands:
//   - run: Poll the inbox, research senders and create reply drafts
//   - auth: Authorize a Google account for mailbox access
//   - enrich: Research a single sender and store the profile
//   - profiles: Inspect and manage stored sender profiles
//   - version: Display version information
//
// The run command is the default command when no subcommand is specified.
package cmd
