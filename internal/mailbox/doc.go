// Package mailbox provides the mail transport for the responder flow.
//
// The Mailbox interface covers the two operations the flow needs: searching
// the inbox for new messages and creating draft replies. GmailClient is the
// production implementation on top of the Gmail API; it hydrates messages
// into a transport-neutral Message type carrying the headers needed for
// reply threading.
//
// Drafts are created unsent on purpose. A human reviews every generated
// reply in their drafts folder before it goes out.
package mailbox
