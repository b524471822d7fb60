package mailbox

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// headerValue extracts a header value from a Gmail message.
func headerValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// messageBody extracts the plain-text body from a Gmail message.
// Returns an empty string when no text/plain part exists, so callers can
// fall back to the snippet.
func messageBody(m *gmail.Message) string {
	if m == nil || m.Payload == nil {
		return ""
	}

	var body string
	if m.Payload.MimeType == "text/plain" && m.Payload.Body != nil && m.Payload.Body.Data != "" {
		body = m.Payload.Body.Data
	} else {
		walkParts(m.Payload, func(part *gmail.MessagePart) {
			if body == "" && part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
				body = part.Body.Data
			}
		})
	}

	if body == "" {
		return ""
	}

	// Decode base64url-encoded body data
	decoded, err := base64.URLEncoding.DecodeString(body)
	if err != nil {
		// Try with standard base64 if URLEncoding fails
		decoded, err = base64.StdEncoding.DecodeString(body)
		if err != nil {
			return ""
		}
	}

	return string(decoded)
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047
// This is necessary for non-ASCII characters (like German umlauts) in subjects
func encodeRFC2047(s string) string {
	needsEncoding := false
	for _, r := range s {
		if r > 127 {
			needsEncoding = true
			break
		}
	}

	// If it's all ASCII, return as-is
	if !needsEncoding {
		return s
	}

	// Use Go's mime package which implements RFC 2047 encoding
	return mime.BEncoding.Encode("UTF-8", s)
}

// buildReply builds a reply to msg in RFC 2822 format.
// Threading headers (In-Reply-To, References) are set from the original
// message so mail clients keep the conversation together.
func buildReply(msg *Message, body string) (string, error) {
	if msg.Sender == "" {
		return "", fmt.Errorf("original message has no From header")
	}
	if body == "" {
		return "", fmt.Errorf("body is required")
	}

	// Build reply subject (add "Re: " if not already present)
	replySubject := msg.Subject
	if !strings.HasPrefix(strings.ToLower(replySubject), "re:") {
		replySubject = "Re: " + replySubject
	}

	// Build References header for proper threading
	var references string
	if msg.References != "" {
		references = msg.References + " " + msg.MessageID
	} else {
		references = msg.MessageID
	}

	var emailBuilder strings.Builder

	emailBuilder.WriteString("To: ")
	emailBuilder.WriteString(msg.Sender)
	emailBuilder.WriteString("\r\n")

	emailBuilder.WriteString("Subject: ")
	emailBuilder.WriteString(encodeRFC2047(replySubject))
	emailBuilder.WriteString("\r\n")

	if msg.MessageID != "" {
		emailBuilder.WriteString("In-Reply-To: ")
		emailBuilder.WriteString(msg.MessageID)
		emailBuilder.WriteString("\r\n")
	}

	if references != "" {
		emailBuilder.WriteString("References: ")
		emailBuilder.WriteString(references)
		emailBuilder.WriteString("\r\n")
	}

	emailBuilder.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	emailBuilder.WriteString("MIME-Version: 1.0\r\n")
	emailBuilder.WriteString("\r\n")
	emailBuilder.WriteString(body)

	return emailBuilder.String(), nil
}
