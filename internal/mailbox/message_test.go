package mailbox

import (
	"encoding/base64"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Alice <alice@example.com>"},
				{Name: "Subject", Value: "Hello"},
				{Name: "Message-ID", Value: "<abc@mail.example.com>"},
			},
		},
	}

	if got := headerValue(msg, "From"); got != "Alice <alice@example.com>" {
		t.Errorf("headerValue(From) = %q", got)
	}
	if got := headerValue(msg, "subject"); got != "Hello" {
		t.Errorf("headerValue should match case-insensitively, got %q", got)
	}
	if got := headerValue(msg, "Date"); got != "" {
		t.Errorf("expected empty value for missing header, got %q", got)
	}
	if got := headerValue(nil, "From"); got != "" {
		t.Errorf("expected empty value for nil message, got %q", got)
	}
}

func TestMessageBody_TopLevel(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Body: &gmail.MessagePartBody{
				Data: base64.URLEncoding.EncodeToString([]byte("plain body")),
			},
		},
	}

	if got := messageBody(msg); got != "plain body" {
		t.Errorf("messageBody() = %q, want %q", got, "plain body")
	}
}

func TestMessageBody_NestedParts(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/html",
					Body: &gmail.MessagePartBody{
						Data: base64.URLEncoding.EncodeToString([]byte("<p>html</p>")),
					},
				},
				{
					MimeType: "text/plain",
					Body: &gmail.MessagePartBody{
						Data: base64.URLEncoding.EncodeToString([]byte("nested plain")),
					},
				},
			},
		},
	}

	if got := messageBody(msg); got != "nested plain" {
		t.Errorf("messageBody() = %q, want %q", got, "nested plain")
	}
}

func TestMessageBody_NoPlainPart(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Body: &gmail.MessagePartBody{
				Data: base64.URLEncoding.EncodeToString([]byte("<p>html only</p>")),
			},
		},
	}

	if got := messageBody(msg); got != "" {
		t.Errorf("expected empty body without text/plain part, got %q", got)
	}
}

func TestEncodeRFC2047(t *testing.T) {
	if got := encodeRFC2047("plain ascii subject"); got != "plain ascii subject" {
		t.Errorf("ASCII subject should pass through unchanged, got %q", got)
	}

	encoded := encodeRFC2047("Grüße aus München")
	if !strings.HasPrefix(encoded, "=?UTF-8?") {
		t.Errorf("non-ASCII subject should be RFC 2047 encoded, got %q", encoded)
	}
}

func TestBuildReply(t *testing.T) {
	msg := &Message{
		ID:         "m1",
		ThreadID:   "t1",
		Sender:     "Alice <alice@example.com>",
		Subject:    "Question about pricing",
		MessageID:  "<orig@mail.example.com>",
		References: "<first@mail.example.com>",
	}

	raw, err := buildReply(msg, "Thanks for reaching out!")
	if err != nil {
		t.Fatalf("buildReply() error = %v", err)
	}

	wantParts := []string{
		"To: Alice <alice@example.com>\r\n",
		"Subject: Re: Question about pricing\r\n",
		"In-Reply-To: <orig@mail.example.com>\r\n",
		"References: <first@mail.example.com> <orig@mail.example.com>\r\n",
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n",
		"\r\n\r\nThanks for reaching out!",
	}
	for _, part := range wantParts {
		if !strings.Contains(raw, part) {
			t.Errorf("reply missing %q:\n%s", part, raw)
		}
	}
}

func TestBuildReply_ExistingRePrefix(t *testing.T) {
	msg := &Message{
		Sender:    "bob@example.com",
		Subject:   "Re: follow up",
		MessageID: "<x@example.com>",
	}

	raw, err := buildReply(msg, "body")
	if err != nil {
		t.Fatalf("buildReply() error = %v", err)
	}

	if strings.Contains(raw, "Re: Re:") {
		t.Errorf("Re: prefix should not be doubled:\n%s", raw)
	}
}

func TestBuildReply_Validation(t *testing.T) {
	if _, err := buildReply(&Message{Subject: "s", MessageID: "<x>"}, "body"); err == nil {
		t.Error("expected error for missing sender")
	}

	if _, err := buildReply(&Message{Sender: "a@b.com"}, ""); err == nil {
		t.Error("expected error for empty body")
	}
}
