// Package email delivers transactional mail such as payment receipts.
package email

import "context"

// Attachment is an inline file included with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
	SendWithAttachments(ctx context.Context, to []string, subject string, htmlBody string, attachments []Attachment) error
}

// NoOpProvider drops mail on the floor. Used in tests and when SMTP is
// not configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (p *NoOpProvider) SendWithAttachments(ctx context.Context, to []string, subject string, htmlBody string, attachments []Attachment) error {
	return nil
}
