package externalmock

import (
	"context"
	"sync"

	domainAgreement "microfin-backend/internal/domain/agreement"
)

// Dispatcher records notifications and satisfies notification.Dispatcher.
type Dispatcher struct {
	mu     sync.Mutex
	Err    error
	Entries []Notification
}

type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

func (d *Dispatcher) Notify(ctx context.Context, recipient, subject, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.Entries = append(d.Entries, Notification{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

func (d *Dispatcher) Sent() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Notification, len(d.Entries))
	copy(out, d.Entries)
	return out
}

// AgreementService is a function-backed mock for agreement.Service.
type AgreementService struct {
	GenerateFn func(ctx context.Context, applicationID string) (*domainAgreement.Document, error)
}

func (s *AgreementService) Generate(ctx context.Context, applicationID string) (*domainAgreement.Document, error) {
	if s.GenerateFn != nil {
		return s.GenerateFn(ctx, applicationID)
	}
	return &domainAgreement.Document{AgreementID: "stub", URL: "https://agreements.test/stub.pdf"}, nil
}
