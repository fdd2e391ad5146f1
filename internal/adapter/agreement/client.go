package agreement

import (
	"context"
	"fmt"

	domain "microfin-backend/internal/domain/agreement"
	"microfin-backend/pkg/id"
)

// StubService stands in for the external document renderer: it mints an
// opaque agreement id and a locator under the configured base URL. The core
// stores both without interpreting them.
type StubService struct {
	baseURL string
}

func NewStubService(baseURL string) *StubService { return &StubService{baseURL: baseURL} }

func (s *StubService) Generate(ctx context.Context, applicationID string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	agreementID := id.NewID32()
	return &domain.Document{
		AgreementID: agreementID,
		URL:         fmt.Sprintf("%s/agreements/%s/%s.pdf", s.baseURL, applicationID, agreementID),
	}, nil
}
