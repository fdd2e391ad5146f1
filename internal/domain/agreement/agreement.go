package agreement

import "context"

// Document is the opaque reference produced by the external agreement
// service; the core stores it but never interprets it.
type Document struct {
	AgreementID string `json:"agreement_id"`
	URL         string `json:"url"`
}

// Service renders the legal agreement for a regionally approved loan.
type Service interface {
	Generate(ctx context.Context, applicationID string) (*Document, error)
}
