package loan

import (
	"time"

	domainLoan "microfin-backend/internal/domain/loan"
)

// RequestMeta is the caller provenance recorded on audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type CreateApplicationInput struct {
	ClientID             string
	Principal            float64
	AnnualRate           float64
	TermMonths           int
	GuarantorID          *string
	SecondaryGuarantorID *string
	Meta                 RequestMeta
}

type LoanDTO struct {
	ApplicationID      string                       `json:"application_id"`
	ClientID           string                       `json:"client_id"`
	AgentID            string                       `json:"agent_id"`
	RegionalManagerID  string                       `json:"regional_manager_id"`
	Region             string                       `json:"region"`
	Principal          float64                      `json:"principal"`
	AnnualRate         float64                      `json:"annual_rate"`
	TermMonths         int                          `json:"term_months"`
	MonthlyInstallment float64                      `json:"monthly_installment"`
	TotalPayable       float64                      `json:"total_payable"`
	TotalInterest      float64                      `json:"total_interest"`
	RemainingBalance   float64                      `json:"remaining_balance"`
	Stage              string                       `json:"stage"`
	Status             string                       `json:"status"`
	NextPaymentDate    *time.Time                   `json:"next_payment_date,omitempty"`
	DisbursementDate   *time.Time                   `json:"disbursement_date,omitempty"`
	CompletionDate     *time.Time                   `json:"completion_date,omitempty"`
	AgreementID        string                       `json:"agreement_id,omitempty"`
	AgreementURL       string                       `json:"agreement_url,omitempty"`
	AgentReview        *domainLoan.AgentReview      `json:"agent_review,omitempty"`
	RegionalApproval   *domainLoan.RegionalApproval `json:"regional_approval,omitempty"`
	AuditTrail         []domainLoan.AuditEntry      `json:"audit_trail,omitempty"`
	Payments           []domainLoan.Payment         `json:"payments,omitempty"`
	CreatedAt          time.Time                    `json:"created_at"`
}

func ToDTO(l *domainLoan.Loan) *LoanDTO {
	return &LoanDTO{
		ApplicationID:      l.ApplicationID,
		ClientID:           l.ClientID,
		AgentID:            l.AgentID,
		RegionalManagerID:  l.RegionalManagerID,
		Region:             l.Region,
		Principal:          l.Principal,
		AnnualRate:         l.AnnualRate,
		TermMonths:         l.TermMonths,
		MonthlyInstallment: l.MonthlyInstallment,
		TotalPayable:       l.TotalPayable,
		TotalInterest:      l.TotalInterest,
		RemainingBalance:   l.RemainingBalance,
		Stage:              string(l.Stage),
		Status:             string(l.Status()),
		NextPaymentDate:    l.NextPaymentDate,
		DisbursementDate:   l.DisbursementDate,
		CompletionDate:     l.CompletionDate,
		AgreementID:        l.AgreementID,
		AgreementURL:       l.AgreementURL,
		AgentReview:        l.AgentReview,
		RegionalApproval:   l.RegionalApproval,
		AuditTrail:         l.AuditTrail,
		Payments:           l.Payments,
		CreatedAt:          l.CreatedAt,
	}
}
