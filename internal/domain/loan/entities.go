package loan

import (
	"fmt"
	"time"
)

// Stage is the loan's position in the origination workflow. It is the only
// lifecycle field that gets persisted; Status is derived from it.
type Stage string

const (
	StageApplicationSubmitted Stage = "application_submitted"
	StageAgentApproved        Stage = "agent_approved"
	StageAgentRejected        Stage = "agent_rejected"
	StageRegionalApproved     Stage = "regional_approved"
	StageRegionalRejected     Stage = "regional_rejected"
	StageAgreementGenerated   Stage = "agreement_generated"
	StageFundsDisbursed       Stage = "funds_disbursed"
	StageLoanActive           Stage = "loan_active"
	StageLoanCompleted        Stage = "loan_completed"
	StageDefaulted            Stage = "defaulted"
)

// ParseStage accepts only the canonical lower-snake form; anything else
// (including legacy capitalized variants) is an error, never coerced.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageApplicationSubmitted, StageAgentApproved, StageAgentRejected,
		StageRegionalApproved, StageRegionalRejected, StageAgreementGenerated,
		StageFundsDisbursed, StageLoanActive, StageLoanCompleted, StageDefaulted:
		return Stage(s), nil
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// Status is the coarse external view of a loan, always computed from Stage.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusActive      Status = "active"
	StatusRejected    Status = "rejected"
	StatusCompleted   Status = "completed"
	StatusDefaulted   Status = "defaulted"
)

type DecisionStatus string

const (
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
)

// AgentReview is the field-agent decision sub-record, owned by the Loan.
type AgentReview struct {
	Status     DecisionStatus `json:"status"`
	ReviewerID string         `json:"reviewer_id"`
	ReviewedAt time.Time      `json:"reviewed_at"`
	Comments   string         `json:"comments"`
	Rating     int            `json:"rating"`
}

// RegionalApproval is the regional-manager decision sub-record.
type RegionalApproval struct {
	Status     DecisionStatus `json:"status"`
	ApproverID string         `json:"approver_id"`
	ApprovedAt time.Time      `json:"approved_at"`
	Comments   string         `json:"comments"`
	Conditions []string       `json:"conditions,omitempty"`
}

// StageEvent records one entry into a stage.
type StageEvent struct {
	Stage     Stage     `json:"stage"`
	EnteredAt time.Time `json:"entered_at"`
	ActorID   string    `json:"actor_id"`
}

type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "approved"
	PaymentReversed PaymentStatus = "reversed"
)

type Payment struct {
	PaymentID  string        `json:"payment_id"`
	Amount     float64       `json:"amount"`
	Status     PaymentStatus `json:"status"`
	ApproverID string        `json:"approver_id"`
	PostedAt   time.Time     `json:"posted_at"`
}

// Loan is the aggregate root. Decision sub-records, stage history, the audit
// trail and payments are owned sub-objects stored as JSON columns on the same
// row, so one transition is one atomic UPDATE.
type Loan struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string `gorm:"size:16;uniqueIndex:ux_loans_application_id" json:"application_id"`

	ClientID             string  `gorm:"size:32;index:idx_loans_client" json:"client_id"`
	AgentID              string  `gorm:"size:32;index:idx_loans_agent" json:"agent_id"`
	RegionalManagerID    string  `gorm:"size:32;index:idx_loans_manager" json:"regional_manager_id"`
	GuarantorID          *string `gorm:"size:32;index:idx_loans_guarantor" json:"guarantor_id,omitempty"`
	SecondaryGuarantorID *string `gorm:"size:32" json:"secondary_guarantor_id,omitempty"`
	Region               string  `gorm:"size:64;index:idx_loans_region" json:"region"`

	Principal  float64 `gorm:"type:decimal(18,2)" json:"principal"`
	AnnualRate float64 `gorm:"type:decimal(6,2)" json:"annual_rate"`
	TermMonths int     `json:"term_months"`

	// Derived by the financial calculator on the relevant transitions,
	// never hand-edited.
	MonthlyInstallment float64    `gorm:"type:decimal(18,2)" json:"monthly_installment"`
	TotalPayable       float64    `gorm:"type:decimal(18,2)" json:"total_payable"`
	TotalInterest      float64    `gorm:"type:decimal(18,2)" json:"total_interest"`
	Commission         float64    `gorm:"type:decimal(18,2)" json:"commission"`
	RemainingBalance   float64    `gorm:"type:decimal(18,2)" json:"remaining_balance"`
	DaysOverdue        int        `json:"days_overdue"`
	NextPaymentDate    *time.Time `json:"next_payment_date,omitempty"`
	DisbursementDate   *time.Time `json:"disbursement_date,omitempty"`
	CompletionDate     *time.Time `json:"completion_date,omitempty"`

	AgreementID  string `gorm:"size:32" json:"agreement_id,omitempty"`
	AgreementURL string `gorm:"type:text" json:"agreement_url,omitempty"`

	Stage            Stage             `gorm:"size:32;index:idx_loans_stage" json:"stage"`
	AgentReview      *AgentReview      `gorm:"serializer:json" json:"agent_review,omitempty"`
	RegionalApproval *RegionalApproval `gorm:"serializer:json" json:"regional_approval,omitempty"`
	StageHistory     []StageEvent      `gorm:"serializer:json" json:"stage_history"`
	AuditTrail       []AuditEntry      `gorm:"serializer:json" json:"audit_trail"`
	Payments         []Payment         `gorm:"serializer:json" json:"payments"`

	// Revision is the optimistic concurrency token; every save is a
	// compare-and-swap against it.
	Revision uint64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Status projects the coarse external status from the current stage.
func (l *Loan) Status() Status { return StatusOf(l.Stage) }
