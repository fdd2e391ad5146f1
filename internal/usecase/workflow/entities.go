package workflow

import (
	domainLoan "microfin-backend/internal/domain/loan"
	loanuc "microfin-backend/internal/usecase/loan"
)

type AgentDecisionInput struct {
	Approve  bool
	Comments string
	Rating   int
	Meta     loanuc.RequestMeta
}

type RegionalDecisionInput struct {
	Approve    bool
	Comments   string
	Conditions []string
	Meta       loanuc.RequestMeta
}

type OverrideInput struct {
	TargetStage domainLoan.Stage
	Comment     string
	Meta        loanuc.RequestMeta
}

type PaymentInput struct {
	Amount float64
	Meta   loanuc.RequestMeta
}
