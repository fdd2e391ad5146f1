// Package workflow is the loan lifecycle engine: per action it runs the
// authorization gate and the business rule validator, lets the state machine
// apply the transition, persists the mutated aggregate and its new audit
// entry as one atomic write, and then fires best-effort side effects.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"microfin-backend/internal/auth"
	"microfin-backend/internal/domain/agreement"
	domainLoan "microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/notification"
	"microfin-backend/internal/domain/staff"
	"microfin-backend/internal/domain/uow"
	"microfin-backend/internal/finance"
	"microfin-backend/internal/infrastructure/logging"
	"microfin-backend/internal/rules"
	loanuc "microfin-backend/internal/usecase/loan"
	"microfin-backend/pkg/id"
)

type Usecase struct {
	uow        uow.UnitOfWork
	validator  *rules.Validator
	gate       *auth.Gate
	notifier   notification.Dispatcher
	agreements agreement.Service
	log        *logrus.Logger
	// sideEffectTimeout bounds every post-commit external call so slow
	// collaborators never hold up a response.
	sideEffectTimeout time.Duration
}

func NewUsecase(tx uow.UnitOfWork, v *rules.Validator, g *auth.Gate, n notification.Dispatcher, a agreement.Service, log *logrus.Logger, sideEffectTimeout time.Duration) *Usecase {
	return &Usecase{uow: tx, validator: v, gate: g, notifier: n, agreements: a, log: log, sideEffectTimeout: sideEffectTimeout}
}

// AgentDecision applies the assigned agent's approve/reject verdict.
func (u *Usecase) AgentDecision(ctx context.Context, actor staff.Actor, applicationID string, in AgentDecisionInput) (*loanuc.LoanDTO, error) {
	target := domainLoan.StageAgentRejected
	decision := domainLoan.DecisionRejected
	if in.Approve {
		target = domainLoan.StageAgentApproved
		decision = domainLoan.DecisionApproved
	}

	var dto *loanuc.LoanDTO
	err := u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, l *domainLoan.Loan) error {
		if err := u.gate.Authorize(actor, l, auth.ActionAgentReview); err != nil {
			return err
		}
		if !domainLoan.CanTransition(l.Stage, target) {
			return &domainLoan.InvalidTransitionError{From: l.Stage, To: target}
		}
		if vs := u.validator.ValidateTransition(l, target, actor); len(vs) > 0 {
			return &rules.ValidationError{Violations: vs}
		}

		now := time.Now().UTC()
		oldStage, oldStatus := l.Stage, l.Status()
		l.AgentReview = &domainLoan.AgentReview{
			Status:     decision,
			ReviewerID: actor.ID,
			ReviewedAt: now,
			Comments:   in.Comments,
			Rating:     in.Rating,
		}
		if err := l.EnterStage(target, actor.ID, now); err != nil {
			return err
		}
		l.AppendAudit(domainLoan.AuditEntry{
			EntryID: id.NewID32(),
			Action:  domainLoan.ActionAgentReview,
			ActorID: actor.ID,
			At:      now,
			Changes: map[string]domainLoan.FieldChange{
				domainLoan.ChangeStage:         {Old: string(oldStage), New: string(l.Stage)},
				domainLoan.ChangeStatus:        {Old: string(oldStatus), New: string(l.Status())},
				domainLoan.ChangeAgentStatus:   {New: string(decision)},
				domainLoan.ChangeAgentComments: {New: in.Comments},
			},
			Comment:   in.Comments,
			IP:        in.Meta.IP,
			UserAgent: in.Meta.UserAgent,
		})
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = loanuc.ToDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifyClient(dto.ClientID, applicationID,
		fmt.Sprintf("Loan application %s %s", applicationID, decision),
		fmt.Sprintf("Your loan application %s was %s at agent review.", applicationID, decision))
	return dto, nil
}

// RegionalDecision applies the regional approver's verdict. On approval the
// agreement generation is dispatched after commit; its failure never rolls
// the approval back.
func (u *Usecase) RegionalDecision(ctx context.Context, actor staff.Actor, applicationID string, in RegionalDecisionInput) (*loanuc.LoanDTO, error) {
	target := domainLoan.StageRegionalRejected
	decision := domainLoan.DecisionRejected
	action := auth.ActionRegionalReview
	if in.Approve {
		target = domainLoan.StageRegionalApproved
		decision = domainLoan.DecisionApproved
		action = auth.ActionRegionalApprove
	}

	var dto *loanuc.LoanDTO
	err := u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, l *domainLoan.Loan) error {
		if err := u.gate.Authorize(actor, l, action); err != nil {
			return err
		}
		if !domainLoan.CanTransition(l.Stage, target) {
			return &domainLoan.InvalidTransitionError{From: l.Stage, To: target}
		}
		if vs := u.validator.ValidateTransition(l, target, actor); len(vs) > 0 {
			return &rules.ValidationError{Violations: vs}
		}

		now := time.Now().UTC()
		oldStage, oldStatus := l.Stage, l.Status()
		l.RegionalApproval = &domainLoan.RegionalApproval{
			Status:     decision,
			ApproverID: actor.ID,
			ApprovedAt: now,
			Comments:   in.Comments,
			Conditions: in.Conditions,
		}
		if err := l.EnterStage(target, actor.ID, now); err != nil {
			return err
		}
		l.AppendAudit(domainLoan.AuditEntry{
			EntryID: id.NewID32(),
			Action:  domainLoan.ActionRegionalReview,
			ActorID: actor.ID,
			At:      now,
			Changes: map[string]domainLoan.FieldChange{
				domainLoan.ChangeStage:            {Old: string(oldStage), New: string(l.Stage)},
				domainLoan.ChangeStatus:           {Old: string(oldStatus), New: string(l.Status())},
				domainLoan.ChangeRegionalStatus:   {New: string(decision)},
				domainLoan.ChangeRegionalComments: {New: in.Comments},
			},
			Comment:   in.Comments,
			IP:        in.Meta.IP,
			UserAgent: in.Meta.UserAgent,
		})
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = loanuc.ToDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifyClient(dto.ClientID, applicationID,
		fmt.Sprintf("Loan application %s %s", applicationID, decision),
		fmt.Sprintf("Your loan application %s was %s at regional review.", applicationID, decision))

	if in.Approve {
		go func() {
			if _, err := u.GenerateAgreement(context.Background(), actor, applicationID, in.Meta); err != nil {
				logging.LogError(u.log, "workflow", "RegionalDecision", "agreement generation for "+applicationID, err)
			}
		}()
	}
	return dto, nil
}

// GenerateAgreement calls the external agreement service and, when the loan
// is still in a stage that permits it, records the document and advances to
// agreement_generated. It is normally invoked post-commit by
// RegionalDecision but can be retried directly after an external failure.
func (u *Usecase) GenerateAgreement(ctx context.Context, actor staff.Actor, applicationID string, meta loanuc.RequestMeta) (*loanuc.LoanDTO, error) {
	callCtx, cancel := context.WithTimeout(ctx, u.sideEffectTimeout)
	defer cancel()
	doc, err := u.agreements.Generate(callCtx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("agreement service: %w", err)
	}

	var dto *loanuc.LoanDTO
	err = u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !domainLoan.CanTransition(l.Stage, domainLoan.StageAgreementGenerated) {
			// Another request already moved the loan on; the document
			// stays unreferenced rather than clobbering newer state.
			return &domainLoan.InvalidTransitionError{From: l.Stage, To: domainLoan.StageAgreementGenerated}
		}
		now := time.Now().UTC()
		oldStage, oldStatus := l.Stage, l.Status()
		l.AgreementID = doc.AgreementID
		l.AgreementURL = doc.URL
		if err := l.EnterStage(domainLoan.StageAgreementGenerated, actor.ID, now); err != nil {
			return err
		}
		l.AppendAudit(domainLoan.AuditEntry{
			EntryID: id.NewID32(),
			Action:  domainLoan.ActionAgreementGenerated,
			ActorID: actor.ID,
			At:      now,
			Changes: map[string]domainLoan.FieldChange{
				domainLoan.ChangeStage:              {Old: string(oldStage), New: string(l.Stage)},
				domainLoan.ChangeStatus:             {Old: string(oldStatus), New: string(l.Status())},
				domainLoan.ChangeAgreementReference: {New: doc.AgreementID},
			},
			IP:        meta.IP,
			UserAgent: meta.UserAgent,
		})
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = loanuc.ToDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// OverrideStatus moves a loan to any directly reachable stage; it covers
// disbursement, activation, completion, default marking and reinstatement.
func (u *Usecase) OverrideStatus(ctx context.Context, actor staff.Actor, applicationID string, in OverrideInput) (*loanuc.LoanDTO, error) {
	var dto *loanuc.LoanDTO
	err := u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, l *domainLoan.Loan) error {
		if err := u.gate.Authorize(actor, l, auth.ActionOverrideStatus); err != nil {
			return err
		}
		if !domainLoan.CanTransition(l.Stage, in.TargetStage) {
			return &domainLoan.InvalidTransitionError{From: l.Stage, To: in.TargetStage}
		}
		if vs := u.validator.ValidateTransition(l, in.TargetStage, actor); len(vs) > 0 {
			return &rules.ValidationError{Violations: vs}
		}

		now := time.Now().UTC()
		oldStage, oldStatus := l.Stage, l.Status()
		if err := l.EnterStage(in.TargetStage, actor.ID, now); err != nil {
			return err
		}
		l.AppendAudit(domainLoan.AuditEntry{
			EntryID: id.NewID32(),
			Action:  domainLoan.ActionStatusOverride,
			ActorID: actor.ID,
			At:      now,
			Changes: map[string]domainLoan.FieldChange{
				domainLoan.ChangeStage:  {Old: string(oldStage), New: string(l.Stage)},
				domainLoan.ChangeStatus: {Old: string(oldStatus), New: string(l.Status())},
			},
			Comment:   in.Comment,
			IP:        in.Meta.IP,
			UserAgent: in.Meta.UserAgent,
		})
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = loanuc.ToDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifyClient(dto.ClientID, applicationID,
		fmt.Sprintf("Loan %s status update", applicationID),
		fmt.Sprintf("Your loan %s is now %s.", applicationID, dto.Status))
	return dto, nil
}

// PostPayment records a repayment against an active loan, recomputes the
// derived balance fields and completes the loan when it reaches zero.
func (u *Usecase) PostPayment(ctx context.Context, actor staff.Actor, applicationID string, in PaymentInput) (*loanuc.LoanDTO, error) {
	var dto *loanuc.LoanDTO
	err := u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, l *domainLoan.Loan) error {
		if err := u.gate.Authorize(actor, l, auth.ActionPostPayment); err != nil {
			return err
		}
		if l.Stage != domainLoan.StageLoanActive {
			return domainLoan.ErrLoanNotActive
		}

		now := time.Now().UTC()
		amount := finance.Round2(in.Amount)
		oldBalance := l.RemainingBalance
		newBalance := finance.Round2(oldBalance - amount)
		if newBalance < 0 {
			newBalance = 0
		}

		l.Payments = append(l.Payments, domainLoan.Payment{
			PaymentID:  id.NewID32(),
			Amount:     amount,
			Status:     domainLoan.PaymentApproved,
			ApproverID: actor.ID,
			PostedAt:   now,
		})
		l.RemainingBalance = newBalance
		next := finance.NextPaymentDate(now)
		l.NextPaymentDate = &next
		l.DaysOverdue = finance.DaysOverdue(next, now)

		l.AppendAudit(domainLoan.AuditEntry{
			EntryID: id.NewID32(),
			Action:  domainLoan.ActionPaymentPosted,
			ActorID: actor.ID,
			At:      now,
			Changes: map[string]domainLoan.FieldChange{
				domainLoan.ChangeRemainingBalance: {
					Old: fmt.Sprintf("%.2f", oldBalance),
					New: fmt.Sprintf("%.2f", newBalance),
				},
			},
			IP:        in.Meta.IP,
			UserAgent: in.Meta.UserAgent,
		})

		if newBalance == 0 {
			oldStage, oldStatus := l.Stage, l.Status()
			if err := l.EnterStage(domainLoan.StageLoanCompleted, actor.ID, now); err != nil {
				return err
			}
			l.AppendAudit(domainLoan.AuditEntry{
				EntryID: id.NewID32(),
				Action:  domainLoan.ActionStatusOverride,
				ActorID: actor.ID,
				At:      now,
				Changes: map[string]domainLoan.FieldChange{
					domainLoan.ChangeStage:  {Old: string(oldStage), New: string(l.Stage)},
					domainLoan.ChangeStatus: {Old: string(oldStatus), New: string(l.Status())},
				},
				Comment:   "final payment received",
				IP:        in.Meta.IP,
				UserAgent: in.Meta.UserAgent,
			})
		}

		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = loanuc.ToDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dto.Status == string(domainLoan.StatusCompleted) {
		u.notifyClient(dto.ClientID, applicationID,
			fmt.Sprintf("Loan %s completed", applicationID),
			fmt.Sprintf("Your loan %s is fully repaid. Thank you.", applicationID))
	}
	return dto, nil
}

// notifyClient dispatches a notification without blocking the caller; any
// delivery failure is logged and swallowed.
func (u *Usecase) notifyClient(clientID, applicationID, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), u.sideEffectTimeout)
		defer cancel()
		if err := u.notifier.Notify(ctx, clientID, subject, body); err != nil {
			logging.LogError(u.log, "workflow", "notifyClient", "notification for "+applicationID, err)
		}
	}()
}
