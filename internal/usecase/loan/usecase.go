package loan

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"microfin-backend/internal/auth"
	domainLoan "microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/staff"
	"microfin-backend/internal/domain/uow"
	"microfin-backend/internal/finance"
	"microfin-backend/internal/rules"
	"microfin-backend/pkg/id"
)

// Usecase creates and reads loan applications. Transitions after creation
// belong to the workflow usecase.
type Usecase struct {
	loans     domainLoan.Repository
	staff     staff.Repository
	validator *rules.Validator
	gate      *auth.Gate
	uow       uow.UnitOfWork
	log       *logrus.Logger
}

func NewUsecase(loans domainLoan.Repository, staffRepo staff.Repository, v *rules.Validator, g *auth.Gate, tx uow.UnitOfWork, log *logrus.Logger) *Usecase {
	return &Usecase{loans: loans, staff: staffRepo, validator: v, gate: g, uow: tx, log: log}
}

func (u *Usecase) CreateApplication(ctx context.Context, actor staff.Actor, in CreateApplicationInput) (*LoanDTO, error) {
	if err := u.gate.Authorize(actor, nil, auth.ActionCreateApplication); err != nil {
		return nil, err
	}

	dto, err := u.createApplication(ctx, actor, in)
	if errors.Is(err, domainLoan.ErrDuplicateApplicationID) {
		// a concurrent create won the same monthly sequence number;
		// one fresh scan resolves it
		u.log.WithField("agent_id", actor.ID).Warn("application id collision, retrying sequence scan")
		dto, err = u.createApplication(ctx, actor, in)
	}
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{"application_id": dto.ApplicationID, "agent_id": actor.ID}).Info("loan application created")
	return dto, nil
}

func (u *Usecase) createApplication(ctx context.Context, actor staff.Actor, in CreateApplicationInput) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		facts := rules.NewApplication{
			ClientID:             in.ClientID,
			Principal:            in.Principal,
			AnnualRate:           in.AnnualRate,
			TermMonths:           in.TermMonths,
			GuarantorID:          in.GuarantorID,
			SecondaryGuarantorID: in.SecondaryGuarantorID,
		}
		cl, violations, err := u.validator.ValidateApplication(ctx, facts, actor)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			return &rules.ValidationError{Violations: violations}
		}

		now := time.Now().UTC()
		prefix := id.ApplicationIDPrefix(now)
		highest, err := r.Loans.HighestApplicationID(ctx, prefix)
		if err != nil {
			return err
		}
		appID, err := id.NextApplicationID(prefix, highest)
		if err != nil {
			return err
		}

		manager, err := r.Staff.GetRegionalManager(ctx, actor.Region)
		if err != nil {
			return err
		}

		installment := finance.MonthlyPayment(in.Principal, in.AnnualRate, in.TermMonths)
		payable := finance.TotalPayable(in.Principal, in.AnnualRate, in.TermMonths)

		l := &domainLoan.Loan{
			ApplicationID:        appID,
			ClientID:             cl.ClientID,
			AgentID:              actor.ID,
			RegionalManagerID:    manager.StaffID,
			GuarantorID:          in.GuarantorID,
			SecondaryGuarantorID: in.SecondaryGuarantorID,
			Region:               actor.Region,
			Principal:            in.Principal,
			AnnualRate:           in.AnnualRate,
			TermMonths:           in.TermMonths,
			MonthlyInstallment:   finance.Round2(installment),
			TotalPayable:         finance.Round2(payable),
			TotalInterest:        finance.Round2(payable - in.Principal),
			RemainingBalance:     finance.Round2(payable),
			Stage:                domainLoan.StageApplicationSubmitted,
			StageHistory: []domainLoan.StageEvent{
				{Stage: domainLoan.StageApplicationSubmitted, EnteredAt: now, ActorID: actor.ID},
			},
		}
		l.AppendAudit(domainLoan.AuditEntry{
			EntryID: id.NewID32(),
			Action:  domainLoan.ActionApplicationCreated,
			ActorID: actor.ID,
			At:      now,
			Changes: map[string]domainLoan.FieldChange{
				domainLoan.ChangeStage:  {New: string(domainLoan.StageApplicationSubmitted)},
				domainLoan.ChangeStatus: {New: string(domainLoan.StatusPending)},
			},
			IP:        in.Meta.IP,
			UserAgent: in.Meta.UserAgent,
		})

		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		dto = ToDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, actor staff.Actor, applicationID string) (*LoanDTO, error) {
	l, err := u.loans.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := u.gate.Authorize(actor, l, auth.ActionViewLoan); err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

// List returns the loans visible to the actor: the role hierarchy narrows
// the result set, never widens it.
func (u *Usecase) List(ctx context.Context, actor staff.Actor) ([]LoanDTO, error) {
	scope := u.gate.ListScope(actor)
	var (
		ls  []domainLoan.Loan
		err error
	)
	switch {
	case scope.All:
		ls, err = u.loans.List(ctx)
	case scope.AgentID != "":
		ls, err = u.loans.ListByAgentID(ctx, scope.AgentID)
	default:
		ls, err = u.loans.ListByRegion(ctx, scope.Region)
	}
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *ToDTO(&ls[i]))
	}
	return out, nil
}
