// Package rules is the business rule validator: it runs before any workflow
// transition is attempted and produces an itemized pass/fail verdict. It only
// reads — the state machine owns all mutation.
package rules

import (
	"context"
	"fmt"
	"strings"

	"microfin-backend/internal/domain/client"
	"microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/region"
	"microfin-backend/internal/domain/staff"
	"microfin-backend/internal/finance"
)

// Violation codes.
const (
	CodeClientNotApproved    = "CLIENT_NOT_APPROVED"
	CodeClientHasOpenLoan    = "CLIENT_HAS_OPEN_LOAN"
	CodeHighDTI              = "HIGH_DEBT_TO_INCOME_RATIO"
	CodeExceedsMaxAmount     = "EXCEEDS_MAX_LOAN_AMOUNT"
	CodeGuarantorIsApplicant = "GUARANTOR_IS_APPLICANT"
	CodeGuarantorLimit       = "GUARANTOR_LIMIT_EXCEEDED"
	CodeClientOutsideRegion  = "CLIENT_OUTSIDE_REGION"
	CodeStageNotReachable    = "STAGE_NOT_REACHABLE"
	CodeHighValueApprover    = "HIGH_VALUE_REQUIRES_ELEVATED_APPROVER"
)

type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError aggregates every violation found in one pass; nothing was
// mutated when it is returned.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	codes := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		codes = append(codes, v.Code)
	}
	return "business rule validation failed: " + strings.Join(codes, ", ")
}

// Policy holds the tunable thresholds; read-only after construction.
type Policy struct {
	MaxDTIPercent      float64
	AbsoluteMaxLoan    float64
	HighValueThreshold float64
	GuarantorMaxActive int64
}

// Validator consumes the financial calculator and read-only directory
// lookups to produce verdicts.
type Validator struct {
	clients client.Repository
	loans   loan.Repository
	regions region.Repository
	policy  Policy
}

func NewValidator(clients client.Repository, loans loan.Repository, regions region.Repository, policy Policy) *Validator {
	return &Validator{clients: clients, loans: loans, regions: regions, policy: policy}
}

// NewApplication are the facts checked at application time.
type NewApplication struct {
	ClientID             string
	Principal            float64
	AnnualRate           float64
	TermMonths           int
	GuarantorID          *string
	SecondaryGuarantorID *string
}

// ValidateApplication returns the client record (callers need its district
// and income afterwards) plus every violation found. A missing client is
// client.ErrNotFound, not a violation, so callers can render 404 vs 422.
func (v *Validator) ValidateApplication(ctx context.Context, in NewApplication, actor staff.Actor) (*client.Client, []Violation, error) {
	cl, err := v.clients.GetByClientID(ctx, in.ClientID)
	if err != nil {
		return nil, nil, err
	}

	var out []Violation
	if cl.Onboarding != client.OnboardingApproved {
		out = append(out, Violation{
			Field: "client_id", Code: CodeClientNotApproved,
			Message: fmt.Sprintf("client onboarding status is %s, must be approved", cl.Onboarding),
		})
	}

	if open, err := v.loans.GetOpenByClientID(ctx, in.ClientID); err == nil && open != nil {
		out = append(out, Violation{
			Field: "client_id", Code: CodeClientHasOpenLoan,
			Message: "client already has application " + open.ApplicationID + " in progress",
		})
	} else if err != nil && err != loan.ErrNotFound {
		return nil, nil, err
	}

	installment := finance.MonthlyPayment(in.Principal, in.AnnualRate, in.TermMonths)
	if dti := finance.DebtToIncome(installment, cl.MonthlyIncome); dti > v.policy.MaxDTIPercent {
		out = append(out, Violation{
			Field: "principal", Code: CodeHighDTI,
			Message: fmt.Sprintf("projected installment is %.1f%% of monthly income, cap is %.0f%%", dti, v.policy.MaxDTIPercent),
		})
	}

	ceiling := finance.MaxEligibleAmount(cl.MonthlyIncome, cl.Employment, cl.YearsEmployed, v.policy.AbsoluteMaxLoan)
	if in.Principal > ceiling {
		out = append(out, Violation{
			Field: "principal", Code: CodeExceedsMaxAmount,
			Message: fmt.Sprintf("requested %.2f exceeds eligible ceiling %.2f", in.Principal, ceiling),
		})
	}

	for field, gid := range map[string]*string{"guarantor_id": in.GuarantorID, "secondary_guarantor_id": in.SecondaryGuarantorID} {
		if gid == nil || *gid == "" {
			continue
		}
		if *gid == in.ClientID {
			out = append(out, Violation{Field: field, Code: CodeGuarantorIsApplicant, Message: "guarantor may not be the applicant"})
			continue
		}
		n, err := v.loans.CountBackedByGuarantor(ctx, *gid)
		if err != nil {
			return nil, nil, err
		}
		if n >= v.policy.GuarantorMaxActive {
			out = append(out, Violation{
				Field: field, Code: CodeGuarantorLimit,
				Message: fmt.Sprintf("guarantor already backs %d approved/active loans, limit is %d", n, v.policy.GuarantorMaxActive),
			})
		}
	}

	// Region scoping applies to field roles; admins are not region-bound.
	if actor.Role == staff.RoleAgent || actor.Role == staff.RoleRegionalManager {
		reg, err := v.regions.GetByName(ctx, actor.Region)
		if err != nil {
			if err == region.ErrNotFound {
				out = append(out, Violation{Field: "client_id", Code: CodeClientOutsideRegion, Message: "actor has no assigned region"})
			} else {
				return nil, nil, err
			}
		} else if !reg.Covers(cl.District) {
			out = append(out, Violation{
				Field: "client_id", Code: CodeClientOutsideRegion,
				Message: fmt.Sprintf("client district %s is outside region %s", cl.District, reg.Name),
			})
		}
	}

	return cl, out, nil
}

// ValidateTransition is the status-update-time check: reachability (defense
// in depth next to the state machine) and the high-value approver rule.
func (v *Validator) ValidateTransition(l *loan.Loan, target loan.Stage, actor staff.Actor) []Violation {
	var out []Violation
	if !loan.CanTransition(l.Stage, target) {
		out = append(out, Violation{
			Field: "stage", Code: CodeStageNotReachable,
			Message: fmt.Sprintf("stage %s is not reachable from %s", target, l.Stage),
		})
	}
	if target == loan.StageRegionalApproved && l.Principal > v.policy.HighValueThreshold && !actor.Role.AtLeast(staff.RoleCEO) {
		out = append(out, Violation{
			Field: "principal", Code: CodeHighValueApprover,
			Message: fmt.Sprintf("loans above %.2f require ceo approval", v.policy.HighValueThreshold),
		})
	}
	return out
}
