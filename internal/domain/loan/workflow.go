package loan

import (
	"time"

	"microfin-backend/internal/finance"
)

// transitions is the fixed adjacency set of the workflow. Read-only,
// process-wide. Rejection branches hang off the two review stages; defaulted
// has a single reinstatement path back to loan_active.
var transitions = map[Stage][]Stage{
	StageApplicationSubmitted: {StageAgentApproved, StageAgentRejected},
	StageAgentApproved:        {StageRegionalApproved, StageRegionalRejected},
	StageRegionalApproved:     {StageAgreementGenerated},
	StageAgreementGenerated:   {StageFundsDisbursed},
	StageFundsDisbursed:       {StageLoanActive},
	StageLoanActive:           {StageLoanCompleted, StageDefaulted},
	StageDefaulted:            {StageLoanActive},
	StageAgentRejected:        nil,
	StageRegionalRejected:     nil,
	StageLoanCompleted:        nil,
}

// CanTransition reports whether target is in the adjacency set of from.
func CanTransition(from, to Stage) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the stage has no outgoing transitions.
func Terminal(s Stage) bool { return len(transitions[s]) == 0 }

// StatusOf is the projection table from workflow stage to external status.
func StatusOf(s Stage) Status {
	switch s {
	case StageApplicationSubmitted:
		return StatusPending
	case StageAgentApproved:
		return StatusUnderReview
	case StageRegionalApproved, StageAgreementGenerated:
		return StatusApproved
	case StageFundsDisbursed, StageLoanActive:
		return StatusActive
	case StageLoanCompleted:
		return StatusCompleted
	case StageAgentRejected, StageRegionalRejected:
		return StatusRejected
	case StageDefaulted:
		return StatusDefaulted
	}
	return StatusPending
}

// EnterStage moves the loan to target, recording stage history and applying
// the stage's derived-field side effects. It mutates nothing when the
// transition is not reachable from the current stage.
func (l *Loan) EnterStage(target Stage, actorID string, now time.Time) error {
	if !CanTransition(l.Stage, target) {
		return &InvalidTransitionError{From: l.Stage, To: target}
	}
	l.Stage = target
	l.StageHistory = append(l.StageHistory, StageEvent{Stage: target, EnteredAt: now, ActorID: actorID})

	switch target {
	case StageRegionalApproved:
		next := finance.NextPaymentDate(now)
		l.NextPaymentDate = &next
		l.Commission = finance.Round2(finance.Commission(l.Principal))
	case StageLoanActive:
		if l.DisbursementDate == nil {
			d := now
			l.DisbursementDate = &d
		}
	case StageLoanCompleted:
		l.RemainingBalance = 0
		c := now
		l.CompletionDate = &c
	}
	return nil
}
