package loan

import "context"

// OpenStages are the stages counted against the one-open-application-per-client
// rule (anything not rejected, completed or defaulted).
func OpenStages() []Stage {
	return []Stage{
		StageApplicationSubmitted, StageAgentApproved, StageRegionalApproved,
		StageAgreementGenerated, StageFundsDisbursed, StageLoanActive,
	}
}

// GuarantorLockStages are the approved/active stages counted against the
// concurrent-backing cap for guarantors.
func GuarantorLockStages() []Stage {
	return []Stage{
		StageRegionalApproved, StageAgreementGenerated, StageFundsDisbursed, StageLoanActive,
	}
}

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Loan, error)
	// GetByApplicationIDForUpdate locks the row for the duration of the
	// surrounding transaction.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Loan, error)
	// GetOpenByClientID returns the client's loan in an open stage, if any.
	GetOpenByClientID(ctx context.Context, clientID string) (*Loan, error)
	CountBackedByGuarantor(ctx context.Context, guarantorID string) (int64, error)
	// HighestApplicationID returns the lexically highest application id with
	// the given "LA<yyyy><mm>" prefix, or "" when the month has none yet.
	HighestApplicationID(ctx context.Context, prefix string) (string, error)
	ListByAgentID(ctx context.Context, agentID string) ([]Loan, error)
	ListByRegion(ctx context.Context, region string) ([]Loan, error)
	List(ctx context.Context) ([]Loan, error)
	// Save is a compare-and-swap on Revision; ErrStaleRecord on mismatch.
	Save(ctx context.Context, l *Loan) error
}
