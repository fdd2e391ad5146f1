package loan

import "time"

// Audit actions. One entry per accepted mutation, tagged with one of these.
const (
	ActionApplicationCreated = "application_created"
	ActionAgentReview        = "agent_review"
	ActionRegionalReview     = "regional_review"
	ActionAgreementGenerated = "agreement_generated"
	ActionStatusOverride     = "status_override"
	ActionPaymentPosted      = "payment_posted"
)

// Audit change keys referenced by Replay.
const (
	ChangeStage              = "stage"
	ChangeStatus             = "status"
	ChangeAgentStatus        = "agent_review.status"
	ChangeAgentComments      = "agent_review.comments"
	ChangeRegionalStatus     = "regional_approval.status"
	ChangeRegionalComments   = "regional_approval.comments"
	ChangeRemainingBalance   = "remaining_balance"
	ChangeAgreementReference = "agreement_id"
)

// FieldChange is one old/new pair inside an audit entry's changes payload.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// AuditEntry is immutable once appended. The trail is the system of record:
// replayed in order it reconstructs the loan's workflow state.
type AuditEntry struct {
	EntryID   string                 `json:"entry_id"`
	Action    string                 `json:"action"`
	ActorID   string                 `json:"actor_id"`
	At        time.Time              `json:"at"`
	Changes   map[string]FieldChange `json:"changes,omitempty"`
	Comment   string                 `json:"comment,omitempty"`
	IP        string                 `json:"ip,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
}

// AppendAudit is the only mutator of the trail; entries go in call order and
// are never edited, reordered or pruned.
func (l *Loan) AppendAudit(e AuditEntry) {
	l.AuditTrail = append(l.AuditTrail, e)
}

// ReplayState is the workflow state reconstructed from an audit trail.
type ReplayState struct {
	Stage            Stage
	Status           Status
	AgentReview      *AgentReview
	RegionalApproval *RegionalApproval
}

// Replay folds the entries in order and returns the resulting workflow state.
func Replay(entries []AuditEntry) ReplayState {
	var st ReplayState
	for _, e := range entries {
		if c, ok := e.Changes[ChangeStage]; ok && c.New != "" {
			st.Stage = Stage(c.New)
			st.Status = StatusOf(st.Stage)
		}
		if c, ok := e.Changes[ChangeAgentStatus]; ok {
			if st.AgentReview == nil {
				st.AgentReview = &AgentReview{}
			}
			st.AgentReview.Status = DecisionStatus(c.New)
			st.AgentReview.ReviewerID = e.ActorID
			st.AgentReview.ReviewedAt = e.At
		}
		if c, ok := e.Changes[ChangeAgentComments]; ok && st.AgentReview != nil {
			st.AgentReview.Comments = c.New
		}
		if c, ok := e.Changes[ChangeRegionalStatus]; ok {
			if st.RegionalApproval == nil {
				st.RegionalApproval = &RegionalApproval{}
			}
			st.RegionalApproval.Status = DecisionStatus(c.New)
			st.RegionalApproval.ApproverID = e.ActorID
			st.RegionalApproval.ApprovedAt = e.At
		}
		if c, ok := e.Changes[ChangeRegionalComments]; ok && st.RegionalApproval != nil {
			st.RegionalApproval.Comments = c.New
		}
	}
	return st
}
