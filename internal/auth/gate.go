package auth

import (
	"errors"
	"fmt"

	"microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/staff"
)

var ErrForbidden = errors.New("forbidden")

// AuthorizationError carries enough detail for callers to render a proper
// forbidden response; errors.Is matches it against ErrForbidden.
type AuthorizationError struct {
	ActorID string
	Action  Action
	Reason  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s may not perform %s: %s", e.ActorID, e.Action, e.Reason)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrForbidden }

// Action is an operation the gate arbitrates.
type Action string

const (
	ActionCreateApplication Action = "create_application"
	ActionAgentReview       Action = "agent_review"
	ActionRegionalReview    Action = "regional_review"
	ActionRegionalApprove   Action = "regional_approve"
	ActionOverrideStatus    Action = "override_status"
	ActionPostPayment       Action = "post_payment"
	ActionViewLoan          Action = "view_loan"
)

// permissionFor collapses the approve direction onto the review permission:
// approving and rejecting share one permission bit, only the high-value
// elevation rule tells them apart.
func permissionFor(action Action) Action {
	if action == ActionRegionalApprove {
		return ActionRegionalReview
	}
	return action
}

// rolePermissions is the fixed permission set per role. super_admin is not
// listed: it implicitly holds every permission. Read-only, process-wide.
var rolePermissions = map[staff.Role]map[Action]bool{
	staff.RoleAgent: {
		ActionCreateApplication: true,
		ActionAgentReview:       true,
		ActionPostPayment:       true,
		ActionViewLoan:          true,
	},
	staff.RoleRegionalManager: {
		ActionRegionalReview: true,
		ActionPostPayment:    true,
		ActionViewLoan:       true,
	},
	staff.RoleCEO: {
		ActionRegionalReview: true,
		ActionOverrideStatus: true,
		ActionViewLoan:       true,
	},
	staff.RoleModerateAdmin: {
		ActionOverrideStatus: true,
		ActionPostPayment:    true,
		ActionViewLoan:       true,
	},
}

// Gate decides whether an actor may trigger an action on a loan.
type Gate struct {
	highValueThreshold float64
}

func NewGate(highValueThreshold float64) *Gate {
	return &Gate{highValueThreshold: highValueThreshold}
}

// Authorize returns nil or an *AuthorizationError. l is nil for actions that
// are not scoped to an existing loan (application creation).
//
// Rules: super_admin bypasses everything; moderate_admin bypasses assignment
// checks but still needs the permission; agents and regional managers are
// scoped to their assigned loans; approvals above the high-value threshold
// need CEO or above regardless of assignment. Rejecting a high-value loan
// needs no elevation.
func (g *Gate) Authorize(actor staff.Actor, l *loan.Loan, action Action) error {
	if actor.Role == staff.RoleSuperAdmin {
		return nil
	}

	if !rolePermissions[actor.Role][permissionFor(action)] {
		return &AuthorizationError{ActorID: actor.ID, Action: action, Reason: "role " + string(actor.Role) + " lacks permission"}
	}

	if l != nil && actor.Role != staff.RoleModerateAdmin {
		switch actor.Role {
		case staff.RoleAgent:
			if l.AgentID != actor.ID {
				return &AuthorizationError{ActorID: actor.ID, Action: action, Reason: "loan is assigned to another agent"}
			}
		case staff.RoleRegionalManager:
			if l.RegionalManagerID != actor.ID {
				return &AuthorizationError{ActorID: actor.ID, Action: action, Reason: "loan belongs to another region"}
			}
		}
	}

	if l != nil && action == ActionRegionalApprove && l.Principal > g.highValueThreshold {
		if !actor.Role.AtLeast(staff.RoleCEO) {
			return &AuthorizationError{ActorID: actor.ID, Action: action, Reason: "high-value loan requires ceo or above"}
		}
	}

	return nil
}

// ScopeRegion tells list endpoints how to filter: agents see their own
// assignments, regional managers their region, everyone above sees all.
// The hierarchy only ever narrows result sets, never widens them.
type Scope struct {
	AgentID string
	Region  string
	All     bool
}

func (g *Gate) ListScope(actor staff.Actor) Scope {
	switch actor.Role {
	case staff.RoleAgent:
		return Scope{AgentID: actor.ID}
	case staff.RoleRegionalManager:
		return Scope{Region: actor.Region}
	default:
		return Scope{All: true}
	}
}
