package domain

import "context"

// Lifecycle actions gated by policy.
const (
	ActionIssue   = "issue"
	ActionEdit    = "edit"
	ActionDelete  = "soft_delete"
	ActionRecover = "recover"
	ActionPurge   = "purge"
)

type AuthzInput struct {
	AccountID int64  `json:"account_id"`
	IsSuper   bool   `json:"is_super"`
	Action    string `json:"action"`
}

type AuthzDecision struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason,omitempty"`
}

// Authorizer decides whether an actor may perform a lifecycle action.
type Authorizer interface {
	Authorize(ctx context.Context, input AuthzInput) (AuthzDecision, error)
}
