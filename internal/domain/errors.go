package domain

import "errors"

// Sentinel errors shared across services. Callers classify failures with
// errors.Is; wrapped causes carry the detail.
var (
	// ErrStageExecution marks a pipeline layer failure. The wrapped cause
	// carries the underlying error from the layer's collaborator.
	ErrStageExecution = errors.New("stage execution failed")

	// ErrCredentialRefresh marks a token exchange failure or a missing
	// credential. The stored credential is left untouched.
	ErrCredentialRefresh = errors.New("credential refresh failed")

	// ErrContainerTimeout marks a publish container that never left
	// IN_PROGRESS within the polling budget.
	ErrContainerTimeout = errors.New("container processing timed out")

	// ErrContainerStatus marks an unexpected container status. The status
	// value is carried in the wrapping error text.
	ErrContainerStatus = errors.New("unexpected container status")

	// ErrDecisionRecorded marks a review decision on content that already
	// left review_pending. The earlier decision stands.
	ErrDecisionRecorded = errors.New("review decision already recorded")

	// ErrInvalidTransition marks a status move with no edge in the
	// transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAccountInactive marks a distribution attempt for a deactivated
	// account.
	ErrAccountInactive = errors.New("account is not active")

	// ErrNotApproved marks a distribution attempt for content that has not
	// passed review.
	ErrNotApproved = errors.New("content is not approved")
)
