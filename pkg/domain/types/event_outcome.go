package types

// EventOutcome represents the result of processing a single webhook event
type EventOutcome string

const (
	// OutcomeDuplicateOrStale means the event was rejected by the dedup guard
	OutcomeDuplicateOrStale EventOutcome = "DUPLICATE_OR_STALE"
	// OutcomeUnauthorizedUser means the sender has no stored authorization
	OutcomeUnauthorizedUser EventOutcome = "UNAUTHORIZED_USER"
	// OutcomeRateLimited means a cooldown suppressed the requested action
	OutcomeRateLimited EventOutcome = "RATE_LIMITED"
	// OutcomeStatusUpdated means the user's presence status was set
	OutcomeStatusUpdated EventOutcome = "STATUS_UPDATED"
	// OutcomeStatusUnchanged means no status transition happened
	OutcomeStatusUnchanged EventOutcome = "STATUS_UNCHANGED"
	// OutcomeDeletePerformed means the bulk delete batch ran to completion
	OutcomeDeletePerformed EventOutcome = "DELETE_PERFORMED"
	// OutcomeDeleteRejected means the delete command could not be executed
	OutcomeDeleteRejected EventOutcome = "DELETE_REJECTED"
)

// AllEventOutcomes returns all valid event outcomes
func AllEventOutcomes() []EventOutcome {
	return []EventOutcome{
		OutcomeDuplicateOrStale,
		OutcomeUnauthorizedUser,
		OutcomeRateLimited,
		OutcomeStatusUpdated,
		OutcomeStatusUnchanged,
		OutcomeDeletePerformed,
		OutcomeDeleteRejected,
	}
}

// IsValid checks if the event outcome is valid
func (x EventOutcome) IsValid() bool {
	switch x {
	case OutcomeDuplicateOrStale,
		OutcomeUnauthorizedUser,
		OutcomeRateLimited,
		OutcomeStatusUpdated,
		OutcomeStatusUnchanged,
		OutcomeDeletePerformed,
		OutcomeDeleteRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the event outcome
func (x EventOutcome) String() string {
	return string(x)
}
