package workflow

// Status is the lab script lifecycle state. The set is closed; anything else
// is rejected at the validation boundary.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusHold       Status = "hold"
	StatusCompleted  Status = "completed"
)

// HoldReason is the enumerated justification required when placing a script
// on hold.
type HoldReason string

const (
	HoldForApproval            HoldReason = "Hold for Approval"
	HoldForInsufficientData    HoldReason = "Hold for Insufficient Data"
	HoldForInsufficientDetails HoldReason = "Hold for Insufficient Details"
	HoldForOtherReason         HoldReason = "Hold for Other reason"
)

var allStatuses = []Status{StatusPending, StatusInProgress, StatusPaused, StatusHold, StatusCompleted}

var allHoldReasons = []HoldReason{HoldForApproval, HoldForInsufficientData, HoldForInsufficientDetails, HoldForOtherReason}

// Transitions enumerates the edges the UI offers for each state. "completed"
// is deliberately not absorbing: staff can re-open a completed script back to
// in_progress or hold.
var Transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusPaused, StatusHold, StatusCompleted},
	StatusPaused:     {StatusInProgress},
	StatusHold:       {StatusInProgress},
	StatusCompleted:  {StatusInProgress, StatusHold},
}

// ParseStatus validates a raw status string against the closed set.
func ParseStatus(raw string) (Status, error) {
	for _, s := range allStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", &ValidationError{Field: "status", Reason: "unrecognized status value: " + raw}
}

// ParseHoldReason validates a raw hold reason against the fixed enumeration.
// An empty reason is a distinct validation failure so callers can surface a
// "reason required" message.
func ParseHoldReason(raw string) (HoldReason, error) {
	if raw == "" {
		return "", &ValidationError{Field: "hold_reason", Reason: "a hold reason is required when placing a script on hold"}
	}
	for _, r := range allHoldReasons {
		if string(r) == raw {
			return r, nil
		}
	}
	return "", &ValidationError{Field: "hold_reason", Reason: "unrecognized hold reason: " + raw}
}

// AllowedNext returns the transitions offered from the given state. The list
// gates which buttons the presentation layer enables; ApplyTransition itself
// validates only the target status and hold reason, matching how staff
// corrections have always been applied.
func AllowedNext(from Status) []Status {
	next, ok := Transitions[from]
	if !ok {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// HoldReasons returns the fixed hold reason enumeration for form rendering.
func HoldReasons() []HoldReason {
	out := make([]HoldReason, len(allHoldReasons))
	copy(out, allHoldReasons)
	return out
}
