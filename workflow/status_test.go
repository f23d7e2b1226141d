package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "in_progress", "paused", "hold", "completed"} {
		status, err := ParseStatus(raw)
		assert.NoError(t, err)
		assert.Equal(t, raw, string(status))
	}

	for _, raw := range []string{"", "done", "PENDING", "in progress"} {
		_, err := ParseStatus(raw)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr, "raw=%q", raw)
	}
}

func TestParseHoldReason(t *testing.T) {
	for _, raw := range []string{
		"Hold for Approval",
		"Hold for Insufficient Data",
		"Hold for Insufficient Details",
		"Hold for Other reason",
	} {
		reason, err := ParseHoldReason(raw)
		assert.NoError(t, err)
		assert.Equal(t, raw, string(reason))
	}

	_, err := ParseHoldReason("")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "required")

	_, err = ParseHoldReason("Hold for lunch")
	assert.ErrorAs(t, err, &validationErr)
}

func TestAllowedNext(t *testing.T) {
	assert.Equal(t, []Status{StatusInProgress}, AllowedNext(StatusPending))
	assert.Equal(t, []Status{StatusPaused, StatusHold, StatusCompleted}, AllowedNext(StatusInProgress))
	assert.Equal(t, []Status{StatusInProgress}, AllowedNext(StatusPaused))
	assert.Equal(t, []Status{StatusInProgress}, AllowedNext(StatusHold))

	// Completed is re-openable, not a sink.
	assert.Equal(t, []Status{StatusInProgress, StatusHold}, AllowedNext(StatusCompleted))

	assert.Nil(t, AllowedNext(Status("archived")))
}

func TestAllowedNextReturnsCopy(t *testing.T) {
	next := AllowedNext(StatusInProgress)
	next[0] = Status("mutated")
	assert.Equal(t, []Status{StatusPaused, StatusHold, StatusCompleted}, AllowedNext(StatusInProgress))
}

func TestHoldReasonsReturnsCopy(t *testing.T) {
	reasons := HoldReasons()
	assert.Len(t, reasons, 4)
	reasons[0] = HoldReason("mutated")
	assert.Equal(t, HoldForApproval, HoldReasons()[0])
}
