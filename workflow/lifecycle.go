package workflow

import (
	"github.com/dentalworks/labtrack/model"
	"gorm.io/gorm"
)

// Roles permitted to change lab script status.
var transitionRoles = map[string]bool{
	model.RoleAdmin:      true,
	model.RoleLabManager: true,
	model.RoleLabStaff:   true,
}

// CallerContext carries the identity of whoever requested a transition. The
// role is threaded explicitly rather than read from ambient session state so
// the authorization check is visible and testable.
type CallerContext struct {
	UserID uint
	Role   string
}

// TransitionRequest is the caller-supplied target state. Note carries either
// the review link (Hold for Approval) or free-text justification (any other
// hold reason).
type TransitionRequest struct {
	Status     string `json:"status"`
	HoldReason string `json:"hold_reason"`
	Note       string `json:"note"`
}

// Store is the persistence surface the lifecycle needs: a single-row update
// of the lab script's status fields.
type Store interface {
	UpdateLabScript(id uint, fields map[string]interface{}) error
}

// GormStore adapts a gorm DB to the Store interface.
type GormStore struct {
	DB *gorm.DB
}

func (s GormStore) UpdateLabScript(id uint, fields map[string]interface{}) error {
	return s.DB.Model(&model.LabScript{}).Where("id = ?", id).Updates(fields).Error
}

// ApplyTransition validates and executes a status transition, persisting the
// result as one update through the store. The script is taken by value: on
// any failure the caller's copy is untouched and no retry is attempted.
//
// Validation and authorization both run before any write. Hold requires a
// reason from the fixed enumeration; "Hold for Approval" stores the supplied
// note as the design review link and clears free-text instructions, any other
// reason stores the note as instructions. Leaving hold clears the reason.
func ApplyTransition(store Store, caller CallerContext, script model.LabScript, req TransitionRequest) (model.LabScript, error) {
	newStatus, err := ParseStatus(req.Status)
	if err != nil {
		return script, err
	}

	var reason HoldReason
	if newStatus == StatusHold {
		reason, err = ParseHoldReason(req.HoldReason)
		if err != nil {
			return script, err
		}
	}

	if !transitionRoles[caller.Role] {
		return script, &PermissionError{Role: caller.Role}
	}

	updated := script
	updated.Status = string(newStatus)
	fields := map[string]interface{}{
		"status": string(newStatus),
	}

	if newStatus == StatusHold {
		updated.HoldReason = string(reason)
		fields["hold_reason"] = string(reason)
		if reason == HoldForApproval {
			updated.DesignLink = req.Note
			updated.SpecificInstructions = ""
			fields["design_link"] = req.Note
			fields["specific_instructions"] = ""
		} else if req.Note != "" {
			updated.SpecificInstructions = req.Note
			fields["specific_instructions"] = req.Note
		}
	} else {
		// Cleared unconditionally: the caller's copy may be stale and show
		// no reason while the stored row still carries one.
		updated.HoldReason = ""
		fields["hold_reason"] = ""
	}

	if err := store.UpdateLabScript(script.ID, fields); err != nil {
		return script, &PersistenceError{Op: "update lab script status", Err: err}
	}

	return updated, nil
}
