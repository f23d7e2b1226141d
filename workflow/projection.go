package workflow

import "github.com/dentalworks/labtrack/model"

// StepStatus is the display state of one progress step.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepCurrent   StepStatus = "current"
	StepUpcoming  StepStatus = "upcoming"
)

// Step is one entry in the report card progress view.
type Step struct {
	Label  string     `json:"label"`
	Status StepStatus `json:"status"`
}

// Progress step labels, in order.
const (
	StepRequestCreated = "Request Created"
	StepDesignInfo     = "Design Info"
	StepClinicalInfo   = "Clinical Info"
	StepFinished       = "Completed"
)

// Project derives the 4-step report card progress view from a lab script and
// its optional linked snapshots. It is a pure function of its inputs: nothing
// is read from storage and nothing is mutated, so identical inputs always
// yield the identical sequence. Clinical info can never show as completed or
// current ahead of design info.
func Project(script model.LabScript, design *model.DesignInfo, clinical *model.ClinicalInfo) []Step {
	steps := make([]Step, 0, 4)

	// The script's existence implies intake happened.
	steps = append(steps, Step{Label: StepRequestCreated, Status: StepCompleted})

	designStatus := StepCurrent
	if design != nil {
		designStatus = StepCompleted
	}
	steps = append(steps, Step{Label: StepDesignInfo, Status: designStatus})

	clinicalStatus := StepUpcoming
	if design != nil {
		clinicalStatus = StepCurrent
		if clinical != nil {
			clinicalStatus = StepCompleted
		}
	}
	steps = append(steps, Step{Label: StepClinicalInfo, Status: clinicalStatus})

	finished := StepUpcoming
	if script.Status == string(StatusCompleted) {
		finished = StepCompleted
	}
	steps = append(steps, Step{Label: StepFinished, Status: finished})

	return steps
}
