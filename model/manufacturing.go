package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Manufacturing queue stages, in order.
const (
	StagePendingPrinting = "pending_printing"
	StagePrinting        = "printing"
	StageMilling         = "milling"
	StageInspection      = "inspection"
	StageCompleted       = "completed"
)

// ManufacturingLog tracks a lab script through the manufacturing queue.
// Printing and milling are alternatives depending on the manufacturing type;
// both feed into inspection.
type ManufacturingLog struct {
	gorm.Model
	LabScriptID         uint   `json:"lab_script_id" gorm:"not null;uniqueIndex"`
	ManufacturingSource string `json:"manufacturing_source"`
	ManufacturingType   string `json:"manufacturing_type"`
	Stage               string `json:"stage" gorm:"size:32;not null;index"`
	PrintingStartedAt   string `json:"printing_started_at"`
	MillingStartedAt    string `json:"milling_started_at"`
	InspectionStartedAt string `json:"inspection_started_at"`
	CompletedAt         string `json:"completed_at"`
}

// NextStage returns the stage following the current one for the given
// manufacturing type ("printing" or "milling" selects the production leg).
func NextStage(current, manufacturingType string) (string, error) {
	switch current {
	case StagePendingPrinting:
		if manufacturingType == "milling" {
			return StageMilling, nil
		}
		return StagePrinting, nil
	case StagePrinting, StageMilling:
		return StageInspection, nil
	case StageInspection:
		return StageCompleted, nil
	case StageCompleted:
		return "", fmt.Errorf("manufacturing already completed")
	default:
		return "", fmt.Errorf("unknown manufacturing stage: %s", current)
	}
}
