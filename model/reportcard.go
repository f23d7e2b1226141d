package model

import "gorm.io/gorm"

// Info-status values for the design/clinical legs of a report card.
const (
	InfoStatusPending   = "pending"
	InfoStatusCompleted = "completed"
)

// ReportCard ties a lab script to at most one DesignInfo and at most one
// ClinicalInfo snapshot. DesignInfoStatus is "completed" iff DesignInfoID is
// set, and likewise for the clinical leg. The overall Status is "completed"
// only when the owning lab script has been completed.
type ReportCard struct {
	gorm.Model
	LabScriptID        uint   `json:"lab_script_id" gorm:"not null;uniqueIndex"`
	DesignInfoID       *uint  `json:"design_info_id"`
	ClinicalInfoID     *uint  `json:"clinical_info_id"`
	DesignInfoStatus   string `json:"design_info_status" gorm:"size:32;not null"`
	ClinicalInfoStatus string `json:"clinical_info_status" gorm:"size:32;not null"`
	Status             string `json:"status" gorm:"size:32;not null"`
}

// DesignInfo is a snapshot of design decisions, owned by exactly one ReportCard.
type DesignInfo struct {
	gorm.Model
	ReportCardID    uint   `json:"report_card_id" gorm:"not null;index"`
	DesignDate      string `json:"design_date" gorm:"not null"`
	ApplianceType   string `json:"appliance_type"`
	UpperTreatment  string `json:"upper_treatment"`
	LowerTreatment  string `json:"lower_treatment"`
	UpperDesignName string `json:"upper_design_name"`
	LowerDesignName string `json:"lower_design_name"`
	Screw           string `json:"screw"`
	ImplantLibrary  string `json:"implant_library"`
	TeethLibrary    string `json:"teeth_library"`
	ActionsTaken    string `json:"actions_taken" gorm:"type:text"`
}

// ClinicalInfo is a snapshot of clinical insertion outcomes, owned by exactly
// one ReportCard.
type ClinicalInfo struct {
	gorm.Model
	ReportCardID    uint   `json:"report_card_id" gorm:"not null;index"`
	InsertionDate   string `json:"insertion_date" gorm:"not null"`
	Fit             string `json:"fit"`
	Feedback        string `json:"feedback" gorm:"type:text"`
	Occlusion       string `json:"occlusion"`
	Esthetics       string `json:"esthetics"`
	Adjustments     string `json:"adjustments"`
	Material        string `json:"material"`
	Shade           string `json:"shade"`
}

// DesignInfoRequest is the payload for saving design info on a report card.
type DesignInfoRequest struct {
	DesignDate      string `json:"design_date"`
	ApplianceType   string `json:"appliance_type"`
	UpperTreatment  string `json:"upper_treatment"`
	LowerTreatment  string `json:"lower_treatment"`
	UpperDesignName string `json:"upper_design_name"`
	LowerDesignName string `json:"lower_design_name"`
	Screw           string `json:"screw"`
	ImplantLibrary  string `json:"implant_library"`
	TeethLibrary    string `json:"teeth_library"`
	ActionsTaken    string `json:"actions_taken"`
}

// ClinicalInfoRequest is the payload for saving clinical info on a report card.
type ClinicalInfoRequest struct {
	InsertionDate string `json:"insertion_date"`
	Fit           string `json:"fit"`
	Feedback      string `json:"feedback"`
	Occlusion     string `json:"occlusion"`
	Esthetics     string `json:"esthetics"`
	Adjustments   string `json:"adjustments"`
	Material      string `json:"material"`
	Shade         string `json:"shade"`
}

// ReportCardResponse nests the linked snapshots for the detail endpoint.
type ReportCardResponse struct {
	ReportCard
	DesignInfo   *DesignInfo   `json:"design_info,omitempty"`
	ClinicalInfo *ClinicalInfo `json:"clinical_info,omitempty"`
}
