package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// LabScript is a work order issued by a doctor to the dental lab. Status and
// HoldReason values are owned by the workflow package; HoldReason is non-empty
// if and only if Status is "hold".
type LabScript struct {
	gorm.Model
	RequestNumber        string `json:"request_number" gorm:"uniqueIndex;size:32"`
	PatientID            uint   `json:"patient_id" gorm:"not null;index"`
	DoctorName           string `json:"doctor_name" gorm:"not null"`
	ClinicName           string `json:"clinic_name"`
	RequestDate          string `json:"request_date" gorm:"not null"`
	DueDate              string `json:"due_date" gorm:"not null"`
	ApplianceType        string `json:"appliance_type"`
	UpperTreatment       string `json:"upper_treatment"`
	LowerTreatment       string `json:"lower_treatment"`
	UpperDesignName      string `json:"upper_design_name"`
	LowerDesignName      string `json:"lower_design_name"`
	ScrewType            string `json:"screw_type"`
	VDODetails           string `json:"vdo_details"`
	ManufacturingSource  string `json:"manufacturing_source"`
	ManufacturingType    string `json:"manufacturing_type"`
	SpecificInstructions string `json:"specific_instructions" gorm:"type:text"`
	DesignLink           string `json:"design_link"`
	Status               string `json:"status" gorm:"size:32;not null;index"`
	HoldReason           string `json:"hold_reason" gorm:"size:64"`
}

// LabScriptRequest is the payload accepted by the create/update endpoints.
type LabScriptRequest struct {
	PatientID            uint   `json:"patient_id"`
	DoctorName           string `json:"doctor_name"`
	ClinicName           string `json:"clinic_name"`
	RequestDate          string `json:"request_date"`
	DueDate              string `json:"due_date"`
	ApplianceType        string `json:"appliance_type"`
	UpperTreatment       string `json:"upper_treatment"`
	LowerTreatment       string `json:"lower_treatment"`
	UpperDesignName      string `json:"upper_design_name"`
	LowerDesignName      string `json:"lower_design_name"`
	ScrewType            string `json:"screw_type"`
	VDODetails           string `json:"vdo_details"`
	ManufacturingSource  string `json:"manufacturing_source"`
	ManufacturingType    string `json:"manufacturing_type"`
	SpecificInstructions string `json:"specific_instructions"`
}

// ListLabScriptResponse joins the owning patient's name onto the script row.
type ListLabScriptResponse struct {
	LabScript
	PatientName string `json:"patient_name" gorm:"column:patient_name"`
}

// ScriptSequence tracks the last issued lab script request number per year.
type ScriptSequence struct {
	gorm.Model
	Year   int    `json:"year" gorm:"uniqueIndex"`
	Number int    `json:"number"`
	Code   string `json:"code" gorm:"size:32"`
}

// NextRequestNumber issues the next LS-YYYY-NNNN request number, creating the
// sequence row for the year on first use. Callers run it inside a transaction
// when the script insert must be atomic with the sequence bump.
func NextRequestNumber(db *gorm.DB, now time.Time) (string, error) {
	year := now.Year()
	var seq ScriptSequence
	err := db.Where("year = ?", year).First(&seq).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return "", err
	}
	seq.Year = year
	seq.Number++
	seq.Code = fmt.Sprintf("LS-%d-%04d", year, seq.Number)
	if err := db.Save(&seq).Error; err != nil {
		return "", err
	}
	return seq.Code, nil
}
