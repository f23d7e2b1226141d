package model

import "gorm.io/gorm"

type Patient struct {
	gorm.Model
	FirstName       string `json:"first_name" gorm:"not null"`
	LastName        string `json:"last_name" gorm:"not null;index"`
	Gender          string `json:"gender"`
	Age             int    `json:"age"`
	Email           string `json:"email" gorm:"size:191;index"`
	PhoneNumber     string `json:"phone_number"`
	ClinicName      string `json:"clinic_name"`
	ReferringDoctor string `json:"referring_doctor"`
	MedicalHistory  string `json:"medical_history"`
}
