package endpoint

import (
	"fmt"
	"strings"
	"time"

	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// applyCreatedAtFilter applies a created_at filter for supported ranges.
// Supported values for groupByDate: "last_2_days", "last_3_months", "last_6_months".
func applyCreatedAtFilter(query *gorm.DB, groupByDate string) *gorm.DB {
	switch groupByDate {
	case "last_2_days":
		query = query.Where("created_at >= ?", time.Now().AddDate(0, 0, -2))
	case "last_3_months":
		query = query.Where("created_at >= ?", time.Now().AddDate(0, -3, 0))
	case "last_6_months":
		query = query.Where("created_at >= ?", time.Now().AddDate(0, -6, 0))
	}
	return query
}

func fetchPatients(db *gorm.DB, q listQuery) ([]model.Patient, int64, error) {
	var patients []model.Patient
	var total int64

	query := db.Model(&model.Patient{})

	orderDir := "ASC"
	if q.SortDir == "desc" {
		orderDir = "DESC"
	}
	switch q.SortBy {
	case "last_name":
		query = query.Order(fmt.Sprintf("patients.last_name %s", orderDir))
	case "clinic_name":
		query = query.Order(fmt.Sprintf("patients.clinic_name %s", orderDir))
	default:
		query = query.Order("patients.created_at DESC")
	}

	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR clinic_name LIKE ? OR phone_number LIKE ?", kw, kw, kw, kw)
	}
	query = applyCreatedAtFilter(query, q.GroupByDate)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if err := query.Find(&patients).Error; err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// ListPatients godoc
// @Summary      List all patients
// @Description  Get a paginated list of patients with optional filtering
// @Tags         Patient
// @Produce      json
// @Success      200 {object} util.APIResponse{data=object} "Patients retrieved"
// @Router       /patient [get]
func ListPatients(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patients, total, err := fetchPatients(db, parseListQuery(c))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve patients", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(patients), "patients": patients},
	})
}

type createPatientRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Gender          string `json:"gender"`
	Age             int    `json:"age"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	ClinicName      string `json:"clinic_name"`
	ReferringDoctor string `json:"referring_doctor"`
	MedicalHistory  string `json:"medical_history"`
}

// CreatePatient godoc
// @Summary      Create a patient
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Router       /patient [post]
func CreatePatient(c *gin.Context) {
	var req createPatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	req.FirstName = util.NormalizeName(req.FirstName)
	req.LastName = util.NormalizeName(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "First name and last name are required",
			Err: fmt.Errorf("missing patient name"),
		})
		return
	}

	// Duplicate guard: same full name at the same clinic with the same phone.
	var count int64
	db.Model(&model.Patient{}).
		Where("first_name = ? AND last_name = ? AND phone_number = ?", req.FirstName, req.LastName, strings.TrimSpace(req.PhoneNumber)).
		Count(&count)
	if count > 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "A patient with this name and phone number already exists",
			Err: fmt.Errorf("duplicate patient"),
		})
		return
	}

	patient := model.Patient{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Gender:          req.Gender,
		Age:             req.Age,
		Email:           req.Email,
		PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
		ClinicName:      req.ClinicName,
		ReferringDoctor: req.ReferringDoctor,
		MedicalHistory:  req.MedicalHistory,
	}
	if err := db.Create(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create patient", Err: err})
		return
	}

	_ = util.PublishChange("patients", util.ChangeInsert, patient.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient created successfully", Data: patient})
}

// UpdatePatient godoc
// @Summary      Update a patient
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Router       /patient/{id} [patch]
func UpdatePatient(c *gin.Context) {
	patientID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req createPatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var existing model.Patient
	if err := db.First(&existing, patientID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return
	}

	updates := model.Patient{
		FirstName:       util.NormalizeName(req.FirstName),
		LastName:        util.NormalizeName(req.LastName),
		Gender:          req.Gender,
		Age:             req.Age,
		Email:           req.Email,
		PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
		ClinicName:      req.ClinicName,
		ReferringDoctor: req.ReferringDoctor,
		MedicalHistory:  req.MedicalHistory,
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update patient", Err: err})
		return
	}

	_ = util.PublishChange("patients", util.ChangeUpdate, existing.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient updated successfully", Data: existing})
}

// DeletePatient godoc
// @Summary      Delete a patient
// @Tags         Patient
// @Produce      json
// @Router       /patient/{id} [delete]
func DeletePatient(c *gin.Context) {
	patientID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var existing model.Patient
	if err := db.First(&existing, patientID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return
	}

	// Refuse to delete a patient with open lab scripts.
	var openScripts int64
	db.Model(&model.LabScript{}).
		Where("patient_id = ? AND status <> ?", patientID, "completed").
		Count(&openScripts)
	if openScripts > 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Patient has lab scripts that are not completed",
			Err: fmt.Errorf("patient has %d open lab scripts", openScripts),
		})
		return
	}

	if err := db.Delete(&existing).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete patient", Err: err})
		return
	}

	_ = util.PublishChange("patients", util.ChangeDelete, existing.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient deleted successfully", Data: nil})
}
