package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/dentalworks/labtrack/middleware"
	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/dentalworks/labtrack/workflow"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func fetchLabScripts(db *gorm.DB, q listQuery) ([]model.ListLabScriptResponse, int64, error) {
	var scripts []model.ListLabScriptResponse
	var total int64

	query := db.Table("lab_scripts").
		Joins("LEFT JOIN patients ON patients.id = lab_scripts.patient_id").
		Select("lab_scripts.*, CONCAT(patients.first_name, ' ', patients.last_name) as patient_name").
		Where("lab_scripts.deleted_at IS NULL")

	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("lab_scripts.request_number LIKE ? OR lab_scripts.doctor_name LIKE ? OR patients.first_name LIKE ? OR patients.last_name LIKE ?", kw, kw, kw, kw)
	}
	if q.Status != "" {
		query = query.Where("lab_scripts.status = ?", q.Status)
	}
	query = query.Order("lab_scripts.created_at DESC")

	countQuery := query.Session(&gorm.Session{})
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if err := query.Find(&scripts).Error; err != nil {
		return nil, 0, err
	}
	return scripts, total, nil
}

// ListLabScripts godoc
// @Summary      List lab scripts
// @Description  Paginated lab script listing with keyword and status filters
// @Tags         LabScript
// @Produce      json
// @Success      200 {object} util.APIResponse{data=object} "Lab scripts retrieved"
// @Router       /lab-script [get]
func ListLabScripts(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	scripts, total, err := fetchLabScripts(db, parseListQuery(c))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve lab scripts", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Lab scripts retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(scripts), "lab_scripts": scripts},
	})
}

// GetLabScript godoc
// @Summary      Get one lab script
// @Tags         LabScript
// @Produce      json
// @Router       /lab-script/{id} [get]
func GetLabScript(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var script model.LabScript
	if err := db.First(&script, scriptID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Lab script not found", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Lab script retrieved", Data: script})
}

// CreateLabScript godoc
// @Summary      Create a lab script
// @Description  Creates the work order with a generated request number, status pending, and a manufacturing queue entry
// @Tags         LabScript
// @Accept       json
// @Produce      json
// @Router       /lab-script [post]
func CreateLabScript(c *gin.Context) {
	var req model.LabScriptRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if req.PatientID == 0 || req.DoctorName == "" || req.RequestDate == "" || req.DueDate == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "patient_id, doctor_name, request_date and due_date are required",
			Err: fmt.Errorf("missing required lab script fields"),
		})
		return
	}
	if req.DueDate < req.RequestDate {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Due date cannot be before the request date",
			Err: fmt.Errorf("due_date precedes request_date"),
		})
		return
	}

	var patient model.Patient
	if err := db.First(&patient, req.PatientID).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return
	}

	script := model.LabScript{
		PatientID:            req.PatientID,
		DoctorName:           req.DoctorName,
		ClinicName:           req.ClinicName,
		RequestDate:          req.RequestDate,
		DueDate:              req.DueDate,
		ApplianceType:        req.ApplianceType,
		UpperTreatment:       req.UpperTreatment,
		LowerTreatment:       req.LowerTreatment,
		UpperDesignName:      req.UpperDesignName,
		LowerDesignName:      req.LowerDesignName,
		ScrewType:            req.ScrewType,
		VDODetails:           req.VDODetails,
		ManufacturingSource:  req.ManufacturingSource,
		ManufacturingType:    req.ManufacturingType,
		SpecificInstructions: req.SpecificInstructions,
		Status:               string(workflow.StatusPending),
	}

	// Design names default from the lookup table when the form left them blank.
	if script.UpperDesignName == "" {
		script.UpperDesignName = model.GenerateDesignName(db, req.ApplianceType, req.UpperTreatment)
	}
	if script.LowerDesignName == "" {
		script.LowerDesignName = model.GenerateDesignName(db, req.ApplianceType, req.LowerTreatment)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		number, err := model.NextRequestNumber(tx, time.Now())
		if err != nil {
			return err
		}
		script.RequestNumber = number
		if err := tx.Create(&script).Error; err != nil {
			return err
		}
		queueEntry := model.ManufacturingLog{
			LabScriptID:         script.ID,
			ManufacturingSource: script.ManufacturingSource,
			ManufacturingType:   script.ManufacturingType,
			Stage:               model.StagePendingPrinting,
		}
		return tx.Create(&queueEntry).Error
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create lab script", Err: err})
		return
	}

	_ = util.PublishChange("lab_scripts", util.ChangeInsert, script.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Lab script created successfully", Data: script})
}

// UpdateLabScript godoc
// @Summary      Update lab script descriptive fields
// @Description  Status and hold reason are not updatable here; use the status endpoint
// @Tags         LabScript
// @Accept       json
// @Produce      json
// @Router       /lab-script/{id} [patch]
func UpdateLabScript(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req model.LabScriptRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var existing model.LabScript
	if err := db.First(&existing, scriptID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Lab script not found", Err: err})
		return
	}

	updates := model.LabScript{
		DoctorName:           req.DoctorName,
		ClinicName:           req.ClinicName,
		RequestDate:          req.RequestDate,
		DueDate:              req.DueDate,
		ApplianceType:        req.ApplianceType,
		UpperTreatment:       req.UpperTreatment,
		LowerTreatment:       req.LowerTreatment,
		UpperDesignName:      req.UpperDesignName,
		LowerDesignName:      req.LowerDesignName,
		ScrewType:            req.ScrewType,
		VDODetails:           req.VDODetails,
		ManufacturingSource:  req.ManufacturingSource,
		ManufacturingType:    req.ManufacturingType,
		SpecificInstructions: req.SpecificInstructions,
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update lab script", Err: err})
		return
	}

	_ = util.PublishChange("lab_scripts", util.ChangeUpdate, existing.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Lab script updated successfully", Data: existing})
}

// DeleteLabScript godoc
// @Summary      Delete a lab script and its dependent rows
// @Tags         LabScript
// @Produce      json
// @Router       /lab-script/{id} [delete]
func DeleteLabScript(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var existing model.LabScript
	if err := db.First(&existing, scriptID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Lab script not found", Err: err})
		return
	}

	// The report card and its snapshots go with the script, in one transaction.
	err := db.Transaction(func(tx *gorm.DB) error {
		var card model.ReportCard
		cardErr := tx.Where("lab_script_id = ?", scriptID).First(&card).Error
		if cardErr == nil {
			if card.DesignInfoID != nil {
				if err := tx.Delete(&model.DesignInfo{}, *card.DesignInfoID).Error; err != nil {
					return err
				}
			}
			if card.ClinicalInfoID != nil {
				if err := tx.Delete(&model.ClinicalInfo{}, *card.ClinicalInfoID).Error; err != nil {
					return err
				}
			}
			if err := tx.Delete(&card).Error; err != nil {
				return err
			}
		} else if cardErr != gorm.ErrRecordNotFound {
			return cardErr
		}
		if err := tx.Where("lab_script_id = ?", scriptID).Delete(&model.ManufacturingLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete lab script", Err: err})
		return
	}

	userID, _ := middleware.GetUserID(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventRecordDeleted,
		UserID:    fmt.Sprintf("%d", userID),
		Email:     util.GetUserEmail(db, userID),
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("lab script %d deleted", scriptID),
	})
	_ = util.PublishChange("lab_scripts", util.ChangeDelete, scriptID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Lab script deleted successfully", Data: nil})
}

// TransitionLabScriptStatus godoc
// @Summary      Apply a status transition to a lab script
// @Description  Body carries the target status, a hold reason when the target is hold, and an optional note (review link for approval holds, free text otherwise)
// @Tags         LabScript
// @Accept       json
// @Produce      json
// @Success      200 {object} util.APIResponse{data=model.LabScript} "Status updated"
// @Failure      400 {object} util.APIResponse "Validation error"
// @Failure      401 {object} util.APIResponse "Caller role not permitted"
// @Router       /lab-script/{id}/status [post]
func TransitionLabScriptStatus(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req workflow.TransitionRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var script model.LabScript
	if err := db.First(&script, scriptID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Lab script not found", Err: err})
		return
	}

	previousStatus := script.Status
	updated, err := workflow.ApplyTransition(workflow.GormStore{DB: db}, callerFromContext(c), script, req)
	if err != nil {
		var validationErr *workflow.ValidationError
		var permissionErr *workflow.PermissionError
		switch {
		case errors.As(err, &validationErr):
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid status transition", Err: err})
		case errors.As(err, &permissionErr):
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "You are not authorized to change lab script status", Err: err})
		default:
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update lab script status", Err: err})
		}
		return
	}

	// Keep the stored report card status in step with the script.
	if syncErr := syncReportCardStatus(db, updated.ID, updated.Status); syncErr != nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventSuspiciousActivity,
			IP:        c.ClientIP(),
			Message:   fmt.Sprintf("failed to sync report card status for lab script %d: %v", updated.ID, syncErr),
		})
	}

	userID, _ := middleware.GetUserID(c)
	util.LogStatusTransition(userID, c.ClientIP(), updated.ID, previousStatus, updated.Status, updated.HoldReason)
	_ = util.PublishChange("lab_scripts", util.ChangeUpdate, updated.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Lab script status updated", Data: updated})
}

// ListLabScriptTransitions godoc
// @Summary      List the transitions offered from the script's current status
// @Tags         LabScript
// @Produce      json
// @Router       /lab-script/{id}/transitions [get]
func ListLabScriptTransitions(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var script model.LabScript
	if err := db.First(&script, scriptID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Lab script not found", Err: err})
		return
	}

	status, err := workflow.ParseStatus(script.Status)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Lab script has an unrecognized status", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Available transitions retrieved",
		Data: map[string]interface{}{
			"status":       script.Status,
			"next":         workflow.AllowedNext(status),
			"hold_reasons": workflow.HoldReasons(),
		},
	})
}

// GetLabScriptProgress godoc
// @Summary      Report card progress projection for a lab script
// @Description  Derives the 4-step progress view from the script and its linked design/clinical snapshots
// @Tags         LabScript
// @Produce      json
// @Router       /lab-script/{id}/progress [get]
func GetLabScriptProgress(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var script model.LabScript
	if err := db.First(&script, scriptID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Lab script not found", Err: err})
		return
	}

	design, clinical, err := loadReportCardInfos(db, scriptID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load report card", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Progress retrieved",
		Data: map[string]interface{}{"steps": workflow.Project(script, design, clinical)},
	})
}

// loadReportCardInfos fetches the linked snapshots for a lab script, if any.
func loadReportCardInfos(db *gorm.DB, scriptID uint) (*model.DesignInfo, *model.ClinicalInfo, error) {
	var card model.ReportCard
	err := db.Where("lab_script_id = ?", scriptID).First(&card).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var design *model.DesignInfo
	if card.DesignInfoID != nil {
		var d model.DesignInfo
		if err := db.First(&d, *card.DesignInfoID).Error; err == nil {
			design = &d
		} else if err != gorm.ErrRecordNotFound {
			return nil, nil, err
		}
	}
	var clinical *model.ClinicalInfo
	if card.ClinicalInfoID != nil {
		var cl model.ClinicalInfo
		if err := db.First(&cl, *card.ClinicalInfoID).Error; err == nil {
			clinical = &cl
		} else if err != gorm.ErrRecordNotFound {
			return nil, nil, err
		}
	}
	return design, clinical, nil
}
