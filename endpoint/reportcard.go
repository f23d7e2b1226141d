package endpoint

import (
	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/dentalworks/labtrack/workflow"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetReportCard godoc
// @Summary      Get the report card for a lab script with nested snapshots
// @Tags         ReportCard
// @Produce      json
// @Router       /report-card/{labScriptID} [get]
func GetReportCard(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "labScriptID")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var card model.ReportCard
	if err := db.Where("lab_script_id = ?", scriptID).First(&card).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Report card not found", Err: err})
		return
	}

	resp := model.ReportCardResponse{ReportCard: card}
	if card.DesignInfoID != nil {
		var design model.DesignInfo
		if err := db.First(&design, *card.DesignInfoID).Error; err == nil {
			resp.DesignInfo = &design
		}
	}
	if card.ClinicalInfoID != nil {
		var clinical model.ClinicalInfo
		if err := db.First(&clinical, *card.ClinicalInfoID).Error; err == nil {
			resp.ClinicalInfo = &clinical
		}
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Report card retrieved", Data: resp})
}

// findOrCreateReportCard returns the lab script's report card, creating it on
// first use. Must run inside the caller's transaction.
func findOrCreateReportCard(tx *gorm.DB, scriptID uint, scriptStatus string) (model.ReportCard, error) {
	var card model.ReportCard
	err := tx.Where("lab_script_id = ?", scriptID).First(&card).Error
	if err == nil {
		return card, nil
	}
	if err != gorm.ErrRecordNotFound {
		return card, err
	}
	card = model.ReportCard{
		LabScriptID:        scriptID,
		DesignInfoStatus:   model.InfoStatusPending,
		ClinicalInfoStatus: model.InfoStatusPending,
		Status:             overallCardStatus(scriptStatus),
	}
	return card, tx.Create(&card).Error
}

func overallCardStatus(scriptStatus string) string {
	if scriptStatus == string(workflow.StatusCompleted) {
		return model.InfoStatusCompleted
	}
	return model.InfoStatusPending
}

// syncReportCardStatus keeps the stored overall report card status aligned
// with the owning script. A missing card is fine; it is created lazily.
func syncReportCardStatus(db *gorm.DB, scriptID uint, scriptStatus string) error {
	return db.Model(&model.ReportCard{}).
		Where("lab_script_id = ?", scriptID).
		Update("status", overallCardStatus(scriptStatus)).Error
}

// SaveDesignInfo godoc
// @Summary      Save design info for a lab script
// @Description  Find-or-create the report card, create or update the design snapshot, link it, and patch the script's descriptive fields. All writes commit atomically or not at all.
// @Tags         ReportCard
// @Accept       json
// @Produce      json
// @Router       /report-card/{labScriptID}/design-info [put]
func SaveDesignInfo(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "labScriptID")
	if !ok {
		return
	}
	var req model.DesignInfoRequest
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

	// Fill design names from the lookup table when the design team left them blank.
	if req.UpperDesignName == "" {
		req.UpperDesignName = model.GenerateDesignName(db, req.ApplianceType, req.UpperTreatment)
	}
	if req.LowerDesignName == "" {
		req.LowerDesignName = model.GenerateDesignName(db, req.ApplianceType, req.LowerTreatment)
	}

	var card model.ReportCard
	var design model.DesignInfo
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		card, err = findOrCreateReportCard(tx, scriptID, script.Status)
		if err != nil {
			return err
		}

		design = model.DesignInfo{
			ReportCardID:    card.ID,
			DesignDate:      req.DesignDate,
			ApplianceType:   req.ApplianceType,
			UpperTreatment:  req.UpperTreatment,
			LowerTreatment:  req.LowerTreatment,
			UpperDesignName: req.UpperDesignName,
			LowerDesignName: req.LowerDesignName,
			Screw:           req.Screw,
			ImplantLibrary:  req.ImplantLibrary,
			TeethLibrary:    req.TeethLibrary,
			ActionsTaken:    req.ActionsTaken,
		}
		if card.DesignInfoID != nil {
			design.ID = *card.DesignInfoID
			if err := tx.Save(&design).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&design).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&card).Updates(map[string]interface{}{
			"design_info_id":     design.ID,
			"design_info_status": model.InfoStatusCompleted,
		}).Error; err != nil {
			return err
		}

		// Design edits patch the descriptive fields back onto the script.
		return tx.Model(&script).Updates(map[string]interface{}{
			"appliance_type":    req.ApplianceType,
			"upper_treatment":   req.UpperTreatment,
			"lower_treatment":   req.LowerTreatment,
			"upper_design_name": req.UpperDesignName,
			"lower_design_name": req.LowerDesignName,
			"screw_type":        req.Screw,
		}).Error
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to save design info", Err: err})
		return
	}

	_ = util.PublishChange("report_cards", util.ChangeUpdate, card.ID)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Design info saved successfully",
		Data: map[string]interface{}{"report_card_id": card.ID, "design_info": design},
	})
}

// SaveClinicalInfo godoc
// @Summary      Save clinical info for a lab script
// @Description  Same lazy-create pattern as design info; commits atomically.
// @Tags         ReportCard
// @Accept       json
// @Produce      json
// @Router       /report-card/{labScriptID}/clinical-info [put]
func SaveClinicalInfo(c *gin.Context) {
	scriptID, ok := parseUintParam(c, "labScriptID")
	if !ok {
		return
	}
	var req model.ClinicalInfoRequest
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

	var card model.ReportCard
	var clinical model.ClinicalInfo
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		card, err = findOrCreateReportCard(tx, scriptID, script.Status)
		if err != nil {
			return err
		}

		clinical = model.ClinicalInfo{
			ReportCardID:  card.ID,
			InsertionDate: req.InsertionDate,
			Fit:           req.Fit,
			Feedback:      req.Feedback,
			Occlusion:     req.Occlusion,
			Esthetics:     req.Esthetics,
			Adjustments:   req.Adjustments,
			Material:      req.Material,
			Shade:         req.Shade,
		}
		if card.ClinicalInfoID != nil {
			clinical.ID = *card.ClinicalInfoID
			if err := tx.Save(&clinical).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&clinical).Error; err != nil {
				return err
			}
		}

		return tx.Model(&card).Updates(map[string]interface{}{
			"clinical_info_id":     clinical.ID,
			"clinical_info_status": model.InfoStatusCompleted,
		}).Error
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to save clinical info", Err: err})
		return
	}

	_ = util.PublishChange("report_cards", util.ChangeUpdate, card.ID)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Clinical info saved successfully",
		Data: map[string]interface{}{"report_card_id": card.ID, "clinical_info": clinical},
	})
}
