package endpoint

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dentalworks/labtrack/model"
	"github.com/stretchr/testify/assert"
)

func TestSaveDesignInfo_CreatesCardAndSnapshot(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.PUT("/report-card/:labScriptID/design-info", SaveDesignInfo)
	patient := createTestPatient(t, db)
	script := createTestLabScript(t, db, patient.ID, "in_progress")

	w := doJSON(r, "PUT", fmt.Sprintf("/report-card/%d/design-info", script.ID), map[string]interface{}{
		"design_date":       "2025-06-05",
		"appliance_type":    "crown",
		"upper_treatment":   "single-unit",
		"upper_design_name": "Custom Crown",
		"screw":             "rosen",
		"actions_taken":     "adjusted margin on 14",
	})
	assertSuccessResponse(t, w)

	var card model.ReportCard
	assert.NoError(t, db.Where("lab_script_id = ?", script.ID).First(&card).Error)
	assert.NotNil(t, card.DesignInfoID)
	assert.Equal(t, model.InfoStatusCompleted, card.DesignInfoStatus)
	assert.Equal(t, model.InfoStatusPending, card.ClinicalInfoStatus)
	assert.Equal(t, model.InfoStatusPending, card.Status)

	var design model.DesignInfo
	assert.NoError(t, db.First(&design, *card.DesignInfoID).Error)
	assert.Equal(t, card.ID, design.ReportCardID)
	assert.Equal(t, "adjusted margin on 14", design.ActionsTaken)

	// The descriptive fields patch back onto the script.
	var reloaded model.LabScript
	assert.NoError(t, db.First(&reloaded, script.ID).Error)
	assert.Equal(t, "crown", reloaded.ApplianceType)
	assert.Equal(t, "Custom Crown", reloaded.UpperDesignName)
	assert.Equal(t, "rosen", reloaded.ScrewType)
}

func TestSaveDesignInfo_SecondSaveReusesSnapshot(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.PUT("/report-card/:labScriptID/design-info", SaveDesignInfo)
	patient := createTestPatient(t, db)
	script := createTestLabScript(t, db, patient.ID, "in_progress")

	body := map[string]interface{}{
		"design_date":       "2025-06-05",
		"appliance_type":    "crown",
		"upper_treatment":   "single-unit",
		"upper_design_name": "Crown v1",
	}
	assertSuccessResponse(t, doJSON(r, "PUT", fmt.Sprintf("/report-card/%d/design-info", script.ID), body))

	body["upper_design_name"] = "Crown v2"
	assertSuccessResponse(t, doJSON(r, "PUT", fmt.Sprintf("/report-card/%d/design-info", script.ID), body))

	var cards, designs int64
	db.Model(&model.ReportCard{}).Where("lab_script_id = ?", script.ID).Count(&cards)
	db.Model(&model.DesignInfo{}).Count(&designs)
	assert.EqualValues(t, 1, cards)
	assert.EqualValues(t, 1, designs)

	var card model.ReportCard
	assert.NoError(t, db.Where("lab_script_id = ?", script.ID).First(&card).Error)
	var design model.DesignInfo
	assert.NoError(t, db.First(&design, *card.DesignInfoID).Error)
	assert.Equal(t, "Crown v2", design.UpperDesignName)
}

func TestSaveDesignInfo_AutofillsDesignNames(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.PUT("/report-card/:labScriptID/design-info", SaveDesignInfo)
	assert.NoError(t, model.SeedDesignOptions(db))
	patient := createTestPatient(t, db)
	script := createTestLabScript(t, db, patient.ID, "in_progress")

	w := doJSON(r, "PUT", fmt.Sprintf("/report-card/%d/design-info", script.ID), map[string]interface{}{
		"design_date":     "2025-06-05",
		"appliance_type":  "nightguard",
		"upper_treatment": "nightguard",
	})
	assertSuccessResponse(t, w)

	var card model.ReportCard
	assert.NoError(t, db.Where("lab_script_id = ?", script.ID).First(&card).Error)
	var design model.DesignInfo
	assert.NoError(t, db.First(&design, *card.DesignInfoID).Error)
	assert.Equal(t, "Nightguard", design.UpperDesignName)
}

func TestSaveDesignInfo_UnknownScript(t *testing.T) {
	r, _ := setupEndpointTest(t)
	r.PUT("/report-card/:labScriptID/design-info", SaveDesignInfo)

	w := doJSON(r, "PUT", "/report-card/999/design-info", map[string]interface{}{
		"design_date": "2025-06-05",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveClinicalInfo_CreatesCardAndSnapshot(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.PUT("/report-card/:labScriptID/clinical-info", SaveClinicalInfo)
	patient := createTestPatient(t, db)
	script := createTestLabScript(t, db, patient.ID, "in_progress")

	w := doJSON(r, "PUT", fmt.Sprintf("/report-card/%d/clinical-info", script.ID), map[string]interface{}{
		"insertion_date": "2025-06-12",
		"fit":            "excellent",
		"occlusion":      "balanced",
		"feedback":       "patient comfortable",
	})
	assertSuccessResponse(t, w)

	var card model.ReportCard
	assert.NoError(t, db.Where("lab_script_id = ?", script.ID).First(&card).Error)
	assert.NotNil(t, card.ClinicalInfoID)
	assert.Equal(t, model.InfoStatusCompleted, card.ClinicalInfoStatus)
	assert.Equal(t, model.InfoStatusPending, card.DesignInfoStatus)

	// Clinical saves leave the script's descriptive fields alone.
	var reloaded model.LabScript
	assert.NoError(t, db.First(&reloaded, script.ID).Error)
	assert.Equal(t, script.ApplianceType, reloaded.ApplianceType)
}

func TestSaveClinicalInfo_ThenDesignSharesOneCard(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.PUT("/report-card/:labScriptID/clinical-info", SaveClinicalInfo)
	r.PUT("/report-card/:labScriptID/design-info", SaveDesignInfo)
	patient := createTestPatient(t, db)
	script := createTestLabScript(t, db, patient.ID, "in_progress")

	assertSuccessResponse(t, doJSON(r, "PUT", fmt.Sprintf("/report-card/%d/clinical-info", script.ID), map[string]interface{}{
		"insertion_date": "2025-06-12",
	}))
	assertSuccessResponse(t, doJSON(r, "PUT", fmt.Sprintf("/report-card/%d/design-info", script.ID), map[string]interface{}{
		"design_date": "2025-06-05",
	}))

	var cards int64
	db.Model(&model.ReportCard{}).Where("lab_script_id = ?", script.ID).Count(&cards)
	assert.EqualValues(t, 1, cards)

	var card model.ReportCard
	assert.NoError(t, db.Where("lab_script_id = ?", script.ID).First(&card).Error)
	assert.NotNil(t, card.DesignInfoID)
	assert.NotNil(t, card.ClinicalInfoID)
	assert.Equal(t, model.InfoStatusCompleted, card.DesignInfoStatus)
	assert.Equal(t, model.InfoStatusCompleted, card.ClinicalInfoStatus)
}

func TestGetReportCard_NestsSnapshots(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.PUT("/report-card/:labScriptID/design-info", SaveDesignInfo)
	r.GET("/report-card/:labScriptID", GetReportCard)
	patient := createTestPatient(t, db)
	script := createTestLabScript(t, db, patient.ID, "in_progress")

	assertSuccessResponse(t, doJSON(r, "PUT", fmt.Sprintf("/report-card/%d/design-info", script.ID), map[string]interface{}{
		"design_date":    "2025-06-05",
		"appliance_type": "crown",
	}))

	w := doJSON(r, "GET", fmt.Sprintf("/report-card/%d", script.ID), nil)
	response := assertSuccessResponse(t, w)
	data := response["data"].(map[string]interface{})

	design, ok := data["design_info"].(map[string]interface{})
	assert.True(t, ok, "design_info should be nested in the response")
	assert.Equal(t, "2025-06-05", design["design_date"])
	_, hasClinical := data["clinical_info"]
	assert.False(t, hasClinical)
}

func TestGetReportCard_NotFound(t *testing.T) {
	r, _ := setupEndpointTest(t)
	r.GET("/report-card/:labScriptID", GetReportCard)

	w := doJSON(r, "GET", "/report-card/123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindOrCreateReportCard_CompletedScript(t *testing.T) {
	_, db := setupEndpointTest(t)
	patient := createTestPatient(t, db)
	script := createTestLabScript(t, db, patient.ID, "completed")

	card, err := findOrCreateReportCard(db, script.ID, script.Status)
	assert.NoError(t, err)
	assert.Equal(t, model.InfoStatusCompleted, card.Status)
}
