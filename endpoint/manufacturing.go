package endpoint

import (
	"time"

	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func fetchManufacturingQueue(db *gorm.DB, q listQuery, stage string) ([]model.ManufacturingLog, int64, error) {
	var entries []model.ManufacturingLog
	var total int64

	query := db.Model(&model.ManufacturingLog{}).Order("created_at ASC")
	if stage != "" {
		query = query.Where("stage = ?", stage)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListManufacturingQueue godoc
// @Summary      List manufacturing queue entries
// @Tags         Manufacturing
// @Produce      json
// @Param        stage query string false "Filter by stage"
// @Router       /manufacturing [get]
func ListManufacturingQueue(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	entries, total, err := fetchManufacturingQueue(db, parseListQuery(c), c.Query("stage"))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve manufacturing queue", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Manufacturing queue retrieved",
		Data: map[string]interface{}{"total": total, "total_fetched": len(entries), "queue": entries},
	})
}

// AdvanceManufacturingStage godoc
// @Summary      Advance a queue entry to its next stage
// @Description  pending_printing moves to printing or milling depending on manufacturing type; both feed inspection, then completed
// @Tags         Manufacturing
// @Produce      json
// @Router       /manufacturing/{id}/advance [post]
func AdvanceManufacturingStage(c *gin.Context) {
	entryID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var entry model.ManufacturingLog
	if err := db.First(&entry, entryID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Manufacturing entry not found", Err: err})
		return
	}

	next, err := model.NextStage(entry.Stage, entry.ManufacturingType)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Cannot advance manufacturing stage", Err: err})
		return
	}

	now := time.Now().Format(time.RFC3339)
	fields := map[string]interface{}{"stage": next}
	switch next {
	case model.StagePrinting:
		fields["printing_started_at"] = now
	case model.StageMilling:
		fields["milling_started_at"] = now
	case model.StageInspection:
		fields["inspection_started_at"] = now
	case model.StageCompleted:
		fields["completed_at"] = now
	}

	if err := db.Model(&entry).Updates(fields).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to advance manufacturing stage", Err: err})
		return
	}

	_ = util.PublishChange("manufacturing_logs", util.ChangeUpdate, entry.ID)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Manufacturing stage advanced", Data: entry})
}
