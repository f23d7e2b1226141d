package endpoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dentalworks/labtrack/middleware"
	"github.com/dentalworks/labtrack/util"
	"github.com/dentalworks/labtrack/workflow"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type listQuery struct {
	Limit       int
	Offset      int
	Keyword     string
	Status      string
	GroupByDate string
	SortBy      string
	SortDir     string
}

func parseListQuery(c *gin.Context) listQuery {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return listQuery{
		Limit:       limit,
		Offset:      offset,
		Keyword:     c.Query("keyword"),
		Status:      c.Query("status"),
		GroupByDate: c.Query("group_by_date"),
		SortBy:      c.Query("sort"),
		SortDir:     strings.ToLower(c.Query("sort_dir")),
	}
}

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// callerFromContext builds the workflow caller identity from the values the
// session middleware stored in the request context.
func callerFromContext(c *gin.Context) workflow.CallerContext {
	userID, _ := middleware.GetUserID(c)
	roleName, _ := middleware.GetRoleName(c)
	return workflow.CallerContext{UserID: userID, Role: roleName}
}

// parseUintParam parses a positive integer path parameter, responding with a
// user error on failure.
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Invalid %s", name),
			Err: fmt.Errorf("%s must be a positive integer", name),
		})
		return 0, false
	}
	return uint(v), true
}
