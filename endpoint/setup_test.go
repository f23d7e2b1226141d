package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dentalworks/labtrack/middleware"
	"github.com/dentalworks/labtrack/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// endpointTestModels is the standard set of models migrated for endpoint tests.
var endpointTestModels = []interface{}{
	&model.Patient{},
	&model.LabScript{},
	&model.ScriptSequence{},
	&model.ReportCard{},
	&model.DesignInfo{},
	&model.ClinicalInfo{},
	&model.ManufacturingLog{},
	&model.InventoryItem{},
	&model.PurchaseOrder{},
	&model.PurchaseOrderItem{},
	&model.POSequence{},
	&model.DesignOption{},
	&model.Role{},
	&model.User{},
	&model.Session{},
	&model.SecurityLog{},
}

// setupTestDB opens a uniquified in-memory SQLite database with the standard
// endpoint models migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_endpoint_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(endpointTestModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

// setupEndpointTest returns a Gin engine and database connection configured
// for endpoint tests.
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	return r, db
}

// asCaller injects a caller identity the way the session middleware would.
func asCaller(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCaller(c, userID, role)
		c.Next()
	}
}

func createTestPatient(t *testing.T, db *gorm.DB) model.Patient {
	t.Helper()
	patient := model.Patient{
		FirstName:  "Maya",
		LastName:   "Santos",
		ClinicName: "Hillcrest Dental",
	}
	assert.NoError(t, db.Create(&patient).Error)
	return patient
}

var testRequestCounter uint64

func createTestLabScript(t *testing.T, db *gorm.DB, patientID uint, status string) model.LabScript {
	t.Helper()
	script := model.LabScript{
		RequestNumber: fmt.Sprintf("LS-2025-%04d", atomic.AddUint64(&testRequestCounter, 1)),
		PatientID:     patientID,
		DoctorName:    "Dr. Reyes",
		RequestDate:   "2025-06-01",
		DueDate:       "2025-06-15",
		ApplianceType: "surgical-day-appliance",
		Status:        status,
	}
	assert.NoError(t, db.Create(&script).Error)
	return script
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	return doJSONWithHeaders(r, method, path, body, nil)
}

func doJSONWithHeaders(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return response
}

// assertSuccessResponse asserts that the response indicates success with HTTP 200.
func assertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	if success, ok := response["success"].(bool); ok {
		assert.True(t, success)
	}
	return response
}
