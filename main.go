// main.go
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dentalworks/labtrack/config"
	"github.com/dentalworks/labtrack/endpoint"
	"github.com/dentalworks/labtrack/middleware"
	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	err = db.AutoMigrate(
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
	)
	if err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	if err := model.SeedRoles(db); err != nil {
		log.Fatalf("Error seeding roles: %v", err)
	}
	if err := model.SeedDesignOptions(db); err != nil {
		log.Fatalf("Error seeding design options: %v", err)
	}

	util.SetSecurityLoggerDB(db)

	if err := util.InitGeoIP(""); err != nil {
		// Audit events simply go unenriched without a GeoIP database.
		log.Printf("GeoIP disabled: %v", err)
	}
	defer util.CloseGeoIP()

	if _, err := config.ConnectRedis(); err != nil {
		// Sessions and rate limiting degrade gracefully without Redis.
		log.Printf("Redis unavailable, continuing without it: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	router.POST("/login", middleware.RateLimiter(middleware.RateLimitConfig{}), endpoint.Login)
	router.POST("/logout", endpoint.Logout)
	router.GET("/token/validate", endpoint.ValidateToken)

	authed := router.Group("/", middleware.SessionAuth())

	authed.POST("/signup", middleware.RequireRoles(model.RoleAdmin), endpoint.Signup)

	authed.GET("/patient", endpoint.ListPatients)
	authed.POST("/patient", endpoint.CreatePatient)
	authed.PATCH("/patient/:id", endpoint.UpdatePatient)
	authed.DELETE("/patient/:id", middleware.RequireRoles(model.RoleAdmin, model.RoleLabManager), endpoint.DeletePatient)

	authed.GET("/lab-script", endpoint.ListLabScripts)
	authed.POST("/lab-script", endpoint.CreateLabScript)
	authed.GET("/lab-script/:id", endpoint.GetLabScript)
	authed.PATCH("/lab-script/:id", endpoint.UpdateLabScript)
	authed.DELETE("/lab-script/:id", middleware.RequireRoles(model.RoleAdmin, model.RoleLabManager), endpoint.DeleteLabScript)
	// Status authorization lives in the workflow package; the route only requires a session.
	authed.POST("/lab-script/:id/status", endpoint.TransitionLabScriptStatus)
	authed.GET("/lab-script/:id/transitions", endpoint.ListLabScriptTransitions)
	authed.GET("/lab-script/:id/progress", endpoint.GetLabScriptProgress)

	authed.GET("/report-card/:labScriptID", endpoint.GetReportCard)
	authed.PUT("/report-card/:labScriptID/design-info", middleware.RequireRoles(model.RoleAdmin, model.RoleLabManager, model.RoleLabStaff), endpoint.SaveDesignInfo)
	authed.PUT("/report-card/:labScriptID/clinical-info", middleware.RequireRoles(model.RoleAdmin, model.RoleLabManager, model.RoleLabStaff, model.RoleDoctor), endpoint.SaveClinicalInfo)

	authed.GET("/manufacturing", endpoint.ListManufacturingQueue)
	authed.POST("/manufacturing/:id/advance", middleware.RequireRoles(model.RoleAdmin, model.RoleLabManager, model.RoleLabStaff), endpoint.AdvanceManufacturingStage)

	authed.GET("/inventory", endpoint.ListInventoryItems)
	authed.POST("/inventory", endpoint.CreateInventoryItem)
	authed.PATCH("/inventory/:id", endpoint.UpdateInventoryItem)
	authed.POST("/inventory/:id/adjust", endpoint.AdjustInventoryStock)

	authed.GET("/purchase-order", endpoint.ListPurchaseOrders)
	authed.POST("/purchase-order", endpoint.CreatePurchaseOrder)
	authed.POST("/purchase-order/:id/status", middleware.RequireRoles(model.RoleAdmin, model.RoleLabManager), endpoint.TransitionPurchaseOrderStatus)

	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
