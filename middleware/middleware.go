package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dentalworks/labtrack/config"
	"github.com/dentalworks/labtrack/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Gin context keys set by the middleware in this package.
const (
	ctxKeyDB     = "db"
	ctxKeyUserID = "user_id"
	ctxKeyRole   = "role_name"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, session-token")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Content-Type", "application/json")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware injects the gorm DB handle into the request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxKeyDB, db)
		c.Next()
	}
}

// GetDB returns the request-scoped gorm DB, or nil when not set.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(ctxKeyDB)
	if !ok {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok {
		return nil
	}
	return db
}

// GetUserID returns the authenticated user's ID from the request context.
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetRoleName returns the authenticated user's role name from the request context.
func GetRoleName(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyRole)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

// SetCaller stores the caller identity in the request context. Exposed so
// tests can inject a caller without a session row.
func SetCaller(c *gin.Context, userID uint, roleName string) {
	c.Set(ctxKeyUserID, userID)
	c.Set(ctxKeyRole, roleName)
}

// SessionAuth resolves the caller from the session-token header and stores
// user ID and role name in the request context. The Redis session cache is
// consulted first; on a miss the sessions table is joined with users/roles.
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("session-token")
		if token == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session token is missing in 'session-token' header",
				Err: fmt.Errorf("session token is empty"),
			})
			c.Abort()
			return
		}

		if userID, roleName, ok := lookupCachedSession(token); ok {
			SetCaller(c, userID, roleName)
			c.Next()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Database connection not available",
				Err: fmt.Errorf("db is nil"),
			})
			c.Abort()
			return
		}

		var result struct {
			UserID   uint   `gorm:"column:user_id"`
			RoleName string `gorm:"column:role_name"`
		}
		err := db.Table("sessions").
			Select("sessions.user_id, roles.name as role_name").
			Joins("JOIN users ON sessions.user_id = users.id").
			Joins("JOIN roles ON users.role_id = roles.id").
			Where("session_token = ? AND expires_at > ? AND sessions.deleted_at IS NULL", token, time.Now()).
			Scan(&result).Error
		if err != nil || result.UserID == 0 {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session not found or has expired",
				Err: fmt.Errorf("session not found"),
			})
			c.Abort()
			return
		}

		SetCaller(c, result.UserID, result.RoleName)
		c.Next()
	}
}

// lookupCachedSession reads the "session:<token>" Redis key written at login.
// The value format is "<user_id>:<role_name>".
func lookupCachedSession(token string) (uint, string, bool) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return 0, "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	val, err := rdb.Get(ctx, fmt.Sprintf("session:%s", token)).Result()
	if err != nil {
		return 0, "", false
	}
	parts := strings.SplitN(val, ":", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	userID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil || userID == 0 {
		return 0, "", false
	}
	return uint(userID), parts[1], true
}

// RequireRoles rejects callers whose role is not in the allowed set. Must run
// after SessionAuth.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleName, ok := GetRoleName(c)
		if !ok || !util.Contains(roleName, allowed) {
			userID, _ := GetUserID(c)
			util.LogSecurityEvent(util.SecurityEvent{
				EventType: util.EventUnauthorizedAccess,
				UserID:    fmt.Sprintf("%d", userID),
				IP:        c.ClientIP(),
				Message:   fmt.Sprintf("role %q denied for %s %s", roleName, c.Request.Method, c.Request.URL.Path),
			})
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "You are not authorized to perform this action",
				Err: fmt.Errorf("role not permitted"),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
