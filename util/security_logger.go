package util

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dentalworks/labtrack/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security/audit events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity SecurityEventType = "SUSPICIOUS_ACTIVITY"
	EventEndpointCall       SecurityEventType = "ENDPOINT_CALL"
	EventStatusTransition   SecurityEventType = "STATUS_TRANSITION"
	EventRecordDeleted      SecurityEventType = "RECORD_DELETED"
)

// SecurityEvent represents a security/audit event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Email     string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var securityLogger *log.Logger
var securityDB *gorm.DB

// SetSecurityLoggerDB sets a gorm DB instance used by the security logger.
// Call this during application startup (e.g. in main) after DB initialization.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityDB = db
}

func init() {
	securityLogger = log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.Lmsgprefix)
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	return value
}

// LogSecurityEvent writes the event to stdout and, when a DB has been
// configured, persists it to the security_logs table. Persistence is
// best-effort and never fails the caller.
func LogSecurityEvent(event SecurityEvent) {
	securityLogger.Printf("event=%s user_id=%s email=%s ip=%s msg=%q",
		event.EventType,
		sanitizeLogValue(event.UserID),
		sanitizeLogValue(event.Email),
		sanitizeLogValue(event.IP),
		sanitizeLogValue(event.Message),
	)

	if securityDB == nil {
		return
	}

	if loc := GetIPLocation(event.IP); loc.City != "" || loc.Country != "" {
		if event.Details == nil {
			event.Details = map[string]interface{}{}
		}
		event.Details["geo_city"] = loc.City
		event.Details["geo_country"] = loc.Country
	}

	var details datatypes.JSON
	if event.Details != nil {
		if raw, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(raw)
		}
	}

	row := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    event.UserID,
		Email:     event.Email,
		IP:        event.IP,
		UserAgent: event.UserAgent,
		Message:   event.Message,
		Details:   details,
	}
	if err := securityDB.Create(&row).Error; err != nil {
		securityLogger.Printf("failed to persist security event: %v", err)
	}
}

// LogLoginSuccess records a successful login.
func LogLoginSuccess(userID uint, email, ip, agent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    fmt.Sprintf("%d", userID),
		Email:     email,
		IP:        ip,
		UserAgent: agent,
		Message:   "login successful",
	})
}

// LogLoginFailure records a failed login attempt with its cause.
func LogLoginFailure(email, ip, agent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: agent,
		Message:   fmt.Sprintf("login failed: %s", reason),
	})
}

// LogAccountLocked records an account lockout.
func LogAccountLocked(userID uint, email, ip, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventAccountLocked,
		UserID:    fmt.Sprintf("%d", userID),
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("account locked: %s", reason),
	})
}

// LogRateLimitExceeded records a rate limit rejection.
func LogRateLimitExceeded(email, ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("rate limit exceeded on %s", endpoint),
	})
}

// LogStatusTransition records a lab script status change for the audit trail.
func LogStatusTransition(userID uint, ip string, scriptID uint, from, to, holdReason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventStatusTransition,
		UserID:    fmt.Sprintf("%d", userID),
		IP:        ip,
		Message:   fmt.Sprintf("lab script %d: %s -> %s", scriptID, from, to),
		Details: map[string]interface{}{
			"lab_script_id": scriptID,
			"from":          from,
			"to":            to,
			"hold_reason":   holdReason,
		},
	})
}
