package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FullName       string `json:"full_name"`
	Email          string `json:"email" gorm:"uniqueIndex;size:191;not null"`
	Password       string `json:"-"`
	PasswordSalt   string `json:"-"`
	RoleID         uint32 `json:"role_id" gorm:"not null"`
	FailedAttempts int    `json:"-"`
	LockedUntil    *int64 `json:"-"`
}

type Session struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	SessionToken string    `json:"session_token" gorm:"uniqueIndex;size:191;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	ClientIP     string    `json:"client_ip" gorm:"size:45"`
	Browser      string    `json:"browser" gorm:"size:512"`
}
