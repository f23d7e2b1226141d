package util

import (
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// userEmailCache avoids a users-table query per audit event.
var userEmailCache = cache.New(time.Hour, 10*time.Minute)

// GetUserEmail returns the email for a user id, consulting an in-process
// cache before the users table. Unknown users and lookup failures return "".
func GetUserEmail(db *gorm.DB, userID uint) string {
	if userID == 0 {
		return ""
	}

	key := strconv.FormatUint(uint64(userID), 10)
	if v, ok := userEmailCache.Get(key); ok {
		if email, ok := v.(string); ok {
			return email
		}
	}

	if db == nil {
		return ""
	}
	var row struct{ Email string }
	if err := db.Table("users").Select("email").Where("id = ?", userID).Take(&row).Error; err != nil {
		return ""
	}
	if row.Email != "" {
		userEmailCache.Set(key, row.Email, cache.DefaultExpiration)
	}
	return row.Email
}
