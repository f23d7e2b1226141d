package endpoint

import (
	"net/http"
	"testing"
	"time"

	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func createTestUser(t *testing.T, db *gorm.DB, email, password, roleName string) model.User {
	t.Helper()

	var role model.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		role = model.Role{Name: roleName}
		assert.NoError(t, db.Create(&role).Error)
	}

	salt, err := util.GenerateSalt()
	assert.NoError(t, err)
	hashed, err := util.HashPasswordArgon2(password, salt)
	assert.NoError(t, err)

	user := model.User{
		FullName:     "Test User",
		Email:        email,
		Password:     hashed,
		PasswordSalt: salt,
		RoleID:       uint32(role.ID),
	}
	assert.NoError(t, db.Create(&user).Error)
	return user
}

func TestLogin_Success(t *testing.T) {
	util.SetJWTSecret("test-secret")
	r, db := setupEndpointTest(t)
	r.POST("/login", Login)
	user := createTestUser(t, db, "tech@lab.example", "swordfish", model.RoleLabStaff)

	w := doJSON(r, "POST", "/login", map[string]interface{}{
		"email":    "tech@lab.example",
		"password": "swordfish",
	})
	response := assertSuccessResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.NotEmpty(t, data["session_token"])
	assert.Equal(t, model.RoleLabStaff, data["role"])

	var session model.Session
	assert.NoError(t, db.Where("user_id = ?", user.ID).First(&session).Error)
	assert.Equal(t, data["session_token"], session.SessionToken)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestLogin_WrongPassword(t *testing.T) {
	util.SetJWTSecret("test-secret")
	r, db := setupEndpointTest(t)
	r.POST("/login", Login)
	user := createTestUser(t, db, "tech@lab.example", "swordfish", model.RoleLabStaff)

	w := doJSON(r, "POST", "/login", map[string]interface{}{
		"email":    "tech@lab.example",
		"password": "marlin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reloaded model.User
	assert.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 1, reloaded.FailedAttempts)
}

func TestLogin_LocksAfterFiveFailures(t *testing.T) {
	util.SetJWTSecret("test-secret")
	r, db := setupEndpointTest(t)
	r.POST("/login", Login)
	user := createTestUser(t, db, "tech@lab.example", "swordfish", model.RoleLabStaff)

	for i := 0; i < 5; i++ {
		doJSON(r, "POST", "/login", map[string]interface{}{
			"email":    "tech@lab.example",
			"password": "marlin",
		})
	}

	var reloaded model.User
	assert.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.NotNil(t, reloaded.LockedUntil)

	// Even the right password is refused while the lock is active.
	w := doJSON(r, "POST", "/login", map[string]interface{}{
		"email":    "tech@lab.example",
		"password": "swordfish",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_SuccessResetsFailedAttempts(t *testing.T) {
	util.SetJWTSecret("test-secret")
	r, db := setupEndpointTest(t)
	r.POST("/login", Login)
	user := createTestUser(t, db, "tech@lab.example", "swordfish", model.RoleLabStaff)

	doJSON(r, "POST", "/login", map[string]interface{}{
		"email":    "tech@lab.example",
		"password": "marlin",
	})
	assertSuccessResponse(t, doJSON(r, "POST", "/login", map[string]interface{}{
		"email":    "tech@lab.example",
		"password": "swordfish",
	}))

	var reloaded model.User
	assert.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Zero(t, reloaded.FailedAttempts)
	assert.Nil(t, reloaded.LockedUntil)
}

func TestLogin_UnknownEmail(t *testing.T) {
	r, _ := setupEndpointTest(t)
	r.POST("/login", Login)

	w := doJSON(r, "POST", "/login", map[string]interface{}{
		"email":    "nobody@lab.example",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_Success(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/signup", Signup)
	assert.NoError(t, model.SeedRoles(db))

	var role model.Role
	assert.NoError(t, db.Where("name = ?", model.RoleLabStaff).First(&role).Error)

	w := doJSON(r, "POST", "/signup", map[string]interface{}{
		"full_name": "nadia osei",
		"email":     "nadia@lab.example",
		"password":  "swordfish",
		"role_id":   role.ID,
	})
	assertSuccessResponse(t, w)

	var user model.User
	assert.NoError(t, db.Where("email = ?", "nadia@lab.example").First(&user).Error)
	assert.Equal(t, "Nadia Osei", user.FullName)
	assert.NotEqual(t, "swordfish", user.Password)
	assert.True(t, util.VerifyPassword("swordfish", user.Password))
}

func TestSignup_DuplicateEmailRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/signup", Signup)
	assert.NoError(t, model.SeedRoles(db))
	createTestUser(t, db, "nadia@lab.example", "swordfish", model.RoleLabStaff)

	var role model.Role
	assert.NoError(t, db.Where("name = ?", model.RoleLabStaff).First(&role).Error)

	w := doJSON(r, "POST", "/signup", map[string]interface{}{
		"full_name": "Nadia Osei",
		"email":     "nadia@lab.example",
		"password":  "swordfish",
		"role_id":   role.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_DeletesSession(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/logout", Logout)
	user := createTestUser(t, db, "tech@lab.example", "swordfish", model.RoleLabStaff)

	session := model.Session{
		UserID:       user.ID,
		SessionToken: "tok-abcdef",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	assert.NoError(t, db.Create(&session).Error)

	req := doJSONWithHeaders(r, "POST", "/logout", nil, map[string]string{"session-token": "tok-abcdef"})
	assertSuccessResponse(t, req)

	var count int64
	db.Model(&model.Session{}).Where("session_token = ?", "tok-abcdef").Count(&count)
	assert.Zero(t, count)
}

func TestLogout_MissingHeader(t *testing.T) {
	r, _ := setupEndpointTest(t)
	r.POST("/logout", Logout)

	w := doJSON(r, "POST", "/logout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
