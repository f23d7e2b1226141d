package endpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalworks/labtrack/config"
	"github.com/dentalworks/labtrack/model"
	"github.com/dentalworks/labtrack/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sessionTTL = time.Hour

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token        string `json:"token"`
	SessionToken string `json:"session_token"`
	Role         string `json:"role"`
	UserID       uint   `json:"user_id"`
}

type clientInfo struct {
	IP    string
	Agent string
}

// Login godoc
// @Summary      User login
// @Description  Authenticate user with email and password
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Router       /login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}

	var user model.User
	err := db.Where("email = ?", req.Email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(req.Email, ci.IP, ci.Agent, "user not found")
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid credentials")})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	if user.LockedUntil != nil && *user.LockedUntil > time.Now().Unix() {
		until := time.Unix(*user.LockedUntil, 0)
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Account locked until %s", until.Format(time.RFC3339)),
			Err: fmt.Errorf("account locked"),
		})
		return
	}

	if !util.VerifyPassword(req.Password, user.Password) {
		incrementFailedAttempts(db, &user, ci)
		util.LogLoginFailure(req.Email, ci.IP, ci.Agent, "wrong password")
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid credentials")})
		return
	}

	if err := resetFailedAttempts(db, &user); err != nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventSuspiciousActivity,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			IP:        ci.IP,
			Message:   fmt.Sprintf("Failed to reset failed attempts: %v", err),
		})
	}

	var role model.Role
	if err := db.Where("id = ?", user.RoleID).First(&role).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Role not found", Err: err})
		return
	}

	tokenString, err := createJWTToken(user, role.Name)
	if err != nil {
		util.LogLoginFailure(req.Email, ci.IP, ci.Agent, "token generation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	sessionToken := uuid.NewString()
	session := model.Session{
		UserID:       user.ID,
		SessionToken: sessionToken,
		ExpiresAt:    time.Now().Add(sessionTTL),
		ClientIP:     ci.IP,
		Browser:      ci.Agent,
	}
	if err := db.Create(&session).Error; err != nil {
		util.LogLoginFailure(req.Email, ci.IP, ci.Agent, "session creation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return
	}

	// Mirror the session into Redis (best-effort) so auth can skip the DB join.
	if rdb := config.GetRedisClient(); rdb != nil {
		exp := time.Until(session.ExpiresAt)
		val := fmt.Sprintf("%d:%s", session.UserID, role.Name)
		_ = rdb.Set(context.Background(), fmt.Sprintf("session:%s", sessionToken), val, exp).Err()
		_ = util.AddSessionToUserSet(session.UserID, sessionToken, exp)
	}

	util.LogLoginSuccess(user.ID, user.Email, ci.IP, ci.Agent)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: LoginResponse{Token: tokenString, SessionToken: sessionToken, Role: role.Name, UserID: user.ID},
	})
}

func incrementFailedAttempts(db *gorm.DB, user *model.User, ci clientInfo) {
	user.FailedAttempts++
	if user.FailedAttempts >= 5 {
		lockUntil := time.Now().Add(15 * time.Minute).Unix()
		user.LockedUntil = &lockUntil
		util.LogAccountLocked(user.ID, user.Email, ci.IP, "too many failed login attempts")
	}
	if err := db.Save(user).Error; err != nil {
		util.LogLoginFailure(user.Email, ci.IP, ci.Agent, "failed to update failed attempts")
	}
}

func resetFailedAttempts(db *gorm.DB, user *model.User) error {
	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.FailedAttempts = 0
		user.LockedUntil = nil
		return db.Save(user).Error
	}
	return nil
}

func createJWTToken(user model.User, roleName string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour * 1).Unix(),
		"role":  roleName,
	})
	return token.SignedString(util.GetJWTSecretByte())
}

type SignupRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	RoleID   uint32 `json:"role_id" binding:"required"`
}

// Signup godoc
// @Summary      Create a user account
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Router       /signup [post]
func Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var existing model.User
	err := db.First(&existing, "email = ?", req.Email).Error
	if err != gorm.ErrRecordNotFound {
		if err == nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: fmt.Errorf("email already exists")})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	var role model.Role
	if err := db.Where("id = ?", req.RoleID).First(&role).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Role not found", Err: err})
		return
	}

	salt, err := util.GenerateSalt()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
		return
	}
	hashed, err := util.HashPasswordArgon2(req.Password, salt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return
	}

	user := model.User{
		FullName:     util.NormalizeName(req.FullName),
		Email:        req.Email,
		Password:     hashed,
		PasswordSalt: salt,
		RoleID:       req.RoleID,
	}
	if err := db.Create(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create new user", Err: err})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventSignupSuccess,
		UserID:    fmt.Sprintf("%d", user.ID),
		Email:     user.Email,
		IP:        c.ClientIP(),
		Message:   "user account created",
	})

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "User created successfully",
		Data: map[string]interface{}{"user_id": user.ID, "role": role.Name},
	})
}

// Logout godoc
// @Summary      Invalidate the caller's session
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Router       /logout [post]
func Logout(c *gin.Context) {
	sessionToken := c.GetHeader("session-token")
	if sessionToken == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Session token is missing in 'session-token' header",
			Err: fmt.Errorf("session token is empty"),
		})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var session model.Session
	if err := db.Where("session_token = ?", sessionToken).First(&session).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Session not found", Err: err})
		return
	}
	if err := db.Delete(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
		return
	}

	if rdb := config.GetRedisClient(); rdb != nil {
		_ = rdb.Del(context.Background(), fmt.Sprintf("session:%s", sessionToken)).Err()
		_ = util.RemoveSessionTokenFromUserSet(session.UserID, sessionToken)
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventLogout,
		UserID:    fmt.Sprintf("%d", session.UserID),
		IP:        c.ClientIP(),
		Message:   "logout",
	})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful", Data: nil})
}
