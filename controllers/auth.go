package controllers

import (
	"net/http"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/utils"

	"github.com/gin-gonic/gin"
)

type LoginInput struct {
	TelegramID int64  `json:"telegramId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthController signs administrators in to the HTTP API.
type AuthController struct {
	admins config.AdminConfig
	secret string
	ttl    time.Duration
}

func NewAuthController(admins config.AdminConfig, httpCfg config.HTTPConfig) *AuthController {
	return &AuthController{
		admins: admins,
		secret: httpCfg.JWTSecret,
		ttl:    time.Duration(httpCfg.JWTExpiryHours) * time.Hour,
	}
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	// Only configured administrators may sign in, all with the shared password
	if !ac.admins.IsAdmin(input.TelegramID) || ac.admins.PasswordHash == "" ||
		!utils.CheckPasswordHash(input.Password, ac.admins.PasswordHash) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(ac.secret, input.TelegramID, ac.ttl)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.SetCookie(
		"token",
		token,
		int(ac.ttl.Seconds()),
		"/",
		"",
		true,
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"adminId": input.TelegramID,
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"adminId": utils.AdminID(c)})
}
