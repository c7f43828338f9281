package controllers

import (
	"context"
	"net/http"

	"nailstudio-bot/models"
	"nailstudio-bot/utils"

	"github.com/gin-gonic/gin"
)

type Broadcaster interface {
	Broadcast(ctx context.Context, adminID int64, text, photoRef string) (*models.BroadcastMessage, error)
}

type BroadcastInput struct {
	Text string `json:"text" binding:"required,max=4096"`
}

type BroadcastController struct {
	broadcaster Broadcaster
}

func NewBroadcastController(broadcaster Broadcaster) *BroadcastController {
	return &BroadcastController{broadcaster: broadcaster}
}

// CreateBroadcast sends a text message to every client.
func (bc *BroadcastController) CreateBroadcast(c *gin.Context) {
	var input BroadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	message, err := bc.broadcaster.Broadcast(c.Request.Context(), utils.AdminID(c), input.Text, "")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          message.ID,
		"sentCount":   message.SentCount,
		"failedCount": message.FailedCount,
		"sentAt":      message.SentAt,
	})
}
