package controllers

import (
	"context"
	"net/http"
	"time"

	"nailstudio-bot/models"
	"nailstudio-bot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const reviewListLimit = 100

type ReviewManager interface {
	All(ctx context.Context, limit int) ([]models.Review, error)
	SetApproval(ctx context.Context, adminID int64, id uuid.UUID, approved bool) (*models.Review, error)
}

type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	ClientName string    `json:"clientName"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	HasPhoto   bool      `json:"hasPhoto"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ApprovalInput struct {
	Approved *bool `json:"approved" binding:"required"`
}

type ReviewController struct {
	reviews ReviewManager
}

func NewReviewController(reviews ReviewManager) *ReviewController {
	return &ReviewController{reviews: reviews}
}

func (rc *ReviewController) GetReviews(c *gin.Context) {
	reviews, err := rc.reviews.All(c.Request.Context(), reviewListLimit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		response = append(response, toReviewResponse(&reviews[i]))
	}
	c.JSON(http.StatusOK, response)
}

// SetApproval shows or hides a review in the bot.
func (rc *ReviewController) SetApproval(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input ApprovalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	review, err := rc.reviews.SetApproval(c.Request.Context(), utils.AdminID(c), id, *input.Approved)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(review))
}

func toReviewResponse(r *models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:         r.ID,
		Rating:     r.Rating,
		Text:       r.Text,
		HasPhoto:   r.PhotoRef != "",
		IsApproved: r.IsApproved,
		CreatedAt:  r.CreatedAt,
	}
	if r.User != nil {
		resp.ClientName = r.User.DisplayName()
	}
	return resp
}
