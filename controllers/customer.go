package controllers

import (
	"context"
	"net/http"
	"time"

	"nailstudio-bot/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClientLister interface {
	List(ctx context.Context) ([]models.User, error)
}

type ClientResponse struct {
	ID              uuid.UUID  `json:"id"`
	TelegramID      int64      `json:"telegramId"`
	Name            string     `json:"name"`
	Username        string     `json:"username,omitempty"`
	Phone           string     `json:"phone"`
	Birthday        *time.Time `json:"birthday,omitempty"`
	Visits          int        `json:"visits"`
	TotalSpent      int64      `json:"totalSpent"`
	DiscountPercent int        `json:"discountPercent"`
	ReferralCode    string     `json:"referralCode"`
	LastVisit       *time.Time `json:"lastVisit,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type CustomerController struct {
	clients ClientLister
}

func NewCustomerController(clients ClientLister) *CustomerController {
	return &CustomerController{clients: clients}
}

// GetCustomers lists every client who has talked to the bot.
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	users, err := cc.clients.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]ClientResponse, 0, len(users))
	for _, u := range users {
		response = append(response, ClientResponse{
			ID:              u.ID,
			TelegramID:      u.TelegramID,
			Name:            u.DisplayName(),
			Username:        u.Username,
			Phone:           u.Phone,
			Birthday:        u.Birthday,
			Visits:          u.VisitsCount,
			TotalSpent:      u.TotalSpent,
			DiscountPercent: u.DiscountPercent,
			ReferralCode:    u.ReferralCode,
			LastVisit:       u.LastVisit,
			CreatedAt:       u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}
