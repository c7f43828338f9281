package controllers

import (
	"net/http"

	"nailstudio-bot/config"

	"github.com/gin-gonic/gin"
)

type ServiceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Duration    int    `json:"duration"`
	Description string `json:"description,omitempty"`
}

type ServiceController struct {
	catalog config.Catalog
}

func NewServiceController(catalog config.Catalog) *ServiceController {
	return &ServiceController{catalog: catalog}
}

// GetServices returns the service menu and the daily time slots.
func (sc *ServiceController) GetServices(c *gin.Context) {
	items := make([]ServiceResponse, 0, len(sc.catalog.Services))
	for _, s := range sc.catalog.Services {
		items = append(items, ServiceResponse{
			ID:          s.ID,
			Name:        s.Name,
			Price:       s.Price,
			Duration:    s.Duration,
			Description: s.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"services":  items,
		"timeSlots": sc.catalog.Slots,
	})
}
