package controllers

import (
	"context"
	"net/http"

	"nailstudio-bot/services"

	"github.com/gin-gonic/gin"
)

type StatsProvider interface {
	Stats(ctx context.Context) (*services.Stats, error)
}

type DashboardOverview struct {
	TotalClients      int64 `json:"totalClients"`
	TotalAppointments int64 `json:"totalAppointments"`
	Pending           int64 `json:"pending"`
	Confirmed         int64 `json:"confirmed"`
	Completed         int64 `json:"completed"`
	Cancelled         int64 `json:"cancelled"`
	Income            int64 `json:"income"`
	AverageCheck      int64 `json:"averageCheck"`
}

type DashboardController struct {
	stats StatsProvider
}

func NewDashboardController(stats StatsProvider) *DashboardController {
	return &DashboardController{stats: stats}
}

func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	stats, err := dc.stats.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardOverview{
		TotalClients:      stats.TotalUsers,
		TotalAppointments: stats.TotalAppointments,
		Pending:           stats.Pending,
		Confirmed:         stats.Confirmed,
		Completed:         stats.Completed,
		Cancelled:         stats.Cancelled,
		Income:            stats.Income,
		AverageCheck:      stats.AverageCheck,
	})
}
