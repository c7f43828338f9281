package controllers

import (
	"net/http"

	"nailstudio-bot/store"

	"github.com/gin-gonic/gin"
)

// ReportController handles all reporting functions
type ReportController struct {
	stats StatsProvider
}

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	TopServices  []store.ServiceSummary `json:"topServices"`
	TopClients   []store.ClientSummary  `json:"topClients"`
	Income       int64                  `json:"income"`
	Billable     int64                  `json:"billable"`
	AverageCheck int64                  `json:"averageCheck"`
}

func NewReportController(stats StatsProvider) *ReportController {
	return &ReportController{stats: stats}
}

func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	stats, err := rc.stats.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	summary := AnalyticsSummary{
		TopServices:  stats.TopServices,
		TopClients:   stats.TopClients,
		Income:       stats.Income,
		Billable:     stats.Billable,
		AverageCheck: stats.AverageCheck,
	}
	if summary.TopServices == nil {
		summary.TopServices = []store.ServiceSummary{}
	}
	if summary.TopClients == nil {
		summary.TopClients = []store.ClientSummary{}
	}
	c.JSON(http.StatusOK, summary)
}
