package controllers

import (
	"net/http"

	"nailstudio-bot/config"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	salon   config.SalonInfo
	loyalty config.LoyaltyConfig
}

func NewProfileController(salon config.SalonInfo, loyalty config.LoyaltyConfig) *ProfileController {
	return &ProfileController{salon: salon, loyalty: loyalty}
}

func (pc *ProfileController) GetProfile(c *gin.Context) {
	milestones := make([]gin.H, 0, len(pc.loyalty.Milestones))
	for _, m := range pc.loyalty.Milestones {
		milestones = append(milestones, gin.H{"visits": m.Visits, "percent": m.Percent})
	}

	c.JSON(http.StatusOK, gin.H{
		"salonName":    pc.salon.Name,
		"salonAddress": pc.salon.Address,
		"phone":        pc.salon.Phone,
		"workingHours": pc.salon.WorkingHours,
		"metro":        pc.salon.Metro,
		"loyalty": gin.H{
			"firstVisitPercent": pc.loyalty.FirstVisitPercent,
			"referralPercent":   pc.loyalty.ReferralPercent,
			"birthdayPercent":   pc.loyalty.BirthdayPercent,
			"birthdayWindow":    pc.loyalty.BirthdayWindow,
			"milestones":        milestones,
		},
	})
}
