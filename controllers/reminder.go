package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"nailstudio-bot/models"
	"nailstudio-bot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultReminderLimit = 50

type ReminderLister interface {
	Upcoming(ctx context.Context, limit int) ([]models.Reminder, error)
}

type ReminderResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointmentId"`
	ClientName    string    `json:"clientName"`
	Kind          string    `json:"kind"`
	ScheduledFor  time.Time `json:"scheduledFor"`
	Appointment   string    `json:"appointment,omitempty"`
	Status        string    `json:"appointmentStatus,omitempty"`
}

type ReminderController struct {
	reminders ReminderLister
}

func NewReminderController(reminders ReminderLister) *ReminderController {
	return &ReminderController{reminders: reminders}
}

// GetUpcomingReminders lists reminders that are still waiting to be sent.
func (rc *ReminderController) GetUpcomingReminders(c *gin.Context) {
	limit := defaultReminderLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	reminders, err := rc.reminders.Upcoming(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]ReminderResponse, 0, len(reminders))
	for _, r := range reminders {
		item := ReminderResponse{
			ID:            r.ID,
			AppointmentID: r.AppointmentID,
			Kind:          r.Kind,
			ScheduledFor:  r.ScheduledFor,
		}
		if r.User != nil {
			item.ClientName = r.User.DisplayName()
		}
		if a := r.Appointment; a != nil {
			item.Appointment = a.ServiceName + " " + utils.FormatDate(a.Date) + " " + a.Time
			item.Status = a.Status
		}
		response = append(response, item)
	}
	c.JSON(http.StatusOK, response)
}
