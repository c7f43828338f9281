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

const recentAppointmentsLimit = 20

type AppointmentManager interface {
	ByStatus(ctx context.Context, status string) ([]models.Appointment, error)
	Recent(ctx context.Context, limit int) ([]models.Appointment, error)
	Approve(ctx context.Context, adminID int64, id uuid.UUID) (*models.Appointment, error)
	Reject(ctx context.Context, adminID int64, id uuid.UUID, comment string) (*models.Appointment, error)
	Complete(ctx context.Context, adminID int64, id uuid.UUID) (*models.Appointment, error)
	MarkNoShow(ctx context.Context, adminID int64, id uuid.UUID) (*models.Appointment, error)
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	ClientName      string    `json:"clientName"`
	ClientPhone     string    `json:"clientPhone"`
	ServiceID       string    `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	OriginalPrice   int64     `json:"originalPrice"`
	FinalPrice      int64     `json:"finalPrice"`
	DiscountType    string    `json:"discountType,omitempty"`
	DiscountPercent int       `json:"discountPercent"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Status          string    `json:"status"`
	AdminComment    string    `json:"adminComment,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type RejectInput struct {
	Comment string `json:"comment" binding:"max=500"`
}

var appointmentStatuses = map[string]bool{
	models.StatusPending:   true,
	models.StatusConfirmed: true,
	models.StatusCompleted: true,
	models.StatusCancelled: true,
	models.StatusNoShow:    true,
}

type AppointmentController struct {
	appointments AppointmentManager
}

func NewAppointmentController(appointments AppointmentManager) *AppointmentController {
	return &AppointmentController{appointments: appointments}
}

// GetAppointments lists appointments with the given status, or the latest ones.
func (ac *AppointmentController) GetAppointments(c *gin.Context) {
	status := c.Query("status")

	var (
		appointments []models.Appointment
		err          error
	)
	switch {
	case status == "":
		appointments, err = ac.appointments.Recent(c.Request.Context(), recentAppointmentsLimit)
	case appointmentStatuses[status]:
		appointments, err = ac.appointments.ByStatus(c.Request.Context(), status)
	default:
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown status")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		response = append(response, toAppointmentResponse(&appointments[i]))
	}
	c.JSON(http.StatusOK, response)
}

func (ac *AppointmentController) Approve(c *gin.Context) {
	ac.decide(c, ac.appointments.Approve)
}

func (ac *AppointmentController) Reject(c *gin.Context) {
	var input RejectInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
	}
	ac.decide(c, func(ctx context.Context, adminID int64, id uuid.UUID) (*models.Appointment, error) {
		return ac.appointments.Reject(ctx, adminID, id, input.Comment)
	})
}

func (ac *AppointmentController) Complete(c *gin.Context) {
	ac.decide(c, ac.appointments.Complete)
}

func (ac *AppointmentController) NoShow(c *gin.Context) {
	ac.decide(c, ac.appointments.MarkNoShow)
}

func (ac *AppointmentController) decide(c *gin.Context, action func(context.Context, int64, uuid.UUID) (*models.Appointment, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	appointment, err := action(c.Request.Context(), utils.AdminID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAppointmentResponse(appointment))
}

func toAppointmentResponse(a *models.Appointment) AppointmentResponse {
	r := AppointmentResponse{
		ID:              a.ID,
		ServiceID:       a.ServiceID,
		ServiceName:     a.ServiceName,
		OriginalPrice:   a.OriginalPrice,
		FinalPrice:      a.FinalPrice,
		DiscountType:    a.DiscountType,
		DiscountPercent: a.DiscountPercent,
		Date:            a.Date.Format("2006-01-02"),
		Time:            a.Time,
		Status:          a.Status,
		AdminComment:    a.AdminComment,
		CreatedAt:       a.CreatedAt,
	}
	if a.User != nil {
		r.ClientName = a.User.DisplayName()
		r.ClientPhone = a.User.Phone
	}
	return r
}
