package store

import (
	"context"
	"errors"
	"time"

	"nailstudio-bot/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserProfile is what the chat platform tells us about a person.
type UserProfile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

type AppointmentStats struct {
	TotalUsers        int64
	TotalAppointments int64
	Pending           int64
	Confirmed         int64
	Completed         int64
	Cancelled         int64
	Income            int64 // sum of final prices of confirmed and completed visits
	Billable          int64 // number of confirmed and completed visits
}

type ServiceSummary struct {
	ServiceID string `json:"serviceId"`
	Name      string `json:"name"`
	Count     int64  `json:"count"`
	Revenue   int64  `json:"revenue"`
}

type ClientSummary struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Visits int    `json:"visits"`
	Spent  int64  `json:"spent"`
}

// Store persists the bot's records. Implementations carry no business rules.
type Store interface {
	// GetOrCreateUser returns the user and whether it was created by this call.
	GetOrCreateUser(ctx context.Context, profile UserProfile, referralCode string) (*models.User, bool, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateAppointment(ctx context.Context, appointment *models.Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	SaveAppointment(ctx context.Context, appointment *models.Appointment) error
	ListAppointmentsByStatus(ctx context.Context, status string) ([]models.Appointment, error)
	ListRecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error)
	ListUserAppointments(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error)
	AppointmentStats(ctx context.Context) (AppointmentStats, error)
	TopServices(ctx context.Context, limit int) ([]ServiceSummary, error)
	TopClients(ctx context.Context, limit int) ([]ClientSummary, error)

	CreateDiscount(ctx context.Context, discount *models.Discount) error
	ListUserDiscounts(ctx context.Context, userID uuid.UUID, unusedOnly bool) ([]models.Discount, error)
	SaveDiscount(ctx context.Context, discount *models.Discount) error

	CreateReminders(ctx context.Context, reminders []models.Reminder) error
	// DueReminders returns unsent reminders scheduled at or before now,
	// with User and Appointment loaded when they still exist.
	DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error)
	UpcomingReminders(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)
	SaveReminder(ctx context.Context, reminder *models.Reminder) error

	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListReviews(ctx context.Context, approvedOnly bool, limit int) ([]models.Review, error)
	SaveReview(ctx context.Context, review *models.Review) error

	CreateGalleryImage(ctx context.Context, image *models.GalleryImage) error
	// ListGalleryImages lists all categories when category is empty.
	ListGalleryImages(ctx context.Context, category string, limit int) ([]models.GalleryImage, error)

	CreateBroadcast(ctx context.Context, message *models.BroadcastMessage) error

	// Transaction runs fn in a single unit of work; any error rolls it back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
