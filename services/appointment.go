package services

import (
	"context"
	"fmt"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppointmentService moves appointments through their lifecycle.
type AppointmentService struct {
	store      store.Store
	dispatcher Dispatcher
	rules      DiscountRules
	admins     config.AdminConfig
	now        func() time.Time
	log        *zap.Logger
}

func NewAppointmentService(st store.Store, dispatcher Dispatcher, cfg *config.Config, log *zap.Logger) *AppointmentService {
	return &AppointmentService{
		store:      st,
		dispatcher: dispatcher,
		rules:      NewDiscountRules(cfg.Loyalty),
		admins:     cfg.Admin,
		now:        time.Now,
		log:        log.With(zap.String("service", "appointments")),
	}
}

// Approve confirms a pending appointment and credits the visit to the client.
func (s *AppointmentService) Approve(ctx context.Context, adminID int64, id uuid.UUID) (*models.Appointment, error) {
	if !s.admins.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}

	var (
		appointment *models.Appointment
		crossed     []config.Milestone
	)
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		a, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		if a.Status != models.StatusPending {
			return ErrInvalidTransition
		}

		now := s.now()
		a.Status = models.StatusConfirmed
		a.ConfirmedAt = &now
		if err := tx.SaveAppointment(ctx, a); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}

		user := a.User
		if user == nil {
			if user, err = tx.GetUser(ctx, a.UserID); err != nil {
				return fmt.Errorf("load client: %w", err)
			}
		}
		before := user.VisitsCount
		user.VisitsCount++
		user.TotalSpent += a.FinalPrice
		user.LastVisit = &now

		crossed = s.rules.MilestonesCrossed(before, user.VisitsCount)
		for _, m := range crossed {
			grant := &models.Discount{
				UserID:    user.ID,
				Type:      models.DiscountMilestone,
				Percent:   m.Percent,
				Milestone: m.Visits,
			}
			if err := tx.CreateDiscount(ctx, grant); err != nil {
				return fmt.Errorf("grant milestone discount: %w", err)
			}
			if m.Percent > user.DiscountPercent {
				user.DiscountPercent = m.Percent
			}
		}
		if err := tx.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("save client: %w", err)
		}

		a.User = user
		appointment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Appointment approved",
		zap.String("appointment_id", id.String()),
		zap.Int64("admin_id", adminID),
		zap.Int("visits", appointment.User.VisitsCount),
	)

	to := Recipient{TelegramID: appointment.User.TelegramID, Phone: appointment.User.Phone}
	Notify(ctx, s.log, s.dispatcher, Notification{Kind: KindText, To: to, Text: AppointmentConfirmedText(appointment), AppointmentID: id})
	for _, m := range crossed {
		Notify(ctx, s.log, s.dispatcher, Notification{Kind: KindText, To: to, Text: MilestoneText(m.Visits, m.Percent)})
	}
	return appointment, nil
}

// Reject cancels a pending appointment on behalf of an administrator.
func (s *AppointmentService) Reject(ctx context.Context, adminID int64, id uuid.UUID, comment string) (*models.Appointment, error) {
	if !s.admins.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}

	a, err := s.transition(ctx, id, []string{models.StatusPending}, func(a *models.Appointment, now time.Time) {
		a.Status = models.StatusCancelled
		a.CancelledAt = &now
		a.AdminComment = comment
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Appointment rejected", zap.String("appointment_id", id.String()), zap.Int64("admin_id", adminID))
	if a.User != nil {
		Notify(ctx, s.log, s.dispatcher, Notification{
			Kind:          KindText,
			To:            Recipient{TelegramID: a.User.TelegramID, Phone: a.User.Phone},
			Text:          AppointmentRejectedText(a),
			AppointmentID: id,
		})
	}
	return a, nil
}

func (s *AppointmentService) Complete(ctx context.Context, adminID int64, id uuid.UUID) (*models.Appointment, error) {
	if !s.admins.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}
	return s.transition(ctx, id, []string{models.StatusConfirmed}, func(a *models.Appointment, now time.Time) {
		a.Status = models.StatusCompleted
		a.CompletedAt = &now
	})
}

func (s *AppointmentService) MarkNoShow(ctx context.Context, adminID int64, id uuid.UUID) (*models.Appointment, error) {
	if !s.admins.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}
	return s.transition(ctx, id, []string{models.StatusConfirmed}, func(a *models.Appointment, _ time.Time) {
		a.Status = models.StatusNoShow
	})
}

// CancelByUser lets a client cancel their own pending or confirmed appointment.
func (s *AppointmentService) CancelByUser(ctx context.Context, telegramID int64, id uuid.UUID) (*models.Appointment, error) {
	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.User == nil || a.User.TelegramID != telegramID {
		return nil, ErrNotFound
	}

	a, err = s.transition(ctx, id, []string{models.StatusPending, models.StatusConfirmed}, func(a *models.Appointment, now time.Time) {
		a.Status = models.StatusCancelled
		a.CancelledAt = &now
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Appointment cancelled by client", zap.String("appointment_id", id.String()))
	text := AppointmentCancelledAdminText(a.User, a)
	for _, adminID := range s.admins.IDs {
		Notify(ctx, s.log, s.dispatcher, Notification{Kind: KindText, To: Recipient{TelegramID: adminID}, Text: text, AppointmentID: id})
	}
	return a, nil
}

func (s *AppointmentService) transition(ctx context.Context, id uuid.UUID, from []string, apply func(*models.Appointment, time.Time)) (*models.Appointment, error) {
	var result *models.Appointment
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		a, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		allowed := false
		for _, status := range from {
			if a.Status == status {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrInvalidTransition
		}
		apply(a, s.now())
		if err := tx.SaveAppointment(ctx, a); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		result = a
		return nil
	})
	return result, err
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	return s.store.GetAppointment(ctx, id)
}

func (s *AppointmentService) Pending(ctx context.Context) ([]models.Appointment, error) {
	return s.store.ListAppointmentsByStatus(ctx, models.StatusPending)
}

func (s *AppointmentService) ByStatus(ctx context.Context, status string) ([]models.Appointment, error) {
	return s.store.ListAppointmentsByStatus(ctx, status)
}

func (s *AppointmentService) Recent(ctx context.Context, limit int) ([]models.Appointment, error) {
	return s.store.ListRecentAppointments(ctx, limit)
}

func (s *AppointmentService) ForUser(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error) {
	return s.store.ListUserAppointments(ctx, userID)
}
