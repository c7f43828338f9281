package services

import (
	"context"
	"fmt"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderService plans appointment reminders and delivers them once they fall due.
type ReminderService struct {
	store      store.Store
	dispatcher Dispatcher
	cfg        config.ReminderConfig
	sessions   *SessionStore
	sweepEvery time.Duration
	loc        *time.Location
	now        func() time.Time
	log        *zap.Logger
}

func NewReminderService(
	st store.Store,
	dispatcher Dispatcher,
	cfg *config.Config,
	sessions *SessionStore,
	log *zap.Logger,
) *ReminderService {
	loc := cfg.App.Location
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{
		store:      st,
		dispatcher: dispatcher,
		cfg:        cfg.Reminders,
		sessions:   sessions,
		sweepEvery: cfg.Sessions.SweepInterval,
		loc:        loc,
		now:        time.Now,
		log:        log.With(zap.String("service", "reminders")),
	}
}

// Plan builds the reminders for an appointment without storing them. Offsets already
// in the past are left out.
func (s *ReminderService) Plan(appointment *models.Appointment) ([]models.Reminder, error) {
	startsAt, err := appointment.StartsAt(s.loc)
	if err != nil {
		return nil, fmt.Errorf("appointment time %q: %w", appointment.Time, err)
	}

	type offset struct {
		kind   string
		before time.Duration
		on     bool
	}
	offsets := []offset{
		{models.Reminder24hBefore, 24 * time.Hour, s.cfg.Before24h},
		{models.Reminder3hBefore, 3 * time.Hour, s.cfg.Before3h},
	}

	now := s.now()
	var reminders []models.Reminder
	for _, o := range offsets {
		if !o.on {
			continue
		}
		at := startsAt.Add(-o.before)
		if !at.After(now) {
			continue
		}
		reminders = append(reminders, models.Reminder{
			UserID:        appointment.UserID,
			AppointmentID: appointment.ID,
			Kind:          o.kind,
			ScheduledFor:  at,
		})
	}
	return reminders, nil
}

// Schedule plans and stores the reminders of a new appointment using st, which may be
// a transaction.
func (s *ReminderService) Schedule(ctx context.Context, st store.Store, appointment *models.Appointment) ([]models.Reminder, error) {
	reminders, err := s.Plan(appointment)
	if err != nil {
		return nil, err
	}
	if err := st.CreateReminders(ctx, reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// Poll delivers every due reminder that has not been stamped yet. Each reminder is
// stamped after a single attempt whatever the outcome.
func (s *ReminderService) Poll(ctx context.Context) (int, error) {
	due, err := s.store.DueReminders(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("load due reminders: %w", err)
	}

	sent := 0
	for i := range due {
		r := &due[i]
		if s.deliver(ctx, r) {
			sent++
		}
		if err := s.store.SaveReminder(ctx, r); err != nil {
			s.log.Error("Failed to stamp reminder",
				zap.String("reminder_id", r.ID.String()),
				zap.Error(err),
			)
		}
	}
	if len(due) > 0 {
		s.log.Info("Reminder poll completed", zap.Int("due", len(due)), zap.Int("sent", sent))
	}
	return sent, nil
}

func (s *ReminderService) deliver(ctx context.Context, r *models.Reminder) bool {
	now := s.now()
	r.SentAt = &now

	if r.Appointment == nil || r.Appointment.Status != models.StatusConfirmed || r.User == nil {
		r.Status = models.ReminderSkipped
		return false
	}

	receipt, err := Notify(ctx, s.log, s.dispatcher, Notification{
		Kind:          KindReminder,
		To:            Recipient{TelegramID: r.User.TelegramID, Phone: r.User.Phone},
		Text:          ReminderText(r.Kind, r.Appointment),
		AppointmentID: r.AppointmentID,
	})
	if err != nil {
		r.Status = models.ReminderFailed
		r.ErrorMessage = err.Error()
		return false
	}
	r.Status = models.ReminderSent
	r.Channel = receipt.Channel
	return true
}

// Upcoming lists reminders still waiting to be sent.
func (s *ReminderService) Upcoming(ctx context.Context, limit int) ([]models.Reminder, error) {
	return s.store.UpcomingReminders(ctx, s.now(), limit)
}

// StartScheduler registers the reminder poll and the session sweep and starts the cron.
// The caller stops the returned cron on shutdown.
func (s *ReminderService) StartScheduler(ctx context.Context) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.loc))

	if _, err := c.AddFunc(every(s.cfg.PollInterval), func() {
		if _, err := s.Poll(ctx); err != nil {
			s.log.Error("Reminder poll failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule reminder poll: %w", err)
	}

	if s.sessions != nil && s.sweepEvery > 0 {
		if _, err := c.AddFunc(every(s.sweepEvery), func() {
			if n := s.sessions.Sweep(); n > 0 {
				s.log.Debug("Expired conversations dropped", zap.Int("count", n))
			}
		}); err != nil {
			return nil, fmt.Errorf("schedule session sweep: %w", err)
		}
	}

	c.Start()
	s.log.Info("Reminder scheduler started", zap.Duration("poll_interval", s.cfg.PollInterval))
	return c, nil
}

func every(d time.Duration) string {
	return "@every " + d.String()
}
