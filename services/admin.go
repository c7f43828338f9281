package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/store"

	"go.uber.org/zap"
)

// MinQuestionLength is the shortest free text forwarded to administrators as a question.
const MinQuestionLength = 10

const topListSize = 5

type AdminService struct {
	store      store.Store
	sessions   *SessionStore
	dispatcher Dispatcher
	admins     config.AdminConfig
	now        func() time.Time
	log        *zap.Logger
}

func NewAdminService(st store.Store, sessions *SessionStore, dispatcher Dispatcher, cfg *config.Config, log *zap.Logger) *AdminService {
	return &AdminService{
		store:      st,
		sessions:   sessions,
		dispatcher: dispatcher,
		admins:     cfg.Admin,
		now:        time.Now,
		log:        log.With(zap.String("service", "admin")),
	}
}

func (s *AdminService) IsAdmin(telegramID int64) bool {
	return s.admins.IsAdmin(telegramID)
}

type Stats struct {
	store.AppointmentStats
	AverageCheck int64
	TopServices  []store.ServiceSummary
	TopClients   []store.ClientSummary
}

// Stats aggregates the salon's numbers. Income counts confirmed and completed visits.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	base, err := s.store.AppointmentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointment stats: %w", err)
	}
	stats := &Stats{AppointmentStats: base}
	if base.Billable > 0 {
		stats.AverageCheck = base.Income / base.Billable
	}
	if stats.TopServices, err = s.store.TopServices(ctx, topListSize); err != nil {
		return nil, fmt.Errorf("top services: %w", err)
	}
	if stats.TopClients, err = s.store.TopClients(ctx, topListSize); err != nil {
		return nil, fmt.Errorf("top clients: %w", err)
	}
	return stats, nil
}

// BeginFlow puts an administrator into a multi-step admin dialog.
func (s *AdminService) BeginFlow(adminID int64, flow Flow) error {
	if !s.IsAdmin(adminID) {
		return ErrUnauthorized
	}
	conv := s.sessions.Open(adminID)
	conv.Reset()
	conv.Flow = flow
	return nil
}

func (s *AdminService) InFlow(adminID int64, flow Flow) bool {
	conv, ok := s.sessions.Get(adminID)
	return ok && conv.Flow == flow
}

func (s *AdminService) EndFlow(adminID int64) {
	s.sessions.Delete(adminID)
}

// Broadcast sends text, and optionally a photo, to every registered client and
// records the outcome.
func (s *AdminService) Broadcast(ctx context.Context, adminID int64, text, photoRef string) (*models.BroadcastMessage, error) {
	if !s.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}
	text = strings.TrimSpace(text)
	if text == "" && photoRef == "" {
		return nil, ErrEmptyMessage
	}
	s.EndFlow(adminID)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	message := &models.BroadcastMessage{AdminID: adminID, Text: text, PhotoRef: photoRef}
	for _, u := range users {
		_, err := Notify(ctx, s.log, s.dispatcher, Notification{
			Kind:     KindBroadcast,
			To:       Recipient{TelegramID: u.TelegramID},
			Text:     text,
			PhotoRef: photoRef,
		})
		if err != nil {
			message.FailedCount++
			continue
		}
		message.SentCount++
	}
	now := s.now()
	message.SentAt = &now

	if err := s.store.CreateBroadcast(ctx, message); err != nil {
		return message, fmt.Errorf("record broadcast: %w", err)
	}
	s.log.Info("Broadcast sent",
		zap.Int64("admin_id", adminID),
		zap.Int("sent", message.SentCount),
		zap.Int("failed", message.FailedCount),
	)
	return message, nil
}

// ForwardQuestion relays a client's free-text question to every administrator and
// returns how many received it.
func (s *AdminService) ForwardQuestion(ctx context.Context, user *models.User, question string) (int, error) {
	question = strings.TrimSpace(question)
	if utf8.RuneCountInString(question) <= MinQuestionLength {
		return 0, ErrEmptyMessage
	}
	text := QuestionForwardText(user, question)
	delivered := 0
	for _, adminID := range s.admins.IDs {
		if _, err := Notify(ctx, s.log, s.dispatcher, Notification{Kind: KindText, To: Recipient{TelegramID: adminID}, Text: text}); err == nil {
			delivered++
		}
	}
	return delivered, nil
}
