package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/store"
	"nailstudio-bot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReferralPrefix marks a start payload that carries a referral code.
const ReferralPrefix = "ref_"

const referralCodeAttempts = 5

type UserService struct {
	store      store.Store
	dispatcher Dispatcher
	loyalty    config.LoyaltyConfig
	loc        *time.Location
	now        func() time.Time
	log        *zap.Logger
}

func NewUserService(st store.Store, dispatcher Dispatcher, cfg *config.Config, log *zap.Logger) *UserService {
	loc := cfg.App.Location
	if loc == nil {
		loc = time.Local
	}
	return &UserService{
		store:      st,
		dispatcher: dispatcher,
		loyalty:    cfg.Loyalty,
		loc:        loc,
		now:        time.Now,
		log:        log.With(zap.String("service", "users")),
	}
}

// NewReferralCode derives a short shareable code from a random uuid.
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Register returns the user behind profile, creating it on first contact. A first
// contact with a "ref_<code>" payload links the newcomer to the inviter and grants
// both of them the referral discount.
func (s *UserService) Register(ctx context.Context, profile store.UserProfile, payload string) (*models.User, bool, error) {
	var (
		user    *models.User
		created bool
		err     error
	)
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		user, created, err = s.store.GetOrCreateUser(ctx, profile, NewReferralCode())
		if !errors.Is(err, store.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("register user %d: %w", profile.TelegramID, err)
	}
	if !created {
		return user, false, nil
	}

	s.log.Info("New client registered", zap.Int64("telegram_id", user.TelegramID))

	payload = strings.TrimSpace(payload)
	code := strings.TrimPrefix(payload, ReferralPrefix)
	if !strings.HasPrefix(payload, ReferralPrefix) || code == "" {
		return user, true, nil
	}
	if err := s.applyReferral(ctx, user, code); err != nil {
		// the account exists either way; a bad invite only costs the bonus
		s.log.Warn("Referral not applied", zap.String("code", code), zap.Error(err))
	}
	return user, true, nil
}

func (s *UserService) applyReferral(ctx context.Context, user *models.User, code string) error {
	referrer, err := s.store.GetUserByReferralCode(ctx, code)
	if err != nil {
		return err
	}
	if referrer.ID == user.ID {
		return ErrInvalidOption
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		user.ReferredByID = &referrer.ID
		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}
		for _, id := range []uuid.UUID{user.ID, referrer.ID} {
			grant := &models.Discount{UserID: id, Type: models.DiscountReferral, Percent: s.loyalty.ReferralPercent}
			if err := tx.CreateDiscount(ctx, grant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		user.ReferredByID = nil
		return err
	}

	Notify(ctx, s.log, s.dispatcher, Notification{
		Kind: KindText,
		To:   Recipient{TelegramID: referrer.TelegramID, Phone: referrer.Phone},
		Text: ReferralGrantedText(s.loyalty.ReferralPercent),
	})
	return nil
}

func (s *UserService) Get(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.store.GetUserByTelegramID(ctx, telegramID)
}

// SetBirthday stores a DD.MM.YYYY birthday.
func (s *UserService) SetBirthday(ctx context.Context, user *models.User, raw string) error {
	birthday, err := utils.ParseDate(raw, s.loc)
	if err != nil || birthday.Year() < 1900 || birthday.After(s.now()) {
		return ErrInvalidBirthday
	}
	user.Birthday = &birthday
	return s.store.SaveUser(ctx, user)
}

func (s *UserService) SavePhone(ctx context.Context, user *models.User, phone string) error {
	phone = utils.NormalizePhone(phone)
	if !utils.ValidatePhone(phone) {
		return ErrInvalidPhone
	}
	user.Phone = phone
	return s.store.SaveUser(ctx, user)
}

// Profile is what a client sees about themselves.
type Profile struct {
	User         *models.User
	Appointments []models.Appointment
	Discounts    []models.Discount
}

func (s *UserService) Profile(ctx context.Context, user *models.User) (*Profile, error) {
	appointments, err := s.store.ListUserAppointments(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	discounts, err := s.store.ListUserDiscounts(ctx, user.ID, true)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	return &Profile{User: user, Appointments: appointments, Discounts: discounts}, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// ReferralLink is the deep link a client shares to invite friends.
func ReferralLink(botUsername string, user *models.User) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%s", botUsername, ReferralPrefix, user.ReferralCode)
}
