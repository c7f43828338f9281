package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nailstudio-bot/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates every table the bot uses.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.Review{},
		&models.GalleryImage{},
		&models.Discount{},
		&models.Reminder{},
		&models.BroadcastMessage{},
	)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func (s *GormStore) GetOrCreateUser(ctx context.Context, profile UserProfile, referralCode string) (*models.User, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", profile.TelegramID).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, translate(err)
	}

	user = models.User{
		TelegramID:   profile.TelegramID,
		Username:     profile.Username,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		ReferralCode: referralCode,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, false, translate(err)
	}
	return &user, true, nil
}

func (s *GormStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Omit("Appointments", "Reviews", "Discounts", "Reminders").Save(user).Error)
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error
	return users, translate(err)
}

func (s *GormStore) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	return translate(s.db.WithContext(ctx).Omit("User").Create(appointment).Error)
}

func (s *GormStore) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.WithContext(ctx).Preload("User").First(&appointment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

func (s *GormStore) SaveAppointment(ctx context.Context, appointment *models.Appointment) error {
	return translate(s.db.WithContext(ctx).Omit("User").Save(appointment).Error)
}

func (s *GormStore) ListAppointmentsByStatus(ctx context.Context, status string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).Preload("User").
		Where("status = ?", status).
		Order("date, time").
		Find(&appointments).Error
	return appointments, translate(err)
}

func (s *GormStore) ListRecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).Preload("User").
		Order("date DESC, time DESC").
		Limit(limit).
		Find(&appointments).Error
	return appointments, translate(err)
}

func (s *GormStore) ListUserAppointments(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, time DESC").
		Find(&appointments).Error
	return appointments, translate(err)
}

func (s *GormStore) AppointmentStats(ctx context.Context) (AppointmentStats, error) {
	var stats AppointmentStats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return stats, translate(err)
	}
	if err := db.Model(&models.Appointment{}).Count(&stats.TotalAppointments).Error; err != nil {
		return stats, translate(err)
	}

	type statusRow struct {
		Status string
		Count  int64
		Income int64
	}
	var rows []statusRow
	err := db.Model(&models.Appointment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(final_price), 0) AS income").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return stats, translate(err)
	}

	for _, row := range rows {
		switch row.Status {
		case models.StatusPending:
			stats.Pending = row.Count
		case models.StatusConfirmed:
			stats.Confirmed = row.Count
			stats.Income += row.Income
			stats.Billable += row.Count
		case models.StatusCompleted:
			stats.Completed = row.Count
			stats.Income += row.Income
			stats.Billable += row.Count
		case models.StatusCancelled:
			stats.Cancelled = row.Count
		}
	}
	return stats, nil
}

func (s *GormStore) TopServices(ctx context.Context, limit int) ([]ServiceSummary, error) {
	var summaries []ServiceSummary
	err := s.db.WithContext(ctx).Raw(`
		SELECT service_id, MAX(service_name) AS name, COUNT(*) AS count, COALESCE(SUM(final_price), 0) AS revenue
		FROM appointments
		WHERE status IN (?, ?)
		GROUP BY service_id
		ORDER BY revenue DESC
		LIMIT ?
	`, models.StatusConfirmed, models.StatusCompleted, limit).Scan(&summaries).Error
	return summaries, translate(err)
}

func (s *GormStore) TopClients(ctx context.Context, limit int) ([]ClientSummary, error) {
	var summaries []ClientSummary
	err := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(NULLIF(first_name, ''), username) AS name, phone, visits_count AS visits, total_spent AS spent
		FROM users
		WHERE visits_count > 0
		ORDER BY total_spent DESC
		LIMIT ?
	`, limit).Scan(&summaries).Error
	return summaries, translate(err)
}

func (s *GormStore) CreateDiscount(ctx context.Context, discount *models.Discount) error {
	return translate(s.db.WithContext(ctx).Create(discount).Error)
}

func (s *GormStore) ListUserDiscounts(ctx context.Context, userID uuid.UUID, unusedOnly bool) ([]models.Discount, error) {
	var discounts []models.Discount
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unusedOnly {
		query = query.Where("is_used = ?", false)
	}
	err := query.Order("created_at").Find(&discounts).Error
	return discounts, translate(err)
}

func (s *GormStore) SaveDiscount(ctx context.Context, discount *models.Discount) error {
	return translate(s.db.WithContext(ctx).Save(discount).Error)
}

func (s *GormStore) CreateReminders(ctx context.Context, reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Omit("User").Create(&reminders).Error)
}

func (s *GormStore) DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.db.WithContext(ctx).Preload("User").
		Where("sent_at IS NULL AND scheduled_for <= ?", now).
		Order("scheduled_for").
		Find(&reminders).Error
	if err != nil {
		return nil, translate(err)
	}
	return reminders, s.attachAppointments(ctx, reminders)
}

func (s *GormStore) UpcomingReminders(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.db.WithContext(ctx).Preload("User").
		Where("sent_at IS NULL AND scheduled_for > ?", now).
		Order("scheduled_for").
		Limit(limit).
		Find(&reminders).Error
	if err != nil {
		return nil, translate(err)
	}
	return reminders, s.attachAppointments(ctx, reminders)
}

// attachAppointments fills Reminder.Appointment; reminders whose appointment
// was deleted keep a nil pointer.
func (s *GormStore) attachAppointments(ctx context.Context, reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(reminders))
	for _, r := range reminders {
		ids = append(ids, r.AppointmentID)
	}

	var appointments []models.Appointment
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&appointments).Error; err != nil {
		return translate(err)
	}
	byID := make(map[uuid.UUID]*models.Appointment, len(appointments))
	for i := range appointments {
		byID[appointments[i].ID] = &appointments[i]
	}
	for i := range reminders {
		reminders[i].Appointment = byID[reminders[i].AppointmentID]
	}
	return nil
}

func (s *GormStore) SaveReminder(ctx context.Context, reminder *models.Reminder) error {
	return translate(s.db.WithContext(ctx).Omit("User").Save(reminder).Error)
}

func (s *GormStore) CreateReview(ctx context.Context, review *models.Review) error {
	return translate(s.db.WithContext(ctx).Omit("User").Create(review).Error)
}

func (s *GormStore) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).Preload("User").First(&review, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (s *GormStore) ListReviews(ctx context.Context, approvedOnly bool, limit int) ([]models.Review, error) {
	var reviews []models.Review
	query := s.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&reviews).Error
	return reviews, translate(err)
}

func (s *GormStore) SaveReview(ctx context.Context, review *models.Review) error {
	return translate(s.db.WithContext(ctx).Omit("User").Save(review).Error)
}

func (s *GormStore) CreateGalleryImage(ctx context.Context, image *models.GalleryImage) error {
	return translate(s.db.WithContext(ctx).Create(image).Error)
}

func (s *GormStore) ListGalleryImages(ctx context.Context, category string, limit int) ([]models.GalleryImage, error) {
	var images []models.GalleryImage
	query := s.db.WithContext(ctx).Order("uploaded_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&images).Error
	return images, translate(err)
}

func (s *GormStore) CreateBroadcast(ctx context.Context, message *models.BroadcastMessage) error {
	return translate(s.db.WithContext(ctx).Create(message).Error)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
