// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"nailstudio-bot/models"
	"nailstudio-bot/store"

	"github.com/google/uuid"
)

var _ store.Store = (*Memory)(nil)

// Memory is an in-memory store.Store for tests. It keeps records in maps and
// hands out copies, so a change only lands once the matching Save method is called.
type Memory struct {
	mu           sync.Mutex
	users        map[uuid.UUID]models.User
	appointments map[uuid.UUID]models.Appointment
	discounts    map[uuid.UUID]models.Discount
	reminders    map[uuid.UUID]models.Reminder
	reviews      map[uuid.UUID]models.Review
	gallery      []models.GalleryImage
	broadcasts   []models.BroadcastMessage

	// FailCreateAppointment, when set, is returned by every CreateAppointment call.
	FailCreateAppointment error
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[uuid.UUID]models.User),
		appointments: make(map[uuid.UUID]models.Appointment),
		discounts:    make(map[uuid.UUID]models.Discount),
		reminders:    make(map[uuid.UUID]models.Reminder),
		reviews:      make(map[uuid.UUID]models.Review),
	}
}

func (f *Memory) AddUser(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ReferralCode == "" {
		u.ReferralCode = strings.ToUpper(uuid.NewString()[:8])
	}
	f.users[u.ID] = u
	return &u
}

func (f *Memory) AddAppointment(a models.Appointment) *models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.User = nil
	f.appointments[a.ID] = a
	return &a
}

func (f *Memory) User(id uuid.UUID) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *Memory) Appointment(id uuid.UUID) models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appointments[id]
}

func (f *Memory) UserDiscounts(userID uuid.UUID) []models.Discount {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Discount
	for _, d := range f.discounts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Milestone < out[j].Milestone })
	return out
}

func (f *Memory) Reminders() []models.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Reminder, 0, len(f.reminders))
	for _, r := range f.reminders {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(out[j].ScheduledFor) })
	return out
}

// Broadcasts returns the recorded broadcast messages in insertion order.
func (f *Memory) Broadcasts() []models.BroadcastMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.BroadcastMessage(nil), f.broadcasts...)
}

// GalleryImages returns every stored gallery image.
func (f *Memory) GalleryImages() []models.GalleryImage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.GalleryImage(nil), f.gallery...)
}

func (f *Memory) GetOrCreateUser(ctx context.Context, profile store.UserProfile, referralCode string) (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.TelegramID == profile.TelegramID {
			return &u, false, nil
		}
	}
	for _, u := range f.users {
		if u.ReferralCode == referralCode {
			return nil, false, store.ErrDuplicate
		}
	}
	u := models.User{
		ID:           uuid.New(),
		TelegramID:   profile.TelegramID,
		Username:     profile.Username,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		ReferralCode: referralCode,
	}
	f.users[u.ID] = u
	return &u, true, nil
}

func (f *Memory) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Memory) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (f *Memory) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ReferralCode == code {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Memory) SaveUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = *user
	return nil
}

func (f *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

func (f *Memory) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	if f.FailCreateAppointment != nil {
		return f.FailCreateAppointment
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	a := *appointment
	a.User = nil
	f.appointments[a.ID] = a
	return nil
}

func (f *Memory) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if u, ok := f.users[a.UserID]; ok {
		a.User = &u
	}
	return &a, nil
}

func (f *Memory) SaveAppointment(ctx context.Context, appointment *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := *appointment
	a.User = nil
	f.appointments[a.ID] = a
	return nil
}

func (f *Memory) ListAppointmentsByStatus(ctx context.Context, status string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *Memory) ListRecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appointments {
		out = append(out, a)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Memory) ListUserAppointments(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *Memory) AppointmentStats(ctx context.Context) (store.AppointmentStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := store.AppointmentStats{
		TotalUsers:        int64(len(f.users)),
		TotalAppointments: int64(len(f.appointments)),
	}
	for _, a := range f.appointments {
		switch a.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusConfirmed:
			stats.Confirmed++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusCancelled:
			stats.Cancelled++
		}
		if a.Status == models.StatusConfirmed || a.Status == models.StatusCompleted {
			stats.Income += a.FinalPrice
			stats.Billable++
		}
	}
	return stats, nil
}

func (f *Memory) TopServices(ctx context.Context, limit int) ([]store.ServiceSummary, error) {
	return nil, nil
}

func (f *Memory) TopClients(ctx context.Context, limit int) ([]store.ClientSummary, error) {
	return nil, nil
}

func (f *Memory) CreateDiscount(ctx context.Context, discount *models.Discount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	f.discounts[discount.ID] = *discount
	return nil
}

func (f *Memory) ListUserDiscounts(ctx context.Context, userID uuid.UUID, unusedOnly bool) ([]models.Discount, error) {
	var out []models.Discount
	for _, d := range f.UserDiscounts(userID) {
		if unusedOnly && d.IsUsed {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *Memory) SaveDiscount(ctx context.Context, discount *models.Discount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discounts[discount.ID] = *discount
	return nil
}

func (f *Memory) CreateReminders(ctx context.Context, reminders []models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range reminders {
		if reminders[i].ID == uuid.Nil {
			reminders[i].ID = uuid.New()
		}
		f.reminders[reminders[i].ID] = reminders[i]
	}
	return nil
}

func (f *Memory) DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reminder
	for _, r := range f.reminders {
		if r.SentAt != nil || r.ScheduledFor.After(now) {
			continue
		}
		if u, ok := f.users[r.UserID]; ok {
			r.User = &u
		}
		if a, ok := f.appointments[r.AppointmentID]; ok {
			r.Appointment = &a
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(out[j].ScheduledFor) })
	return out, nil
}

func (f *Memory) UpcomingReminders(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	var out []models.Reminder
	for _, r := range f.Reminders() {
		if r.SentAt == nil && r.ScheduledFor.After(now) && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Memory) SaveReminder(ctx context.Context, reminder *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := *reminder
	r.User, r.Appointment = nil, nil
	f.reminders[r.ID] = r
	return nil
}

func (f *Memory) CreateReview(ctx context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	f.reviews[review.ID] = *review
	return nil
}

func (f *Memory) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (f *Memory) ListReviews(ctx context.Context, approvedOnly bool, limit int) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if approvedOnly && !r.IsApproved {
			continue
		}
		out = append(out, r)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Memory) SaveReview(ctx context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[review.ID] = *review
	return nil
}

func (f *Memory) CreateGalleryImage(ctx context.Context, image *models.GalleryImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	f.gallery = append(f.gallery, *image)
	return nil
}

func (f *Memory) ListGalleryImages(ctx context.Context, category string, limit int) ([]models.GalleryImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.GalleryImage
	for _, img := range f.gallery {
		if category == "" || img.Category == category {
			out = append(out, img)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Memory) CreateBroadcast(ctx context.Context, message *models.BroadcastMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, *message)
	return nil
}

func (f *Memory) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(f)
}
