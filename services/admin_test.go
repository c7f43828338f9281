package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nailstudio-bot/models"
)

func newTestAdminService(st *fakeStore, d Dispatcher) *AdminService {
	sessions := NewSessionStore(time.Hour)
	s := NewAdminService(st, sessions, d, testConfig(), testLogger)
	s.now = fixedClock(time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC))
	return s
}

func TestBroadcast(t *testing.T) {
	st := newFakeStore()
	d := &fakeDispatcher{failFor: map[int64]error{3: errors.New("blocked")}}
	s := newTestAdminService(st, d)
	for _, id := range []int64{1, 2, 3} {
		st.AddUser(models.User{TelegramID: id})
	}

	if err := s.BeginFlow(testAdminID, FlowBroadcast); err != nil {
		t.Fatalf("BeginFlow() error = %v", err)
	}
	msg, err := s.Broadcast(context.Background(), testAdminID, "  Скидки всю неделю!  ", "")
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if msg.SentCount != 2 || msg.FailedCount != 1 || msg.SentAt == nil {
		t.Errorf("broadcast = sent %d failed %d, want 2 and 1", msg.SentCount, msg.FailedCount)
	}
	if len(st.Broadcasts()) != 1 || st.Broadcasts()[0].Text != "Скидки всю неделю!" {
		t.Errorf("recorded broadcasts = %+v", st.Broadcasts())
	}
	if s.InFlow(testAdminID, FlowBroadcast) {
		t.Error("admin still in the broadcast flow")
	}
	for _, n := range d.sent {
		if n.Kind != KindBroadcast {
			t.Errorf("notification kind = %v, want broadcast", n.Kind)
		}
	}
}

func TestBroadcastRules(t *testing.T) {
	s := newTestAdminService(newFakeStore(), &fakeDispatcher{})

	if _, err := s.Broadcast(context.Background(), 42, "hi", ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-admin Broadcast() error = %v, want ErrUnauthorized", err)
	}
	if _, err := s.Broadcast(context.Background(), testAdminID, "   ", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty Broadcast() error = %v, want ErrEmptyMessage", err)
	}
	if err := s.BeginFlow(42, FlowBroadcast); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-admin BeginFlow() error = %v, want ErrUnauthorized", err)
	}
}

func TestForwardQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     int
		wantErr  error
	}{
		{"long enough", "Можно ли прийти с ребёнком?", 1, nil},
		{"exactly the minimum", strings.Repeat("я", MinQuestionLength), 0, ErrEmptyMessage},
		{"only spaces", "               ", 0, ErrEmptyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{}
			s := newTestAdminService(newFakeStore(), d)
			user := &models.User{TelegramID: 42, FirstName: "Анна", Username: "anna"}

			got, err := s.ForwardQuestion(context.Background(), user, tt.question)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ForwardQuestion() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want || len(d.to(testAdminID)) != tt.want {
				t.Errorf("ForwardQuestion() delivered %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	st := newFakeStore()
	s := newTestAdminService(st, &fakeDispatcher{})
	user := st.AddUser(models.User{TelegramID: 42})
	for _, a := range []models.Appointment{
		{UserID: user.ID, FinalPrice: 1500, Status: models.StatusConfirmed},
		{UserID: user.ID, FinalPrice: 2500, Status: models.StatusCompleted},
		{UserID: user.ID, FinalPrice: 9000, Status: models.StatusPending},
	} {
		st.AddAppointment(a)
	}

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Income != 4000 || stats.AverageCheck != 2000 || stats.Pending != 1 {
		t.Errorf("stats = %+v, want income 4000, average 2000, one pending", stats)
	}
}

func TestGalleryAddImage(t *testing.T) {
	tests := []struct {
		name    string
		adminID int64
		caption string
		want    string
		wantErr error
	}{
		{"category from caption", testAdminID, "Pedicure летний дизайн", "pedicure", nil},
		{"unknown category", testAdminID, "стрижка", "", ErrInvalidCategory},
		{"empty caption", testAdminID, "", "", ErrInvalidCategory},
		{"not an admin", 42, "manicure", "", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newFakeStore()
			s := NewGalleryService(st, testConfig(), testLogger)

			img, err := s.AddImage(context.Background(), tt.adminID, "file-1", tt.caption)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddImage() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(st.GalleryImages()) != 0 {
					t.Error("image stored despite the error")
				}
				return
			}
			if img.Category != tt.want || img.FileRef != "file-1" {
				t.Errorf("image = %+v, want category %s", img, tt.want)
			}
		})
	}
}

func TestGalleryImages(t *testing.T) {
	st := newFakeStore()
	s := NewGalleryService(st, testConfig(), testLogger)
	for i, c := range []string{"manicure", "manicure", "pedicure", "manicure", "manicure"} {
		st.CreateGalleryImage(context.Background(), &models.GalleryImage{Category: c, FileRef: string(rune('a' + i))})
	}

	manicure, err := s.Images(context.Background(), "manicure")
	if err != nil {
		t.Fatalf("Images() error = %v", err)
	}
	if len(manicure) != GalleryPageSize {
		t.Errorf("Images(manicure) = %d, want %d", len(manicure), GalleryPageSize)
	}
	all, _ := s.Images(context.Background(), "all")
	if len(all) != GalleryPageSize {
		t.Errorf("Images(all) = %d, want %d", len(all), GalleryPageSize)
	}

	if _, err := s.Random(context.Background()); err != nil {
		t.Errorf("Random() error = %v", err)
	}
	empty := NewGalleryService(newFakeStore(), testConfig(), testLogger)
	if _, err := empty.Random(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Random() on an empty gallery error = %v, want ErrNotFound", err)
	}
}

func TestReviewFlow(t *testing.T) {
	st := newFakeStore()
	sessions := NewSessionStore(time.Hour)
	s := NewReviewService(st, sessions, testConfig(), testLogger)
	user := st.AddUser(models.User{TelegramID: 42})

	if err := s.Rate(42, 5); !errors.Is(err, ErrDraftMissing) {
		t.Fatalf("Rate() without a review error = %v, want ErrDraftMissing", err)
	}

	s.Start(42)
	if err := s.Rate(42, 6); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("Rate(6) error = %v, want ErrInvalidRating", err)
	}
	if err := s.SetText(42, "Отлично"); !errors.Is(err, ErrStepOutOfOrder) {
		t.Errorf("SetText() before rating error = %v, want ErrStepOutOfOrder", err)
	}
	if err := s.Rate(42, 5); err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if err := s.SetText(42, "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("SetText(blank) error = %v, want ErrEmptyMessage", err)
	}
	if err := s.SetText(42, "Очень аккуратно, спасибо!"); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}
	if stage, _ := s.Stage(42); stage != ReviewPhoto {
		t.Errorf("stage = %v, want photo", stage)
	}

	review, err := s.Submit(context.Background(), user, "")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if review.Rating != 5 || !review.IsApproved {
		t.Errorf("review = %+v, want an approved 5", review)
	}
	if _, ok := s.Stage(42); ok {
		t.Error("review flow still open after submit")
	}

	if _, err := s.SetApproval(context.Background(), 42, review.ID, false); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-admin SetApproval() error = %v, want ErrUnauthorized", err)
	}
	if _, err := s.SetApproval(context.Background(), testAdminID, review.ID, false); err != nil {
		t.Fatalf("SetApproval() error = %v", err)
	}
	if latest, _ := s.Latest(context.Background(), 10); len(latest) != 0 {
		t.Errorf("Latest() = %d reviews, want the hidden one left out", len(latest))
	}
}

func TestAverageRating(t *testing.T) {
	if got := AverageRating(nil); got != 0 {
		t.Errorf("AverageRating(nil) = %v", got)
	}
	if got := AverageRating([]models.Review{{Rating: 5}, {Rating: 4}}); got != 4.5 {
		t.Errorf("AverageRating() = %v, want 4.5", got)
	}
}
