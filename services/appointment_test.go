package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"nailstudio-bot/models"

	"github.com/google/uuid"
)

type appointmentFixture struct {
	store      *fakeStore
	dispatcher *fakeDispatcher
	service    *AppointmentService
	user       *models.User
}

func newAppointmentFixture(visits int) *appointmentFixture {
	st := newFakeStore()
	d := &fakeDispatcher{}
	s := NewAppointmentService(st, d, testConfig(), testLogger)
	s.now = fixedClock(time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC))
	user := st.AddUser(models.User{TelegramID: 42, VisitsCount: visits, TotalSpent: 5000})
	return &appointmentFixture{store: st, dispatcher: d, service: s, user: user}
}

func (f *appointmentFixture) book(status string) *models.Appointment {
	return f.store.AddAppointment(models.Appointment{
		UserID:      f.user.ID,
		ServiceID:   "manicure",
		ServiceName: "Маникюр",
		FinalPrice:  1200,
		Date:        time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
		Time:        "14:00",
		Status:      status,
	})
}

func TestApproveCreditsVisit(t *testing.T) {
	f := newAppointmentFixture(0)
	appt := f.book(models.StatusPending)

	got, err := f.service.Approve(context.Background(), testAdminID, appt.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if got.Status != models.StatusConfirmed || got.ConfirmedAt == nil {
		t.Errorf("appointment = %+v, want confirmed with a timestamp", got)
	}

	user := f.store.User(f.user.ID)
	if user.VisitsCount != 1 || user.TotalSpent != 6200 || user.LastVisit == nil {
		t.Errorf("client = visits %d spent %d, want 1 and 6200", user.VisitsCount, user.TotalSpent)
	}

	notes := f.dispatcher.to(42)
	if len(notes) != 1 || notes[0].AppointmentID != appt.ID {
		t.Errorf("client notifications = %+v, want one confirmation", notes)
	}
}

func TestApproveGrantsMilestone(t *testing.T) {
	f := newAppointmentFixture(4)
	appt := f.book(models.StatusPending)

	if _, err := f.service.Approve(context.Background(), testAdminID, appt.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	discounts := f.store.UserDiscounts(f.user.ID)
	if len(discounts) != 1 || discounts[0].Type != models.DiscountMilestone || discounts[0].Milestone != 5 || discounts[0].Percent != 10 {
		t.Fatalf("discounts = %+v, want one 10%% milestone grant for 5 visits", discounts)
	}
	if user := f.store.User(f.user.ID); user.DiscountPercent != 10 {
		t.Errorf("DiscountPercent = %d, want 10", user.DiscountPercent)
	}
	if notes := f.dispatcher.to(42); len(notes) != 2 {
		t.Errorf("client got %d notifications, want confirmation and milestone", len(notes))
	}
}

func TestApproveTwice(t *testing.T) {
	f := newAppointmentFixture(0)
	appt := f.book(models.StatusPending)

	if _, err := f.service.Approve(context.Background(), testAdminID, appt.ID); err != nil {
		t.Fatalf("first Approve() error = %v", err)
	}
	_, err := f.service.Approve(context.Background(), testAdminID, appt.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Approve() error = %v, want ErrInvalidTransition", err)
	}
	if user := f.store.User(f.user.ID); user.VisitsCount != 1 {
		t.Errorf("VisitsCount = %d after a repeated approve, want 1", user.VisitsCount)
	}
}

func TestAdminActionsRequireAdmin(t *testing.T) {
	f := newAppointmentFixture(0)
	appt := f.book(models.StatusPending)
	ctx := context.Background()

	actions := map[string]func() error{
		"approve": func() error { _, err := f.service.Approve(ctx, 42, appt.ID); return err },
		"reject":  func() error { _, err := f.service.Reject(ctx, 42, appt.ID, ""); return err },
		"complete": func() error {
			_, err := f.service.Complete(ctx, 42, appt.ID)
			return err
		},
		"no-show": func() error { _, err := f.service.MarkNoShow(ctx, 42, appt.ID); return err },
	}
	for name, action := range actions {
		t.Run(name, func(t *testing.T) {
			if err := action(); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("error = %v, want ErrUnauthorized", err)
			}
		})
	}
	if got := f.store.Appointment(appt.ID); got.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
}

func TestRejectNotifiesClient(t *testing.T) {
	f := newAppointmentFixture(0)
	appt := f.book(models.StatusPending)

	got, err := f.service.Reject(context.Background(), testAdminID, appt.ID, "мастер заболела")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if got.Status != models.StatusCancelled || got.AdminComment != "мастер заболела" {
		t.Errorf("appointment = %+v, want cancelled with the comment", got)
	}
	if user := f.store.User(f.user.ID); user.VisitsCount != 0 {
		t.Errorf("VisitsCount = %d, want 0", user.VisitsCount)
	}
	if notes := f.dispatcher.to(42); len(notes) != 1 {
		t.Errorf("client got %d notifications, want 1", len(notes))
	}
}

func TestVisitOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		act     func(*AppointmentService, uuid.UUID) (*models.Appointment, error)
		want    string
		wantErr error
	}{
		{
			name: "complete a confirmed visit",
			from: models.StatusConfirmed,
			act: func(s *AppointmentService, id uuid.UUID) (*models.Appointment, error) {
				return s.Complete(context.Background(), testAdminID, id)
			},
			want: models.StatusCompleted,
		},
		{
			name: "no-show of a confirmed visit",
			from: models.StatusConfirmed,
			act: func(s *AppointmentService, id uuid.UUID) (*models.Appointment, error) {
				return s.MarkNoShow(context.Background(), testAdminID, id)
			},
			want: models.StatusNoShow,
		},
		{
			name: "complete a pending visit",
			from: models.StatusPending,
			act: func(s *AppointmentService, id uuid.UUID) (*models.Appointment, error) {
				return s.Complete(context.Background(), testAdminID, id)
			},
			want:    models.StatusPending,
			wantErr: ErrInvalidTransition,
		},
		{
			name: "reject a confirmed visit",
			from: models.StatusConfirmed,
			act: func(s *AppointmentService, id uuid.UUID) (*models.Appointment, error) {
				return s.Reject(context.Background(), testAdminID, id, "")
			},
			want:    models.StatusConfirmed,
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(1)
			appt := f.book(tt.from)
			_, err := tt.act(f.service, appt.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got := f.store.Appointment(appt.ID); got.Status != tt.want {
				t.Errorf("status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestCancelByUser(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		telegramID int64
		wantErr    error
	}{
		{"pending", models.StatusPending, 42, nil},
		{"confirmed", models.StatusConfirmed, 42, nil},
		{"already completed", models.StatusCompleted, 42, ErrInvalidTransition},
		{"someone else's", models.StatusPending, 43, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(0)
			appt := f.book(tt.status)

			_, err := f.service.CancelByUser(context.Background(), tt.telegramID, appt.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CancelByUser() error = %v, want %v", err, tt.wantErr)
			}
			adminNotes := f.dispatcher.to(testAdminID)
			if tt.wantErr == nil {
				if got := f.store.Appointment(appt.ID); got.Status != models.StatusCancelled || got.CancelledAt == nil {
					t.Errorf("appointment = %+v, want cancelled", got)
				}
				if len(adminNotes) != 1 {
					t.Errorf("admins got %d notifications, want 1", len(adminNotes))
				}
				return
			}
			if got := f.store.Appointment(appt.ID); got.Status != tt.status {
				t.Errorf("status = %q, want it unchanged", got.Status)
			}
			if len(adminNotes) != 0 {
				t.Error("admins notified about a refused cancel")
			}
		})
	}
}

func TestCancelByUserMissing(t *testing.T) {
	f := newAppointmentFixture(0)
	if _, err := f.service.CancelByUser(context.Background(), 42, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("CancelByUser() error = %v, want ErrNotFound", err)
	}
}
