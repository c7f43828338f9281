package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/models"

	"github.com/google/uuid"
)

func newTestReminderService(st *fakeStore, d Dispatcher, cfg *config.Config, now time.Time) *ReminderService {
	s := NewReminderService(st, d, cfg, nil, testLogger)
	s.now = fixedClock(now)
	return s
}

func TestReminderPlan(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		date      time.Time
		slot      string
		before24h bool
		before3h  bool
		want      []string
		wantErr   bool
	}{
		{
			name:      "both offsets ahead",
			date:      time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
			slot:      "14:00",
			before24h: true,
			before3h:  true,
			want:      []string{models.Reminder24hBefore, models.Reminder3hBefore},
		},
		{
			name:      "24h offset already past",
			date:      time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
			slot:      "14:00",
			before24h: true,
			before3h:  true,
			want:      []string{models.Reminder3hBefore},
		},
		{
			name:      "both offsets past",
			date:      time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
			slot:      "11:00",
			before24h: true,
			before3h:  true,
			want:      nil,
		},
		{
			name:      "24h reminder switched off",
			date:      time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
			slot:      "14:00",
			before24h: false,
			before3h:  true,
			want:      []string{models.Reminder3hBefore},
		},
		{
			name:    "malformed slot",
			date:    time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
			slot:    "noon",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Reminders.Before24h = tt.before24h
			cfg.Reminders.Before3h = tt.before3h
			s := newTestReminderService(newFakeStore(), &fakeDispatcher{}, cfg, now)

			appt := &models.Appointment{ID: uuid.New(), UserID: uuid.New(), Date: tt.date, Time: tt.slot}
			got, err := s.Plan(appt)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Plan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Plan() returned %d reminders, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Kind != tt.want[i] {
					t.Errorf("reminder %d kind = %q, want %q", i, r.Kind, tt.want[i])
				}
				if r.AppointmentID != appt.ID || r.UserID != appt.UserID {
					t.Errorf("reminder %d not linked to the appointment", i)
				}
			}
		})
	}
}

func TestReminderPlanTimes(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	s := newTestReminderService(newFakeStore(), &fakeDispatcher{}, testConfig(), now)

	got, err := s.Plan(&models.Appointment{Date: time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC), Time: "15:30"})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want := []time.Time{
		time.Date(2025, time.June, 11, 15, 30, 0, 0, time.UTC),
		time.Date(2025, time.June, 12, 12, 30, 0, 0, time.UTC),
	}
	for i, r := range got {
		if !r.ScheduledFor.Equal(want[i]) {
			t.Errorf("reminder %d at %v, want %v", i, r.ScheduledFor, want[i])
		}
	}
}

func TestReminderPoll(t *testing.T) {
	now := time.Date(2025, time.June, 11, 15, 0, 0, 0, time.UTC)
	st := newFakeStore()
	d := &fakeDispatcher{failFor: map[int64]error{44: errors.New("bot was blocked by the user")}}
	s := newTestReminderService(st, d, testConfig(), now)

	date := time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC)
	confirmedUser := st.AddUser(models.User{TelegramID: 42})
	pendingUser := st.AddUser(models.User{TelegramID: 43})
	blockedUser := st.AddUser(models.User{TelegramID: 44})
	confirmed := st.AddAppointment(models.Appointment{UserID: confirmedUser.ID, ServiceName: "Маникюр", Date: date, Time: "14:00", Status: models.StatusConfirmed})
	pending := st.AddAppointment(models.Appointment{UserID: pendingUser.ID, Date: date, Time: "14:00", Status: models.StatusPending})
	blocked := st.AddAppointment(models.Appointment{UserID: blockedUser.ID, Date: date, Time: "14:00", Status: models.StatusConfirmed})

	due := now.Add(-time.Hour)
	reminders := []models.Reminder{
		{UserID: confirmedUser.ID, AppointmentID: confirmed.ID, Kind: models.Reminder24hBefore, ScheduledFor: due},
		{UserID: pendingUser.ID, AppointmentID: pending.ID, Kind: models.Reminder24hBefore, ScheduledFor: due},
		{UserID: blockedUser.ID, AppointmentID: blocked.ID, Kind: models.Reminder24hBefore, ScheduledFor: due},
		{UserID: confirmedUser.ID, AppointmentID: uuid.New(), Kind: models.Reminder24hBefore, ScheduledFor: due},
		{UserID: confirmedUser.ID, AppointmentID: confirmed.ID, Kind: models.Reminder3hBefore, ScheduledFor: now.Add(20 * time.Hour)},
	}
	if err := st.CreateReminders(context.Background(), reminders); err != nil {
		t.Fatal(err)
	}

	sent, err := s.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if sent != 1 {
		t.Errorf("Poll() sent %d, want 1", sent)
	}

	statuses := make(map[uuid.UUID]models.Reminder)
	for _, r := range st.Reminders() {
		statuses[r.ID] = r
	}
	wantStatus := []string{models.ReminderSent, models.ReminderSkipped, models.ReminderFailed, models.ReminderSkipped, ""}
	for i, r := range reminders {
		got := statuses[r.ID]
		if got.Status != wantStatus[i] {
			t.Errorf("reminder %d status = %q, want %q", i, got.Status, wantStatus[i])
		}
		if (got.SentAt != nil) != (wantStatus[i] != "") {
			t.Errorf("reminder %d SentAt = %v", i, got.SentAt)
		}
	}
	if msg := statuses[reminders[2].ID].ErrorMessage; msg == "" {
		t.Error("failed reminder has no error message")
	}
	if ch := statuses[reminders[0].ID].Channel; ch != ChannelTelegram {
		t.Errorf("sent reminder channel = %q, want telegram", ch)
	}

	notes := d.to(42)
	if len(notes) != 1 || notes[0].Kind != KindReminder {
		t.Fatalf("client notifications = %+v, want one reminder", notes)
	}

	// a second poll finds nothing left to send
	sent, err = s.Poll(context.Background())
	if err != nil || sent != 0 {
		t.Errorf("second Poll() = %d, %v, want 0, nil", sent, err)
	}
	if len(d.to(42)) != 1 {
		t.Error("a reminder was delivered twice")
	}
}

func TestReminderUpcoming(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	st := newFakeStore()
	s := newTestReminderService(st, &fakeDispatcher{}, testConfig(), now)

	st.CreateReminders(context.Background(), []models.Reminder{
		{Kind: models.Reminder24hBefore, ScheduledFor: now.Add(-time.Hour)},
		{Kind: models.Reminder24hBefore, ScheduledFor: now.Add(time.Hour)},
		{Kind: models.Reminder3hBefore, ScheduledFor: now.Add(2 * time.Hour)},
	})

	got, err := s.Upcoming(context.Background(), 10)
	if err != nil {
		t.Fatalf("Upcoming() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Upcoming() returned %d, want 2", len(got))
	}
}

func TestEvery(t *testing.T) {
	if got := every(90 * time.Second); got != "@every 1m30s" {
		t.Errorf("every() = %q", got)
	}
}
