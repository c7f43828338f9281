package services

import (
	"context"
	"sync"
	"time"

	"nailstudio-bot/config"
	"nailstudio-bot/store/storetest"

	"go.uber.org/zap"
)

type fakeStore = storetest.Memory

func newFakeStore() *fakeStore {
	return storetest.NewMemory()
}

// fakeDispatcher records every notification and fails for the listed recipients.
type fakeDispatcher struct {
	mu      sync.Mutex
	sent    []Notification
	failFor map[int64]error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, n Notification) (Receipt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failFor[n.To.TelegramID]; err != nil {
		return Receipt{}, err
	}
	d.sent = append(d.sent, n)
	return Receipt{Channel: ChannelTelegram, MessageID: "1"}, nil
}

func (d *fakeDispatcher) to(telegramID int64) []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Notification
	for _, n := range d.sent {
		if n.To.TelegramID == telegramID {
			out = append(out, n)
		}
	}
	return out
}

const testAdminID int64 = 1000

func testConfig() *config.Config {
	loc := time.UTC
	return &config.Config{
		App:   config.AppConfig{Location: loc},
		Admin: config.AdminConfig{IDs: []int64{testAdminID}},
		Loyalty: config.LoyaltyConfig{
			FirstVisitPercent: 20,
			ReferralPercent:   15,
			BirthdayPercent:   25,
			BirthdayWindow:    15,
			Milestones: []config.Milestone{
				{Visits: 5, Percent: 10},
				{Visits: 10, Percent: 15},
				{Visits: 20, Percent: 20},
			},
		},
		Reminders: config.ReminderConfig{Before24h: true, Before3h: true, PollInterval: time.Minute},
		Sessions:  config.SessionConfig{TTL: 30 * time.Minute, SweepInterval: 5 * time.Minute},
		Catalog: config.NewCatalog([]config.Service{
			{ID: "manicure", Name: "Маникюр", Emoji: "💅", Price: 1500, Duration: 90},
			{ID: "pedicure", Name: "Педикюр", Emoji: "👣", Price: 1500, Duration: 90},
			{ID: "combo", Name: "Комбо", Emoji: "🌟", Price: 2500, Duration: 150},
		}, nil),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testLogger = zap.NewNop()
