package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Admin     AdminConfig
	HTTP      HTTPConfig
	Salon     SalonInfo
	Loyalty   LoyaltyConfig
	Reminders ReminderConfig
	Sessions  SessionConfig
	Twilio    TwilioConfig
	Catalog   Catalog
}

type AppConfig struct {
	Name     string
	Debug    bool
	LogPath  string
	Timezone string
	Location *time.Location
}

type DatabaseConfig struct {
	DSN string `validate:"required"`
}

type TelegramConfig struct {
	Token       string `validate:"required"`
	PollTimeout int    `validate:"min=1"`
}

type AdminConfig struct {
	IDs          []int64
	PasswordHash string
}

// IsAdmin reports whether the telegram id belongs to a configured administrator.
func (a AdminConfig) IsAdmin(id int64) bool {
	for _, adminID := range a.IDs {
		if adminID == id {
			return true
		}
	}
	return false
}

type HTTPConfig struct {
	Enabled        bool
	Port           string
	AllowedOrigins []string
	JWTSecret      string `validate:"required_if=Enabled true"`
	JWTExpiryHours int    `validate:"min=1"`
}

type SalonInfo struct {
	Name         string
	Address      string
	Phone        string
	WorkingHours string
	Metro        string
}

type LoyaltyConfig struct {
	FirstVisitPercent int `validate:"min=0,max=100"`
	ReferralPercent   int `validate:"min=0,max=100"`
	BirthdayPercent   int `validate:"min=0,max=100"`
	BirthdayWindow    int `validate:"min=0"`
	Milestones        []Milestone
}

// Milestone grants Percent once a client reaches Visits confirmed visits.
type Milestone struct {
	Visits  int
	Percent int
}

type ReminderConfig struct {
	Before24h    bool
	Before3h     bool
	PollInterval time.Duration `validate:"min=1s"`
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type TwilioConfig struct {
	Enabled        bool
	AccountSID     string `validate:"required_if=Enabled true"`
	AuthToken      string `validate:"required_if=Enabled true"`
	PhoneNumber    string
	WhatsAppNumber string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "nailstudio-bot")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("TIMEZONE", "Europe/Moscow")
	v.SetDefault("TELEGRAM_POLL_TIMEOUT", 60)
	v.SetDefault("HTTP_ENABLED", true)
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("SALON_NAME", "Nail Studio")
	v.SetDefault("SALON_ADDRESS", "г. Мытищи, ул. Силикатная, 49 к3")
	v.SetDefault("SALON_PHONE", "+7 (926) 373-90-44")
	v.SetDefault("SALON_HOURS", "Ежедневно с 10:00 до 21:00")
	v.SetDefault("SALON_METRO", "Ближайшее метро: Медведково")
	v.SetDefault("FIRST_VISIT_DISCOUNT", 20)
	v.SetDefault("REFERRAL_DISCOUNT", 15)
	v.SetDefault("BIRTHDAY_DISCOUNT", 25)
	v.SetDefault("BIRTHDAY_WINDOW_DAYS", 15)
	v.SetDefault("VISIT_MILESTONES", "5:10,10:15,20:20")
	v.SetDefault("REMINDER_24H", true)
	v.SetDefault("REMINDER_3H", true)
	v.SetDefault("REMINDER_POLL_INTERVAL", "60s")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "5m")
	v.SetDefault("TWILIO_ENABLED", false)
	v.SetDefault("TIME_SLOTS", strings.Join(DefaultTimeSlots, ","))

	// .env is optional; the process environment wins either way.
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	v.AutomaticEnv()

	adminIDs, err := parseIDs(v.GetString("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parse ADMIN_IDS: %w", err)
	}

	milestones, err := ParseMilestones(v.GetString("VISIT_MILESTONES"))
	if err != nil {
		return nil, fmt.Errorf("parse VISIT_MILESTONES: %w", err)
	}

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Debug:    v.GetBool("DEBUG"),
			LogPath:  v.GetString("LOG_PATH"),
			Timezone: v.GetString("TIMEZONE"),
			Location: loc,
		},
		Database: DatabaseConfig{
			DSN: v.GetString("DB_URL"),
		},
		Telegram: TelegramConfig{
			Token:       v.GetString("BOT_TOKEN"),
			PollTimeout: v.GetInt("TELEGRAM_POLL_TIMEOUT"),
		},
		Admin: AdminConfig{
			IDs:          adminIDs,
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		},
		HTTP: HTTPConfig{
			Enabled:        v.GetBool("HTTP_ENABLED"),
			Port:           v.GetString("PORT"),
			AllowedOrigins: splitList(v.GetString("CORS_ORIGINS")),
			JWTSecret:      v.GetString("JWT_SECRET"),
			JWTExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Salon: SalonInfo{
			Name:         v.GetString("SALON_NAME"),
			Address:      v.GetString("SALON_ADDRESS"),
			Phone:        v.GetString("SALON_PHONE"),
			WorkingHours: v.GetString("SALON_HOURS"),
			Metro:        v.GetString("SALON_METRO"),
		},
		Loyalty: LoyaltyConfig{
			FirstVisitPercent: v.GetInt("FIRST_VISIT_DISCOUNT"),
			ReferralPercent:   v.GetInt("REFERRAL_DISCOUNT"),
			BirthdayPercent:   v.GetInt("BIRTHDAY_DISCOUNT"),
			BirthdayWindow:    v.GetInt("BIRTHDAY_WINDOW_DAYS"),
			Milestones:        milestones,
		},
		Reminders: ReminderConfig{
			Before24h:    v.GetBool("REMINDER_24H"),
			Before3h:     v.GetBool("REMINDER_3H"),
			PollInterval: v.GetDuration("REMINDER_POLL_INTERVAL"),
		},
		Sessions: SessionConfig{
			TTL:           v.GetDuration("SESSION_TTL"),
			SweepInterval: v.GetDuration("SESSION_SWEEP_INTERVAL"),
		},
		Twilio: TwilioConfig{
			Enabled:        v.GetBool("TWILIO_ENABLED"),
			AccountSID:     v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:      v.GetString("TWILIO_AUTH_TOKEN"),
			PhoneNumber:    v.GetString("TWILIO_PHONE_NUMBER"),
			WhatsAppNumber: v.GetString("TWILIO_WHATSAPP_NUMBER"),
		},
		Catalog: NewCatalog(DefaultServices(v), splitList(v.GetString("TIME_SLOTS"))),
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// ParseMilestones reads "visits:percent" pairs, e.g. "5:10,10:15,20:20",
// and returns them in ascending order of visits.
func ParseMilestones(raw string) ([]Milestone, error) {
	var milestones []Milestone
	for _, pair := range splitList(raw) {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed milestone %q", pair)
		}
		visits, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || visits <= 0 {
			return nil, fmt.Errorf("malformed milestone visits %q", parts[0])
		}
		percent, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || percent < 0 || percent > 100 {
			return nil, fmt.Errorf("malformed milestone percent %q", parts[1])
		}
		milestones = append(milestones, Milestone{Visits: visits, Percent: percent})
	}

	sort.Slice(milestones, func(i, j int) bool {
		return milestones[i].Visits < milestones[j].Visits
	})
	return milestones, nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
