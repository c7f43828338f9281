package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	Reminder24hBefore = "24h_before"
	Reminder3hBefore  = "3h_before"
)

const (
	ReminderSent    = "sent"
	ReminderFailed  = "failed"
	ReminderSkipped = "skipped"
)

type Reminder struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key"`
	UserID        uuid.UUID    `gorm:"type:uuid;index;not null"`
	User          *User        `gorm:"foreignKey:UserID"`
	AppointmentID uuid.UUID    `gorm:"type:uuid;index"`
	Appointment   *Appointment `gorm:"-"` // loaded by the store, no FK

	Kind         string    `gorm:"size:20;not null"`
	ScheduledFor time.Time `gorm:"index;not null"`
	SentAt       *time.Time

	Status       string `gorm:"size:20"` // sent, failed, skipped
	Channel      string `gorm:"size:20"` // telegram, whatsapp, sms
	ErrorMessage string `gorm:"type:text"`
	CreatedAt    time.Time
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
