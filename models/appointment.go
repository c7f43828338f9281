package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

type Appointment struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`
	User   *User     `gorm:"foreignKey:UserID"`

	ServiceID       string `gorm:"size:50;not null"`
	ServiceName     string `gorm:"size:100"`
	OriginalPrice   int64  `gorm:"not null"`
	FinalPrice      int64  `gorm:"not null"`
	DiscountType    string `gorm:"size:20"`
	DiscountPercent int    `gorm:"default:0"`

	Date time.Time `gorm:"type:date;not null"`
	Time string    `gorm:"size:5;not null"`

	Status       string `gorm:"size:20;index;default:'pending'"`
	AdminComment string `gorm:"type:text"`

	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// StartsAt combines the stored calendar date with the slot in the salon's location.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	slot, err := time.Parse("15:04", a.Time)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := a.Date.Date()
	return time.Date(y, m, d, slot.Hour(), slot.Minute(), 0, 0, loc), nil
}

// Cancellable reports whether the appointment may still move to cancelled.
func (a *Appointment) Cancellable() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}
