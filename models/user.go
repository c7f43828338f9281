package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	TelegramID int64      `gorm:"uniqueIndex;not null"`
	Username   string     `gorm:"size:100"`
	FirstName  string     `gorm:"size:100"`
	LastName   string     `gorm:"size:100"`
	Phone      string     `gorm:"size:20"`
	Birthday   *time.Time `gorm:"type:date"`

	VisitsCount     int   `gorm:"default:0"`
	TotalSpent      int64 `gorm:"default:0"`
	DiscountPercent int   `gorm:"default:0"`

	ReferralCode string     `gorm:"size:10;uniqueIndex;not null"`
	ReferredByID *uuid.UUID `gorm:"type:uuid;index"`
	LastVisit    *time.Time

	Appointments []Appointment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Reviews      []Review      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Discounts    []Discount    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Reminders    []Reminder    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// DisplayName prefers the first name and falls back to the @username.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return "Клиент"
	}
}
