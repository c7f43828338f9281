package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DiscountFirstVisit = "first_visit"
	DiscountReferral   = "referral"
	DiscountBirthday   = "birthday"
	DiscountMilestone  = "milestone"
)

type Discount struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Type       string    `gorm:"size:20;not null"`
	Percent    int       `gorm:"not null"`
	Milestone  int       `gorm:"default:0"` // visit threshold for milestone grants
	IsUsed     bool      `gorm:"default:false"`
	UsedAt     *time.Time
	ValidUntil *time.Time
	CreatedAt  time.Time
}

func (d *Discount) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
