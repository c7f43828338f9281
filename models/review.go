package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	User       *User     `gorm:"foreignKey:UserID"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Text       string    `gorm:"type:text"`
	PhotoRef   string    `gorm:"size:500"`
	IsApproved bool      `gorm:"default:true"`
	CreatedAt  time.Time
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
