package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BroadcastMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	AdminID     int64     `gorm:"index"`
	Text        string    `gorm:"type:text"`
	PhotoRef    string    `gorm:"size:500"`
	SentCount   int       `gorm:"default:0"`
	FailedCount int       `gorm:"default:0"`
	SentAt      *time.Time
	CreatedAt   time.Time
}

func (b *BroadcastMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
