package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GalleryImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Category   string    `gorm:"size:20;index;not null"`
	FileRef    string    `gorm:"size:500;not null"` // telegram file id
	UploadedBy int64
	UploadedAt time.Time `gorm:"autoCreateTime"`
}

func (g *GalleryImage) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}
