package services

import (
	"context"
	"math/rand"
	"strings"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/store"

	"go.uber.org/zap"
)

// GalleryPageSize is how many works are shown per category.
const GalleryPageSize = 3

type GalleryService struct {
	store  store.Store
	admins config.AdminConfig
	log    *zap.Logger
}

func NewGalleryService(st store.Store, cfg *config.Config, log *zap.Logger) *GalleryService {
	return &GalleryService{store: st, admins: cfg.Admin, log: log.With(zap.String("service", "gallery"))}
}

// CategoryFromCaption takes the first word of a photo caption as the gallery category.
func CategoryFromCaption(caption string) (string, error) {
	fields := strings.Fields(strings.ToLower(caption))
	if len(fields) == 0 {
		return "", ErrInvalidCategory
	}
	for _, c := range config.GalleryCategories {
		if fields[0] == c {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (s *GalleryService) AddImage(ctx context.Context, adminID int64, fileRef, caption string) (*models.GalleryImage, error) {
	if !s.admins.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}
	category, err := CategoryFromCaption(caption)
	if err != nil {
		return nil, err
	}
	image := &models.GalleryImage{Category: category, FileRef: fileRef, UploadedBy: adminID}
	if err := s.store.CreateGalleryImage(ctx, image); err != nil {
		return nil, err
	}
	s.log.Info("Gallery image added", zap.String("category", category), zap.Int64("admin_id", adminID))
	return image, nil
}

// Images returns the latest works of a category; an empty category or "all" means every category.
func (s *GalleryService) Images(ctx context.Context, category string) ([]models.GalleryImage, error) {
	if category == "all" {
		category = ""
	}
	return s.store.ListGalleryImages(ctx, category, GalleryPageSize)
}

func (s *GalleryService) Random(ctx context.Context) (*models.GalleryImage, error) {
	images, err := s.store.ListGalleryImages(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNotFound
	}
	return &images[rand.Intn(len(images))], nil
}
