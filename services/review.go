package services

import (
	"context"
	"strings"

	"nailstudio-bot/config"
	"nailstudio-bot/models"
	"nailstudio-bot/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewStage int

const (
	ReviewRating ReviewStage = iota
	ReviewText
	ReviewPhoto
)

type ReviewDraft struct {
	Stage  ReviewStage
	Rating int
	Text   string
}

type ReviewService struct {
	store    store.Store
	sessions *SessionStore
	admins   config.AdminConfig
	log      *zap.Logger
}

func NewReviewService(st store.Store, sessions *SessionStore, cfg *config.Config, log *zap.Logger) *ReviewService {
	return &ReviewService{store: st, sessions: sessions, admins: cfg.Admin, log: log.With(zap.String("service", "reviews"))}
}

// Start opens the review wizard at the rating step.
func (s *ReviewService) Start(telegramID int64) {
	conv := s.sessions.Open(telegramID)
	conv.Reset()
	conv.Flow = FlowReview
}

func (s *ReviewService) draft(telegramID int64) (*ReviewDraft, bool) {
	conv, ok := s.sessions.Get(telegramID)
	if !ok || conv.Flow != FlowReview {
		return nil, false
	}
	return &conv.Review, true
}

// Stage reports the current review step, if a review is in progress.
func (s *ReviewService) Stage(telegramID int64) (ReviewStage, bool) {
	d, ok := s.draft(telegramID)
	if !ok {
		return 0, false
	}
	return d.Stage, true
}

func (s *ReviewService) Rate(telegramID int64, rating int) error {
	d, ok := s.draft(telegramID)
	if !ok {
		return ErrDraftMissing
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	d.Rating = rating
	d.Stage = ReviewText
	return nil
}

func (s *ReviewService) SetText(telegramID int64, text string) error {
	d, ok := s.draft(telegramID)
	if !ok {
		return ErrDraftMissing
	}
	if d.Stage != ReviewText {
		return ErrStepOutOfOrder
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	d.Text = text
	d.Stage = ReviewPhoto
	return nil
}

// Submit stores the drafted review with an optional photo and closes the wizard.
func (s *ReviewService) Submit(ctx context.Context, user *models.User, photoRef string) (*models.Review, error) {
	d, ok := s.draft(user.TelegramID)
	if !ok {
		return nil, ErrDraftMissing
	}
	if d.Stage != ReviewPhoto {
		return nil, ErrStepOutOfOrder
	}
	review := &models.Review{UserID: user.ID, Rating: d.Rating, Text: d.Text, PhotoRef: photoRef, IsApproved: true}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	s.sessions.Delete(user.TelegramID)
	review.User = user
	s.log.Info("Review left", zap.Int64("telegram_id", user.TelegramID), zap.Int("rating", review.Rating))
	return review, nil
}

func (s *ReviewService) Latest(ctx context.Context, limit int) ([]models.Review, error) {
	return s.store.ListReviews(ctx, true, limit)
}

func (s *ReviewService) All(ctx context.Context, limit int) ([]models.Review, error) {
	return s.store.ListReviews(ctx, false, limit)
}

// SetApproval hides or shows a review.
func (s *ReviewService) SetApproval(ctx context.Context, adminID int64, id uuid.UUID, approved bool) (*models.Review, error) {
	if !s.admins.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}
	review, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	review.IsApproved = approved
	if err := s.store.SaveReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// AverageRating of the given reviews, 0 when there are none.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
