package service

import (
	"context"
	"fmt"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"

	"github.com/google/uuid"
)

// RatingService is the aggregation engine for difficulty and quality votes.
// Submitting a rating recomputes the crackme's cached average synchronously,
// right after the rating row is persisted. The existence check and the
// insert are two separate operations; the partial unique index is what
// actually closes that race, and the consistency verifier reconciles
// anything that still drifts.
type RatingService struct {
	ratingRepo  repository.RatingRepository
	crackmeRepo repository.CrackmeRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, crackmeRepo repository.CrackmeRepository) *RatingService {
	return &RatingService{ratingRepo: ratingRepo, crackmeRepo: crackmeRepo}
}

// Rate records a vote and returns the refreshed aggregate for the crackme.
func (s *RatingService) Rate(ctx context.Context, kind model.RatingKind, author, crackmeHexID string, value int) (model.RatingSummary, error) {
	if !kind.Valid() {
		return model.RatingSummary{}, fmt.Errorf("unknown rating kind %q: %w", kind, common.ErrBadRequest)
	}

	rating := &model.Rating{
		ID:           uuid.NewString(),
		Kind:         kind,
		Author:       author,
		CrackmeHexID: crackmeHexID,
		Rating:       value,
		Status:       model.StatusPublished,
	}
	if err := common.Validate(rating); err != nil {
		return model.RatingSummary{}, err
	}

	// The crackme must exist before we accept a vote against it.
	if _, err := s.crackmeRepo.FindByHexID(ctx, crackmeHexID); err != nil {
		return model.RatingSummary{}, err
	}

	// Advisory pre-insert check; keeps the common case cheap and the error
	// message friendly. Two concurrent submissions can both pass it.
	exists, err := s.ratingRepo.Exists(ctx, kind, author, crackmeHexID)
	if err != nil {
		return model.RatingSummary{}, err
	}
	if exists {
		return model.RatingSummary{}, fmt.Errorf("you have already rated the %s of this crackme: %w", kind, common.ErrAlreadyRated)
	}

	if err := s.ratingRepo.Insert(ctx, rating); err != nil {
		return model.RatingSummary{}, err
	}

	// Recompute and persist the denormalized average. Not transactional with
	// the insert: a failure here leaves drift for the verifier to repair.
	summary, err := s.ratingRepo.Summary(ctx, kind, crackmeHexID)
	if err != nil {
		return model.RatingSummary{}, err
	}
	if err := s.crackmeRepo.UpdateAverage(ctx, crackmeHexID, kind, summary.Average); err != nil {
		return model.RatingSummary{}, err
	}
	return summary, nil
}

// Summary returns the live aggregate without touching the cached value.
func (s *RatingService) Summary(ctx context.Context, kind model.RatingKind, crackmeHexID string) (model.RatingSummary, error) {
	if !kind.Valid() {
		return model.RatingSummary{}, fmt.Errorf("unknown rating kind %q: %w", kind, common.ErrBadRequest)
	}
	return s.ratingRepo.Summary(ctx, kind, crackmeHexID)
}
