package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"
	"crackmehub/internal/platform/storage"
)

// ModerationService owns the approve/reject lifecycle. Rejection is the one
// place that hard-deletes: the crackme row and everything referencing it go
// away in a single transaction, then the artifact and a notification follow.
type ModerationService struct {
	db            *sql.DB
	crackmeRepo   repository.CrackmeRepository
	solutionRepo  repository.SolutionRepository
	commentRepo   repository.CommentRepository
	ratingRepo    repository.RatingRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	store         *storage.Store
	recounts      RecountEnqueuer
}

func NewModerationService(
	db *sql.DB,
	crackmeRepo repository.CrackmeRepository,
	solutionRepo repository.SolutionRepository,
	commentRepo repository.CommentRepository,
	ratingRepo repository.RatingRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	store *storage.Store,
	recounts RecountEnqueuer,
) *ModerationService {
	return &ModerationService{
		db:            db,
		crackmeRepo:   crackmeRepo,
		solutionRepo:  solutionRepo,
		commentRepo:   commentRepo,
		ratingRepo:    ratingRepo,
		userRepo:      userRepo,
		notifications: notifications,
		store:         store,
		recounts:      recounts,
	}
}

func (s *ModerationService) ApproveCrackme(ctx context.Context, hexID string) error {
	crackme, err := s.crackmeRepo.FindByHexID(ctx, hexID)
	if err != nil {
		return err
	}
	if err := s.crackmeRepo.UpdateStatus(ctx, hexID, model.StatusPublished); err != nil {
		return err
	}
	if err := s.userRepo.AdjustCounts(ctx, crackme.Author, 1, 0, 0); err != nil {
		log.Printf("WARN: failed to bump crackme count for user %s: %v", crackme.Author, err)
	}
	if err := s.notifications.Notify(ctx, crackme.Author, fmt.Sprintf("Your crackme '%s' has been approved!", crackme.Name)); err != nil {
		log.Printf("WARN: failed to notify user %s: %v", crackme.Author, err)
	}
	return nil
}

func (s *ModerationService) ApproveSolution(ctx context.Context, hexID string) error {
	solution, err := s.solutionRepo.FindByHexID(ctx, hexID)
	if err != nil {
		return err
	}
	if err := s.solutionRepo.UpdateStatus(ctx, hexID, model.StatusPublished); err != nil {
		return err
	}
	if err := s.userRepo.AdjustCounts(ctx, solution.Author, 0, 1, 0); err != nil {
		log.Printf("WARN: failed to bump solution count for user %s: %v", solution.Author, err)
	}
	// The solution now counts toward the crackme's nb_solutions.
	if err := s.recounts.EnqueueRecount(ctx, solution.CrackmeHexID); err != nil {
		log.Printf("WARN: failed to enqueue recount for crackme %s: %v", solution.CrackmeHexID, err)
	}
	if err := s.notifications.Notify(ctx, solution.Author, fmt.Sprintf("Your solution for '%s' has been approved!", solution.CrackmeName)); err != nil {
		log.Printf("WARN: failed to notify user %s: %v", solution.Author, err)
	}
	return nil
}

// CascadeResult reports what a rejection removed.
type CascadeResult struct {
	Solutions         int
	Comments          int
	DifficultyRatings int
	QualityRatings    int
}

// RejectCrackme hard-deletes a crackme and cascades over its solutions,
// comments and ratings. storedFilename may be empty when the caller has no
// artifact on disk for the record; rejectionReason may be empty.
func (s *ModerationService) RejectCrackme(ctx context.Context, hexID, storedFilename, rejectionReason string) (*CascadeResult, error) {
	crackme, err := s.crackmeRepo.FindByHexID(ctx, hexID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	result := &CascadeResult{}
	if result.Solutions, err = s.solutionRepo.HardDeleteByCrackmeID(ctx, tx, crackme.ID); err != nil {
		return nil, err
	}
	if result.Comments, err = s.commentRepo.HardDeleteByCrackme(ctx, tx, hexID); err != nil {
		return nil, err
	}
	if result.DifficultyRatings, err = s.ratingRepo.HardDeleteByCrackme(ctx, tx, model.RatingDifficulty, hexID); err != nil {
		return nil, err
	}
	if result.QualityRatings, err = s.ratingRepo.HardDeleteByCrackme(ctx, tx, model.RatingQuality, hexID); err != nil {
		return nil, err
	}
	if err := s.crackmeRepo.HardDelete(ctx, tx, crackme.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if storedFilename != "" {
		if err := s.store.Remove(ArtifactKindCrackme, storedFilename); err != nil {
			log.Printf("WARN: failed to remove crackme artifact %s: %v", storedFilename, err)
		}
	}
	if crackme.Status == model.StatusPublished {
		if err := s.userRepo.AdjustCounts(ctx, crackme.Author, -1, 0, 0); err != nil {
			log.Printf("WARN: failed to drop crackme count for user %s: %v", crackme.Author, err)
		}
	}

	text := fmt.Sprintf("Your crackme '%s' has been rejected!", crackme.Name)
	if rejectionReason != "" {
		text += " Reason: " + rejectionReason
	}
	if err := s.notifications.Notify(ctx, crackme.Author, text); err != nil {
		log.Printf("WARN: failed to notify user %s: %v", crackme.Author, err)
	}
	return result, nil
}

// RejectSolution hard-deletes a single solution and its artifact.
func (s *ModerationService) RejectSolution(ctx context.Context, hexID, storedFilename, rejectionReason string) error {
	solution, err := s.solutionRepo.FindByHexID(ctx, hexID)
	if err != nil {
		return err
	}

	if err := s.solutionRepo.HardDelete(ctx, nil, solution.ID); err != nil {
		return err
	}
	if storedFilename != "" {
		if err := s.store.Remove(ArtifactKindSolution, storedFilename); err != nil {
			log.Printf("WARN: failed to remove solution artifact %s: %v", storedFilename, err)
		}
	}
	wasPublished := solution.Status == model.StatusPublished
	if wasPublished {
		if err := s.userRepo.AdjustCounts(ctx, solution.Author, 0, -1, 0); err != nil {
			log.Printf("WARN: failed to drop solution count for user %s: %v", solution.Author, err)
		}
		if err := s.recounts.EnqueueRecount(ctx, solution.CrackmeHexID); err != nil {
			log.Printf("WARN: failed to enqueue recount for crackme %s: %v", solution.CrackmeHexID, err)
		}
	}

	text := fmt.Sprintf("Your solution for '%s' has been rejected!", solution.CrackmeName)
	if rejectionReason != "" {
		text += " Reason: " + rejectionReason
	}
	if err := s.notifications.Notify(ctx, solution.Author, text); err != nil {
		log.Printf("WARN: failed to notify user %s: %v", solution.Author, err)
	}
	return nil
}
