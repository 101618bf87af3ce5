package service

import (
	"context"
	"log"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"

	"github.com/google/uuid"
)

// RecountEnqueuer schedules a denormalized-counter recomputation for a
// crackme. Backed by the redis queue in production.
type RecountEnqueuer interface {
	EnqueueRecount(ctx context.Context, crackmeHexID string) error
}

type CommentService struct {
	commentRepo repository.CommentRepository
	crackmeRepo repository.CrackmeRepository
	userRepo    repository.UserRepository
	recounts    RecountEnqueuer
}

func NewCommentService(commentRepo repository.CommentRepository, crackmeRepo repository.CrackmeRepository, userRepo repository.UserRepository, recounts RecountEnqueuer) *CommentService {
	return &CommentService{commentRepo: commentRepo, crackmeRepo: crackmeRepo, userRepo: userRepo, recounts: recounts}
}

// Create posts a comment; comments are visible immediately, so the owning
// crackme's nb_comments is scheduled for recount right away.
func (s *CommentService) Create(ctx context.Context, crackmeHexID, author, info string) (*model.Comment, error) {
	if _, err := s.crackmeRepo.FindByHexID(ctx, crackmeHexID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:           uuid.NewString(),
		CrackmeHexID: crackmeHexID,
		Author:       author,
		Info:         info,
		Status:       model.StatusPublished,
	}
	if err := common.Validate(comment); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Counter maintenance is best-effort here; the verifier repairs drift.
	if err := s.recounts.EnqueueRecount(ctx, crackmeHexID); err != nil {
		log.Printf("WARN: failed to enqueue recount for crackme %s: %v", crackmeHexID, err)
	}
	if err := s.userRepo.AdjustCounts(ctx, author, 0, 0, 1); err != nil {
		log.Printf("WARN: failed to bump comment count for user %s: %v", author, err)
	}
	return comment, nil
}

func (s *CommentService) ListByCrackme(ctx context.Context, crackmeHexID string, page, pageSize int) ([]model.Comment, error) {
	limit, offset := pageBounds(page, pageSize)
	comments, err := s.commentRepo.ListByCrackme(ctx, crackmeHexID, limit, offset)
	if err != nil {
		return nil, err
	}
	renderComments(comments)
	return comments, nil
}

func (s *CommentService) ListByAuthor(ctx context.Context, author string, page, pageSize int) ([]model.Comment, error) {
	limit, offset := pageBounds(page, pageSize)
	comments, err := s.commentRepo.ListByAuthor(ctx, author, limit, offset)
	if err != nil {
		return nil, err
	}
	renderComments(comments)
	return comments, nil
}

func (s *CommentService) Recent(ctx context.Context, limit int) ([]model.Comment, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	comments, err := s.commentRepo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	renderComments(comments)
	return comments, nil
}

func renderComments(comments []model.Comment) {
	for i := range comments {
		comments[i].HTML = common.RenderMarkdown(comments[i].Info)
	}
}
