package service

import (
	"context"
	"fmt"
	"io"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"
	"crackmehub/internal/platform/storage"

	"github.com/google/uuid"
)

const ArtifactKindSolution = "solution"

type SolutionService struct {
	solutionRepo repository.SolutionRepository
	crackmeRepo  repository.CrackmeRepository
	store        *storage.Store
}

func NewSolutionService(solutionRepo repository.SolutionRepository, crackmeRepo repository.CrackmeRepository, store *storage.Store) *SolutionService {
	return &SolutionService{solutionRepo: solutionRepo, crackmeRepo: crackmeRepo, store: store}
}

// Submit files a solution against a published crackme. Like crackmes,
// solutions await moderation before they become visible or counted.
func (s *SolutionService) Submit(ctx context.Context, crackmeHexID, author, info, filename string, artifact io.Reader) (*model.Solution, error) {
	crackme, err := s.crackmeRepo.FindByHexID(ctx, crackmeHexID)
	if err != nil {
		return nil, err
	}
	if !crackme.Status.Visible() {
		return nil, common.ErrNotFound
	}

	solution := &model.Solution{
		ID:        uuid.NewString(),
		HexID:     newHexID(),
		CrackmeID: crackme.ID, // solutions reference the internal key
		Info:      info,
		Author:    author,
		Status:    model.StatusPending,
	}
	if err := common.Validate(solution); err != nil {
		return nil, err
	}

	if err := s.solutionRepo.Create(ctx, solution); err != nil {
		return nil, err
	}

	if artifact != nil {
		storedName := storage.StoredName(author, solution.HexID, filename)
		if err := s.store.Save(ArtifactKindSolution, storedName, artifact); err != nil {
			return nil, fmt.Errorf("failed to store solution artifact: %w", err)
		}
	}
	solution.CrackmeHexID = crackme.HexID
	solution.CrackmeName = crackme.Name
	return solution, nil
}

func (s *SolutionService) Get(ctx context.Context, hexID string) (*model.Solution, error) {
	return s.solutionRepo.FindByHexID(ctx, hexID)
}

func (s *SolutionService) ListByCrackme(ctx context.Context, crackmeHexID string, page, pageSize int) ([]model.Solution, error) {
	crackme, err := s.crackmeRepo.FindByHexID(ctx, crackmeHexID)
	if err != nil {
		return nil, err
	}
	limit, offset := pageBounds(page, pageSize)
	return s.solutionRepo.ListByCrackmeID(ctx, crackme.ID, limit, offset)
}

func (s *SolutionService) ListByAuthor(ctx context.Context, author string, page, pageSize int) ([]model.Solution, error) {
	limit, offset := pageBounds(page, pageSize)
	return s.solutionRepo.ListByAuthor(ctx, author, limit, offset)
}
