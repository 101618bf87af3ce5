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
	"github.com/gosimple/slug"
)

const ArtifactKindCrackme = "crackme"

type CrackmeService struct {
	crackmeRepo repository.CrackmeRepository
	store       *storage.Store
}

func NewCrackmeService(crackmeRepo repository.CrackmeRepository, store *storage.Store) *CrackmeService {
	return &CrackmeService{crackmeRepo: crackmeRepo, store: store}
}

type CreateCrackmeRequest struct {
	Name     string `json:"name"`
	Info     string `json:"info"`
	Lang     string `json:"lang"`
	Arch     string `json:"arch"`
	Platform string `json:"platform"`
}

// Create registers a crackme in pending state; it stays invisible until a
// moderator approves it. The uploaded artifact is stored under
// author+++hexid+++filename so the moderation tooling can address it.
func (s *CrackmeService) Create(ctx context.Context, author string, req CreateCrackmeRequest, filename string, artifact io.Reader) (*model.Crackme, error) {
	crackme := &model.Crackme{
		ID:       uuid.NewString(),
		HexID:    newHexID(),
		Name:     req.Name,
		Slug:     slug.Make(req.Name),
		Info:     req.Info,
		Lang:     req.Lang,
		Arch:     req.Arch,
		Platform: req.Platform,
		Author:   author,
		Status:   model.StatusPending,
	}
	if err := common.Validate(crackme); err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, fmt.Errorf("crackme artifact is required: %w", common.ErrBadRequest)
	}

	if err := s.crackmeRepo.Create(ctx, crackme); err != nil {
		return nil, err
	}

	storedName := storage.StoredName(author, crackme.HexID, filename)
	if err := s.store.Save(ArtifactKindCrackme, storedName, artifact); err != nil {
		return nil, fmt.Errorf("failed to store crackme artifact: %w", err)
	}
	return crackme, nil
}

func (s *CrackmeService) Get(ctx context.Context, hexID string) (*model.Crackme, error) {
	return s.crackmeRepo.FindByHexID(ctx, hexID)
}

func (s *CrackmeService) List(ctx context.Context, page, pageSize int) ([]model.Crackme, int, error) {
	limit, offset := pageBounds(page, pageSize)
	return s.crackmeRepo.ListPublished(ctx, limit, offset)
}

func (s *CrackmeService) ListByAuthor(ctx context.Context, author string, page, pageSize int) ([]model.Crackme, error) {
	limit, offset := pageBounds(page, pageSize)
	return s.crackmeRepo.ListByAuthor(ctx, author, limit, offset)
}

func (s *CrackmeService) Search(ctx context.Context, term string, page, pageSize int) ([]model.Crackme, int, error) {
	if term == "" {
		return nil, 0, fmt.Errorf("search term is required: %w", common.ErrBadRequest)
	}
	limit, offset := pageBounds(page, pageSize)
	return s.crackmeRepo.Search(ctx, term, limit, offset)
}

func pageBounds(page, pageSize int) (limit, offset int) {
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
