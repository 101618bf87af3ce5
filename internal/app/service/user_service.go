package service

import (
	"context"

	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByName(ctx context.Context, name string) (*model.User, error) {
	return s.userRepo.FindByName(ctx, name)
}
