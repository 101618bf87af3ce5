package service

import (
	"context"
	"errors"
	"fmt"

	"crackmehub/internal/common"
	"crackmehub/internal/common/security"
	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // Can be username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	user := &model.User{
		ID:     uuid.NewString(),
		HexID:  newHexID(),
		Name:   req.Username,
		Email:  req.Email,
		Role:   model.RoleUser,
		Status: model.StatusPublished,
	}

	// Collect rule violations from both structs so the caller sees the full
	// list in one failure.
	violations := append(
		common.ViolationsFromError(common.Validate(user)),
		common.ViolationsFromError(common.Validate(req))...,
	)
	if len(violations) > 0 {
		return nil, &common.ValidationError{Violations: violations}
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashedPassword

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on duplicate name/email
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	var user *model.User
	var err error

	// Try finding by email first, then by name
	user, err = s.userRepo.FindByEmail(ctx, req.LoginField)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			user, err = s.userRepo.FindByName(ctx, req.LoginField)
		}
	}

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}
