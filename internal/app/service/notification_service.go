package service

import (
	"context"

	"crackmehub/internal/domain/model"
	"crackmehub/internal/domain/repository"

	"github.com/google/uuid"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// Notify creates an unseen notification for a user.
func (s *NotificationService) Notify(ctx context.Context, userName, text string) error {
	n := &model.Notification{
		ID:       uuid.NewString(),
		HexID:    newHexID(),
		UserName: userName,
		Text:     text,
	}
	return s.notificationRepo.Create(ctx, n)
}

func (s *NotificationService) List(ctx context.Context, userName string, page, pageSize int) ([]model.Notification, error) {
	limit, offset := pageBounds(page, pageSize)
	return s.notificationRepo.ListByUser(ctx, userName, limit, offset)
}

func (s *NotificationService) UnseenCount(ctx context.Context, userName string) (int, error) {
	return s.notificationRepo.CountUnseen(ctx, userName)
}

func (s *NotificationService) MarkSeen(ctx context.Context, hexID, userName string) error {
	return s.notificationRepo.MarkSeen(ctx, hexID, userName)
}

func (s *NotificationService) MarkAllSeen(ctx context.Context, userName string) error {
	return s.notificationRepo.MarkAllSeen(ctx, userName)
}

func (s *NotificationService) Delete(ctx context.Context, hexID, userName string) error {
	return s.notificationRepo.Delete(ctx, hexID, userName)
}
