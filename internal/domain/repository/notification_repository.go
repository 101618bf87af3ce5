package repository

import (
	"context"
	"database/sql"
	"fmt"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByUser(ctx context.Context, userName string, limit, offset int) ([]model.Notification, error)
	CountUnseen(ctx context.Context, userName string) (int, error)
	MarkSeen(ctx context.Context, hexID, userName string) error
	MarkAllSeen(ctx context.Context, userName string) error
	Delete(ctx context.Context, hexID, userName string) error
}

type pgNotificationRepository struct {
	db *sql.DB
}

func NewPgNotificationRepository(db *sql.DB) NotificationRepository {
	return &pgNotificationRepository{db: db}
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `INSERT INTO notifications (id, hexid, user_name, text, seen)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.HexID, n.UserName, n.Text, n.Seen)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) ListByUser(ctx context.Context, userName string, limit, offset int) ([]model.Notification, error) {
	query := `SELECT id, hexid, user_name, text, seen, created_at FROM notifications
	          WHERE user_name = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userName, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.HexID, &n.UserName, &n.Text, &n.Seen, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgNotificationRepository.ListByUser scan: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgNotificationRepository.ListByUser rows.Err: %w", err)
	}
	return notifications, nil
}

func (r *pgNotificationRepository) CountUnseen(ctx context.Context, userName string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_name = $1 AND seen = FALSE`
	if err := r.db.QueryRowContext(ctx, query, userName).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgNotificationRepository.CountUnseen: %w", err)
	}
	return count, nil
}

func (r *pgNotificationRepository) MarkSeen(ctx context.Context, hexID, userName string) error {
	query := `UPDATE notifications SET seen = TRUE WHERE hexid = $1 AND user_name = $2`
	res, err := r.db.ExecContext(ctx, query, hexID, userName)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.MarkSeen: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgNotificationRepository) MarkAllSeen(ctx context.Context, userName string) error {
	query := `UPDATE notifications SET seen = TRUE WHERE user_name = $1 AND seen = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userName); err != nil {
		return fmt.Errorf("pgNotificationRepository.MarkAllSeen: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) Delete(ctx context.Context, hexID, userName string) error {
	query := `DELETE FROM notifications WHERE hexid = $1 AND user_name = $2`
	res, err := r.db.ExecContext(ctx, query, hexID, userName)
	if err != nil {
		return fmt.Errorf("pgNotificationRepository.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
