package repository

import (
	"context"
	"database/sql"
	"fmt"

	"crackmehub/internal/domain/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByCrackme(ctx context.Context, crackmeHexID string, limit, offset int) ([]model.Comment, error)
	ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Comment, error)
	Recent(ctx context.Context, limit int) ([]model.Comment, error)
	CountPublishedByCrackme(ctx context.Context, crackmeHexID string) (int, error)
	HardDeleteByCrackme(ctx context.Context, tx *sql.Tx, crackmeHexID string) (int, error)
}

type pgCommentRepository struct {
	db *sql.DB
}

func NewPgCommentRepository(db *sql.DB) CommentRepository {
	return &pgCommentRepository{db: db}
}

const commentColumns = `id, crackme_hexid, author, info, status, created_at`

func (r *pgCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `INSERT INTO comments (id, crackme_hexid, author, info, status)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.CrackmeHexID, c.Author, c.Info, c.Status)
	if err != nil {
		return fmt.Errorf("pgCommentRepository.Create: %w", err)
	}
	return nil
}

// ListByCrackme returns oldest first: comments read as a thread.
func (r *pgCommentRepository) ListByCrackme(ctx context.Context, crackmeHexID string, limit, offset int) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments
	          WHERE crackme_hexid = $1 AND status = 'published'
	          ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, crackmeHexID, limit, offset)
}

func (r *pgCommentRepository) ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments
	          WHERE author = $1 AND status = 'published'
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, author, limit, offset)
}

func (r *pgCommentRepository) Recent(ctx context.Context, limit int) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments
	          WHERE status = 'published'
	          ORDER BY created_at DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *pgCommentRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgCommentRepository.list query: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.CrackmeHexID, &c.Author, &c.Info, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgCommentRepository.list scan: %w", err)
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCommentRepository.list rows.Err: %w", err)
	}
	return comments, nil
}

func (r *pgCommentRepository) CountPublishedByCrackme(ctx context.Context, crackmeHexID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM comments WHERE crackme_hexid = $1 AND status = 'published'`
	if err := r.db.QueryRowContext(ctx, query, crackmeHexID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgCommentRepository.CountPublishedByCrackme: %w", err)
	}
	return count, nil
}

func (r *pgCommentRepository) HardDeleteByCrackme(ctx context.Context, tx *sql.Tx, crackmeHexID string) (int, error) {
	query := `DELETE FROM comments WHERE crackme_hexid = $1`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, crackmeHexID)
	} else {
		res, err = r.db.ExecContext(ctx, query, crackmeHexID)
	}
	if err != nil {
		return 0, fmt.Errorf("pgCommentRepository.HardDeleteByCrackme: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
