package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
)

type SolutionRepository interface {
	Create(ctx context.Context, solution *model.Solution) error
	FindByHexID(ctx context.Context, hexID string) (*model.Solution, error)
	ListByCrackmeID(ctx context.Context, crackmeID string, limit, offset int) ([]model.Solution, error)
	ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Solution, error)
	CountPublishedByCrackmeID(ctx context.Context, crackmeID string) (int, error)
	UpdateStatus(ctx context.Context, hexID string, status model.Status) error
	HardDelete(ctx context.Context, tx *sql.Tx, id string) error
	HardDeleteByCrackmeID(ctx context.Context, tx *sql.Tx, crackmeID string) (int, error)
}

type pgSolutionRepository struct {
	db *sql.DB
}

func NewPgSolutionRepository(db *sql.DB) SolutionRepository {
	return &pgSolutionRepository{db: db}
}

func (r *pgSolutionRepository) Create(ctx context.Context, s *model.Solution) error {
	query := `INSERT INTO solutions (id, hexid, crackme_id, info, author, status)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.HexID, s.CrackmeID, s.Info, s.Author, s.Status)
	if err != nil {
		return fmt.Errorf("pgSolutionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSolutionRepository) FindByHexID(ctx context.Context, hexID string) (*model.Solution, error) {
	query := `SELECT s.id, s.hexid, s.crackme_id, s.info, s.author, s.status, s.created_at,
	                 c.hexid, c.name
	          FROM solutions s
	          JOIN crackmes c ON s.crackme_id = c.id
	          WHERE s.hexid = $1 AND s.status <> 'deleted'`
	s := &model.Solution{}
	err := r.db.QueryRowContext(ctx, query, hexID).Scan(
		&s.ID, &s.HexID, &s.CrackmeID, &s.Info, &s.Author, &s.Status, &s.CreatedAt,
		&s.CrackmeHexID, &s.CrackmeName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSolutionRepository.FindByHexID: %w", err)
	}
	return s, nil
}

func (r *pgSolutionRepository) ListByCrackmeID(ctx context.Context, crackmeID string, limit, offset int) ([]model.Solution, error) {
	query := `SELECT s.id, s.hexid, s.crackme_id, s.info, s.author, s.status, s.created_at,
	                 c.hexid, c.name
	          FROM solutions s
	          JOIN crackmes c ON s.crackme_id = c.id
	          WHERE s.crackme_id = $1 AND s.status = 'published'
	          ORDER BY s.created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, crackmeID, limit, offset)
}

func (r *pgSolutionRepository) ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Solution, error) {
	query := `SELECT s.id, s.hexid, s.crackme_id, s.info, s.author, s.status, s.created_at,
	                 c.hexid, c.name
	          FROM solutions s
	          JOIN crackmes c ON s.crackme_id = c.id
	          WHERE s.author = $1 AND s.status = 'published'
	          ORDER BY s.created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, author, limit, offset)
}

func (r *pgSolutionRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Solution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.list query: %w", err)
	}
	defer rows.Close()

	solutions := []model.Solution{}
	for rows.Next() {
		var s model.Solution
		if err := rows.Scan(
			&s.ID, &s.HexID, &s.CrackmeID, &s.Info, &s.Author, &s.Status, &s.CreatedAt,
			&s.CrackmeHexID, &s.CrackmeName,
		); err != nil {
			return nil, fmt.Errorf("pgSolutionRepository.list scan: %w", err)
		}
		solutions = append(solutions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.list rows.Err: %w", err)
	}
	return solutions, nil
}

func (r *pgSolutionRepository) CountPublishedByCrackmeID(ctx context.Context, crackmeID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM solutions WHERE crackme_id = $1 AND status = 'published'`
	if err := r.db.QueryRowContext(ctx, query, crackmeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgSolutionRepository.CountPublishedByCrackmeID: %w", err)
	}
	return count, nil
}

func (r *pgSolutionRepository) UpdateStatus(ctx context.Context, hexID string, status model.Status) error {
	query := `UPDATE solutions SET status = $1 WHERE hexid = $2`
	res, err := r.db.ExecContext(ctx, query, status, hexID)
	if err != nil {
		return fmt.Errorf("pgSolutionRepository.UpdateStatus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSolutionRepository) HardDelete(ctx context.Context, tx *sql.Tx, id string) error {
	query := `DELETE FROM solutions WHERE id = $1`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		return fmt.Errorf("pgSolutionRepository.HardDelete: %w", err)
	}
	return nil
}

func (r *pgSolutionRepository) HardDeleteByCrackmeID(ctx context.Context, tx *sql.Tx, crackmeID string) (int, error) {
	query := `DELETE FROM solutions WHERE crackme_id = $1`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, crackmeID)
	} else {
		res, err = r.db.ExecContext(ctx, query, crackmeID)
	}
	if err != nil {
		return 0, fmt.Errorf("pgSolutionRepository.HardDeleteByCrackmeID: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
