package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
)

type CrackmeRepository interface {
	Create(ctx context.Context, crackme *model.Crackme) error
	FindByHexID(ctx context.Context, hexID string) (*model.Crackme, error)
	FindByID(ctx context.Context, id string) (*model.Crackme, error)
	ListPublished(ctx context.Context, limit, offset int) ([]model.Crackme, int, error)
	ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Crackme, error)
	Search(ctx context.Context, term string, limit, offset int) ([]model.Crackme, int, error)
	ListAll(ctx context.Context) ([]model.Crackme, error)
	UpdateStatus(ctx context.Context, hexID string, status model.Status) error
	UpdateAverage(ctx context.Context, hexID string, kind model.RatingKind, value float64) error
	UpdateCounts(ctx context.Context, hexID string, nbSolutions, nbComments int) error
	HardDelete(ctx context.Context, tx *sql.Tx, id string) error
}

type pgCrackmeRepository struct {
	db *sql.DB
}

func NewPgCrackmeRepository(db *sql.DB) CrackmeRepository {
	return &pgCrackmeRepository{db: db}
}

const crackmeColumns = `id, hexid, name, slug, info, lang, arch, platform, author,
	difficulty, quality, nb_solutions, nb_comments, status, created_at, updated_at`

func (r *pgCrackmeRepository) Create(ctx context.Context, c *model.Crackme) error {
	query := `INSERT INTO crackmes (id, hexid, name, slug, info, lang, arch, platform, author, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.HexID, c.Name, c.Slug, c.Info, c.Lang, c.Arch, c.Platform, c.Author, c.Status)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("crackme with this hexid already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCrackmeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCrackmeRepository) FindByHexID(ctx context.Context, hexID string) (*model.Crackme, error) {
	return r.findOne(ctx, `WHERE hexid = $1 AND status <> 'deleted'`, hexID)
}

func (r *pgCrackmeRepository) FindByID(ctx context.Context, id string) (*model.Crackme, error) {
	return r.findOne(ctx, `WHERE id = $1 AND status <> 'deleted'`, id)
}

func (r *pgCrackmeRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.Crackme, error) {
	query := `SELECT ` + crackmeColumns + ` FROM crackmes ` + where
	c := &model.Crackme{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.HexID, &c.Name, &c.Slug, &c.Info, &c.Lang, &c.Arch, &c.Platform, &c.Author,
		&c.Difficulty, &c.Quality, &c.NbSolutions, &c.NbComments, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCrackmeRepository.findOne: %w", err)
	}
	return c, nil
}

func (r *pgCrackmeRepository) ListPublished(ctx context.Context, limit, offset int) ([]model.Crackme, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM crackmes WHERE status = 'published'`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgCrackmeRepository.ListPublished count: %w", err)
	}

	query := `SELECT ` + crackmeColumns + ` FROM crackmes WHERE status = 'published'
	          ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	crackmes, err := r.list(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return crackmes, total, nil
}

func (r *pgCrackmeRepository) ListByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Crackme, error) {
	query := `SELECT ` + crackmeColumns + ` FROM crackmes WHERE author = $1 AND status = 'published'
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, author, limit, offset)
}

func (r *pgCrackmeRepository) Search(ctx context.Context, term string, limit, offset int) ([]model.Crackme, int, error) {
	like := "%" + term + "%"
	var total int
	countQuery := `SELECT COUNT(*) FROM crackmes
	               WHERE status = 'published' AND (name ILIKE $1 OR info ILIKE $1 OR author ILIKE $1)`
	if err := r.db.QueryRowContext(ctx, countQuery, like).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgCrackmeRepository.Search count: %w", err)
	}

	query := `SELECT ` + crackmeColumns + ` FROM crackmes
	          WHERE status = 'published' AND (name ILIKE $1 OR info ILIKE $1 OR author ILIKE $1)
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	crackmes, err := r.list(ctx, query, like, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return crackmes, total, nil
}

// ListAll returns every crackme regardless of status. The consistency
// verifier scans the whole collection, including records still in moderation.
func (r *pgCrackmeRepository) ListAll(ctx context.Context) ([]model.Crackme, error) {
	query := `SELECT ` + crackmeColumns + ` FROM crackmes ORDER BY created_at ASC`
	return r.list(ctx, query)
}

func (r *pgCrackmeRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Crackme, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgCrackmeRepository.list query: %w", err)
	}
	defer rows.Close()

	crackmes := []model.Crackme{}
	for rows.Next() {
		var c model.Crackme
		if err := rows.Scan(
			&c.ID, &c.HexID, &c.Name, &c.Slug, &c.Info, &c.Lang, &c.Arch, &c.Platform, &c.Author,
			&c.Difficulty, &c.Quality, &c.NbSolutions, &c.NbComments, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgCrackmeRepository.list scan: %w", err)
		}
		crackmes = append(crackmes, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCrackmeRepository.list rows.Err: %w", err)
	}
	return crackmes, nil
}

func (r *pgCrackmeRepository) UpdateStatus(ctx context.Context, hexID string, status model.Status) error {
	query := `UPDATE crackmes SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE hexid = $2`
	res, err := r.db.ExecContext(ctx, query, status, hexID)
	if err != nil {
		return fmt.Errorf("pgCrackmeRepository.UpdateStatus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCrackmeRepository) UpdateAverage(ctx context.Context, hexID string, kind model.RatingKind, value float64) error {
	var query string
	switch kind {
	case model.RatingDifficulty:
		query = `UPDATE crackmes SET difficulty = $1, updated_at = CURRENT_TIMESTAMP WHERE hexid = $2`
	case model.RatingQuality:
		query = `UPDATE crackmes SET quality = $1, updated_at = CURRENT_TIMESTAMP WHERE hexid = $2`
	default:
		return fmt.Errorf("pgCrackmeRepository.UpdateAverage: unknown rating kind %q: %w", kind, common.ErrBadRequest)
	}
	res, err := r.db.ExecContext(ctx, query, value, hexID)
	if err != nil {
		return fmt.Errorf("pgCrackmeRepository.UpdateAverage: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCrackmeRepository) UpdateCounts(ctx context.Context, hexID string, nbSolutions, nbComments int) error {
	query := `UPDATE crackmes SET nb_solutions = $1, nb_comments = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE hexid = $3`
	res, err := r.db.ExecContext(ctx, query, nbSolutions, nbComments, hexID)
	if err != nil {
		return fmt.Errorf("pgCrackmeRepository.UpdateCounts: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCrackmeRepository) HardDelete(ctx context.Context, tx *sql.Tx, id string) error {
	query := `DELETE FROM crackmes WHERE id = $1`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		return fmt.Errorf("pgCrackmeRepository.HardDelete: %w", err)
	}
	return nil
}
