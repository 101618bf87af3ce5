package repository

import (
	"context"
	"database/sql"
	"fmt"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
)

type RatingRepository interface {
	Insert(ctx context.Context, rating *model.Rating) error
	Exists(ctx context.Context, kind model.RatingKind, author, crackmeHexID string) (bool, error)
	Summary(ctx context.Context, kind model.RatingKind, crackmeHexID string) (model.RatingSummary, error)
	ListByCrackme(ctx context.Context, kind model.RatingKind, crackmeHexID string) ([]model.Rating, error)
	HardDeleteByCrackme(ctx context.Context, tx *sql.Tx, kind model.RatingKind, crackmeHexID string) (int, error)
}

type pgRatingRepository struct {
	db *sql.DB
}

func NewPgRatingRepository(db *sql.DB) RatingRepository {
	return &pgRatingRepository{db: db}
}

// Each rating kind keeps its own table, mirroring the original
// rating_difficulty/rating_quality collections.
func tableFor(kind model.RatingKind) (string, error) {
	switch kind {
	case model.RatingDifficulty:
		return "rating_difficulty", nil
	case model.RatingQuality:
		return "rating_quality", nil
	default:
		return "", fmt.Errorf("unknown rating kind %q: %w", kind, common.ErrBadRequest)
	}
}

func (r *pgRatingRepository) Insert(ctx context.Context, rating *model.Rating) error {
	table, err := tableFor(rating.Kind)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + table + ` (id, author, crackme_hexid, rating, status)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.ExecContext(ctx, query, rating.ID, rating.Author, rating.CrackmeHexID, rating.Rating, rating.Status)
	if err != nil {
		// Partial unique index on (author, crackme_hexid); the advisory
		// existence check upstream can lose a race, this cannot.
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("pgRatingRepository.Insert: %w", common.ErrAlreadyRated)
		}
		return fmt.Errorf("pgRatingRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgRatingRepository) Exists(ctx context.Context, kind model.RatingKind, author, crackmeHexID string) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + `
	          WHERE author = $1 AND crackme_hexid = $2 AND status <> 'deleted')`
	if err := r.db.QueryRowContext(ctx, query, author, crackmeHexID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgRatingRepository.Exists: %w", err)
	}
	return exists, nil
}

// Summary computes the live average and count over published ratings.
// COALESCE keeps the zero-ratings case at 0.0 instead of NULL.
func (r *pgRatingRepository) Summary(ctx context.Context, kind model.RatingKind, crackmeHexID string) (model.RatingSummary, error) {
	table, err := tableFor(kind)
	if err != nil {
		return model.RatingSummary{}, err
	}
	var summary model.RatingSummary
	query := `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM ` + table + `
	          WHERE crackme_hexid = $1 AND status = 'published'`
	if err := r.db.QueryRowContext(ctx, query, crackmeHexID).Scan(&summary.Average, &summary.Count); err != nil {
		return model.RatingSummary{}, fmt.Errorf("pgRatingRepository.Summary: %w", err)
	}
	return summary, nil
}

func (r *pgRatingRepository) ListByCrackme(ctx context.Context, kind model.RatingKind, crackmeHexID string) ([]model.Rating, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, author, crackme_hexid, rating, status, created_at FROM ` + table + `
	          WHERE crackme_hexid = $1 AND status = 'published'
	          ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, crackmeHexID)
	if err != nil {
		return nil, fmt.Errorf("pgRatingRepository.ListByCrackme query: %w", err)
	}
	defer rows.Close()

	ratings := []model.Rating{}
	for rows.Next() {
		rating := model.Rating{Kind: kind}
		if err := rows.Scan(&rating.ID, &rating.Author, &rating.CrackmeHexID, &rating.Rating, &rating.Status, &rating.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgRatingRepository.ListByCrackme scan: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRatingRepository.ListByCrackme rows.Err: %w", err)
	}
	return ratings, nil
}

func (r *pgRatingRepository) HardDeleteByCrackme(ctx context.Context, tx *sql.Tx, kind model.RatingKind, crackmeHexID string) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	query := `DELETE FROM ` + table + ` WHERE crackme_hexid = $1`
	var res sql.Result
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, crackmeHexID)
	} else {
		res, err = r.db.ExecContext(ctx, query, crackmeHexID)
	}
	if err != nil {
		return 0, fmt.Errorf("pgRatingRepository.HardDeleteByCrackme: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
