package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crackmehub/internal/common"
	"crackmehub/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByName(ctx context.Context, name string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByHexID(ctx context.Context, hexID string) (*model.User, error)
	AdjustCounts(ctx context.Context, name string, dCrackmes, dSolutions, dComments int) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, hexid, name, email, hashed_password, role, nb_crackmes, nb_solutions, nb_comments, status, created_at`

func (r *pgUserRepository) Create(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (id, hexid, name, email, hashed_password, role, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.HexID, u.Name, u.Email, u.HashedPassword, u.Role, u.Status)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user with given name or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	return r.findOne(ctx, `WHERE name = $1 AND status <> 'deleted'`, name)
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `WHERE email = $1 AND status <> 'deleted'`, email)
}

func (r *pgUserRepository) FindByHexID(ctx context.Context, hexID string) (*model.User, error) {
	return r.findOne(ctx, `WHERE hexid = $1 AND status <> 'deleted'`, hexID)
}

func (r *pgUserRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.HexID, &u.Name, &u.Email, &u.HashedPassword, &u.Role,
		&u.NbCrackmes, &u.NbSolutions, &u.NbComments, &u.Status, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.findOne: %w", err)
	}
	return u, nil
}

func (r *pgUserRepository) AdjustCounts(ctx context.Context, name string, dCrackmes, dSolutions, dComments int) error {
	query := `UPDATE users SET nb_crackmes = nb_crackmes + $1,
	                           nb_solutions = nb_solutions + $2,
	                           nb_comments = nb_comments + $3
	          WHERE name = $4`
	res, err := r.db.ExecContext(ctx, query, dCrackmes, dSolutions, dComments, name)
	if err != nil {
		return fmt.Errorf("pgUserRepository.AdjustCounts: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
