package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/dbx"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const selectUser = `SELECT id, email, password_hash, password_salt, first_name, last_name, role, is_active, created_at
		 FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.PasswordSalt,
		&user.FirstName, &user.LastName, &user.Role, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	claims, err := loadClaims(ctx, r.db, user.ID)
	if err != nil {
		return nil, err
	}
	user.Claims = claims

	return user, nil
}

// Insert writes the user row and its claims atomically.
func (r *PostgresRepository) Insert(ctx context.Context, user *models.User) error {
	return r.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		query :=
			`INSERT INTO users (id, email, password_hash, password_salt, first_name, last_name, role, is_active, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

		_, err := tx.ExecContext(ctx, query,
			user.ID, user.Email, user.PasswordHash, user.PasswordSalt,
			user.FirstName, user.LastName, user.Role, user.IsActive, user.CreatedAt)
		if err != nil {
			return mapWriteError(err)
		}

		return storeClaims(ctx, tx, user.ID, user.Claims)
	})
}

// Update rewrites every mutable column and replaces the claims. created_at
// is never touched.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	return r.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		query :=
			`UPDATE users SET email = $2, password_hash = $3, password_salt = $4,
			 first_name = $5, last_name = $6, role = $7, is_active = $8
			 WHERE id = $1`

		res, err := tx.ExecContext(ctx, query,
			user.ID, user.Email, user.PasswordHash, user.PasswordSalt,
			user.FirstName, user.LastName, user.Role, user.IsActive)
		if err != nil {
			return mapWriteError(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return common.ErrorNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_claims WHERE user_id = $1`, user.ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return storeClaims(ctx, tx, user.ID, user.Claims)
	})
}

// inTx opens a transaction when bound to a *sql.DB and reuses the caller's
// transaction otherwise.
func (r *PostgresRepository) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if b, ok := r.db.(dbx.TxBeginner); ok {
		return dbx.WithTx(ctx, b, nil, fn)
	}
	return fn(ctx, r.db)
}

func storeClaims(ctx context.Context, tx dbx.DBTX, userID string, claims models.Claims) error {
	query :=
		`INSERT INTO user_claims (user_id, position, claim_type, claim_value)
		 VALUES ($1, $2, $3, $4)`

	for pos, c := range claims.Flatten() {
		if _, err := tx.ExecContext(ctx, query, userID, pos, c.Type, c.Value); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func loadClaims(ctx context.Context, db dbx.DBTX, userID string) (models.Claims, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT claim_type, claim_value FROM user_claims WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return models.Claims{}, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var claims models.Claims
	for rows.Next() {
		var claimType, value string
		if err := rows.Scan(&claimType, &value); err != nil {
			return models.Claims{}, fmt.Errorf("db error: %w", err)
		}
		claims.Add(claimType, value)
	}
	if err := rows.Err(); err != nil {
		return models.Claims{}, fmt.Errorf("db error: %w", err)
	}
	return claims, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}
