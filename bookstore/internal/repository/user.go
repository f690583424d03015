package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

type userRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func (r *userRepository) Any(ctx context.Context) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `select exists (select 1 from users)`).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.existsBy(ctx, "username", username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.existsBy(ctx, "email", email)
}

func (r *userRepository) existsBy(ctx context.Context, column, value string) (bool, error) {
	query, args, err := qb.Select("1").
		Prefix("select exists (").
		From(usersTableName).
		Where(sq.Eq{column: value}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}
	var ok bool
	if err = r.db.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	query, args, err := qb.Select("id", "username", "email", "password_hash", "role").
		From(usersTableName).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.User{}, err
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.NotFound("user not found")
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, u model.User) error {
	q := `insert into users (id, username, email, password_hash, role)
	values (@id, @username, @email, @password_hash, @role)`
	args := pgx.NamedArgs{
		"id":            u.ID,
		"username":      u.Username,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"role":          string(u.Role),
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict(fmt.Sprintf("user %s or email %s already exists", u.Username, u.Email))
		}
		r.log.Error("Create user", zap.Error(err))
		return err
	}
	return nil
}
