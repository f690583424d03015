package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

type categoryRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]model.CategoryDetails, error) {
	query, args, err := qb.Select("id", "name", "description").
		From(categoriesTableName).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	categories, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Category])
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	books, err := booksBy(ctx, r.db, "category_id", ids)
	if err != nil {
		return nil, err
	}
	res := make([]model.CategoryDetails, 0, len(categories))
	for _, c := range categories {
		res = append(res, model.CategoryDetails{Category: c, Books: books[c.ID]})
	}
	return res, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (model.CategoryDetails, error) {
	query, args, err := qb.Select("id", "name", "description").
		From(categoriesTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.CategoryDetails{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.CategoryDetails{}, err
	}
	category, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Category])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CategoryDetails{}, errs.NotFound(fmt.Sprintf("category with id %s not found", id))
		}
		return model.CategoryDetails{}, err
	}
	books, err := booksBy(ctx, r.db, "category_id", []uuid.UUID{id})
	if err != nil {
		return model.CategoryDetails{}, err
	}
	return model.CategoryDetails{Category: category, Books: books[id]}, nil
}

func (r *categoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, categoriesTableName, id)
}

func (r *categoryRepository) Create(ctx context.Context, c model.Category) error {
	query, args, err := qb.Insert(categoriesTableName).
		Columns("id", "name", "description").
		Values(c.ID, c.Name, c.Description).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Create category", zap.String("q", query), zap.Error(err))
		return err
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, c model.Category) error {
	query, args, err := qb.Update(categoriesTableName).
		Set("name", c.Name).
		Set("description", c.Description).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound(fmt.Sprintf("category with id %s not found", c.ID))
	}
	return nil
}

// Delete removes the category and, by cascade, its books and their cart items.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := qb.Delete(categoriesTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}
