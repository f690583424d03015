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

type authorRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func (r *authorRepository) GetAll(ctx context.Context) ([]model.AuthorDetails, error) {
	query, args, err := qb.Select("id", "name", "surname").
		From(authorsTableName).
		OrderBy("name", "surname").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	authors, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	books, err := booksBy(ctx, r.db, "author_id", ids)
	if err != nil {
		return nil, err
	}
	res := make([]model.AuthorDetails, 0, len(authors))
	for _, a := range authors {
		res = append(res, model.AuthorDetails{Author: a, Books: books[a.ID]})
	}
	return res, nil
}

func (r *authorRepository) GetByID(ctx context.Context, id uuid.UUID) (model.AuthorDetails, error) {
	query, args, err := qb.Select("id", "name", "surname").
		From(authorsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.AuthorDetails{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.AuthorDetails{}, err
	}
	author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AuthorDetails{}, errs.NotFound(fmt.Sprintf("author with id %s not found", id))
		}
		return model.AuthorDetails{}, err
	}
	books, err := booksBy(ctx, r.db, "author_id", []uuid.UUID{id})
	if err != nil {
		return model.AuthorDetails{}, err
	}
	return model.AuthorDetails{Author: author, Books: books[id]}, nil
}

func (r *authorRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, authorsTableName, id)
}

func (r *authorRepository) Create(ctx context.Context, a model.Author) error {
	query, args, err := qb.Insert(authorsTableName).
		Columns("id", "name", "surname").
		Values(a.ID, a.Name, a.Surname).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Create author", zap.String("q", query), zap.Error(err))
		return err
	}
	return nil
}

func (r *authorRepository) Update(ctx context.Context, a model.Author) error {
	query, args, err := qb.Update(authorsTableName).
		Set("name", a.Name).
		Set("surname", a.Surname).
		Where(sq.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound(fmt.Sprintf("author with id %s not found", a.ID))
	}
	return nil
}

// Delete removes the author and, by cascade, its books and their cart items.
func (r *authorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := qb.Delete(authorsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// booksBy loads the books whose column (author_id or category_id) is in ids, grouped by that column.
func booksBy(ctx context.Context, db *pgxpool.Pool, column string, ids []uuid.UUID) (map[uuid.UUID][]model.Book, error) {
	res := make(map[uuid.UUID][]model.Book, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	query, args, err := qb.Select("id", "title", "description", "price", "author_id", "category_id", "image_url").
		From(booksTableName).
		Where(sq.Eq{column: ids}).
		OrderBy("title").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		key := b.AuthorID
		if column == "category_id" {
			key = b.CategoryID
		}
		res[key] = append(res[key], b)
	}
	return res, nil
}
