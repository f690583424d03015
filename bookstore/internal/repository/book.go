package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

type bookRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

type bookRow struct {
	ID                  uuid.UUID       `db:"id"`
	Title               string          `db:"title"`
	Description         string          `db:"description"`
	Price               decimal.Decimal `db:"price"`
	ImageURL            *string         `db:"image_url"`
	AuthorID            uuid.UUID       `db:"author_id"`
	AuthorName          string          `db:"author_name"`
	AuthorSurname       string          `db:"author_surname"`
	CategoryID          uuid.UUID       `db:"category_id"`
	CategoryName        string          `db:"category_name"`
	CategoryDescription string          `db:"category_description"`
}

func (r bookRow) toModel() model.BookDetails {
	return model.BookDetails{
		Book: model.Book{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Price:       r.Price,
			AuthorID:    r.AuthorID,
			CategoryID:  r.CategoryID,
			ImageURL:    r.ImageURL,
		},
		Author:   model.Author{ID: r.AuthorID, Name: r.AuthorName, Surname: r.AuthorSurname},
		Category: model.Category{ID: r.CategoryID, Name: r.CategoryName, Description: r.CategoryDescription},
	}
}

func selectBooks() sq.SelectBuilder {
	return qb.Select(
		"b.id", "b.title", "b.description", "b.price", "b.image_url",
		"a.id as author_id", "a.name as author_name", "a.surname as author_surname",
		"c.id as category_id", "c.name as category_name", "c.description as category_description",
	).
		From(booksTableName + " b").
		Join(fmt.Sprintf("%s a on a.id = b.author_id", authorsTableName)).
		Join(fmt.Sprintf("%s c on c.id = b.category_id", categoriesTableName))
}

func (r *bookRepository) GetAll(ctx context.Context) ([]model.BookDetails, error) {
	query, args, err := selectBooks().OrderBy("b.title").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[bookRow])
	if err != nil {
		r.log.Error("GetAll books", zap.String("q", query), zap.Error(err))
		return nil, err
	}
	books := make([]model.BookDetails, 0, len(list))
	for _, b := range list {
		books = append(books, b.toModel())
	}
	return books, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (model.BookDetails, error) {
	query, args, err := selectBooks().Where(sq.Eq{"b.id": id}).ToSql()
	if err != nil {
		return model.BookDetails{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.BookDetails{}, err
	}
	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[bookRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BookDetails{}, errs.NotFound(fmt.Sprintf("book with id %s not found", id))
		}
		return model.BookDetails{}, err
	}
	return book.toModel(), nil
}

func (r *bookRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, booksTableName, id)
}

func (r *bookRepository) Create(ctx context.Context, b model.Book) error {
	query, args, err := qb.Insert(booksTableName).
		Columns("id", "title", "description", "price", "author_id", "category_id", "image_url").
		Values(b.ID, b.Title, b.Description, b.Price, b.AuthorID, b.CategoryID, b.ImageURL).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return errs.Validation("author or category doesn't exist")
		}
		r.log.Error("Create book", zap.String("q", query), zap.Error(err))
		return err
	}
	return nil
}

func (r *bookRepository) Update(ctx context.Context, b model.Book) error {
	query, args, err := qb.Update(booksTableName).
		SetMap(map[string]interface{}{
			"title":       b.Title,
			"description": b.Description,
			"price":       b.Price,
			"author_id":   b.AuthorID,
			"category_id": b.CategoryID,
			"image_url":   b.ImageURL,
		}).
		Where(sq.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errs.Validation("author or category doesn't exist")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound(fmt.Sprintf("book with id %s not found", b.ID))
	}
	return nil
}

func (r *bookRepository) SetImage(ctx context.Context, id uuid.UUID, imageURL *string) (*string, error) {
	var prev *string
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		q := `select image_url from books where id = $1 for update`
		if err := tx.QueryRow(ctx, q, id).Scan(&prev); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NotFound(fmt.Sprintf("book with id %s not found", id))
			}
			return err
		}
		_, err := tx.Exec(ctx, `update books set image_url = $2 where id = $1`, id, imageURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}

func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}
