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

const (
	unknownAuthor   = "Unknown author"
	unknownCategory = "No category"
)

type cartRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func (r *cartRepository) Upsert(ctx context.Context, item model.CartItem) (uuid.UUID, error) {
	q := `insert into cart_items (id, user_id, book_id, quantity, date_added)
	values (@id, @user_id, @book_id, @quantity, @date_added)
	on conflict (user_id, book_id) do update
	    set quantity = cart_items.quantity + excluded.quantity
	returning id`
	args := pgx.NamedArgs{
		"id":         item.ID,
		"user_id":    item.UserID,
		"book_id":    item.BookID,
		"quantity":   item.Quantity,
		"date_added": item.DateAdded,
	}
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		if isForeignKeyViolation(err) {
			return uuid.Nil, errs.NotFound(fmt.Sprintf("book with id %s not found", item.BookID))
		}
		r.log.Error("Upsert cart item", zap.Error(err))
		return uuid.Nil, err
	}
	return id, nil
}

func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (model.CartItem, error) {
	query, args, err := qb.Select("id", "user_id", "book_id", "quantity", "date_added").
		From(cartItemsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.CartItem{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.CartItem{}, err
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CartItem])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CartItem{}, errs.NotFound(fmt.Sprintf("cart item with id %s not found", id))
		}
		return model.CartItem{}, err
	}
	return item, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, id uuid.UUID, quantity int) error {
	query, args, err := qb.Update(cartItemsTableName).
		Set("quantity", quantity).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound(fmt.Sprintf("cart item with id %s not found", id))
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query, args, err := qb.Delete(cartItemsTableName).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound(fmt.Sprintf("cart item with id %s not found", id))
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query, args, err := qb.Delete(cartItemsTableName).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *cartRepository) List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	query, args, err := qb.Select(
		"ci.id", "ci.user_id", "ci.book_id", "ci.quantity", "ci.date_added",
		"b.title as book_title", "b.description as book_description",
		"b.price as book_price", "b.image_url as book_image_url",
		fmt.Sprintf("coalesce(a.name, '%s') as author_name", unknownAuthor),
		fmt.Sprintf("coalesce(c.name, '%s') as category_name", unknownCategory),
	).
		From(cartItemsTableName + " ci").
		Join(fmt.Sprintf("%s b on b.id = ci.book_id", booksTableName)).
		LeftJoin(fmt.Sprintf("%s a on a.id = b.author_id", authorsTableName)).
		LeftJoin(fmt.Sprintf("%s c on c.id = b.category_id", categoriesTableName)).
		Where(sq.Eq{"ci.user_id": userID}).
		OrderBy("ci.date_added desc", "ci.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.CartLine])
	if err != nil {
		r.log.Error("List cart", zap.String("q", query), zap.Error(err))
		return nil, err
	}
	return lines, nil
}
