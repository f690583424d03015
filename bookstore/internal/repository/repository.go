package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

type AuthorRepository interface {
	GetAll(ctx context.Context) ([]model.AuthorDetails, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.AuthorDetails, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, a model.Author) error
	Update(ctx context.Context, a model.Author) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]model.CategoryDetails, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.CategoryDetails, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, c model.Category) error
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BookRepository interface {
	GetAll(ctx context.Context) ([]model.BookDetails, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.BookDetails, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, b model.Book) error
	Update(ctx context.Context, b model.Book) error
	// SetImage replaces the image url and returns the previous one.
	SetImage(ctx context.Context, id uuid.UUID, imageURL *string) (*string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Any(ctx context.Context) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, u model.User) error
}

type CartRepository interface {
	// Upsert inserts item or adds its quantity to the existing (user, book) row.
	Upsert(ctx context.Context, item model.CartItem) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
}

type Repository struct {
	Authors    AuthorRepository
	Categories CategoryRepository
	Books      BookRepository
	Users      UserRepository
	Cart       CartRepository
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*Repository, error) {
	if db == nil {
		return nil, errors.New("nil db pool")
	}
	log = log.Named("repo")
	return &Repository{
		Authors:    &authorRepository{db: db, log: log},
		Categories: &categoryRepository{db: db, log: log},
		Books:      &bookRepository{db: db, log: log},
		Users:      &userRepository{db: db, log: log},
		Cart:       &cartRepository{db: db, log: log},
	}, nil
}

const (
	authorsTableName    = `authors`
	categoriesTableName = `categories`
	booksTableName      = `books`
	usersTableName      = `users`
	cartItemsTableName  = `cart_items`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err) == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == pgerrcode.ForeignKeyViolation
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func exists(ctx context.Context, db querier, table string, id uuid.UUID) (bool, error) {
	query, args, err := qb.Select("1").
		Prefix("select exists (").
		From(table).
		Where(sq.Eq{"id": id}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}
	var ok bool
	if err = db.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
