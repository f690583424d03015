package handler

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/bookstore/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest, role model.Role) (model.User, error)
	Login(ctx context.Context, username, password string) (model.LoginResult, error)
}

type BookService interface {
	GetAll(ctx context.Context) ([]model.BookDetails, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.BookDetails, error)
	Create(ctx context.Context, req model.BookRequest) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, req model.BookRequest) (uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	UploadImage(ctx context.Context, filename string, content io.Reader) (string, error)
	ReplaceImage(ctx context.Context, id uuid.UUID, filename string, content io.Reader) (string, error)
	RemoveImage(ctx context.Context, id uuid.UUID) error
}

type AuthorService interface {
	GetAll(ctx context.Context) ([]model.AuthorDetails, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.AuthorDetails, error)
	Create(ctx context.Context, req model.AuthorRequest) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, req model.AuthorRequest) (uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type CategoryService interface {
	GetAll(ctx context.Context) ([]model.CategoryDetails, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.CategoryDetails, error)
	Create(ctx context.Context, req model.CategoryRequest) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, req model.CategoryRequest) (uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type CartService interface {
	AddToCart(ctx context.Context, userID, bookID uuid.UUID, quantity int) (uuid.UUID, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	ListItems(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
}

var (
	_ AuthService     = (*service.AuthService)(nil)
	_ BookService     = (*service.BookService)(nil)
	_ AuthorService   = (*service.AuthorService)(nil)
	_ CategoryService = (*service.CategoryService)(nil)
	_ CartService     = (*service.CartService)(nil)
)
