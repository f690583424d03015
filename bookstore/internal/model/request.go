package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a verified user with a freshly issued bearer token.
type LoginResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

type BookRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	AuthorID    uuid.UUID       `json:"authorId" validate:"required"`
	CategoryID  uuid.UUID       `json:"categoryId" validate:"required"`
	ImageURL    *string         `json:"imageUrl"`
}

type AuthorRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddToCartRequest struct {
	BookID   uuid.UUID `json:"bookId" validate:"required"`
	Quantity int       `json:"quantity" validate:"min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
