package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxNameLength     = 250
	MaxImageURLLength = 500
	MaxUsernameLength = 50
	MaxEmailLength    = 100
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Author struct {
	ID      uuid.UUID `db:"id"`
	Name    string    `db:"name"`
	Surname string    `db:"surname"`
}

func NewAuthor(id uuid.UUID, name, surname string) (Author, error) {
	if !validName(name) {
		return Author{}, errs.Validation(fmt.Sprintf("name cannot be empty or longer than %d symbols", MaxNameLength))
	}
	return Author{ID: id, Name: name, Surname: surname}, nil
}

type Category struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
}

func NewCategory(id uuid.UUID, name, description string) (Category, error) {
	if !validName(name) {
		return Category{}, errs.Validation(fmt.Sprintf("name cannot be empty or longer than %d symbols", MaxNameLength))
	}
	return Category{ID: id, Name: name, Description: description}, nil
}

type Book struct {
	ID          uuid.UUID       `db:"id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	AuthorID    uuid.UUID       `db:"author_id"`
	CategoryID  uuid.UUID       `db:"category_id"`
	ImageURL    *string         `db:"image_url"`
}

func NewBook(id uuid.UUID, title, description string, price decimal.Decimal, authorID, categoryID uuid.UUID, imageURL *string) (Book, error) {
	if !validName(title) {
		return Book{}, errs.Validation(fmt.Sprintf("title cannot be empty or longer than %d symbols", MaxNameLength))
	}
	if price.IsNegative() {
		return Book{}, errs.Validation("price can't be less than 0")
	}
	if imageURL != nil && utf8.RuneCountInString(*imageURL) > MaxImageURLLength {
		return Book{}, errs.Validation(fmt.Sprintf("image url cannot be longer than %d symbols", MaxImageURLLength))
	}
	return Book{
		ID:          id,
		Title:       title,
		Description: description,
		Price:       price,
		AuthorID:    authorID,
		CategoryID:  categoryID,
		ImageURL:    imageURL,
	}, nil
}

// BookDetails is a book joined with its author and category.
type BookDetails struct {
	Book
	Author   Author
	Category Category
}

// AuthorDetails is an author with the books it wrote.
type AuthorDetails struct {
	Author
	Books []Book
}

type CategoryDetails struct {
	Category
	Books []Book
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole clamps anything unknown to RoleUser.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

type User struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
}

func NewUser(id uuid.UUID, username, email string, role Role) (User, error) {
	if username == "" || utf8.RuneCountInString(username) > MaxUsernameLength {
		return User{}, errs.Validation(fmt.Sprintf("username cannot be empty or longer than %d symbols", MaxUsernameLength))
	}
	if email == "" || utf8.RuneCountInString(email) > MaxEmailLength {
		return User{}, errs.Validation(fmt.Sprintf("email cannot be empty or longer than %d symbols", MaxEmailLength))
	}
	if !strings.Contains(email, "@") {
		return User{}, errs.Validation("invalid email format")
	}
	return User{ID: id, Username: username, Email: email, Role: role}, nil
}

type CartItem struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	BookID    uuid.UUID `db:"book_id"`
	Quantity  int       `db:"quantity"`
	DateAdded time.Time `db:"date_added"`
}

func NewCartItem(id, userID, bookID uuid.UUID, quantity int, dateAdded time.Time) (CartItem, error) {
	if userID == uuid.Nil {
		return CartItem{}, errs.Validation("user id cannot be empty")
	}
	if bookID == uuid.Nil {
		return CartItem{}, errs.Validation("book id cannot be empty")
	}
	if quantity <= 0 {
		return CartItem{}, errs.Validation("quantity must be greater than zero")
	}
	if dateAdded.IsZero() {
		dateAdded = time.Now().UTC()
	}
	return CartItem{ID: id, UserID: userID, BookID: bookID, Quantity: quantity, DateAdded: dateAdded}, nil
}

// CartLine is a cart item with a snapshot of the book it points at.
type CartLine struct {
	CartItem
	BookTitle       string          `db:"book_title"`
	BookDescription string          `db:"book_description"`
	BookPrice       decimal.Decimal `db:"book_price"`
	BookImageURL    *string         `db:"book_image_url"`
	AuthorName      string          `db:"author_name"`
	CategoryName    string          `db:"category_name"`
}

func validName(s string) bool {
	return strings.TrimSpace(s) != "" && utf8.RuneCountInString(s) <= MaxNameLength
}
