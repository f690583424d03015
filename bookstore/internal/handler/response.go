package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

type authorRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
}

type categoryRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type bookResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	AuthorID    uuid.UUID       `json:"authorId"`
	Author      authorRef       `json:"author"`
	CategoryID  uuid.UUID       `json:"categoryId"`
	Category    categoryRef     `json:"category"`
	ImageURL    *string         `json:"imageUrl"`
}

func newBookResponse(b model.BookDetails) bookResponse {
	return bookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Price:       b.Price,
		AuthorID:    b.AuthorID,
		Author:      authorRef{ID: b.Author.ID, Name: b.Author.Name, Surname: b.Author.Surname},
		CategoryID:  b.CategoryID,
		Category:    categoryRef{ID: b.Category.ID, Name: b.Category.Name, Description: b.Category.Description},
		ImageURL:    b.ImageURL,
	}
}

type bookSummary struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	AuthorID    uuid.UUID       `json:"authorId"`
	CategoryID  uuid.UUID       `json:"categoryId"`
	ImageURL    *string         `json:"imageUrl"`
}

func newBookSummaries(books []model.Book) []bookSummary {
	res := make([]bookSummary, 0, len(books))
	for _, b := range books {
		res = append(res, bookSummary{
			ID:          b.ID,
			Title:       b.Title,
			Description: b.Description,
			Price:       b.Price,
			AuthorID:    b.AuthorID,
			CategoryID:  b.CategoryID,
			ImageURL:    b.ImageURL,
		})
	}
	return res
}

type authorResponse struct {
	ID      uuid.UUID     `json:"id"`
	Name    string        `json:"name"`
	Surname string        `json:"surname"`
	Books   []bookSummary `json:"books"`
}

func newAuthorResponse(a model.AuthorDetails) authorResponse {
	return authorResponse{ID: a.ID, Name: a.Name, Surname: a.Surname, Books: newBookSummaries(a.Books)}
}

type categoryResponse struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Books       []bookSummary `json:"books"`
}

func newCategoryResponse(c model.CategoryDetails) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, Books: newBookSummaries(c.Books)}
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: string(u.Role)}
}

type loginResponse struct {
	userResponse
	Token string `json:"token"`
}

type cartItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	BookID          uuid.UUID       `json:"bookId"`
	BookTitle       string          `json:"bookTitle"`
	BookDescription string          `json:"bookDescription"`
	BookPrice       decimal.Decimal `json:"bookPrice"`
	BookImageURL    *string         `json:"bookImageUrl"`
	AuthorName      string          `json:"authorName"`
	CategoryName    string          `json:"categoryName"`
	Quantity        int             `json:"quantity"`
	DateAdded       time.Time       `json:"dateAdded"`
}

func newCartResponse(lines []model.CartLine) []cartItemResponse {
	res := make([]cartItemResponse, 0, len(lines))
	for _, l := range lines {
		res = append(res, cartItemResponse{
			ID:              l.ID,
			BookID:          l.BookID,
			BookTitle:       l.BookTitle,
			BookDescription: l.BookDescription,
			BookPrice:       l.BookPrice,
			BookImageURL:    l.BookImageURL,
			AuthorName:      l.AuthorName,
			CategoryName:    l.CategoryName,
			Quantity:        l.Quantity,
			DateAdded:       l.DateAdded,
		})
	}
	return res
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

type messageResponse struct {
	Message string `json:"message"`
}
