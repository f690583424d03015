package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/bookstore/internal/service"
)

func TestBookService_CreateChecksRefs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	cat := seedCatalog(store, 0)
	svc := service.NewBookService(store.repository(), newMemImages(), &recordedEvents{}, zap.NewNop())

	tests := []struct {
		name    string
		req     model.BookRequest
		wantErr error
		message string
	}{
		{
			name:    "unknown author",
			req:     model.BookRequest{Title: "Dune", Price: decimal.NewFromInt(1), AuthorID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), CategoryID: cat.category.ID},
			wantErr: errs.ErrValidation,
			message: "author with id 00000000-0000-0000-0000-000000000001 doesn't exist",
		},
		{
			name:    "unknown category",
			req:     model.BookRequest{Title: "Dune", Price: decimal.NewFromInt(1), AuthorID: cat.author.ID, CategoryID: uuid.MustParse("00000000-0000-0000-0000-000000000002")},
			wantErr: errs.ErrValidation,
			message: "category with id 00000000-0000-0000-0000-000000000002 doesn't exist",
		},
		{
			name:    "negative price",
			req:     model.BookRequest{Title: "Dune", Price: decimal.NewFromInt(-5), AuthorID: cat.author.ID, CategoryID: cat.category.ID},
			wantErr: errs.ErrValidation,
			message: "price can't be less than 0",
		},
	}
	for _, tt := range tests {
		_, err := svc.Create(ctx, tt.req)
		require.True(t, errors.Is(err, tt.wantErr), tt.name)
		require.EqualError(t, err, tt.message, tt.name)
	}
	require.Empty(t, store.books)

	id, err := svc.Create(ctx, model.BookRequest{Title: "Dune", Price: decimal.NewFromInt(1), AuthorID: cat.author.ID, CategoryID: cat.category.ID})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Frank", got.Author.Name)
	require.Equal(t, "Sci-Fi", got.Category.Name)
}

func TestBookService_UpdateDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	cat := seedCatalog(store, 1)
	svc := service.NewBookService(store.repository(), newMemImages(), nil, zap.NewNop())
	book := cat.books[0]

	_, err := svc.Update(ctx, uuid.New(), model.BookRequest{Title: "X", AuthorID: cat.author.ID, CategoryID: cat.category.ID})
	require.True(t, errors.Is(err, errs.ErrNotFound))

	id, err := svc.Update(ctx, book.ID, model.BookRequest{Title: "Children of Dune", Price: decimal.NewFromInt(20), AuthorID: cat.author.ID, CategoryID: cat.category.ID})
	require.NoError(t, err)
	require.Equal(t, book.ID, id)
	require.Equal(t, "Children of Dune", store.books[book.ID].Title)

	id, err = svc.Delete(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, book.ID, id)

	_, err = svc.Delete(ctx, book.ID)
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, book.ID)
	require.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestBookService_Images(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	cat := seedCatalog(store, 1)
	images := newMemImages()
	svc := service.NewBookService(store.repository(), images, nil, zap.NewNop())
	book := cat.books[0]

	err := svc.RemoveImage(ctx, book.ID)
	require.True(t, errors.Is(err, errs.ErrValidation))
	require.EqualError(t, err, "book has no image")

	first, err := svc.ReplaceImage(ctx, book.ID, "a.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.True(t, images.has(first))

	second, err := svc.ReplaceImage(ctx, book.ID, "b.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.True(t, images.has(second))
	require.False(t, images.has(first))
	require.Equal(t, second, *store.books[book.ID].ImageURL)

	require.NoError(t, svc.RemoveImage(ctx, book.ID))
	require.False(t, images.has(second))
	require.Nil(t, store.books[book.ID].ImageURL)

	_, err = svc.ReplaceImage(ctx, uuid.New(), "c.png", strings.NewReader("png"))
	require.True(t, errors.Is(err, errs.ErrNotFound))

	url, err := svc.UploadImage(ctx, "d.gif", strings.NewReader("gif"))
	require.NoError(t, err)
	require.True(t, images.has(url))
}

func TestAuthorAndCategoryServices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	repo := store.repository()
	authors := service.NewAuthorService(repo.Authors, zap.NewNop())
	categories := service.NewCategoryService(repo.Categories, zap.NewNop())

	_, err := authors.Create(ctx, model.AuthorRequest{Name: ""})
	require.True(t, errors.Is(err, errs.ErrValidation))

	aid, err := authors.Create(ctx, model.AuthorRequest{Name: "Ursula", Surname: "Le Guin"})
	require.NoError(t, err)
	_, err = authors.Update(ctx, aid, model.AuthorRequest{Name: "Ursula K.", Surname: "Le Guin"})
	require.NoError(t, err)
	a, err := authors.GetByID(ctx, aid)
	require.NoError(t, err)
	require.Equal(t, "Ursula K.", a.Name)

	cid, err := categories.Create(ctx, model.CategoryRequest{Name: "Fantasy"})
	require.NoError(t, err)
	_, err = categories.Update(ctx, uuid.New(), model.CategoryRequest{Name: "Nope"})
	require.True(t, errors.Is(err, errs.ErrNotFound))

	all, err := categories.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = categories.Delete(ctx, cid)
	require.NoError(t, err)
	_, err = categories.GetByID(ctx, cid)
	require.True(t, errors.Is(err, errs.ErrNotFound))
}
