package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/bookstore/internal/repository"
	"github.com/Astemirdum/bookstore/pkg/kafka"
)

type BookService struct {
	books      repository.BookRepository
	authors    repository.AuthorRepository
	categories repository.CategoryRepository
	images     ImageStore
	events     EventPublisher
	log        *zap.Logger
}

func NewBookService(repo *repository.Repository, images ImageStore, events EventPublisher, log *zap.Logger) *BookService {
	return &BookService{
		books:      repo.Books,
		authors:    repo.Authors,
		categories: repo.Categories,
		images:     images,
		events:     events,
		log:        log.Named("books"),
	}
}

func (s *BookService) GetAll(ctx context.Context) ([]model.BookDetails, error) {
	return s.books.GetAll(ctx)
}

func (s *BookService) GetByID(ctx context.Context, id uuid.UUID) (model.BookDetails, error) {
	return s.books.GetByID(ctx, id)
}

func (s *BookService) Create(ctx context.Context, req model.BookRequest) (uuid.UUID, error) {
	book, err := model.NewBook(uuid.New(), req.Title, req.Description, req.Price, req.AuthorID, req.CategoryID, req.ImageURL)
	if err != nil {
		return uuid.Nil, err
	}
	if err = s.checkRefs(ctx, req.AuthorID, req.CategoryID); err != nil {
		return uuid.Nil, err
	}
	if err = s.books.Create(ctx, book); err != nil {
		return uuid.Nil, err
	}
	publish(ctx, s.events, s.log, kafka.Event{EventType: kafka.BookCreated, BookID: book.ID.String()})
	return book.ID, nil
}

func (s *BookService) Update(ctx context.Context, id uuid.UUID, req model.BookRequest) (uuid.UUID, error) {
	book, err := model.NewBook(id, req.Title, req.Description, req.Price, req.AuthorID, req.CategoryID, req.ImageURL)
	if err != nil {
		return uuid.Nil, err
	}
	if err = s.checkRefs(ctx, req.AuthorID, req.CategoryID); err != nil {
		return uuid.Nil, err
	}
	if err = s.books.Update(ctx, book); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *BookService) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if err := s.books.Delete(ctx, id); err != nil {
		return uuid.Nil, err
	}
	publish(ctx, s.events, s.log, kafka.Event{EventType: kafka.BookDeleted, BookID: id.String()})
	return id, nil
}

// checkRefs verifies the author and the category concurrently.
func (s *BookService) checkRefs(ctx context.Context, authorID, categoryID uuid.UUID) error {
	var authorOK, categoryOK bool
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.authors.Exists(gCtx, authorID)
		authorOK = ok
		return errors.Wrap(err, "authors.Exists")
	})
	g.Go(func() error {
		ok, err := s.categories.Exists(gCtx, categoryID)
		categoryOK = ok
		return errors.Wrap(err, "categories.Exists")
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if !authorOK {
		return errs.Validation(fmt.Sprintf("author with id %s doesn't exist", authorID))
	}
	if !categoryOK {
		return errs.Validation(fmt.Sprintf("category with id %s doesn't exist", categoryID))
	}
	return nil
}

func (s *BookService) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	return s.images.Save(ctx, filename, content)
}

// ReplaceImage stores a new cover for the book and removes the previous file.
func (s *BookService) ReplaceImage(ctx context.Context, id uuid.UUID, filename string, content io.Reader) (string, error) {
	if _, err := s.books.GetByID(ctx, id); err != nil {
		return "", err
	}
	url, err := s.images.Save(ctx, filename, content)
	if err != nil {
		return "", err
	}
	prev, err := s.books.SetImage(ctx, id, &url)
	if err != nil {
		s.removeFile(url)
		return "", err
	}
	if prev != nil && *prev != "" {
		s.removeFile(*prev)
	}
	return url, nil
}

func (s *BookService) RemoveImage(ctx context.Context, id uuid.UUID) error {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if book.ImageURL == nil || *book.ImageURL == "" {
		return errs.Validation("book has no image")
	}
	prev, err := s.books.SetImage(ctx, id, nil)
	if err != nil {
		return err
	}
	if prev != nil && *prev != "" {
		s.removeFile(*prev)
	}
	return nil
}

func (s *BookService) removeFile(url string) {
	if err := s.images.Remove(url); err != nil {
		s.log.Warn("remove image", zap.String("url", url), zap.Error(err))
	}
}
