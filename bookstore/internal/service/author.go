package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/bookstore/internal/repository"
)

type AuthorService struct {
	repo repository.AuthorRepository
	log  *zap.Logger
}

func NewAuthorService(repo repository.AuthorRepository, log *zap.Logger) *AuthorService {
	return &AuthorService{repo: repo, log: log.Named("authors")}
}

func (s *AuthorService) GetAll(ctx context.Context) ([]model.AuthorDetails, error) {
	return s.repo.GetAll(ctx)
}

func (s *AuthorService) GetByID(ctx context.Context, id uuid.UUID) (model.AuthorDetails, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AuthorService) Create(ctx context.Context, req model.AuthorRequest) (uuid.UUID, error) {
	author, err := model.NewAuthor(uuid.New(), req.Name, req.Surname)
	if err != nil {
		return uuid.Nil, err
	}
	if err = s.repo.Create(ctx, author); err != nil {
		return uuid.Nil, err
	}
	return author.ID, nil
}

func (s *AuthorService) Update(ctx context.Context, id uuid.UUID, req model.AuthorRequest) (uuid.UUID, error) {
	author, err := model.NewAuthor(id, req.Name, req.Surname)
	if err != nil {
		return uuid.Nil, err
	}
	if err = s.repo.Update(ctx, author); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Delete removes the author with its books. A missing id is not an error.
func (s *AuthorService) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return uuid.Nil, err
	}
	s.log.Info("author deleted", zap.Stringer("id", id))
	return id, nil
}
