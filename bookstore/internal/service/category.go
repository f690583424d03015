package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/bookstore/internal/repository"
)

type CategoryService struct {
	repo repository.CategoryRepository
	log  *zap.Logger
}

func NewCategoryService(repo repository.CategoryRepository, log *zap.Logger) *CategoryService {
	return &CategoryService{repo: repo, log: log.Named("categories")}
}

func (s *CategoryService) GetAll(ctx context.Context) ([]model.CategoryDetails, error) {
	return s.repo.GetAll(ctx)
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (model.CategoryDetails, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, req model.CategoryRequest) (uuid.UUID, error) {
	category, err := model.NewCategory(uuid.New(), req.Name, req.Description)
	if err != nil {
		return uuid.Nil, err
	}
	if err = s.repo.Create(ctx, category); err != nil {
		return uuid.Nil, err
	}
	return category.ID, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req model.CategoryRequest) (uuid.UUID, error) {
	category, err := model.NewCategory(id, req.Name, req.Description)
	if err != nil {
		return uuid.Nil, err
	}
	if err = s.repo.Update(ctx, category); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return uuid.Nil, err
	}
	s.log.Info("category deleted", zap.Stringer("id", id))
	return id, nil
}
