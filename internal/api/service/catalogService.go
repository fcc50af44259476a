package service

import (
	"context"
	"regexp"

	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
)

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CatalogService manages categories and genres. Both are list/create/delete
// only; there is no update-in-place for either.
type CatalogService interface {
	ListCategories(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	CreateCategory(ctx context.Context, in dto.CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, slug string) error

	ListGenres(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	CreateGenre(ctx context.Context, in dto.CreateGenreRequest) (*models.Genre, error)
	DeleteGenre(ctx context.Context, slug string) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, genreRepo repository.GenreRepository) CatalogService {
	return &catalogService{categoryRepo: categoryRepo, genreRepo: genreRepo}
}

func validateSlug(slug string) error {
	if !slugRe.MatchString(slug) {
		return apperr.Validationf("slug may only contain letters, digits, hyphens and underscores")
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	return s.categoryRepo.List(ctx, search, page, pageSize)
}

func (s *catalogService) CreateCategory(ctx context.Context, in dto.CreateCategoryRequest) (*models.Category, error) {
	if err := validateSlug(in.Slug); err != nil {
		return nil, err
	}
	c := &models.Category{Name: in.Name, Slug: in.Slug}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, apperr.Translate(err, "category slug already in use")
	}
	return c, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, slug string) error {
	if err := s.categoryRepo.DeleteBySlug(ctx, slug); err != nil {
		return apperr.Translate(err, "category "+slug)
	}
	return nil
}

func (s *catalogService) ListGenres(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	return s.genreRepo.List(ctx, search, page, pageSize)
}

func (s *catalogService) CreateGenre(ctx context.Context, in dto.CreateGenreRequest) (*models.Genre, error) {
	if err := validateSlug(in.Slug); err != nil {
		return nil, err
	}
	g := &models.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.genreRepo.Create(ctx, g); err != nil {
		return nil, apperr.Translate(err, "genre slug already in use")
	}
	return g, nil
}

func (s *catalogService) DeleteGenre(ctx context.Context, slug string) error {
	if err := s.genreRepo.DeleteBySlug(ctx, slug); err != nil {
		return apperr.Translate(err, "genre "+slug)
	}
	return nil
}
