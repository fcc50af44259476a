package service

import (
	"context"
	"errors"
	"time"

	"reviewhub/internal/api/apperr"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/cache"

	"gorm.io/gorm"
)

type TitleService interface {
	List(ctx context.Context, f repository.TitleFilter, page, pageSize int) ([]dto.TitleResponse, int64, error)
	GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, in dto.CreateTitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	ratings      *cache.RatingCache
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	ratings *cache.RatingCache,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		ratings:      ratings,
	}
}

func validateYear(year int) error {
	if year < models.EarliestYear {
		return apperr.Validationf("year must not be before %d", models.EarliestYear)
	}
	if current := time.Now().Year(); year > current {
		return apperr.Validationf("year must not be after the current year %d", current)
	}
	return nil
}

// resolveCategory maps a category slug to its foreign key.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*int64, error) {
	c, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validationf("unknown category slug %q", slug)
		}
		return nil, err
	}
	return &c.ID, nil
}

// resolveGenres maps genre slugs to ids, deduplicating so the unique
// (title, genre) constraint cannot trip on a repeated slug in one request.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]int64, error) {
	seen := make(map[string]bool, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(unique) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		for _, slug := range unique {
			if !found[slug] {
				return nil, apperr.Validationf("unknown genre slug %q", slug)
			}
		}
	}

	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// rating reads through the cache; on a miss the mean is computed from the
// store and cached until the next review mutation invalidates it.
func (s *titleService) rating(ctx context.Context, titleID int64) (*float64, error) {
	if cached, ok := s.ratings.Get(ctx, titleID); ok {
		return cached, nil
	}
	avg, err := s.titleRepo.AverageScore(ctx, titleID)
	if err != nil {
		return nil, err
	}
	s.ratings.Set(ctx, titleID, avg)
	return avg, nil
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) ([]dto.TitleResponse, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, f, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	ratings, err := s.titleRepo.AverageScores(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		var rating *float64
		if avg, ok := ratings[titles[i].ID]; ok {
			r := avg
			rating = &r
		}
		resp = append(resp, dto.FromModelToTitleResponse(&titles[i], rating))
	}
	return resp, total, nil
}

func (s *titleService) GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("title %d", id)
		}
		return nil, err
	}

	rating, err := s.rating(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToTitleResponse(t, rating)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, in dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	if err := validateYear(in.Year); err != nil {
		return nil, err
	}

	t := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}
	if in.Category != nil && *in.Category != "" {
		categoryID, err := s.resolveCategory(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		t.CategoryID = categoryID
	}
	genreIDs, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}

	if err := s.titleRepo.Create(ctx, t, genreIDs); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, t.ID)
}

func (s *titleService) Update(ctx context.Context, id int64, in dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("title %d", id)
		}
		return nil, err
	}

	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Year != nil {
		if err := validateYear(*in.Year); err != nil {
			return nil, err
		}
		t.Year = *in.Year
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Category != nil {
		if *in.Category == "" {
			t.CategoryID = nil
		} else {
			categoryID, err := s.resolveCategory(ctx, *in.Category)
			if err != nil {
				return nil, err
			}
			t.CategoryID = categoryID
		}
	}

	var genreIDs []int64
	replaceGenres := in.Genre != nil
	if replaceGenres {
		genreIDs, err = s.resolveGenres(ctx, *in.Genre)
		if err != nil {
			return nil, err
		}
	}

	if err := s.titleRepo.Update(ctx, t, genreIDs, replaceGenres); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		return apperr.Translate(err, "title")
	}
	s.ratings.Invalidate(ctx, id)
	return nil
}
