package dto

import "reviewhub/internal/api/models"

// CreateTitleRequest: writes reference category and genres by slug; slugs are
// resolved to foreign keys at write time.
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

// UpdateTitleRequest: partial update, nil means "leave as is".
type UpdateTitleRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

// TitleResponse nests the resolved category/genre objects and carries the
// rating computed from the title's reviews (null when it has none).
type TitleResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Year        int              `json:"year"`
	Description *string          `json:"description,omitempty"`
	Genre       []models.Genre   `json:"genre"`
	Category    *models.Category `json:"category"`
	Rating      *float64         `json:"rating"`
}

func FromModelToTitleResponse(t *models.Title, rating *float64) TitleResponse {
	genres := t.Genres
	if genres == nil {
		genres = []models.Genre{}
	}
	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       genres,
		Category:    t.Category,
		Rating:      rating,
	}
}
