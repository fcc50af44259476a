package dto

// CreateCategoryRequest and CreateGenreRequest share a shape: a display name
// and a unique URL-safe slug used as the public lookup key.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

type CreateGenreRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}
