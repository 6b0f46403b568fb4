package handler

import "github.com/agriscience/catalog/internal/core/domain"

// createProductRequest is the body of POST /api/products. Optional fields
// left out, null or blank are stored as null.
type createProductRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=20000"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,max=2048"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Origin      *string  `json:"origin" validate:"omitempty,max=100"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ReviewCount *int     `json:"review_count" validate:"omitempty,gte=0"`
}

// updateProductRequest is the body of PUT and PATCH /api/products/{id}.
// Keys that are absent leave the attribute untouched; null clears a
// nullable attribute. id and created_at are not accepted.
type updateProductRequest struct {
	Name        domain.Optional[string]   `json:"name" swaggertype:"string"`
	Description domain.Optional[string]   `json:"description" swaggertype:"string"`
	ImageURL    domain.Optional[*string]  `json:"image_url" swaggertype:"string"`
	Category    domain.Optional[*string]  `json:"category" swaggertype:"string"`
	Origin      domain.Optional[*string]  `json:"origin" swaggertype:"string"`
	Price       domain.Optional[*float64] `json:"price" swaggertype:"number"`
	ReviewCount domain.Optional[*int]     `json:"review_count" swaggertype:"integer"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}
