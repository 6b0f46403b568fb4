package handler

import "github.com/agriscience/catalog/internal/core/domain"

func toProductInput(req createProductRequest) domain.ProductInput {
	return domain.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Origin:      req.Origin,
		Price:       req.Price,
		ReviewCount: req.ReviewCount,
	}
}

func toProductPatch(req updateProductRequest) domain.ProductPatch {
	return domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Origin:      req.Origin,
		Price:       req.Price,
		ReviewCount: req.ReviewCount,
	}
}
