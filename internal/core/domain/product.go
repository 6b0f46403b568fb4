package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrProductNotFound = errors.New("product not found")
var ErrInvalidProduct = errors.New("invalid product")
var ErrCorruptStore = errors.New("product store is corrupt")

// Product is a single catalog entry. ID and CreatedAt are assigned by the
// store on creation and never change afterwards.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Category    *string   `json:"category"`
	Origin      *string   `json:"origin"`
	Price       *float64  `json:"price"`
	ReviewCount *int      `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductInput carries the caller-supplied fields of a new product.
type ProductInput struct {
	Name        string
	Description string
	ImageURL    *string
	Category    *string
	Origin      *string
	Price       *float64
	ReviewCount *int
}

// Validate rejects inputs missing a name or description.
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidProduct)
	}
	return validateNumbers(in.Price, in.ReviewCount)
}

// Build turns the input into a Product with the given identity.
func (in ProductInput) Build(id string, createdAt time.Time) Product {
	return Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    nullIfBlank(in.ImageURL),
		Category:    nullIfBlank(in.Category),
		Origin:      nullIfBlank(in.Origin),
		Price:       clonePtr(in.Price),
		ReviewCount: clonePtr(in.ReviewCount),
		CreatedAt:   createdAt.UTC(),
	}
}

// ProductPatch is a partial update. Each attribute is either absent (left
// untouched) or present with a value; nullable attributes may be present
// with nil to clear them. ID and CreatedAt are deliberately not part of it.
type ProductPatch struct {
	Name        Optional[string]
	Description Optional[string]
	ImageURL    Optional[*string]
	Category    Optional[*string]
	Origin      Optional[*string]
	Price       Optional[*float64]
	ReviewCount Optional[*int]
}

// IsEmpty reports whether the patch carries no fields.
func (p ProductPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Description.Set && !p.ImageURL.Set && !p.Category.Set &&
		!p.Origin.Set && !p.Price.Set && !p.ReviewCount.Set
}

// Validate ensures the patch cannot blank out a mandatory attribute.
func (p ProductPatch) Validate() error {
	if p.Name.Set && strings.TrimSpace(p.Name.Value) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidProduct)
	}
	if p.Description.Set && strings.TrimSpace(p.Description.Value) == "" {
		return fmt.Errorf("%w: description cannot be empty", ErrInvalidProduct)
	}
	return validateNumbers(p.Price.Value, p.ReviewCount.Value)
}

// Apply merges the patch onto a copy of dst.
func (p ProductPatch) Apply(dst Product) Product {
	dst = dst.Clone()
	if v, ok := p.Name.Get(); ok {
		dst.Name = v
	}
	if v, ok := p.Description.Get(); ok {
		dst.Description = v
	}
	if v, ok := p.ImageURL.Get(); ok {
		dst.ImageURL = nullIfBlank(v)
	}
	if v, ok := p.Category.Get(); ok {
		dst.Category = nullIfBlank(v)
	}
	if v, ok := p.Origin.Get(); ok {
		dst.Origin = nullIfBlank(v)
	}
	if v, ok := p.Price.Get(); ok {
		dst.Price = clonePtr(v)
	}
	if v, ok := p.ReviewCount.Get(); ok {
		dst.ReviewCount = clonePtr(v)
	}
	return dst
}

// Clone returns a deep copy so callers can never alias store memory.
func (p Product) Clone() Product {
	out := p
	out.ImageURL = clonePtr(p.ImageURL)
	out.Category = clonePtr(p.Category)
	out.Origin = clonePtr(p.Origin)
	out.Price = clonePtr(p.Price)
	out.ReviewCount = clonePtr(p.ReviewCount)
	return out
}

func validateNumbers(price *float64, reviews *int) error {
	if price != nil && *price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	}
	if reviews != nil && *reviews < 0 {
		return fmt.Errorf("%w: review_count cannot be negative", ErrInvalidProduct)
	}
	return nil
}

func nullIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
