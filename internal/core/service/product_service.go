package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agriscience/catalog/internal/api/metrics"
	"github.com/agriscience/catalog/internal/core/domain"
	"github.com/agriscience/catalog/internal/core/ports"
)

// DefaultStoreTimeout bounds a single store call when none is configured.
const DefaultStoreTimeout = 5 * time.Second

type ProductService struct {
	repo    ports.ProductRepository
	timeout time.Duration
	logger  zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, timeout time.Duration, logger zerolog.Logger) *ProductService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &ProductService{
		repo:    repo,
		timeout: timeout,
		logger:  logger.With().Str("component", "products").Logger(),
	}
}

// ListProducts returns the catalog newest first, narrowed by filter.
func (s *ProductService) ListProducts(ctx context.Context, filter ports.ListProductsFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	category := strings.TrimSpace(filter.Category)
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	if category == "" && query == "" {
		return all, nil
	}

	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if category != "" && (p.Category == nil || !strings.EqualFold(*p.Category, category)) {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Categories returns the distinct non-empty categories in alphabetical order.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	all, err := s.ListProducts(ctx, ports.ListProductsFilter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range all {
		if p.Category == nil {
			continue
		}
		key := strings.ToLower(*p.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, *p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	if !found {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// CreateProduct validates in before anything touches the store.
func (s *ProductService) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("create", "invalid").Inc()
		return domain.Product{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("create", "error").Inc()
		s.logger.Error().Err(err).Msg("failed to create product")
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	metrics.ProductMutationsTotal.WithLabelValues("create", "ok").Inc()
	s.logger.Info().Str("product_id", p.ID).Msg("product created")
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if err := patch.Validate(); err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return domain.Product{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, found, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("update", "error").Inc()
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	if !found {
		metrics.ProductMutationsTotal.WithLabelValues("update", "not_found").Inc()
		return domain.Product{}, domain.ErrProductNotFound
	}

	metrics.ProductMutationsTotal.WithLabelValues("update", "ok").Inc()
	s.logger.Info().Str("product_id", id).Msg("product updated")
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		metrics.ProductMutationsTotal.WithLabelValues("delete", "error").Inc()
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("delete product: %w", err)
	}
	if !removed {
		metrics.ProductMutationsTotal.WithLabelValues("delete", "not_found").Inc()
		return domain.ErrProductNotFound
	}

	metrics.ProductMutationsTotal.WithLabelValues("delete", "ok").Inc()
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func matchesQuery(p domain.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	return p.Origin != nil && strings.Contains(strings.ToLower(*p.Origin), q)
}
