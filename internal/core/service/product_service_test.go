package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agriscience/catalog/internal/core/domain"
	"github.com/agriscience/catalog/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	products  []domain.Product // newest first
	err       error            // if set, every call returns it
	calls     int
	lastPatch domain.ProductPatch
}

func (r *stubProductRepo) List(_ context.Context) ([]domain.Product, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (domain.Product, bool, error) {
	r.calls++
	if r.err != nil {
		return domain.Product{}, false, r.err
	}
	for _, p := range r.products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

func (r *stubProductRepo) Create(_ context.Context, in domain.ProductInput) (domain.Product, error) {
	r.calls++
	if r.err != nil {
		return domain.Product{}, r.err
	}
	p := in.Build("prod_test", time.Now())
	r.products = append([]domain.Product{p}, r.products...)
	return p, nil
}

func (r *stubProductRepo) Update(_ context.Context, id string, patch domain.ProductPatch) (domain.Product, bool, error) {
	r.calls++
	r.lastPatch = patch
	if r.err != nil {
		return domain.Product{}, false, r.err
	}
	for i, p := range r.products {
		if p.ID == id {
			r.products[i] = patch.Apply(p)
			return r.products[i], true, nil
		}
	}
	return domain.Product{}, false, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) (bool, error) {
	r.calls++
	if r.err != nil {
		return false, r.err
	}
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductRepo) Ping(context.Context) error { return r.err }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func str(s string) *string { return &s }

func seededRepo() *stubProductRepo {
	return &stubProductRepo{products: []domain.Product{
		{ID: "p3", Name: "Urea 46", Description: "Granular nitrogen", Category: str("Fertilizers"), Origin: str("Qatar")},
		{ID: "p2", Name: "Hybrid Maize Seed", Description: "Drought tolerant", Category: str("Seeds"), Origin: str("Kenya")},
		{ID: "p1", Name: "NPK Blend", Description: "High nitrogen fertilizer", Category: str("fertilizers")},
		{ID: "p0", Name: "Sprayer", Description: "16L knapsack"},
	}}
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestProductService_ListProducts_Filters(t *testing.T) {
	svc := NewProductService(seededRepo(), time.Second, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		name   string
		filter ports.ListProductsFilter
		want   []string
	}{
		{"no filter keeps store order", ports.ListProductsFilter{}, []string{"p3", "p2", "p1", "p0"}},
		{"category is case-insensitive", ports.ListProductsFilter{Category: "FERTILIZERS"}, []string{"p3", "p1"}},
		{"query matches description", ports.ListProductsFilter{Query: "nitrogen"}, []string{"p3", "p1"}},
		{"query matches origin", ports.ListProductsFilter{Query: "kenya"}, []string{"p2"}},
		{"category and query combine", ports.ListProductsFilter{Category: "fertilizers", Query: "npk"}, []string{"p1"}},
		{"no match", ports.ListProductsFilter{Category: "Tools"}, []string{}},
	}
	for _, tc := range cases {
		got, err := svc.ListProducts(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !reflect.DeepEqual(ids(got), tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, ids(got), tc.want)
		}
	}
}

func TestProductService_Categories(t *testing.T) {
	svc := NewProductService(seededRepo(), time.Second, zerolog.Nop())

	got, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	want := []string{"Fertilizers", "Seeds"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	svc := NewProductService(seededRepo(), time.Second, zerolog.Nop())

	_, err := svc.GetProduct(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_CreateProduct_ValidationSkipsStore(t *testing.T) {
	repo := &stubProductRepo{}
	svc := NewProductService(repo, time.Second, zerolog.Nop())

	_, err := svc.CreateProduct(context.Background(), domain.ProductInput{Name: "Only a name"})
	if !errors.Is(err, domain.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("store must not be touched on validation failure, got %d calls", repo.calls)
	}
}

func TestProductService_CreateProduct_PropagatesStoreError(t *testing.T) {
	diskFull := errors.New("no space left on device")
	svc := NewProductService(&stubProductRepo{err: diskFull}, time.Second, zerolog.Nop())

	_, err := svc.CreateProduct(context.Background(), domain.ProductInput{Name: "a", Description: "b"})
	if !errors.Is(err, diskFull) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	repo := seededRepo()
	svc := NewProductService(repo, time.Second, zerolog.Nop())
	ctx := context.Background()

	price := 1500.0
	got, err := svc.UpdateProduct(ctx, "p1", domain.ProductPatch{Price: domain.Some(&price)})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if got.Name != "NPK Blend" || got.Price == nil || *got.Price != 1500 {
		t.Fatalf("unexpected product: %+v", got)
	}

	_, err = svc.UpdateProduct(ctx, "missing", domain.ProductPatch{Price: domain.Some(&price)})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	calls := repo.calls
	_, err = svc.UpdateProduct(ctx, "p1", domain.ProductPatch{Name: domain.Some("")})
	if !errors.Is(err, domain.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
	if repo.calls != calls {
		t.Fatalf("invalid patch must not reach the store")
	}
}

func TestProductService_DeleteProduct(t *testing.T) {
	svc := NewProductService(seededRepo(), time.Second, zerolog.Nop())
	ctx := context.Background()

	if err := svc.DeleteProduct(ctx, "p2"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if err := svc.DeleteProduct(ctx, "p2"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("second delete: expected ErrProductNotFound, got %v", err)
	}
}

type slowRepo struct{ stubProductRepo }

func (r *slowRepo) List(ctx context.Context) ([]domain.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestProductService_AppliesTimeout(t *testing.T) {
	svc := NewProductService(&slowRepo{}, 20*time.Millisecond, zerolog.Nop())

	_, err := svc.ListProducts(context.Background(), ports.ListProductsFilter{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
