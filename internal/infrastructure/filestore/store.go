// Package filestore keeps the product collection in a single JSON file.
//
// The whole collection is mirrored in memory. Every mutation copies the
// mirror, applies the change and rewrites the file through a temporary file
// that is renamed over the original, so readers of the path never observe a
// partial write. The mirror is replaced only after the rename succeeded.
//
// Mutations are serialised by a single-writer lock whose acquisition honours
// the caller's context. Writers in other processes are not coordinated.
package filestore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agriscience/catalog/internal/api/metrics"
	"github.com/agriscience/catalog/internal/core/domain"
)

const (
	idPrefix     = "prod_"
	suffixLen    = 9
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"
	filePerm     = 0o644
	dirPerm      = 0o755
	reloadSettle = 100 * time.Millisecond
)

// Options tunes a Store. The zero value is usable.
type Options struct {
	Logger zerolog.Logger
	// Now replaces time.Now, mostly for tests.
	Now func() time.Time
}

type Store struct {
	path string
	log  zerolog.Logger
	now  func() time.Time

	// rename is the only operation that touches path during a write.
	rename func(oldpath, newpath string) error

	writer chan struct{}

	mu       sync.RWMutex
	products []domain.Product
}

// Open loads the collection at path. A missing file is an empty collection;
// the file is created on the first write. An unreadable or unparseable file
// is an error, since treating it as empty would let the next write wipe it.
func Open(path string, opts Options) (*Store, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		path:   path,
		log:    opts.Logger.With().Str("component", "filestore").Str("path", path).Logger(),
		now:    now,
		rename: os.Rename,
		writer: make(chan struct{}, 1),
	}

	products, err := s.readFile()
	if err != nil {
		return nil, err
	}
	s.products = products
	metrics.ProductsStored.Set(float64(len(products)))
	s.log.Info().Int("products", len(products)).Msg("product store opened")
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// List returns every product ordered by creation time, newest first. Ties
// are broken by descending id so the order is total.
func (s *Store) List(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	out := cloneAll(s.products)
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b domain.Product) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) FindByID(_ context.Context, id string) (domain.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), true, nil
		}
	}
	return domain.Product{}, false, nil
}

// Create validates in, assigns a fresh id and creation time, and persists.
func (s *Store) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}

	var created domain.Product
	err := s.mutate(ctx, "create", func(current []domain.Product) ([]domain.Product, error) {
		now := s.now()
		id, err := newID(current, now)
		if err != nil {
			return nil, err
		}
		created = in.Build(id, now)
		return append(current, created), nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return created.Clone(), nil
}

// Update merges patch onto the product with the given id. The id and
// creation time are never touched by a patch.
func (s *Store) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, bool, error) {
	if err := patch.Validate(); err != nil {
		return domain.Product{}, false, err
	}

	var (
		updated domain.Product
		found   bool
	)
	err := s.mutate(ctx, "update", func(current []domain.Product) ([]domain.Product, error) {
		i := indexOf(current, id)
		if i < 0 {
			return nil, nil
		}
		found = true
		updated = patch.Apply(current[i])
		current[i] = updated
		return current, nil
	})
	if err != nil {
		return domain.Product{}, false, err
	}
	if !found {
		return domain.Product{}, false, nil
	}
	return updated.Clone(), true, nil
}

// Delete removes the product permanently. Deleting an unknown id reports
// false and leaves the file untouched.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.mutate(ctx, "delete", func(current []domain.Product) ([]domain.Product, error) {
		i := indexOf(current, id)
		if i < 0 {
			return nil, nil
		}
		removed = true
		return slices.Delete(current, i, i+1), nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// Reload replaces the mirror with the file contents. It waits for any
// in-flight write first.
func (s *Store) Reload(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.StoreWriteDuration.WithLabelValues("reload").Observe(time.Since(start).Seconds())
	}()

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	products, err := s.readFile()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	metrics.ProductsStored.Set(float64(len(products)))
	return nil
}

// Ping checks the backing file is still readable and well formed.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.readFile()
	return err
}

// mutate runs fn on a private copy of the collection under the writer lock.
// fn returns nil to signal that nothing changed and nothing is written.
func (s *Store) mutate(ctx context.Context, op string, fn func([]domain.Product) ([]domain.Product, error)) error {
	start := time.Now()
	defer func() {
		metrics.StoreWriteDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	s.mu.RLock()
	working := cloneAll(s.products)
	s.mu.RUnlock()

	next, err := fn(working)
	if err != nil || next == nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s product: %w", op, err)
	}
	if err := s.persist(next); err != nil {
		s.log.Error().Err(err).Str("op", op).Msg("failed to persist products")
		return err
	}

	s.mu.Lock()
	s.products = next
	s.mu.Unlock()
	metrics.ProductsStored.Set(float64(len(next)))
	return nil
}

func (s *Store) lock(ctx context.Context) error {
	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("acquire product store: %w", ctx.Err())
	}
}

func (s *Store) unlock() { <-s.writer }

func (s *Store) readFile() ([]domain.Product, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptStore, s.path, err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// persist writes products to a temporary file in the target directory and
// renames it over the data file.
func (s *Store) persist(products []domain.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write temp file", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fail("chmod temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// newID returns prod_<unix millis>_<9 base36 chars>, retrying on the
// (practically impossible) collision with an existing id.
func newID(existing []domain.Product, now time.Time) (string, error) {
	for {
		suffix, err := randomBase36(suffixLen)
		if err != nil {
			return "", fmt.Errorf("generate product id: %w", err)
		}
		id := fmt.Sprintf("%s%d_%s", idPrefix, now.UnixMilli(), suffix)
		if indexOf(existing, id) < 0 {
			return id, nil
		}
	}
}

func randomBase36(n int) (string, error) {
	radix := big.NewInt(int64(len(base36)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", err
		}
		b[i] = base36[v.Int64()]
	}
	return string(b), nil
}

func indexOf(products []domain.Product, id string) int {
	return slices.IndexFunc(products, func(p domain.Product) bool { return p.ID == id })
}

func cloneAll(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
