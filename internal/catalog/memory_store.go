package catalog

import (
	"context"
	"sync"

	"github.com/fjod/go_shop/internal/domain"
)

// MemoryStore implements Reader with in-memory storage. Used in tests and
// local runs without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	variants map[int64]*domain.ProductVariant
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]*domain.Product),
		variants: make(map[int64]*domain.ProductVariant),
	}
}

func (s *MemoryStore) PutProduct(p *domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

func (s *MemoryStore) PutVariant(v *domain.ProductVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.variants[v.ID] = &cp
}

func (s *MemoryStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetVariant(_ context.Context, id int64) (*domain.ProductVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, exists := s.variants[id]
	if !exists {
		return nil, ErrVariantNotFound
	}
	cp := *v
	return &cp, nil
}

// AdjustStock adds delta to the stored stock quantity. Negative deltas are
// allowed; callers are expected to have validated availability.
func (s *MemoryStore) AdjustStock(_ context.Context, productID int64, variantID *int64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if variantID != nil {
		v, exists := s.variants[*variantID]
		if !exists {
			return ErrVariantNotFound
		}
		v.StockQuantity += delta
		return nil
	}
	p, exists := s.products[productID]
	if !exists {
		return ErrProductNotFound
	}
	p.StockQuantity += delta
	return nil
}
