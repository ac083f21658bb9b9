package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iho/tradesim/internal/domain"
)

// PortfolioRepository stores portfolios in a map.
type PortfolioRepository struct {
	mu         sync.RWMutex
	portfolios map[string]*domain.Portfolio
}

// NewPortfolioRepository creates an empty portfolio store.
func NewPortfolioRepository() *PortfolioRepository {
	return &PortfolioRepository{
		portfolios: make(map[string]*domain.Portfolio),
	}
}

func (r *PortfolioRepository) Save(_ context.Context, portfolio *domain.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.portfolios[portfolio.ID()] = portfolio

	return nil
}

func (r *PortfolioRepository) GetByID(_ context.Context, id string) (*domain.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	portfolio, ok := r.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
	}

	return portfolio, nil
}

func (r *PortfolioRepository) List(_ context.Context, limit, offset int) ([]*domain.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.portfolios))
	for id := range r.portfolios {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	portfolios := make([]*domain.Portfolio, 0, limit)
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(portfolios) == limit {
			break
		}
		portfolios = append(portfolios, r.portfolios[id])
	}

	return portfolios, nil
}

func (r *PortfolioRepository) ListByOwner(_ context.Context, owner string) ([]*domain.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var portfolios []*domain.Portfolio
	for _, p := range r.portfolios {
		if p.Owner() == owner {
			portfolios = append(portfolios, p)
		}
	}

	sort.Slice(portfolios, func(i, j int) bool { return portfolios[i].ID() < portfolios[j].ID() })

	return portfolios, nil
}

func (r *PortfolioRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.portfolios[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
	}

	delete(r.portfolios, id)

	return nil
}
