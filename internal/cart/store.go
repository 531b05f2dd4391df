// Package cart holds the per-session line-item store.
package cart

import (
	"sync"
	"time"

	"luxe-storefront/internal/domain"
)

// Policy controls optional add-time behaviour.
type Policy struct {
	// EnforceStockLimit clamps line quantities to the product's stock.
	EnforceStockLimit bool
}

// AddedFunc is notified after every successful AddLine.
type AddedFunc func(line domain.CartLine)

// Store is an ordered set of cart lines keyed by (productID, size).
type Store struct {
	mu      sync.RWMutex
	lines   []domain.CartLine
	policy  Policy
	onAdded []AddedFunc
	now     func() time.Time
}

func NewStore(policy Policy) *Store {
	return &Store{policy: policy, now: time.Now}
}

// OnAdded registers fn for "added" notifications.
func (s *Store) OnAdded(fn AddedFunc) {
	s.mu.Lock()
	s.onAdded = append(s.onAdded, fn)
	s.mu.Unlock()
}

// AddLine merges quantity into the line for (product.ID, size), creating it
// with a snapshot of the product when absent. A non-positive quantity is
// treated as 1.
func (s *Store) AddLine(product domain.Product, size string, quantity int) domain.CartLine {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	var line domain.CartLine
	if idx := s.indexOf(product.ID, size); idx >= 0 {
		s.lines[idx].Quantity = s.clamp(s.lines[idx].Quantity+quantity, product)
		line = s.lines[idx]
	} else {
		line = domain.CartLine{
			ProductID:      product.ID,
			Size:           size,
			Quantity:       s.clamp(quantity, product),
			UnitPriceCents: product.PriceCents,
			Name:           product.Name,
			Image:          product.Image,
			Category:       product.Category,
			AddedAt:        s.now().UTC(),
		}
		s.lines = append(s.lines, line)
	}
	listeners := append([]AddedFunc(nil), s.onAdded...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(line)
	}
	return line
}

// RemoveLine drops the matching line. Absent keys are ignored.
func (s *Store) RemoveLine(productID, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID, size)
}

// SetQuantity overwrites the quantity of the matching line; n <= 0 removes it.
func (s *Store) SetQuantity(productID, size string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		s.removeLocked(productID, size)
		return
	}
	if idx := s.indexOf(productID, size); idx >= 0 {
		s.lines[idx].Quantity = n
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
}

// Total is the sum of unit price times quantity over all lines.
func (s *Store) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, l := range s.lines {
		total += l.LineTotal()
	}
	return total
}

// Count is the number of units across all lines.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Restore replaces the contents with a persisted snapshot. Lines that would
// break the one-line-per-key or positive-quantity invariants are folded or
// dropped.
func (s *Store) Restore(lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if idx := s.indexOf(l.ProductID, l.Size); idx >= 0 {
			s.lines[idx].Quantity += l.Quantity
			continue
		}
		s.lines = append(s.lines, l)
	}
}

func (s *Store) indexOf(productID, size string) int {
	for i, l := range s.lines {
		if l.ProductID == productID && l.Size == size {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(productID, size string) {
	idx := s.indexOf(productID, size)
	if idx < 0 {
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
}

// Limit applies the store's stock policy to qty for product.
func (s *Store) Limit(product domain.Product, qty int) int {
	return s.clamp(qty, product)
}

func (s *Store) clamp(qty int, product domain.Product) int {
	if !s.policy.EnforceStockLimit {
		return qty
	}
	if qty > product.Stock {
		qty = product.Stock
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}
