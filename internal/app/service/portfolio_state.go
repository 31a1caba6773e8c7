package service

import (
	"sync"

	"soroban_portfolio/internal/domain/entity"
)

// PortfolioState holds the last published snapshot. Snapshots are never
// mutated after Publish; readers see either the old or the new one whole.
type PortfolioState struct {
	mu       sync.RWMutex
	snapshot *entity.PortfolioSnapshot
}

// NewPortfolioState creates an empty state.
func NewPortfolioState() *PortfolioState {
	return &PortfolioState{}
}

// Current returns the published snapshot, or nil before the first load.
func (s *PortfolioState) Current() *entity.PortfolioSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Tokens returns a copy of the published token list.
func (s *PortfolioState) Tokens() []entity.PortfolioToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	return append([]entity.PortfolioToken(nil), s.snapshot.Tokens...)
}

// Publish replaces the snapshot.
func (s *PortfolioState) Publish(snapshot *entity.PortfolioSnapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}
