package database

import (
	"database/sql"
	"sync"
	"time"
)

// CategoryCount represents the number of books in a category
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CachedStats holds the cached database statistics
type CachedStats struct {
	LastUpdated string          `json:"lastUpdated"`
	Count       int             `json:"count"`
	Categories  []CategoryCount `json:"categories"`
}

type statsCache struct {
	mu    sync.RWMutex
	stats *CachedStats
}

// GetCachedStats returns the cached stats if available, nil otherwise
func (s *Store) GetCachedStats() *CachedStats {
	if !s.stats.mu.TryRLock() {
		return nil
	}
	defer s.stats.mu.RUnlock()

	return s.stats.stats
}

// ComputeAndCacheStats computes the stats from the database and stores them in cache
func (s *Store) ComputeAndCacheStats(force bool) *CachedStats {
	if force {
		s.stats.mu.Lock()
	} else {
		if !s.stats.mu.TryLock() {
			// Another computation is in progress, return nil to indicate stats are not available
			return nil
		}
	}
	defer s.stats.mu.Unlock()

	stats := &CachedStats{
		Categories: []CategoryCount{},
	}

	// Count books
	var count int64
	if err := s.db.Model(&Book{}).Count(&count).Error; err != nil {
		return nil
	}
	stats.Count = int(count)

	// Most recent change, falls back to now on an empty table
	var lastUpdated sql.NullTime
	if err := s.db.Model(&Book{}).Select("MAX(updated_at)").Row().Scan(&lastUpdated); err != nil || !lastUpdated.Valid {
		lastUpdated.Time = time.Now()
	}
	stats.LastUpdated = lastUpdated.Time.UTC().Format(time.RFC3339)

	// Count books by category
	s.db.Model(&Book{}).
		Select("category, COUNT(*) as count").
		Group("category").
		Order("count DESC, category").
		Scan(&stats.Categories)

	s.stats.stats = stats
	return s.stats.stats
}

// InvalidateStatsCache marks the cache as invalid so it will be recomputed on next access
func (s *Store) InvalidateStatsCache() {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	s.stats.stats = nil
}

