// Package state owns the view-lifetime references the map serves from:
// the current feature collection and its cluster index. Loads replace
// both wholesale; readers never observe a partial dataset.
package state

import (
	"sync"
	"time"

	"github.com/jengzang/chronomap-backend-go/internal/cluster"
	"github.com/jengzang/chronomap-backend-go/internal/models"
)

// AppState 应用级状态：当前要素集合与聚合索引
type AppState struct {
	mu       sync.RWMutex
	fc       *models.FeatureCollection
	index    *cluster.Index
	loadedAt time.Time
}

// New creates an empty application state
func New() *AppState {
	fc := models.NewFeatureCollection()
	return &AppState{
		fc:    fc,
		index: cluster.New(fc, cluster.DefaultOptions()),
	}
}

// Replace swaps in a freshly derived collection and its index
func (s *AppState) Replace(fc *models.FeatureCollection, idx *cluster.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fc = fc
	s.index = idx
	s.loadedAt = time.Now()
}

// Collection returns the current feature collection
func (s *AppState) Collection() *models.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fc
}

// Index returns the current cluster index
func (s *AppState) Index() *cluster.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// LoadedAt returns when the current dataset was committed
func (s *AppState) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
