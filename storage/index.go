package storage

import (
	"fmt"
	"sort"
	"sync"

	"meetingMind/core"
)

// Neighbor is one hit from a flat index search: the stored vector's
// position (== chunk id) and its squared Euclidean distance to the query.
type Neighbor struct {
	Position int
	Distance float64
}

// FlatIndex is an exact, exhaustive vector index: an append-only list of
// fixed-dimension float32 vectors scanned in full on every search. The
// position of a vector equals the chunk id it was built from.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

// Add appends a vector and returns its position. The first insert fixes
// the index dimension; later vectors must match it.
func (ix *FlatIndex) Add(vec []float32) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(vec) == 0 {
		return 0, fmt.Errorf("add vector: %w: empty vector", core.ErrInvalidInput)
	}
	if ix.dimension == 0 {
		ix.dimension = len(vec)
	} else if len(vec) != ix.dimension {
		return 0, fmt.Errorf("add vector: %w: got %d, index dimension %d",
			core.ErrDimensionMismatch, len(vec), ix.dimension)
	}
	stored := make([]float32, len(vec))
	copy(stored, vec)
	ix.vectors = append(ix.vectors, stored)
	return len(ix.vectors) - 1, nil
}

// Search returns the k nearest stored vectors by squared Euclidean
// distance, ascending, ties broken by lower position. k larger than the
// index returns everything; k <= 0 falls back to 5.
func (ix *FlatIndex) Search(query []float32, k int) ([]Neighbor, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.vectors) == 0 {
		return nil, fmt.Errorf("search: %w", core.ErrEmptyIndex)
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("search: %w: query has %d, index dimension %d",
			core.ErrDimensionMismatch, len(query), ix.dimension)
	}
	if k <= 0 {
		k = 5
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	neighbors := make([]Neighbor, len(ix.vectors))
	for i, v := range ix.vectors {
		neighbors[i] = Neighbor{Position: i, Distance: squaredL2(query, v)}
	}
	sort.SliceStable(neighbors, func(a, b int) bool {
		if neighbors[a].Distance != neighbors[b].Distance {
			return neighbors[a].Distance < neighbors[b].Distance
		}
		return neighbors[a].Position < neighbors[b].Position
	})
	return neighbors[:k], nil
}

// Len reports the number of stored vectors.
func (ix *FlatIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Dimension reports the vector dimension, 0 before the first insert.
func (ix *FlatIndex) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimension
}

// Vectors returns a copy of the stored vectors in position order.
func (ix *FlatIndex) Vectors() [][]float32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([][]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		c := make([]float32, len(v))
		copy(c, v)
		out[i] = c
	}
	return out
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// SimilarityFromDistance maps a squared L2 distance to a score in (0, 1],
// monotonically decreasing in distance. The mapping is a presentation
// choice, not a stored value.
func SimilarityFromDistance(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}
