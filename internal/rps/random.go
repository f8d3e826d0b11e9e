package rps

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the entropy used for difficulty rolls and random moves.
type Source interface {
	Float64() float64
	Intn(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a goroutine-safe Source. seed 0 seeds from the clock.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// RandomMove picks uniformly over Moves.
func RandomMove(src Source) Move {
	return Moves[src.Intn(len(Moves))]
}
