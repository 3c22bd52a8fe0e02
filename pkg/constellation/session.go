package constellation

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Session holds the seed that arranges tonight's sky. The seed lives for the
// lifetime of the process unless Reshuffle draws a new one.
type Session struct {
	mu   sync.RWMutex
	seed int64
	draw func() int64
}

// NewSession starts a session with seed, or a random seed when seed is 0.
func NewSession(seed int64) *Session {
	s := &Session{draw: randomSeed}
	if seed == 0 {
		seed = s.draw()
	}
	s.seed = seed
	return s
}

func randomSeed() int64 {
	return rand.Int64N(math.MaxInt32) + 1
}

// Seed returns the current seed.
func (s *Session) Seed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed
}

// Reshuffle draws a seed different from the current one and returns it.
func (s *Session) Reshuffle() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.draw()
	for next == s.seed {
		next = s.draw()
	}
	s.seed = next
	return next
}
