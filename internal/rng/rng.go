// Package rng provides the random sources used by the simulation engines.
//
// Engines depend only on Source, so tests can substitute a fixed or scripted
// sequence and seeded runs can be reproduced.
package rng

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

// Source yields floats in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

const (
	SubsystemRace     = "race"
	SubsystemInjury   = "injury"
	SubsystemTraining = "training"
	SubsystemFactory  = "factory"
)

// Partitioned hands out an isolated, deterministically seeded stream per subsystem.
// Subsystem seeds are masterSeed XOR fnv1a64(name).
//
// Thread-safety: NOT thread-safe. Use from a single goroutine.
type Partitioned struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitioned creates a partitioned source. A zero seed picks one from the clock.
func NewPartitioned(seed int64) *Partitioned {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Partitioned{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// For returns the cached stream for a subsystem. Never returns nil.
func (p *Partitioned) For(name string) *rand.Rand {
	if r, ok := p.subsystems[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.subsystems[name] = r
	return r
}

// Seed returns the master seed
func (p *Partitioned) Seed() int64 {
	return p.seed
}

// Locked wraps a Source with a mutex so it can be shared across goroutines
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src
func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

// Float64 implements Source
func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// Fixed always returns the same value. Useful for deterministic tests.
type Fixed float64

// Float64 implements Source
func (f Fixed) Float64() float64 {
	return float64(f)
}

// Sequence replays values in order and wraps around at the end
type Sequence struct {
	values []float64
	next   int
}

// NewSequence creates a replaying source; an empty list behaves like Fixed(0)
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 implements Source
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
