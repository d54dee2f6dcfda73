// Package testutil provides deterministic substitutes for the engine's
// injectable clock and id generator, so tests produce identical
// timestamps, ids, and golden output on every run.
package testutil

import (
	"fmt"
	"sync"
	"time"
)

// Ticker is a deterministic clock: every call advances by a fixed step.
// Safe for concurrent use.
type Ticker struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewTicker returns a clock whose first call yields start+step.
func NewTicker(start time.Time, step time.Duration) *Ticker {
	return &Ticker{next: start, step: step}
}

// Now returns the next tick. Use as an Engine.Now replacement.
func (c *Ticker) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = c.next.Add(c.step)
	return c.next
}

// IDSequence yields "prefix-0001", "prefix-0002", ... Safe for
// concurrent use.
type IDSequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewIDSequence returns a sequence with the given prefix.
func NewIDSequence(prefix string) *IDSequence {
	return &IDSequence{prefix: prefix}
}

// Next returns the next id. Use as an Engine.NewID replacement.
func (s *IDSequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%04d", s.prefix, s.n)
}
