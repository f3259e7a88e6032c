package blockdrop

import (
	"log/slog"
	"sync"
	"time"
)

// FixedRandomizer hands out its shapes in order, over and over.
type FixedRandomizer struct {
	Shapes []Shape
	i      int
}

func (f *FixedRandomizer) Next() Shape {
	s := f.Shapes[f.i%len(f.Shapes)]
	f.i++
	return s
}

// MockTicker is a manual implementation of the Ticker interface.
type MockTicker struct {
	ch           chan time.Time
	mu           sync.Mutex
	stops, reset int
	last         time.Duration
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }

func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

func (m *MockTicker) Reset(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset++
	m.last = d
}

// Resets returns how many times the ticker was reset and the last duration.
func (m *MockTicker) Resets() (int, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset, m.last
}

func (m *MockTicker) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// NewTestSession creates a standard 10x20 session that only spawns the given
// shape.
func NewTestSession(shape Shape, l Listener) *Session {
	opts := DefaultOptions()
	opts.Randomizer = &FixedRandomizer{Shapes: []Shape{shape}}
	return NewSession(opts, l, slog.New(slog.DiscardHandler))
}

// NewTestGame creates a game that only spawns the given shape and returns it
// with its manual ticker.
func NewTestGame(shape Shape, l Listener) (*Game, *MockTicker) {
	opts := DefaultOptions()
	opts.Randomizer = &FixedRandomizer{Shapes: []Shape{shape}}
	ticker := NewMockTicker()
	return NewConfigurableGame(opts, l, slog.New(slog.DiscardHandler), ticker), ticker
}
