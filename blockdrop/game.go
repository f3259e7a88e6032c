package blockdrop

import (
	"log/slog"
	"sync"
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	t := &wrappedTicker{ticker: time.NewTicker(d)}
	t.Stop()
	return t
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Game runs a Session in real time. A single goroutine applies the gravity
// ticks and the player actions one at a time.
type Game struct {
	mu       sync.RWMutex
	session  *Session
	queue    *eventQueue
	listener Listener
	logger   *slog.Logger
	ticker   Ticker
	actionCh chan Action

	runMu sync.Mutex
	run   *run
}

// run is the lifetime of one listen loop. It ends on game over or Stop.
type run struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (r *run) halt() { r.once.Do(func() { close(r.stop) }) }

func (r *run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func NewGame(opts Options, l Listener, logger *slog.Logger) *Game {
	return NewConfigurableGame(opts, l, logger, newWrappedTicker(time.Hour))
}

func NewConfigurableGame(opts Options, l Listener, logger *slog.Logger, ticker Ticker) *Game {
	if l == nil {
		l = NopListener
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	q := &eventQueue{}
	return &Game{
		session:  NewSession(opts, q, logger),
		queue:    q,
		listener: l,
		logger:   logger,
		ticker:   ticker,
		actionCh: make(chan Action),
	}
}

// Start begins a new game, starting the loop if it isn't running.
func (g *Game) Start() {
	g.runMu.Lock()
	if g.run == nil || g.run.finished() {
		g.run = &run{stop: make(chan struct{}), done: make(chan struct{})}
		go g.listen(g.run)
	}
	r := g.run
	g.runMu.Unlock()
	g.send(r, Start)
}

// Action hands a player action to the loop. It returns right away when no
// game is running.
func (g *Game) Action(a Action) {
	if a == Start {
		g.Start()
		return
	}
	g.runMu.Lock()
	r := g.run
	g.runMu.Unlock()
	if r == nil {
		return
	}
	g.send(r, a)
}

func (g *Game) send(r *run, a Action) {
	select {
	case g.actionCh <- a:
	case <-r.done:
	}
}

// Stop ends the loop and waits for it to return. The game state is kept.
func (g *Game) Stop() {
	g.runMu.Lock()
	r := g.run
	g.runMu.Unlock()
	if r == nil {
		return
	}
	r.halt()
	<-r.done
}

// Read returns a copy of the current state that's safe to read concurrently.
func (g *Game) Read() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Snapshot()
}

func (g *Game) listen(r *run) {
	defer close(r.done)
	for {
		var over bool
		select {
		case <-g.ticker.C():
			over = g.step("tick", (*Session).Tick)
		case a := <-g.actionCh:
			over = g.step(a, func(s *Session) { s.Apply(a) })
		case <-r.stop:
			g.ticker.Stop()
			return
		}
		if over {
			return
		}
	}
}

// step applies one change to the session, reschedules gravity and hands the
// notifications to the listener once the lock is released.
func (g *Game) step(a Action, f func(*Session)) bool {
	g.mu.Lock()
	before, pieces, level := g.session.State(), g.session.Pieces(), g.session.Level()
	f(g.session)
	state := g.session.State()
	switch {
	case state == Paused || state == GameOver:
		g.ticker.Stop()
	// start and resume only count when the session took them.
	case state != before,
		a == SoftDrop || a == HardDrop,
		g.session.Pieces() != pieces || g.session.Level() != level:
		g.ticker.Reset(max(g.session.Interval(), MinInterval))
	}
	events := g.queue.drain()
	g.mu.Unlock()

	for _, e := range events {
		e.dispatch(g.listener)
	}
	return state == GameOver
}

// eventQueue buffers the session notifications while the game lock is held.
type eventQueue struct {
	events []event
}

type event struct {
	snapshot *Snapshot
	sound    Sound
	result   *Result
}

func (q *eventQueue) Render(s Snapshot) { q.events = append(q.events, event{snapshot: &s}) }
func (q *eventQueue) Sound(s Sound)     { q.events = append(q.events, event{sound: s}) }
func (q *eventQueue) GameOver(r Result) { q.events = append(q.events, event{result: &r}) }

func (q *eventQueue) drain() []event {
	e := q.events
	q.events = nil
	return e
}

func (e event) dispatch(l Listener) {
	switch {
	case e.snapshot != nil:
		l.Render(*e.snapshot)
	case e.result != nil:
		l.GameOver(*e.result)
	default:
		l.Sound(e.sound)
	}
}
