package blockdrop

import (
	"log/slog"
	"time"
)

// State is the phase of a session.
type State int

const (
	Idle State = iota
	Spawning
	Active
	Locking
	ClearingLines
	Paused
	GameOver
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Spawning:
		return "spawning"
	case Active:
		return "active"
	case Locking:
		return "locking"
	case ClearingLines:
		return "clearing lines"
	case Paused:
		return "paused"
	case GameOver:
		return "game over"
	default:
		return "unknown"
	}
}

type Action string

const (
	MoveLeft  Action = "left"   // Moves the piece one column to the left.
	MoveRight Action = "right"  // Moves the piece one column to the right.
	SoftDrop  Action = "down"   // Moves the piece one row down, locks it if it can't.
	HardDrop  Action = "drop"   // Drops the piece to the bottom and locks it.
	Rotate    Action = "rotate" // Rotates the piece clockwise.
	Pause     Action = "pause"
	Resume    Action = "resume"
	Start     Action = "start"
	Quit      Action = "quit"
)

// Sound is a named audio cue. Playing it is up to the listener.
type Sound string

const (
	SoundMove      Sound = "move"
	SoundRotate    Sound = "rotate"
	SoundDrop      Sound = "drop"
	SoundLineClear Sound = "lineClear"
	SoundGameOver  Sound = "gameOver"
)

// Result is the final report of a session.
type Result struct {
	Score int
	Lines int
	Level int
	// Quit is set when the player ended the game.
	Quit bool
}

// Listener is notified by the session. Render is called after every change
// of state, Sound for every audio cue and GameOver once per game.
type Listener interface {
	Render(Snapshot)
	Sound(Sound)
	GameOver(Result)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnRender   func(Snapshot)
	OnSound    func(Sound)
	OnGameOver func(Result)
}

func (l ListenerFuncs) Render(s Snapshot) {
	if l.OnRender != nil {
		l.OnRender(s)
	}
}

func (l ListenerFuncs) Sound(s Sound) {
	if l.OnSound != nil {
		l.OnSound(s)
	}
}

func (l ListenerFuncs) GameOver(r Result) {
	if l.OnGameOver != nil {
		l.OnGameOver(r)
	}
}

// NopListener discards every notification.
var NopListener Listener = ListenerFuncs{}

// Options are the immutable inputs of a session.
type Options struct {
	Width        int
	Height       int
	StartLevel   int
	BaseInterval time.Duration
	// Randomizer picks the shapes, a UniformRandomizer seeded with Seed is
	// used when it's nil.
	Randomizer Randomizer
	Seed       uint64
}

func DefaultOptions() Options {
	return Options{
		Width:        10,
		Height:       20,
		StartLevel:   1,
		BaseInterval: time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.StartLevel < 1 {
		o.StartLevel = d.StartLevel
	}
	if o.BaseInterval <= 0 {
		o.BaseInterval = d.BaseInterval
	}
	if o.Randomizer == nil {
		o.Randomizer = NewUniformRandomizer(o.Seed)
	}
	return o
}

// Session is a single player game. It is synchronous and not safe for
// concurrent use, Game drives it from a single goroutine.
type Session struct {
	opts     Options
	board    *Board
	rand     Randomizer
	listener Listener
	logger   *slog.Logger

	state  State
	active *Piece
	next   Shape
	score  int
	lines  int
	level  int
	pieces int

	// result is held until the render of the final state went out.
	result *Result
	// trace observes every state transition.
	trace func(from, to State)
}

func NewSession(opts Options, l Listener, logger *slog.Logger) *Session {
	opts = opts.withDefaults()
	if l == nil {
		l = NopListener
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		opts:     opts,
		board:    NewBoard(opts.Width, opts.Height),
		rand:     opts.Randomizer,
		listener: l,
		logger:   logger,
		level:    opts.StartLevel,
	}
}

func (s *Session) State() State     { return s.state }
func (s *Session) Score() int       { return s.score }
func (s *Session) Lines() int       { return s.lines }
func (s *Session) Level() int       { return s.level }
func (s *Session) Options() Options { return s.opts }

// Interval is the gravity tick duration at the current level.
func (s *Session) Interval() time.Duration {
	return Interval(s.opts.BaseInterval, s.level)
}

// Pieces returns how many pieces were spawned since the game started.
func (s *Session) Pieces() int { return s.pieces }

// Start begins a new game. It's a no-op while a game is in progress.
func (s *Session) Start() {
	if s.state != Idle && s.state != GameOver {
		return
	}
	s.board.Reset()
	s.score, s.lines, s.pieces = 0, 0, 0
	s.level = s.opts.StartLevel
	s.next = s.rand.Next()
	s.logger.Debug("game started", slog.Int("level", s.level))
	s.spawn()
	s.commit()
}

// Tick applies gravity: the piece moves one row down or locks.
func (s *Session) Tick() {
	if s.state != Active {
		return
	}
	if CanMoveDown(*s.active, s.board) {
		s.active.Anchor.Row++
	} else {
		s.lock()
	}
	s.commit()
}

func (s *Session) MoveLeft() bool  { return s.shift(-1, 0, SoundMove) }
func (s *Session) MoveRight() bool { return s.shift(1, 0, SoundMove) }
func (s *Session) Rotate() bool    { return s.shift(0, 1, SoundRotate) }

func (s *Session) shift(dCol, dRotation int, sound Sound) bool {
	if s.state != Active || !CanPlace(*s.active, s.board, dCol, 0, dRotation) {
		return false
	}
	*s.active = s.active.moved(dCol, 0, dRotation)
	s.listener.Sound(sound)
	s.commit()
	return true
}

// SoftDrop moves the piece one row down scoring SoftDropPoints, or locks it
// when it already touched down.
func (s *Session) SoftDrop() {
	if s.state != Active {
		return
	}
	if CanMoveDown(*s.active, s.board) {
		s.active.Anchor.Row++
		s.score += SoftDropPoints
		s.listener.Sound(SoundMove)
	} else {
		// a resting piece locks right away instead of staying put.
		s.lock()
	}
	s.commit()
}

// HardDrop moves the piece down as far as it goes, scoring HardDropPoints per
// row, and locks it.
func (s *Session) HardDrop() {
	if s.state != Active {
		return
	}
	d := dropDistance(*s.active, s.board)
	s.active.Anchor.Row += d
	s.score += d * HardDropPoints
	s.lock()
	s.commit()
}

func (s *Session) Pause() {
	if s.state != Active {
		return
	}
	s.setState(Paused)
	s.commit()
}

func (s *Session) Resume() {
	if s.state != Paused {
		return
	}
	s.setState(Active)
	s.commit()
}

// Quit ends the game in progress. The result is still reported.
func (s *Session) Quit() {
	if s.state == Idle || s.state == GameOver {
		return
	}
	s.finish(true)
	s.commit()
}

// Apply runs the operation behind a logical action.
func (s *Session) Apply(a Action) {
	switch a {
	case MoveLeft:
		s.MoveLeft()
	case MoveRight:
		s.MoveRight()
	case Rotate:
		s.Rotate()
	case SoftDrop:
		s.SoftDrop()
	case HardDrop:
		s.HardDrop()
	case Pause:
		s.Pause()
	case Resume:
		s.Resume()
	case Start:
		s.Start()
	case Quit:
		s.Quit()
	default:
		s.logger.Warn("unknown action", slog.String("action", string(a)))
	}
}

func (s *Session) spawn() {
	s.setState(Spawning)
	shape := s.next
	s.next = s.rand.Next()
	p := Piece{
		Shape:  shape,
		Anchor: Cell{Col: s.opts.Width/2 - (BoxSize(shape)+1)/2, Row: -1},
	}
	if !CanPlace(p, s.board, 0, 0, 0) {
		s.logger.Debug("spawn blocked", slog.String("shape", string(shape)))
		s.finish(false)
		return
	}
	s.active = &p
	s.pieces++
	s.setState(Active)
}

func (s *Session) lock() {
	s.setState(Locking)
	p := *s.active
	s.active = nil
	for _, c := range p.Cells() {
		// the stack reached the top.
		if c.Row < 0 {
			s.finish(false)
			return
		}
	}
	if err := s.board.LockPiece(p); err != nil {
		s.logger.Error("failed to lock piece", slog.String("error", err.Error()))
		s.finish(false)
		return
	}
	s.listener.Sound(SoundDrop)

	s.setState(ClearingLines)
	if rows := s.board.FindCompleteRows(); len(rows) > 0 {
		s.score += ScoreForClear(len(rows), s.level)
		s.lines, s.level = ApplyClear(s.lines, s.level, len(rows))
		s.board.ClearRows(rows)
		s.listener.Sound(SoundLineClear)
		s.logger.Debug("rows cleared", slog.Int("rows", len(rows)), slog.Int("lines", s.lines), slog.Int("level", s.level))
	}
	s.spawn()
}

func (s *Session) finish(quit bool) {
	s.active = nil
	s.setState(GameOver)
	s.listener.Sound(SoundGameOver)
	s.result = &Result{Score: s.score, Lines: s.lines, Level: s.level, Quit: quit}
	s.logger.Info("game over",
		slog.Int("score", s.score),
		slog.Int("lines", s.lines),
		slog.Int("level", s.level),
		slog.Bool("quit", quit),
	)
}

func (s *Session) setState(to State) {
	if s.trace != nil {
		s.trace(s.state, to)
	}
	s.state = to
}

// commit renders the new state and reports the result of a finished game.
func (s *Session) commit() {
	s.listener.Render(s.Snapshot())
	if s.result != nil {
		r := *s.result
		s.result = nil
		s.listener.GameOver(r)
	}
}

// Snapshot is a copy of the session state for renderers.
type Snapshot struct {
	Width, Height int
	// Stack holds the locked cells, one slice per row.
	Stack [][]Shape
	// Piece holds the cells of the active piece, nil when there is none.
	Piece []Cell
	Shape Shape
	// Ghost holds the cells where the active piece would land.
	Ghost []Cell
	Next  Shape
	Score int
	Lines int
	Level int
	State State
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Width:  s.board.Width(),
		Height: s.board.Height(),
		Stack:  s.board.Rows(),
		Next:   s.next,
		Score:  s.score,
		Lines:  s.lines,
		Level:  s.level,
		State:  s.state,
	}
	if s.active != nil {
		cells := s.active.Cells()
		snap.Piece = cells[:]
		snap.Shape = s.active.Shape
		ghost := s.active.moved(0, dropDistance(*s.active, s.board), 0).Cells()
		snap.Ghost = ghost[:]
	}
	return snap
}
