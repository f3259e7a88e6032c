package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"blockdrop/blockdrop"
	"blockdrop/scoreboard"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"
)

type clientState int

const (
	lobby clientState = iota
	playing
	paused
)

type state struct {
	current clientState
	mu      sync.Mutex
}

func (s *state) get() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *state) set(c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

type blockGame interface {
	Start()
	Action(blockdrop.Action)
	Stop()
}

type renderer interface {
	game(blockdrop.Snapshot)
	lobby(message)
	clear()
}

// ScoreSink records finished games and answers with their rank.
type ScoreSink interface {
	Add(ctx context.Context, e scoreboard.Entry) (int, error)
}

type Client struct {
	game    blockGame
	render  renderer
	sink    ScoreSink
	options *Options
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	state   *state
	bell    io.Writer
	submits sync.WaitGroup
}

type Options struct {
	Game    blockdrop.Options
	Name    string
	NoGhost bool
	Sound   bool
	// Timeout bounds every score submission.
	Timeout time.Duration
}

// New opens the keyboard and prepares a game. sink may be nil.
func New(l *slog.Logger, o *Options, sink ScoreSink) (*Client, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, fmt.Errorf("stdout is not a terminal")
	}
	r, err := newRender(os.Stdout, l, o)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	c := &Client{
		render:  r,
		sink:    sink,
		options: o,
		logger:  l,
		kbCh:    kb,
		state:   &state{current: lobby},
		bell:    os.Stdout,
	}
	c.game = blockdrop.NewGame(o.Game, c, l)
	return c, nil
}

// Start shows the lobby and blocks until the player leaves.
func (c *Client) Start() {
	c.render.clear()
	c.render.lobby(welcome())
	c.listenKB()
	c.game.Stop()
	c.submits.Wait()
}

// Close releases the keyboard.
func (c *Client) Close() error {
	return keyboard.Close()
}

func (c *Client) listenKB() {
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keyboard event error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		switch c.state.get() {
		case lobby:
			switch {
			case event.Rune == 's', event.Key == keyboard.KeyEnter:
				c.state.set(playing)
				c.render.clear()
				c.game.Start()
			case event.Rune == 'q', event.Key == keyboard.KeyEsc:
				return
			}
		case playing, paused:
			if a, ok := keyToAction(event, c.state.get() == paused); ok {
				c.game.Action(a)
			}
		}
	}
}

// keyToAction maps a key to the action it triggers while a game is running.
func keyToAction(e keyboard.KeyEvent, isPaused bool) (blockdrop.Action, bool) {
	switch {
	case e.Key == keyboard.KeyArrowLeft, e.Rune == 'h', e.Rune == 'a':
		return blockdrop.MoveLeft, true
	case e.Key == keyboard.KeyArrowRight, e.Rune == 'l', e.Rune == 'd':
		return blockdrop.MoveRight, true
	case e.Key == keyboard.KeyArrowDown, e.Rune == 'j', e.Rune == 's':
		return blockdrop.SoftDrop, true
	case e.Key == keyboard.KeyArrowUp, e.Rune == 'k', e.Rune == 'w':
		return blockdrop.Rotate, true
	case e.Key == keyboard.KeySpace, e.Key == keyboard.KeyEnter:
		if isPaused {
			return blockdrop.Resume, true
		}
		return blockdrop.HardDrop, true
	case e.Key == keyboard.KeyEsc, e.Rune == 'p':
		if isPaused {
			return blockdrop.Resume, true
		}
		return blockdrop.Pause, true
	case e.Rune == 'r' && isPaused:
		return blockdrop.Resume, true
	case e.Rune == 'q':
		return blockdrop.Quit, true
	}
	return "", false
}

// Render implements blockdrop.Listener.
func (c *Client) Render(s blockdrop.Snapshot) {
	switch s.State {
	case blockdrop.Paused:
		c.state.set(paused)
	case blockdrop.Active:
		c.state.set(playing)
	}
	if c.state.get() == lobby {
		return
	}
	c.render.game(s)
	if s.State == blockdrop.Paused {
		c.render.lobby(pausedMessage())
	}
}

// Sound rings the terminal bell for the cues worth hearing.
func (c *Client) Sound(s blockdrop.Sound) {
	if !c.options.Sound {
		return
	}
	switch s {
	case blockdrop.SoundLineClear, blockdrop.SoundGameOver:
		fmt.Fprint(c.bell, "\a")
	}
}

// GameOver shows the result and hands it to the score sink.
func (c *Client) GameOver(r blockdrop.Result) {
	c.state.set(lobby)
	c.render.lobby(gameOver(r, 0))
	if c.sink == nil || r.Score == 0 {
		return
	}
	entry := scoreboard.NewEntry(c.options.Name, r)
	c.submits.Add(1)
	go func() {
		defer c.submits.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
		defer cancel()
		rank, err := c.sink.Add(ctx, entry)
		if err != nil {
			c.logger.Error("failed to submit score", slog.String("error", err.Error()))
			return
		}
		c.logger.Info("score submitted", slog.Int("score", r.Score), slog.Int("rank", rank))
		if c.state.get() == lobby {
			c.render.lobby(gameOver(r, rank))
		}
	}()
}

func (c *Client) timeout() time.Duration {
	if c.options.Timeout <= 0 {
		return 3 * time.Second
	}
	return c.options.Timeout
}
