package client

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"blockdrop/blockdrop"
	"blockdrop/scoreboard"

	"github.com/eiannone/keyboard"
)

type mockGame struct {
	mu      sync.Mutex
	start   int
	stop    bool
	actions []blockdrop.Action
}

func (m *mockGame) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start++
}

func (m *mockGame) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}

func (m *mockGame) Action(a blockdrop.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, a)
}

func (m *mockGame) starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start
}

func (m *mockGame) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

func (m *mockGame) actionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.actions)
}

func (m *mockGame) last() blockdrop.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.actions) == 0 {
		return ""
	}
	return m.actions[len(m.actions)-1]
}

type mockRender struct {
	mu       sync.Mutex
	games    int
	messages []message
}

func (m *mockRender) clear() {}

func (m *mockRender) game(blockdrop.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games++
}

func (m *mockRender) lobby(msg message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockRender) messageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func (m *mockRender) gameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games
}

func (m *mockRender) lastMessage() message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages[len(m.messages)-1]
}

type mockSink struct {
	mu      sync.Mutex
	entries []scoreboard.Entry
	err     error
}

func (m *mockSink) Add(_ context.Context, e scoreboard.Entry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return 3, m.err
}

func newTestClient(sink ScoreSink) (*Client, *mockGame, *mockRender, chan keyboard.KeyEvent, *bytes.Buffer) {
	game := &mockGame{}
	render := &mockRender{}
	kCh := make(chan keyboard.KeyEvent)
	bell := &bytes.Buffer{}
	cl := &Client{
		game:    game,
		render:  render,
		sink:    sink,
		options: &Options{Name: "ada", Sound: true},
		logger:  slog.New(slog.DiscardHandler),
		kbCh:    kCh,
		state:   &state{current: lobby},
		bell:    bell,
	}
	return cl, game, render, kCh, bell
}

func TestClient(t *testing.T) {
	cl, game, render, kCh, _ := newTestClient(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { cl.Start(); wg.Done() }()
	time.Sleep(10 * time.Millisecond)
	if n := render.messageCount(); n != 1 {
		t.Errorf("wanted the welcome message, got %d messages", n)
	}

	// keys other than start and quit are ignored in the lobby.
	kCh <- keyboard.KeyEvent{Rune: 'a'}
	// 's' starts the game.
	kCh <- keyboard.KeyEvent{Rune: 's'}
	time.Sleep(10 * time.Millisecond)
	if n := game.starts(); n != 1 {
		t.Errorf("wanted game.Start() to be called once, got %d", n)
	}
	if n := game.actionCount(); n != 0 {
		t.Errorf("wanted no actions from the lobby, got %d", n)
	}
	if cl.state.get() != playing {
		t.Errorf("wanted state to be playing")
	}

	actions := []struct {
		key    keyboard.KeyEvent
		action blockdrop.Action
	}{
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, action: blockdrop.MoveLeft},
		{key: keyboard.KeyEvent{Rune: 'd'}, action: blockdrop.MoveRight},
		{key: keyboard.KeyEvent{Rune: 'j'}, action: blockdrop.SoftDrop},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, action: blockdrop.Rotate},
		{key: keyboard.KeyEvent{Key: keyboard.KeySpace}, action: blockdrop.HardDrop},
		{key: keyboard.KeyEvent{Rune: 'p'}, action: blockdrop.Pause},
	}
	for _, a := range actions {
		t.Run(fmt.Sprintf("key %v", a.key), func(t *testing.T) {
			kCh <- a.key
			time.Sleep(10 * time.Millisecond)
			if game.last() != a.action {
				t.Errorf("wanted action %v, got %v", a.action, game.last())
			}
		})
	}

	// a paused snapshot switches space to resume.
	cl.Render(blockdrop.Snapshot{State: blockdrop.Paused})
	kCh <- keyboard.KeyEvent{Key: keyboard.KeySpace}
	time.Sleep(10 * time.Millisecond)
	if game.last() != blockdrop.Resume {
		t.Errorf("wanted resume while paused, got %v", game.last())
	}

	// game over goes back to the lobby where 'q' leaves.
	cl.GameOver(blockdrop.Result{Score: 0, Level: 1})
	if cl.state.get() != lobby {
		t.Errorf("wanted lobby after game over")
	}
	kCh <- keyboard.KeyEvent{Rune: 'q'}
	wg.Wait()
	if !game.stopped() {
		t.Errorf("wanted game.Stop() to be called")
	}
}

func TestKeyToAction(t *testing.T) {
	tests := []struct {
		key    keyboard.KeyEvent
		paused bool
		action blockdrop.Action
		ok     bool
	}{
		{keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, false, blockdrop.MoveLeft, true},
		{keyboard.KeyEvent{Rune: 'h'}, false, blockdrop.MoveLeft, true},
		{keyboard.KeyEvent{Rune: 'a'}, false, blockdrop.MoveLeft, true},
		{keyboard.KeyEvent{Key: keyboard.KeyArrowRight}, false, blockdrop.MoveRight, true},
		{keyboard.KeyEvent{Rune: 'l'}, false, blockdrop.MoveRight, true},
		{keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, false, blockdrop.SoftDrop, true},
		{keyboard.KeyEvent{Rune: 's'}, false, blockdrop.SoftDrop, true},
		{keyboard.KeyEvent{Rune: 'k'}, false, blockdrop.Rotate, true},
		{keyboard.KeyEvent{Rune: 'w'}, false, blockdrop.Rotate, true},
		{keyboard.KeyEvent{Key: keyboard.KeyEnter}, false, blockdrop.HardDrop, true},
		{keyboard.KeyEvent{Key: keyboard.KeyEnter}, true, blockdrop.Resume, true},
		{keyboard.KeyEvent{Key: keyboard.KeyEsc}, false, blockdrop.Pause, true},
		{keyboard.KeyEvent{Key: keyboard.KeyEsc}, true, blockdrop.Resume, true},
		{keyboard.KeyEvent{Rune: 'r'}, true, blockdrop.Resume, true},
		{keyboard.KeyEvent{Rune: 'r'}, false, "", false},
		{keyboard.KeyEvent{Rune: 'q'}, false, blockdrop.Quit, true},
		{keyboard.KeyEvent{Rune: 'x'}, false, "", false},
	}
	for _, tt := range tests {
		a, ok := keyToAction(tt.key, tt.paused)
		if a != tt.action || ok != tt.ok {
			t.Errorf("key %v paused %t: wanted %q %t, got %q %t", tt.key, tt.paused, tt.action, tt.ok, a, ok)
		}
	}
}

func TestListener(t *testing.T) {
	t.Run("Render is skipped in the lobby", func(t *testing.T) {
		cl, _, render, _, _ := newTestClient(nil)
		cl.Render(blockdrop.Snapshot{State: blockdrop.GameOver})
		if n := render.gameCount(); n != 0 {
			t.Errorf("wanted no render, got %d", n)
		}
		cl.state.set(playing)
		cl.Render(blockdrop.Snapshot{State: blockdrop.Active})
		if n := render.gameCount(); n != 1 {
			t.Errorf("wanted 1 render, got %d", n)
		}
	})

	t.Run("Sound rings the bell", func(t *testing.T) {
		cl, _, _, _, bell := newTestClient(nil)
		cl.Sound(blockdrop.SoundMove)
		cl.Sound(blockdrop.SoundLineClear)
		cl.Sound(blockdrop.SoundGameOver)
		if bell.String() != "\a\a" {
			t.Errorf("wanted two bells, got %q", bell.String())
		}
		bell.Reset()
		cl.options.Sound = false
		cl.Sound(blockdrop.SoundLineClear)
		if bell.Len() != 0 {
			t.Errorf("wanted no bell with sound off, got %q", bell.String())
		}
	})

	t.Run("Game over submits the score", func(t *testing.T) {
		sink := &mockSink{}
		cl, _, render, _, _ := newTestClient(sink)
		cl.state.set(playing)
		cl.GameOver(blockdrop.Result{Score: 1200, Lines: 4, Level: 1})
		cl.submits.Wait()

		if len(sink.entries) != 1 {
			t.Fatalf("wanted 1 entry, got %d", len(sink.entries))
		}
		e := sink.entries[0]
		if e.Name != "ada" || e.Score != 1200 || e.Lines != 4 || e.Level != 1 {
			t.Errorf("unexpected entry %+v", e)
		}
		if got := render.lastMessage(); got[2] != "you are 3rd on the scoreboard" {
			t.Errorf("wanted the rank in the lobby, got %q", got)
		}
	})

	t.Run("Failed submissions keep the lobby", func(t *testing.T) {
		sink := &mockSink{err: fmt.Errorf("unavailable")}
		cl, _, render, _, _ := newTestClient(sink)
		cl.GameOver(blockdrop.Result{Score: 10, Level: 1})
		cl.submits.Wait()
		if n := render.messageCount(); n != 1 {
			t.Errorf("wanted only the game over message, got %d messages", n)
		}
	})

	t.Run("Empty games aren't submitted", func(t *testing.T) {
		sink := &mockSink{}
		cl, _, _, _, _ := newTestClient(sink)
		cl.GameOver(blockdrop.Result{Quit: true, Level: 1})
		cl.submits.Wait()
		if len(sink.entries) != 0 {
			t.Errorf("wanted no entries, got %v", sink.entries)
		}
	})
}
