package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"blockdrop/blockdrop"

	"github.com/dustin/go-humanize"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos    = "\033[H"  // Reset cursor position to 0,0
	clearScreen = "\033[2J" // Clear the whole screen
	eraseLine   = "\033[K"  // Clear from the cursor to the end of the line
	emptyCell   = "  "
	ghostCell   = "[]"
	boxWidth    = 38
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[blockdrop.Shape]string{
	blockdrop.I: Cyan,
	blockdrop.J: Blue,
	blockdrop.L: Orange,
	blockdrop.O: Yellow,
	blockdrop.S: Green,
	blockdrop.Z: Red,
	blockdrop.T: Magenta,
}

func cell(s blockdrop.Shape) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[s])
}

type templateData struct {
	Snap    blockdrop.Snapshot
	Name    string
	NoGhost bool
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	data     *templateData
	mu       sync.Mutex
}

func newRender(w io.Writer, l *slog.Logger, o *Options) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:   w,
		logger:   l,
		template: tmp,
		data: &templateData{
			Name:    o.Name,
			NoGhost: o.NoGhost,
		},
	}, nil
}

func (r *render) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.writer, clearScreen)
}

func (r *render) game(s blockdrop.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.Snap = s
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.data); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
	}
}

// message is the text shown in the box drawn over the board.
type message []string

func welcome() message {
	return message{"Welcome to BlockDrop", "", "(s)tart   (q)uit"}
}

func pausedMessage() message {
	return message{"Paused", "", "(r)esume   (q)uit"}
}

func gameOver(res blockdrop.Result, rank int) message {
	m := message{"Game Over :)", fmt.Sprintf("score %s  lines %d  level %d", humanize.Comma(int64(res.Score)), res.Lines, res.Level)}
	if rank > 0 {
		m = append(m, fmt.Sprintf("you are %s on the scoreboard", humanize.Ordinal(rank)))
	} else {
		m = append(m, "")
	}
	return append(m, "(s)tart   (q)uit")
}

func (r *render) lobby(m message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	border := "+" + strings.Repeat("-", boxWidth) + "+"
	row := 10
	fmt.Fprintf(r.writer, "\033[%d;3H%s", row, border)
	for _, line := range m {
		row++
		fmt.Fprintf(r.writer, "\033[%d;3H|%s|", row, center(line, boxWidth))
	}
	fmt.Fprintf(r.writer, "\033[%d;3H%s", row+1, border)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"stack":  stack,
		"side":   side,
		"bottom": bottom,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

// stack renders every board cell, the ghost and the active piece included.
func stack(t *templateData) [][]string {
	if t == nil {
		return nil
	}
	s := t.Snap
	rendered := make([][]string, s.Height)
	for y := range rendered {
		rendered[y] = make([]string, s.Width)
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
			if y < len(s.Stack) && x < len(s.Stack[y]) && s.Stack[y][x] != "" {
				rendered[y][x] = cell(s.Stack[y][x])
			}
		}
	}
	inside := func(c blockdrop.Cell) bool {
		return c.Row >= 0 && c.Row < s.Height && c.Col >= 0 && c.Col < s.Width
	}
	if !t.NoGhost {
		for _, c := range s.Ghost {
			if inside(c) {
				rendered[c.Row][c.Col] = ghostCell
			}
		}
	}
	for _, c := range s.Piece {
		if inside(c) {
			rendered[c.Row][c.Col] = cell(s.Shape)
		}
	}
	return rendered
}

// next renders the preview of the next shape in two rows of four cells.
func next(s blockdrop.Shape) []string {
	rows := [2][4]string{}
	for y := range rows {
		for x := range rows[y] {
			rows[y][x] = emptyCell
		}
	}
	if s != "" {
		// the I piece lies on the second row of its box.
		shift := 0
		if s == blockdrop.I {
			shift = 1
		}
		for _, c := range blockdrop.RotationOffsets(s, 0) {
			if y := c.Row - shift; y >= 0 && y < 2 {
				rows[y][c.Col] = cell(s)
			}
		}
	}
	return []string{strings.Join(rows[0][:], ""), strings.Join(rows[1][:], "")}
}

// side is the text on the right of board row i.
func side(t *templateData, i int) string {
	return sideText(t, i) + eraseLine
}

func sideText(t *templateData, i int) string {
	s := t.Snap
	switch i {
	case 1:
		return "  " + t.Name
	case 3:
		return "  Score: " + humanize.Comma(int64(s.Score))
	case 5:
		return fmt.Sprintf("  Level: %d", s.Level)
	case 7:
		return fmt.Sprintf("  Lines: %d", s.Lines)
	case 10:
		return "  Next:"
	case 12, 13:
		return "  " + next(s.Next)[i-12]
	}
	return ""
}

func bottom(t *templateData) string {
	return strings.Repeat("==", t.Snap.Width)
}
