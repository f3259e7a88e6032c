// Package scoreboard keeps the high scores. Scores are stored in sqlite or in
// memory and served over gRPC and a small HTTP JSON API.
package scoreboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"blockdrop/blockdrop"

	"github.com/google/uuid"
)

const (
	DefaultLimit  = 10
	MaxLimit      = 100
	MaxNameLength = 32
)

var ErrInvalidEntry = errors.New("invalid score entry")

type Entry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Lines      int       `json:"lines"`
	Level      int       `json:"level"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewEntry records the result of a game for the player.
func NewEntry(name string, r blockdrop.Result) Entry {
	return Entry{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(name),
		Score:      r.Score,
		Lines:      r.Lines,
		Level:      r.Level,
		RecordedAt: time.Now().UTC(),
	}
}

func (e Entry) Validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidEntry)
	case utf8.RuneCountInString(e.Name) > MaxNameLength:
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidEntry, MaxNameLength)
	case e.Score < 0:
		return fmt.Errorf("%w: negative score %d", ErrInvalidEntry, e.Score)
	case e.Lines < 0:
		return fmt.Errorf("%w: negative lines %d", ErrInvalidEntry, e.Lines)
	case e.Level < 1:
		return fmt.Errorf("%w: level %d is below 1", ErrInvalidEntry, e.Level)
	}
	return nil
}

// complete fills in the id and the time of entries submitted without them.
func (e Entry) complete() Entry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	e.Name = strings.TrimSpace(e.Name)
	return e
}

// rankCompare orders entries by score, then lines, both descending, then by
// the earliest one. A negative result means a ranks above b.
func rankCompare(a, b Entry) int {
	return cmp.Or(
		cmp.Compare(b.Score, a.Score),
		cmp.Compare(b.Lines, a.Lines),
		a.RecordedAt.Compare(b.RecordedAt),
	)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Store keeps the entries. Add returns the 1-based rank of the new entry.
type Store interface {
	Add(ctx context.Context, e Entry) (int, error)
	Top(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
