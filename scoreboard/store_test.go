package scoreboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"blockdrop/blockdrop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func entry(name string, score, lines int, minute int) Entry {
	return Entry{
		Name:       name,
		Score:      score,
		Lines:      lines,
		Level:      1 + lines/10,
		RecordedAt: epoch.Add(time.Duration(minute) * time.Minute),
	}
}

func names(entries []Entry) []string {
	var n []string
	for _, e := range entries {
		n = append(n, e.Name)
	}
	return n
}

func stores() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "scores.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStores(t *testing.T) {
	for name, open := range stores() {
		t.Run(name, func(t *testing.T) {
			t.Run("Ranks", func(t *testing.T) {
				ctx := context.Background()
				s := open(t)
				defer s.Close()

				tests := []struct {
					entry Entry
					rank  int
				}{
					{entry("ada", 1000, 10, 0), 1},
					{entry("bob", 500, 4, 1), 2},
					{entry("cyd", 2000, 20, 2), 1},
					{entry("dee", 1000, 12, 3), 2},
					{entry("eve", 1000, 10, 4), 4},
				}
				for _, tt := range tests {
					rank, err := s.Add(ctx, tt.entry)
					require.NoError(t, err)
					assert.Equal(t, tt.rank, rank, tt.entry.Name)
				}

				top, err := s.Top(ctx, 0)
				require.NoError(t, err)
				assert.Equal(t, []string{"cyd", "dee", "ada", "eve", "bob"}, names(top))
				assert.NotEmpty(t, top[0].ID)
				assert.True(t, top[0].RecordedAt.Equal(epoch.Add(2*time.Minute)))

				top, err = s.Top(ctx, 2)
				require.NoError(t, err)
				assert.Equal(t, []string{"cyd", "dee"}, names(top))
			})

			t.Run("Empty", func(t *testing.T) {
				s := open(t)
				defer s.Close()
				top, err := s.Top(context.Background(), 10)
				require.NoError(t, err)
				assert.Empty(t, top)
			})

			t.Run("Invalid entries", func(t *testing.T) {
				s := open(t)
				defer s.Close()
				for _, e := range []Entry{
					entry("  ", 10, 0, 0),
					entry("ada", -1, 0, 0),
					{Name: "ada", Score: 10, Level: 0},
				} {
					_, err := s.Add(context.Background(), e)
					assert.ErrorIs(t, err, ErrInvalidEntry)
				}
				top, err := s.Top(context.Background(), 10)
				require.NoError(t, err)
				assert.Empty(t, top)
			})
		})
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")
	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = s.Add(ctx, entry("ada", 1200, 4, 0))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	top, err := s.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "ada", top[0].Name)
	assert.Equal(t, 1200, top[0].Score)
}

func TestNewEntry(t *testing.T) {
	e := NewEntry(" ada ", blockdrop.Result{Score: 300, Lines: 12, Level: 2})
	assert.Equal(t, "ada", e.Name)
	assert.Equal(t, 300, e.Score)
	assert.Equal(t, 12, e.Lines)
	assert.Equal(t, 2, e.Level)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.RecordedAt.IsZero())
	assert.NoError(t, e.Validate())
}

func TestValidate(t *testing.T) {
	long := entry("abcdefghijklmnopqrstuvwxyz0123456789", 1, 0, 0)
	assert.ErrorIs(t, long.Validate(), ErrInvalidEntry)
	assert.ErrorIs(t, entry("ada", 1, -1, 0).Validate(), ErrInvalidEntry)
	assert.NoError(t, entry("ada", 0, 0, 0).Validate())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, clampLimit(0))
	assert.Equal(t, DefaultLimit, clampLimit(-3))
	assert.Equal(t, 5, clampLimit(5))
	assert.Equal(t, MaxLimit, clampLimit(1000))
}
