package blockdrop

import "time"

const (
	// LinesPerLevel is how many cleared lines it takes to level up.
	LinesPerLevel = 10
	// MinInterval is the shortest tick the game loop schedules.
	MinInterval = 50 * time.Millisecond

	SoftDropPoints = 1 // per row moved with a soft drop
	// HardDropPoints is per row moved with a hard drop. A hard drop scores the
	// same as soft dropping all the way down.
	HardDropPoints = SoftDropPoints
)

// ScoreForClear returns the points for clearing rows at once at the given
// level. Based on https://tetris.wiki/Scoring
func ScoreForClear(rows, level int) int {
	switch rows {
	case 1:
		return 40 * level
	case 2:
		return 100 * level
	case 3:
		return 300 * level
	case 4:
		return 1200 * level
	default:
		// a piece has four cells so more than 4 rows can't happen.
		return 0
	}
}

// ApplyClear adds the cleared rows to the lines count one at a time and bumps
// the level every time the count reaches a multiple of LinesPerLevel.
func ApplyClear(lines, level, rows int) (int, int) {
	for range rows {
		lines++
		if lines%LinesPerLevel == 0 {
			level++
		}
	}
	return lines, level
}

// Interval is the gravity tick duration for a level: base / level.
func Interval(base time.Duration, level int) time.Duration {
	if level < 1 {
		level = 1
	}
	return base / time.Duration(level)
}
