package progression

import (
	"errors"
	"fmt"
)

// ErrInvalidInput возвращается для отрицательного количества XP.
var ErrInvalidInput = errors.New("xp must be a non-negative integer")

// MaxLevel is the highest level defined by the threshold table.
const MaxLevel = 5

// levelThresholds[i] is the cumulative XP required to reach level i+1.
var levelThresholds = [MaxLevel]int{
	0,     // 1
	1000,  // 2
	2500,  // 3
	5000,  // 4
	10000, // 5
}

// LevelProgress describes where a cumulative XP total sits on the level table.
type LevelProgress struct {
	CurrentXP            int `json:"current_xp"`
	CurrentLevel         int `json:"current_level"`
	LevelProgress        int `json:"level_progress"`
	XPNeededForNextLevel int `json:"xp_needed_for_next_level"`
	ProgressPercentage   int `json:"progress_percentage"`
}

// IsMaxLevel reports whether no further level can be reached.
func (p LevelProgress) IsMaxLevel() bool {
	return p.CurrentLevel >= MaxLevel
}

// Threshold returns the cumulative XP needed to reach level.
// Levels below 1 clamp to 1 and levels above MaxLevel clamp to MaxLevel.
func Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelThresholds[level-1]
}

// LevelFor returns the largest level whose threshold does not exceed xp.
func LevelFor(xp int) (int, error) {
	if xp < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidInput, xp)
	}
	level := 1
	for l := MaxLevel; l >= 1; l-- {
		if xp >= levelThresholds[l-1] {
			level = l
			break
		}
	}
	return level, nil
}

// Calculate maps a cumulative XP total to level and in-level progress.
// Past the last threshold the percentage stays at 100 while LevelProgress
// keeps counting the surplus.
func Calculate(currentXP int) (LevelProgress, error) {
	level, err := LevelFor(currentXP)
	if err != nil {
		return LevelProgress{}, err
	}

	progress := currentXP - Threshold(level)
	needed := 0
	if level < MaxLevel {
		needed = Threshold(level+1) - Threshold(level)
	}

	return LevelProgress{
		CurrentXP:            currentXP,
		CurrentLevel:         level,
		LevelProgress:        progress,
		XPNeededForNextLevel: needed,
		ProgressPercentage:   percentage(progress, needed),
	}, nil
}

func percentage(progress, needed int) int {
	if needed <= 0 {
		return 100
	}
	pct := progress * 100 / needed
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
