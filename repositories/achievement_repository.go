package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tennis-club/models"
)

type AchievementRepository interface {
	// IncrementStats adds to the player's counters and returns the new values.
	IncrementStats(ctx context.Context, playerID, played, won int) (*models.PlayerStats, error)
	GetStats(ctx context.Context, playerID int) (*models.PlayerStats, error)
	// Unlock records the achievement once; unlocked is false if it was
	// already recorded.
	Unlock(ctx context.Context, playerID int, code string) (unlocked bool, err error)
	ListUnlocked(ctx context.Context, playerID int) (map[string]time.Time, error)
}

type postgresAchievementRepository struct {
	db *sql.DB
}

func NewPostgresAchievementRepository(db *sql.DB) AchievementRepository {
	return &postgresAchievementRepository{db: db}
}

func (r *postgresAchievementRepository) IncrementStats(ctx context.Context, playerID, played, won int) (*models.PlayerStats, error) {
	query := `
		INSERT INTO player_stats (player_id, matches_played, matches_won)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id) DO UPDATE
		SET matches_played = player_stats.matches_played + EXCLUDED.matches_played,
		    matches_won = player_stats.matches_won + EXCLUDED.matches_won
		RETURNING player_id, matches_played, matches_won`

	stats := &models.PlayerStats{}
	if err := r.db.QueryRowContext(ctx, query, playerID, played, won).
		Scan(&stats.PlayerID, &stats.MatchesPlayed, &stats.MatchesWon); err != nil {
		return nil, fmt.Errorf("failed to increment stats for player %d: %w", playerID, err)
	}
	return stats, nil
}

func (r *postgresAchievementRepository) GetStats(ctx context.Context, playerID int) (*models.PlayerStats, error) {
	stats := &models.PlayerStats{PlayerID: playerID}
	err := r.db.QueryRowContext(ctx,
		`SELECT matches_played, matches_won FROM player_stats WHERE player_id = $1`, playerID).
		Scan(&stats.MatchesPlayed, &stats.MatchesWon)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load stats for player %d: %w", playerID, err)
	}
	return stats, nil
}

func (r *postgresAchievementRepository) Unlock(ctx context.Context, playerID int, code string) (bool, error) {
	query := `
		INSERT INTO player_achievements (player_id, code)
		VALUES ($1, $2)
		ON CONFLICT (player_id, code) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, playerID, code)
	if err != nil {
		return false, fmt.Errorf("failed to unlock achievement %s for player %d: %w", code, playerID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *postgresAchievementRepository) ListUnlocked(ctx context.Context, playerID int) (map[string]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, unlocked_at FROM player_achievements WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements for player %d: %w", playerID, err)
	}
	defer rows.Close()

	unlocked := make(map[string]time.Time)
	for rows.Next() {
		var code string
		var at time.Time
		if scanErr := rows.Scan(&code, &at); scanErr != nil {
			return nil, fmt.Errorf("failed to scan achievement row: %w", scanErr)
		}
		unlocked[code] = at
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during achievement rows iteration: %w", err)
	}
	return unlocked, nil
}
