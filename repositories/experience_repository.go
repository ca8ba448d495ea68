package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tennis-club/models"
)

var (
	ErrExperienceNotFound = errors.New("player experience record not found")
	ErrExperiencePlayer   = errors.New("experience player invalid")
)

type ExperienceRepository interface {
	GetByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (*models.PlayerExperience, error)
	// GetOrCreateForUpdate creates a zero record on first use and locks it.
	GetOrCreateForUpdate(ctx context.Context, exec SQLExecutor, playerID int) (*models.PlayerExperience, error)
	// AddXP adds amount to the player's total, creating the record when
	// missing, and returns the new total.
	AddXP(ctx context.Context, exec SQLExecutor, playerID, amount int) (int, error)
	InsertTransaction(ctx context.Context, exec SQLExecutor, tx *models.XPTransaction) error
	ListTransactions(ctx context.Context, playerID, limit int) ([]models.XPTransaction, error)
	UpdateStreak(ctx context.Context, exec SQLExecutor, playerID, current, longest int, lastActiveOn time.Time) error
	ListStaleStreaks(ctx context.Context, activeBefore time.Time) ([]models.PlayerExperience, error)
	// ResetStreak zeroes the streak only if it is still stale; it reports
	// whether a reset happened.
	ResetStreak(ctx context.Context, playerID int, activeBefore time.Time) (bool, error)
}

type postgresExperienceRepository struct {
	db *sql.DB
}

func NewPostgresExperienceRepository(db *sql.DB) ExperienceRepository {
	return &postgresExperienceRepository{db: db}
}

const experienceColumns = `player_id, total_xp, current_streak, longest_streak, last_active_on, created_at, updated_at`

func (r *postgresExperienceRepository) GetByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (*models.PlayerExperience, error) {
	query := `SELECT ` + experienceColumns + ` FROM player_experience WHERE player_id = $1`
	return scanExperience(pickExecutor(exec, r.db).QueryRowContext(ctx, query, playerID))
}

func (r *postgresExperienceRepository) GetOrCreateForUpdate(ctx context.Context, exec SQLExecutor, playerID int) (*models.PlayerExperience, error) {
	ex := pickExecutor(exec, r.db)
	if _, err := ex.ExecContext(ctx,
		`INSERT INTO player_experience (player_id) VALUES ($1) ON CONFLICT (player_id) DO NOTHING`, playerID); err != nil {
		return nil, r.handleExperienceError(err, playerID)
	}
	query := `SELECT ` + experienceColumns + ` FROM player_experience WHERE player_id = $1 FOR UPDATE`
	return scanExperience(ex.QueryRowContext(ctx, query, playerID))
}

func (r *postgresExperienceRepository) AddXP(ctx context.Context, exec SQLExecutor, playerID, amount int) (int, error) {
	query := `
		INSERT INTO player_experience (player_id, total_xp)
		VALUES ($1, $2)
		ON CONFLICT (player_id) DO UPDATE
		SET total_xp = player_experience.total_xp + EXCLUDED.total_xp, updated_at = NOW()
		RETURNING total_xp`

	var total int
	if err := pickExecutor(exec, r.db).QueryRowContext(ctx, query, playerID, amount).Scan(&total); err != nil {
		return 0, r.handleExperienceError(err, playerID)
	}
	return total, nil
}

func (r *postgresExperienceRepository) InsertTransaction(ctx context.Context, exec SQLExecutor, tx *models.XPTransaction) error {
	query := `
		INSERT INTO xp_transactions (player_id, amount, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := pickExecutor(exec, r.db).QueryRowContext(ctx, query, tx.PlayerID, tx.Amount, tx.Reason).
		Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return r.handleExperienceError(err, tx.PlayerID)
	}
	return nil
}

func (r *postgresExperienceRepository) ListTransactions(ctx context.Context, playerID, limit int) ([]models.XPTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id, player_id, amount, reason, created_at
		FROM xp_transactions
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query xp transactions for player %d: %w", playerID, err)
	}
	defer rows.Close()

	txs := make([]models.XPTransaction, 0)
	for rows.Next() {
		var t models.XPTransaction
		if scanErr := rows.Scan(&t.ID, &t.PlayerID, &t.Amount, &t.Reason, &t.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan xp transaction row: %w", scanErr)
		}
		txs = append(txs, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during xp transaction rows iteration: %w", err)
	}
	return txs, nil
}

func (r *postgresExperienceRepository) UpdateStreak(ctx context.Context, exec SQLExecutor, playerID, current, longest int, lastActiveOn time.Time) error {
	query := `
		UPDATE player_experience
		SET current_streak = $1, longest_streak = $2, last_active_on = $3, updated_at = NOW()
		WHERE player_id = $4`
	result, err := pickExecutor(exec, r.db).ExecContext(ctx, query, current, longest, lastActiveOn, playerID)
	if err != nil {
		return fmt.Errorf("failed to update streak for player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrExperienceNotFound)
}

func (r *postgresExperienceRepository) ListStaleStreaks(ctx context.Context, activeBefore time.Time) ([]models.PlayerExperience, error) {
	query := `
		SELECT ` + experienceColumns + `
		FROM player_experience
		WHERE current_streak > 0 AND (last_active_on IS NULL OR last_active_on < $1)
		ORDER BY player_id`

	rows, err := r.db.QueryContext(ctx, query, activeBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale streaks: %w", err)
	}
	defer rows.Close()

	records := make([]models.PlayerExperience, 0)
	for rows.Next() {
		rec, scanErr := scanExperience(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stale streak rows iteration: %w", err)
	}
	return records, nil
}

func (r *postgresExperienceRepository) ResetStreak(ctx context.Context, playerID int, activeBefore time.Time) (bool, error) {
	query := `
		UPDATE player_experience
		SET current_streak = 0, updated_at = NOW()
		WHERE player_id = $1 AND current_streak > 0 AND (last_active_on IS NULL OR last_active_on < $2)`
	result, err := r.db.ExecContext(ctx, query, playerID, activeBefore)
	if err != nil {
		return false, fmt.Errorf("failed to reset streak for player %d: %w", playerID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected > 0, nil
}

func scanExperience(row rowScanner) (*models.PlayerExperience, error) {
	rec := &models.PlayerExperience{}
	err := row.Scan(
		&rec.PlayerID,
		&rec.TotalXP,
		&rec.CurrentStreak,
		&rec.LongestStreak,
		&rec.LastActiveOn,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExperienceNotFound
		}
		return nil, fmt.Errorf("failed to scan player experience: %w", err)
	}
	return rec, nil
}

func (r *postgresExperienceRepository) handleExperienceError(err error, playerID int) error {
	if code, _, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
		return ErrExperiencePlayer
	}
	return fmt.Errorf("experience write failed for player %d: %w", playerID, err)
}
