package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-club/models"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchPlayerInvalid      = errors.New("match player conflict or invalid")
	ErrMatchRequestAlreadyUsed = errors.New("match already created for this request")
	// ErrMatchWinnerConflict означает, что у матча уже записан другой победитель.
	ErrMatchWinnerConflict = errors.New("match winner already set to a different player")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// GetForUpdate reads the match and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// SetWinner is a compare-and-set on winner_id. It reports changed=true only
	// when this call wrote the winner; writing the same winner again is a
	// no-op and a different one fails with ErrMatchWinnerConflict.
	SetWinner(ctx context.Context, exec SQLExecutor, matchID, winnerID int) (changed bool, err error)
	ListByPlayer(ctx context.Context, playerID int, includeHidden bool) ([]*models.Match, error)
	Hide(ctx context.Context, matchID, playerID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, request_id, player1_id, player2_id, winner_id, status, scheduled_at,
		completed_at, hidden_by_player1, hidden_by_player2, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (request_id, player1_id, player2_id, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	if match.Status == "" {
		match.Status = models.MatchStatusScheduled
	}
	err := pickExecutor(exec, r.db).QueryRowContext(ctx, query,
		match.RequestID,
		match.Player1ID,
		match.Player2ID,
		match.Status,
		match.ScheduledAt,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(pickExecutor(exec, r.db).QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return scanMatch(pickExecutor(exec, r.db).QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchRepository) SetWinner(ctx context.Context, exec SQLExecutor, matchID, winnerID int) (bool, error) {
	ex := pickExecutor(exec, r.db)

	query := `
		UPDATE matches
		SET winner_id = $1, status = $2, completed_at = NOW()
		WHERE id = $3 AND winner_id IS NULL AND $1 IN (player1_id, player2_id)`
	result, err := ex.ExecContext(ctx, query, winnerID, models.MatchStatusCompleted, matchID)
	if err != nil {
		return false, fmt.Errorf("failed to set winner for match %d: %w", matchID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 1 {
		return true, nil
	}

	// Ничего не обновлено: матча нет, победитель уже записан или кандидат не участник.
	var current sql.NullInt64
	var p1, p2 int
	err = ex.QueryRowContext(ctx, `SELECT winner_id, player1_id, player2_id FROM matches WHERE id = $1`, matchID).
		Scan(&current, &p1, &p2)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrMatchNotFound
		}
		return false, fmt.Errorf("failed to re-read winner for match %d: %w", matchID, err)
	}
	if !current.Valid {
		return false, ErrMatchPlayerInvalid
	}
	if int(current.Int64) == winnerID {
		return false, nil
	}
	return false, ErrMatchWinnerConflict
}

func (r *postgresMatchRepository) ListByPlayer(ctx context.Context, playerID int, includeHidden bool) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE (player1_id = $1 AND ($2 OR NOT hidden_by_player1))
		   OR (player2_id = $1 AND ($2 OR NOT hidden_by_player2))
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for player %d: %w", playerID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows, 0)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// Hide скрывает матч только для одного игрока; winner_id не трогается.
func (r *postgresMatchRepository) Hide(ctx context.Context, matchID, playerID int) error {
	query := `
		UPDATE matches
		SET hidden_by_player1 = hidden_by_player1 OR player1_id = $2,
		    hidden_by_player2 = hidden_by_player2 OR player2_id = $2
		WHERE id = $1 AND $2 IN (player1_id, player2_id)`
	result, err := r.db.ExecContext(ctx, query, matchID, playerID)
	if err != nil {
		return fmt.Errorf("failed to hide match %d for player %d: %w", matchID, playerID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func scanMatch(row rowScanner, id int) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.RequestID,
		&match.Player1ID,
		&match.Player2ID,
		&match.WinnerID,
		&match.Status,
		&match.ScheduledAt,
		&match.CompletedAt,
		&match.HiddenByPlayer1,
		&match.HiddenByPlayer2,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqConstraint(err); ok {
		switch {
		case code == pqUniqueViolation && constraint == "matches_request_id_key":
			return ErrMatchRequestAlreadyUsed
		case code == pqForeignKeyViolation,
			code == pqCheckViolation && constraint == "matches_distinct_players":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
