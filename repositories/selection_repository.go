package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-club/models"
)

var ErrSelectionMatchInvalid = errors.New("winner selection match or player invalid")

type SelectionRepository interface {
	// Upsert stores the selector's choice, replacing an earlier one. changed
	// is false when the stored choice already named the same winner.
	Upsert(ctx context.Context, exec SQLExecutor, matchID, selectorID, selectedWinnerID int) (changed bool, err error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.WinnerSelection, error)
}

type postgresSelectionRepository struct {
	db *sql.DB
}

func NewPostgresSelectionRepository(db *sql.DB) SelectionRepository {
	return &postgresSelectionRepository{db: db}
}

func (r *postgresSelectionRepository) Upsert(ctx context.Context, exec SQLExecutor, matchID, selectorID, selectedWinnerID int) (bool, error) {
	// DO UPDATE ... WHERE пропускает строку, если выбор не изменился, тогда RETURNING пуст.
	query := `
		INSERT INTO winner_selections (match_id, selector_id, selected_winner_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id, selector_id) DO UPDATE
		SET selected_winner_id = EXCLUDED.selected_winner_id, updated_at = NOW()
		WHERE winner_selections.selected_winner_id <> EXCLUDED.selected_winner_id
		RETURNING id`

	var id int
	err := pickExecutor(exec, r.db).QueryRowContext(ctx, query, matchID, selectorID, selectedWinnerID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if code, _, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
			return false, ErrSelectionMatchInvalid
		}
		return false, fmt.Errorf("failed to upsert winner selection for match %d: %w", matchID, err)
	}
	return true, nil
}

func (r *postgresSelectionRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.WinnerSelection, error) {
	query := `
		SELECT id, match_id, selector_id, selected_winner_id, created_at, updated_at
		FROM winner_selections
		WHERE match_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := pickExecutor(exec, r.db).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query winner selections for match %d: %w", matchID, err)
	}
	defer rows.Close()

	selections := make([]models.WinnerSelection, 0, 2)
	for rows.Next() {
		var s models.WinnerSelection
		if scanErr := rows.Scan(&s.ID, &s.MatchID, &s.SelectorID, &s.SelectedWinnerID, &s.CreatedAt, &s.UpdatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan winner selection row: %w", scanErr)
		}
		selections = append(selections, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during winner selection rows iteration: %w", err)
	}
	return selections, nil
}
