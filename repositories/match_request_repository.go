package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/tennis-club/models"
)

var (
	ErrMatchRequestNotFound      = errors.New("match request not found")
	ErrMatchRequestPlayerInvalid = errors.New("match request player conflict or invalid")
	ErrMatchRequestDuplicate     = errors.New("pending match request already exists")
)

type MatchRequestRepository interface {
	Create(ctx context.Context, req *models.MatchRequest) error
	GetByID(ctx context.Context, id int) (*models.MatchRequest, error)
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchRequest, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchRequestStatus, matchID *int) error
	ListIncoming(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error)
	ListOutgoing(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error)
}

type postgresMatchRequestRepository struct {
	db *sql.DB
}

func NewPostgresMatchRequestRepository(db *sql.DB) MatchRequestRepository {
	return &postgresMatchRequestRepository{db: db}
}

const matchRequestColumns = `id, requester_id, opponent_id, status, proposed_at, message, match_id, created_at, responded_at`

func (r *postgresMatchRequestRepository) Create(ctx context.Context, req *models.MatchRequest) error {
	query := `
		INSERT INTO match_requests (requester_id, opponent_id, status, proposed_at, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	if req.Status == "" {
		req.Status = models.MatchRequestPending
	}
	err := r.db.QueryRowContext(ctx, query, req.RequesterID, req.OpponentID, req.Status, req.ProposedAt, req.Message).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok {
			switch {
			case code == pqUniqueViolation && constraint == "match_requests_one_pending_idx":
				return ErrMatchRequestDuplicate
			case code == pqForeignKeyViolation:
				return ErrMatchRequestPlayerInvalid
			}
		}
		return fmt.Errorf("failed to insert match request: %w", err)
	}
	return nil
}

func (r *postgresMatchRequestRepository) GetByID(ctx context.Context, id int) (*models.MatchRequest, error) {
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests WHERE id = $1`
	return scanMatchRequest(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRequestRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchRequest, error) {
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests WHERE id = $1 FOR UPDATE`
	return scanMatchRequest(pickExecutor(exec, r.db).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRequestRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchRequestStatus, matchID *int) error {
	query := `
		UPDATE match_requests
		SET status = $1, match_id = COALESCE($2, match_id), responded_at = NOW()
		WHERE id = $3`
	result, err := pickExecutor(exec, r.db).ExecContext(ctx, query, status, matchID, id)
	if err != nil {
		return fmt.Errorf("failed to update match request %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchRequestNotFound)
}

func (r *postgresMatchRequestRepository) ListIncoming(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error) {
	return r.list(ctx, "opponent_id", userID, status)
}

func (r *postgresMatchRequestRepository) ListOutgoing(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error) {
	return r.list(ctx, "requester_id", userID, status)
}

func (r *postgresMatchRequestRepository) list(ctx context.Context, column string, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchRequestColumns + ` FROM match_requests WHERE ` + column + ` = $1`)

	args := []interface{}{userID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match requests for user %d: %w", userID, err)
	}
	defer rows.Close()

	requests := make([]*models.MatchRequest, 0)
	for rows.Next() {
		req, scanErr := scanMatchRequest(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		requests = append(requests, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match request rows iteration: %w", err)
	}
	return requests, nil
}

func scanMatchRequest(row rowScanner) (*models.MatchRequest, error) {
	req := &models.MatchRequest{}
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.OpponentID,
		&req.Status,
		&req.ProposedAt,
		&req.Message,
		&req.MatchID,
		&req.CreatedAt,
		&req.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan match request: %w", err)
	}
	return req, nil
}
