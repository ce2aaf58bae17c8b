package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"overmind/internal/common"
	"overmind/internal/domain/model"

	"github.com/google/uuid"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	// SubmitAnswer runs the read-compare-write sequence for one submission
	// inside a single transaction: it locks the challenge row, classifies
	// the answer against the stored solution, updates the status and appends
	// the log entry. Concurrent submissions to the same challenge serialize
	// on the row lock, so logs never disagree with the persisted status.
	SubmitAnswer(ctx context.Context, id, rawInput string) (*model.Challenge, error)
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

func (r *pgChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	query := `INSERT INTO challenges (id, user_id, blueprint_id, input, solution, status)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.BlueprintID, []byte(c.Input), []byte(c.Solution), c.Status)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) SubmitAnswer(ctx context.Context, id, rawInput string) (*model.Challenge, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.SubmitAnswer begin: %w", err)
	}
	defer tx.Rollback()

	c := &model.Challenge{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, blueprint_id, input, solution, status, created_at, updated_at
		 FROM challenges WHERE id = $1 FOR UPDATE`, id).Scan(
		&c.ID, &c.UserID, &c.BlueprintID, &c.Input, &c.Solution, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.SubmitAnswer select: %w", err)
	}

	status, verdict, err := model.ClassifyAnswer(c.Solution, rawInput)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.SubmitAnswer classify: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE challenges SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		status, id,
	); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.SubmitAnswer update: %w", err)
	}

	logEntry := model.SubmissionLog{
		ID:          uuid.NewString(),
		ChallengeID: id,
		Input:       rawInput,
		Output:      verdict,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO submission_logs (id, challenge_id, input, output) VALUES ($1, $2, $3, $4)`,
		logEntry.ID, logEntry.ChallengeID, logEntry.Input, logEntry.Output,
	); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.SubmitAnswer log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.SubmitAnswer commit: %w", err)
	}

	c.Status = status
	c.Logs = append([]model.SubmissionLog{logEntry}, c.Logs...)
	return c, nil
}
