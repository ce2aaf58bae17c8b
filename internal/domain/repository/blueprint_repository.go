package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"overmind/internal/common"
	"overmind/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type BlueprintRepository interface {
	// Create inserts a blueprint; used by the seeder only. Blueprints are
	// immutable once seeded.
	Create(ctx context.Context, blueprint *model.Blueprint) error
	// FindByID loads a blueprint including its generator sources.
	FindByID(ctx context.Context, id string) (*model.Blueprint, error)
	// List returns all blueprints without generator sources.
	List(ctx context.Context) ([]model.Blueprint, error)
	// LatestChallengeForUser returns the user's most recently updated
	// challenge for one blueprint, with its recent logs attached (newest
	// first, at most recentLogLimit).
	LatestChallengeForUser(ctx context.Context, blueprintID, userID string) (*model.Challenge, error)
	// LatestChallengesForUser does the same for every blueprint at once,
	// keyed by blueprint id, with only the single latest log per challenge.
	LatestChallengesForUser(ctx context.Context, userID string) (map[string]*model.Challenge, error)
}

// recentLogLimit caps the attempt history shown on a blueprint detail view.
const recentLogLimit = 5

type pgBlueprintRepository struct {
	db *sql.DB
}

func NewPgBlueprintRepository(db *sql.DB) BlueprintRepository {
	return &pgBlueprintRepository{db: db}
}

func (r *pgBlueprintRepository) Create(ctx context.Context, b *model.Blueprint) error {
	query := `INSERT INTO blueprints (id, title, slug, description, difficulty, input_generator, solution_generator)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Title, b.Slug, b.Description, b.Difficulty, b.InputGenerator, b.SolutionGenerator)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("blueprint with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgBlueprintRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBlueprintRepository) FindByID(ctx context.Context, id string) (*model.Blueprint, error) {
	query := `SELECT id, title, slug, description, difficulty, input_generator, solution_generator, created_at, updated_at
	          FROM blueprints WHERE id = $1`
	b := &model.Blueprint{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Slug, &b.Description, &b.Difficulty,
		&b.InputGenerator, &b.SolutionGenerator, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBlueprintRepository.FindByID: %w", err)
	}
	return b, nil
}

func (r *pgBlueprintRepository) List(ctx context.Context) ([]model.Blueprint, error) {
	query := `SELECT id, title, slug, description, difficulty, created_at, updated_at
	          FROM blueprints ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgBlueprintRepository.List query: %w", err)
	}
	defer rows.Close()

	blueprints := []model.Blueprint{}
	for rows.Next() {
		var b model.Blueprint
		if err := rows.Scan(&b.ID, &b.Title, &b.Slug, &b.Description, &b.Difficulty, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgBlueprintRepository.List scan: %w", err)
		}
		blueprints = append(blueprints, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgBlueprintRepository.List rows.Err: %w", err)
	}
	return blueprints, nil
}

func (r *pgBlueprintRepository) LatestChallengeForUser(ctx context.Context, blueprintID, userID string) (*model.Challenge, error) {
	query := `SELECT id, user_id, blueprint_id, input, solution, status, created_at, updated_at
	          FROM challenges
	          WHERE blueprint_id = $1 AND user_id = $2
	          ORDER BY updated_at DESC
	          LIMIT 1`
	c := &model.Challenge{}
	err := r.db.QueryRowContext(ctx, query, blueprintID, userID).Scan(
		&c.ID, &c.UserID, &c.BlueprintID, &c.Input, &c.Solution, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBlueprintRepository.LatestChallengeForUser: %w", err)
	}

	if err := r.attachRecentLogs(ctx, c, recentLogLimit); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgBlueprintRepository) LatestChallengesForUser(ctx context.Context, userID string) (map[string]*model.Challenge, error) {
	query := `SELECT DISTINCT ON (blueprint_id)
	                 id, user_id, blueprint_id, input, solution, status, created_at, updated_at
	          FROM challenges
	          WHERE user_id = $1
	          ORDER BY blueprint_id, updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgBlueprintRepository.LatestChallengesForUser query: %w", err)
	}
	defer rows.Close()

	latest := map[string]*model.Challenge{}
	for rows.Next() {
		c := &model.Challenge{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.BlueprintID, &c.Input, &c.Solution, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgBlueprintRepository.LatestChallengesForUser scan: %w", err)
		}
		latest[c.BlueprintID] = c
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgBlueprintRepository.LatestChallengesForUser rows.Err: %w", err)
	}

	for _, c := range latest {
		if err := r.attachRecentLogs(ctx, c, 1); err != nil {
			return nil, err
		}
	}
	return latest, nil
}

func (r *pgBlueprintRepository) attachRecentLogs(ctx context.Context, c *model.Challenge, limit int) error {
	query := `SELECT id, challenge_id, input, output, created_at
	          FROM submission_logs
	          WHERE challenge_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, c.ID, limit)
	if err != nil {
		return fmt.Errorf("pgBlueprintRepository.attachRecentLogs query: %w", err)
	}
	defer rows.Close()

	var logs []model.SubmissionLog
	for rows.Next() {
		var l model.SubmissionLog
		if err := rows.Scan(&l.ID, &l.ChallengeID, &l.Input, &l.Output, &l.CreatedAt); err != nil {
			return fmt.Errorf("pgBlueprintRepository.attachRecentLogs scan: %w", err)
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("pgBlueprintRepository.attachRecentLogs rows.Err: %w", err)
	}
	c.Logs = logs // nil for a pending challenge with no attempts yet
	return nil
}
