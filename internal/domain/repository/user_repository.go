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

type UserRepository interface {
	// Create inserts the user together with its credential and profile rows.
	Create(ctx context.Context, user *model.User, passwordHash string) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByEmailWithPassword includes the stored credential hash for login.
	FindByEmailWithPassword(ctx context.Context, email string) (*model.User, error)
	// FindByID loads the user with profile and full challenge history.
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.UserSummary, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Create begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email) VALUES ($1, $2)`,
		user.ID, user.Email,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO passwords (user_id, hash) VALUES ($1, $2)`,
		user.ID, passwordHash,
	); err != nil {
		return fmt.Errorf("pgUserRepository.Create password: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id, firstname, lastname, pseudonym, country, rank)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Profile.Firstname, user.Profile.Lastname, user.Profile.Pseudonym,
		user.Profile.Country, user.Profile.Rank,
	); err != nil {
		return fmt.Errorf("pgUserRepository.Create profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgUserRepository.Create commit: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, created_at, updated_at FROM users WHERE email = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT u.id, u.email, p.hash, u.created_at, u.updated_at
	          FROM users u
	          JOIN passwords p ON p.user_id = u.id
	          WHERE u.email = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.HashedPassword, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Also covers users that exist without a credential row.
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmailWithPassword: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT u.id, u.email, u.created_at, u.updated_at,
	                 pr.firstname, pr.lastname, pr.pseudonym, pr.country, pr.rank
	          FROM users u
	          LEFT JOIN profiles pr ON pr.user_id = u.id
	          WHERE u.id = $1`
	user := &model.User{}
	profile := &model.Profile{}
	var firstname, lastname, pseudonym, country sql.NullString
	var rank sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt,
		&firstname, &lastname, &pseudonym, &country, &rank,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	if firstname.Valid {
		profile.Firstname = firstname.String
		profile.Lastname = lastname.String
		profile.Pseudonym = pseudonym.String
		profile.Country = country.String
		profile.Rank = model.Rank(rank.String)
		user.Profile = profile
	}

	challenges, err := r.challengeHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Challenges = challenges
	return user, nil
}

// challengeHistory loads every challenge of a user with a blueprint summary
// attached, newest first.
func (r *pgUserRepository) challengeHistory(ctx context.Context, userID string) ([]model.Challenge, error) {
	query := `SELECT c.id, c.user_id, c.blueprint_id, c.status, c.created_at, c.updated_at,
	                 b.id, b.title, b.slug, b.description, b.difficulty, b.updated_at
	          FROM challenges c
	          JOIN blueprints b ON b.id = c.blueprint_id
	          WHERE c.user_id = $1
	          ORDER BY c.updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.challengeHistory query: %w", err)
	}
	defer rows.Close()

	var challenges []model.Challenge
	for rows.Next() {
		var c model.Challenge
		b := &model.Blueprint{}
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.BlueprintID, &c.Status, &c.CreatedAt, &c.UpdatedAt,
			&b.ID, &b.Title, &b.Slug, &b.Description, &b.Difficulty, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgUserRepository.challengeHistory scan: %w", err)
		}
		c.Blueprint = b
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.challengeHistory rows.Err: %w", err)
	}
	return challenges, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.UserSummary, error) {
	query := `SELECT u.id, u.email,
	                 pr.firstname, pr.lastname, pr.pseudonym, pr.country, pr.rank,
	                 COUNT(c.id) FILTER (WHERE c.status = 'completed') AS completed
	          FROM users u
	          LEFT JOIN profiles pr ON pr.user_id = u.id
	          LEFT JOIN challenges c ON c.user_id = u.id
	          GROUP BY u.id, u.email, pr.firstname, pr.lastname, pr.pseudonym, pr.country, pr.rank
	          ORDER BY completed DESC, u.email ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List query: %w", err)
	}
	defer rows.Close()

	users := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		var firstname, lastname, pseudonym, country, rank sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &firstname, &lastname, &pseudonym, &country, &rank, &u.CompletedChallenges); err != nil {
			return nil, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		if firstname.Valid {
			u.Profile = &model.Profile{
				Firstname: firstname.String,
				Lastname:  lastname.String,
				Pseudonym: pseudonym.String,
				Country:   country.String,
				Rank:      model.Rank(rank.String),
			}
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	// Credential, profile, challenges and their logs go with the user via
	// ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("pgUserRepository.DeleteByEmail: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
