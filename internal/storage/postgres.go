package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mgmcet/admission-portal/internal/models"
)

// counterName is the singleton row in the counters table that holds the
// last assigned application number.
const counterName = "application"

// allocationRetries bounds how often a conflicting allocation transaction
// is retried before the error is surfaced.
const allocationRetries = 5

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// AllocateApplication assigns the next application number and writes the
// record keyed by it in a single transaction. The counter row is locked for
// the duration of the transaction, so two racing allocations can never
// observe the same value; conflicting transactions are retried a bounded
// number of times.
func (r *PostgresRepository) AllocateApplication(ctx context.Context, app *models.Application) (string, error) {
	var lastErr error

	for attempt := 0; attempt < allocationRetries; attempt++ {
		appID, err := r.allocateOnce(ctx, app)
		if err == nil {
			return appID, nil
		}
		if !isRetryableTxError(err) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("allocation did not commit after %d attempts: %w", allocationRetries, lastErr)
}

func (r *PostgresRepository) allocateOnce(ctx context.Context, app *models.Application) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin allocation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int64
	err = tx.QueryRow(ctx,
		`SELECT current_number FROM counters WHERE name = $1 FOR UPDATE`,
		counterName,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCounterMissing
		}
		return "", fmt.Errorf("failed to read counter: %w", err)
	}

	next := current + 1
	appID := strconv.FormatInt(next, 10)
	submittedAt := app.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	form := app.Form
	form.AppID = "" // the column is authoritative, not the blob
	formJSON, err := json.Marshal(form)
	if err != nil {
		return "", fmt.Errorf("failed to marshal form: %w", err)
	}

	subjects := app.Subjects
	if subjects == nil {
		subjects = []models.Subject{}
	}
	subjectsJSON, err := json.Marshal(subjects)
	if err != nil {
		return "", fmt.Errorf("failed to marshal subjects: %w", err)
	}

	var entranceJSON []byte
	if app.EntranceMarks != nil {
		entranceJSON, err = json.Marshal(app.EntranceMarks)
		if err != nil {
			return "", fmt.Errorf("failed to marshal entrance marks: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO applications (app_id, candidate_name, submitted_at, form, subjects, entrance_marks)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		appID,
		app.CandidateName,
		submittedAt,
		formJSON,
		subjectsJSON,
		entranceJSON,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert application: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE counters SET current_number = current_number + 1 WHERE name = $1`,
		counterName,
	)
	if err != nil {
		return "", fmt.Errorf("failed to increment counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit allocation: %w", err)
	}

	app.AppID = appID
	app.SubmittedAt = submittedAt
	return appID, nil
}

// isRetryableTxError reports whether the allocation transaction hit a
// serialization failure or deadlock and should be re-run against a fresh
// counter value.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// GetApplication retrieves an application by id
func (r *PostgresRepository) GetApplication(ctx context.Context, appID string) (*models.Application, error) {
	query := `
		SELECT app_id, candidate_name, submitted_at, form, subjects, entrance_marks
		FROM applications
		WHERE app_id = $1
	`

	app, err := scanApplication(r.pool.QueryRow(ctx, query, appID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// ListApplications returns applications ordered by submission time ascending
func (r *PostgresRepository) ListApplications(ctx context.Context, limit, offset int) ([]*models.Application, error) {
	query := `
		SELECT app_id, candidate_name, submitted_at, form, subjects, entrance_marks
		FROM applications
		ORDER BY submitted_at ASC
	`
	args := make([]interface{}, 0)
	argNum := 1

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, limit)
		argNum++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application

	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}

// CounterValue reads the counter without advancing it
func (r *PostgresRepository) CounterValue(ctx context.Context) (int64, error) {
	var current int64
	err := r.pool.QueryRow(ctx,
		`SELECT current_number FROM counters WHERE name = $1`,
		counterName,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCounterMissing
		}
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return current, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var formJSON, subjectsJSON, entranceJSON []byte

	err := row.Scan(
		&app.AppID,
		&app.CandidateName,
		&app.SubmittedAt,
		&formJSON,
		&subjectsJSON,
		&entranceJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(formJSON, &app.Form); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form: %w", err)
	}
	app.Form.AppID = app.AppID

	if err := json.Unmarshal(subjectsJSON, &app.Subjects); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subjects: %w", err)
	}

	if entranceJSON != nil {
		app.EntranceMarks = &models.EntranceMarks{}
		if err := json.Unmarshal(entranceJSON, app.EntranceMarks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entrance marks: %w", err)
		}
	}

	return &app, nil
}

// GetAdminByAPIKey retrieves an admin client by its key
func (r *PostgresRepository) GetAdminByAPIKey(ctx context.Context, apiKey string) (*models.AdminClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions
		FROM admin_clients
		WHERE api_key = $1
	`

	var client models.AdminClient
	var lastUsedAt sql.NullTime
	var permissionsJSON []byte

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.APIKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get admin client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if permissionsJSON != nil {
		if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	return &client, nil
}

// UpdateAdminLastUsed updates the last_used_at timestamp for a client
func (r *PostgresRepository) UpdateAdminLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE admin_clients SET last_used_at = NOW() WHERE api_key = $1`

	_, err := r.pool.Exec(ctx, query, apiKey)
	if err != nil {
		return fmt.Errorf("failed to update admin last_used_at: %w", err)
	}

	return nil
}
