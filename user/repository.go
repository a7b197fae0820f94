package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"parcelflow/fault"
)

var (
	// ErrNotFound signals that the user does not exist.
	ErrNotFound = fault.New(fault.NotFound, "user not found")
	// ErrDuplicate signals a unique identifier (email, username, wallet) is taken.
	ErrDuplicate = fault.New(fault.Conflict, "user already exists")
)

// Repository handles data access for user records.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByWallet(ctx context.Context, wallet string) (User, error)
	// FindByIdentifier resolves a user whose wallet, email, or username equals
	// the opaque identifier.
	FindByIdentifier(ctx context.Context, identifier string) (User, error)
	// SetRating overwrites the aggregate rating for the user matching the
	// identifier. Missing user is a no-op.
	SetRating(ctx context.Context, identifier string, rating float64) error
	// IncrementCompleted adds one to completed_jobs for the user matching the
	// identifier. Missing user is a no-op.
	IncrementCompleted(ctx context.Context, identifier string) error
}

const userColumns = `
	id, wallet_address, username, email, password_hash,
	account_type, role, first_name, last_name, phone,
	rating, total_jobs, completed_jobs,
	is_available, location_lat, location_lng, is_verified,
	created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed user repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (User, error) {
	const insertSQL = `
		INSERT INTO users (wallet_address, username, email, password_hash, account_type, role, first_name, last_name, phone)
		VALUES (lower($1), lower($2), lower($3), $4, $5, $6::user_role, $7, $8, $9)
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, insertSQL,
		params.WalletAddress, params.Username, params.Email, params.PasswordHash,
		params.AccountType, params.Role, params.FirstName, params.LastName, params.Phone,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicate
		}
		return User{}, fmt.Errorf("user: create: %w", err)
	}
	return u, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
}

func (r *PGRepository) GetByWallet(ctx context.Context, wallet string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE wallet_address = lower($1)`, wallet)
}

func (r *PGRepository) FindByIdentifier(ctx context.Context, identifier string) (User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE wallet_address = lower($1) OR email = lower($1) OR username = lower($1)
		LIMIT 1
	`
	return r.getOne(ctx, query, identifier)
}

func (r *PGRepository) SetRating(ctx context.Context, identifier string, rating float64) error {
	const updateSQL = `
		UPDATE users
		SET rating = $2, updated_at = now()
		WHERE wallet_address = lower($1) OR email = lower($1) OR username = lower($1)
	`
	if _, err := r.pool.Exec(ctx, updateSQL, identifier, rating); err != nil {
		return fmt.Errorf("user: set rating: %w", err)
	}
	return nil
}

func (r *PGRepository) IncrementCompleted(ctx context.Context, identifier string) error {
	const updateSQL = `
		UPDATE users
		SET completed_jobs = completed_jobs + 1, updated_at = now()
		WHERE wallet_address = lower($1) OR email = lower($1) OR username = lower($1)
	`
	if _, err := r.pool.Exec(ctx, updateSQL, identifier); err != nil {
		return fmt.Errorf("user: increment completed: %w", err)
	}
	return nil
}

func (r *PGRepository) getOne(ctx context.Context, query string, args ...any) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("user: query: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u      User
		locLat *float64
		locLng *float64
	)
	err := row.Scan(
		&u.ID, &u.WalletAddress, &u.Username, &u.Email, &u.PasswordHash,
		&u.AccountType, &u.Role, &u.FirstName, &u.LastName, &u.Phone,
		&u.Rating, &u.TotalJobs, &u.CompletedJobs,
		&u.IsAvailable, &locLat, &locLng, &u.IsVerified,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if locLat != nil && locLng != nil {
		u.Location = &Location{Lat: *locLat, Lng: *locLng}
	}
	return u, nil
}
