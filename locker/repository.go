package locker

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
	// ErrNotFound signals the locker id did not resolve.
	ErrNotFound = fault.New(fault.NotFound, "locker not found")
	// ErrDuplicateCode signals the locker code is already in use.
	ErrDuplicateCode = fault.New(fault.Conflict, "locker code already exists")
)

// Repository provides access to locker records.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Locker, error)
	Get(ctx context.Context, id string) (Locker, error)
	List(ctx context.Context, status Status) ([]Locker, error)
	Update(ctx context.Context, id string, params UpdateParams) (Locker, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

const lockerColumns = `
	id, name, code, address, lat, lng,
	capacity, available_slots, status, hours_open, hours_close, features,
	created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed locker repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Locker, error) {
	hours := params.OperatingHours
	if hours == nil {
		hours = &OperatingHours{Open: "00:00", Close: "23:59"}
	}
	capacity := params.Capacity
	if capacity <= 0 {
		capacity = 20
	}

	const insertSQL = `
		INSERT INTO lockers (name, code, address, lat, lng, capacity, available_slots, hours_open, hours_close, features)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $8, $9)
		RETURNING ` + lockerColumns

	l, err := scanLocker(r.pool.QueryRow(ctx, insertSQL,
		params.Name, params.Code, params.Address, params.Lat, params.Lng,
		capacity, hours.Open, hours.Close, params.Features,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Locker{}, ErrDuplicateCode
		}
		return Locker{}, fmt.Errorf("locker: insert: %w", err)
	}
	return l, nil
}

func (r *PGRepository) Get(ctx context.Context, id string) (Locker, error) {
	l, err := scanLocker(r.pool.QueryRow(ctx, `SELECT `+lockerColumns+` FROM lockers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Locker{}, ErrNotFound
		}
		return Locker{}, fmt.Errorf("locker: get: %w", err)
	}
	return l, nil
}

func (r *PGRepository) List(ctx context.Context, status Status) ([]Locker, error) {
	const query = `
		SELECT ` + lockerColumns + `
		FROM lockers
		WHERE status = $1::locker_status
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("locker: list: %w", err)
	}
	defer rows.Close()

	lockers := make([]Locker, 0, 16)
	for rows.Next() {
		l, err := scanLocker(rows)
		if err != nil {
			return nil, fmt.Errorf("locker: scan: %w", err)
		}
		lockers = append(lockers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("locker: iterate: %w", err)
	}
	return lockers, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, params UpdateParams) (Locker, error) {
	const updateSQL = `
		UPDATE lockers
		SET name = COALESCE($2, name),
		    address = COALESCE($3, address),
		    lat = COALESCE($4, lat),
		    lng = COALESCE($5, lng),
		    capacity = COALESCE($6, capacity),
		    available_slots = COALESCE($7, available_slots),
		    status = COALESCE($8::locker_status, status),
		    hours_open = COALESCE($9, hours_open),
		    hours_close = COALESCE($10, hours_close),
		    features = COALESCE($11, features),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + lockerColumns

	var hoursOpen, hoursClose *string
	if params.OperatingHours != nil {
		hoursOpen, hoursClose = &params.OperatingHours.Open, &params.OperatingHours.Close
	}
	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}

	l, err := scanLocker(r.pool.QueryRow(ctx, updateSQL,
		id, params.Name, params.Address, params.Lat, params.Lng,
		params.Capacity, params.AvailableSlots, status, hoursOpen, hoursClose, params.Features,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Locker{}, ErrNotFound
		}
		return Locker{}, fmt.Errorf("locker: update: %w", err)
	}
	return l, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lockers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("locker: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM lockers`); err != nil {
		return fmt.Errorf("locker: delete all: %w", err)
	}
	return nil
}

func scanLocker(row pgx.Row) (Locker, error) {
	var l Locker
	err := row.Scan(
		&l.ID, &l.Name, &l.Code, &l.Address, &l.Lat, &l.Lng,
		&l.Capacity, &l.AvailableSlots, &l.Status,
		&l.OperatingHours.Open, &l.OperatingHours.Close, &l.Features,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return Locker{}, err
	}
	return l, nil
}
