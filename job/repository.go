package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"parcelflow/fault"
)

// ErrNotFound signals the job id did not resolve to a row.
var ErrNotFound = fault.New(fault.NotFound, "job not found")

// Repository is the storage collaborator for jobs. Get and the listings always
// read the plain delivery address; withholding it is the projection's concern,
// not the storage layer's.
type Repository interface {
	Create(ctx context.Context, j Job) (Job, error)
	Get(ctx context.Context, id string) (Job, error)
	List(ctx context.Context, f Filters) ([]Job, error)
	// ListAvailable returns open, paid jobs ordered by amount descending.
	ListAvailable(ctx context.Context) ([]Job, error)
	// ListForActor returns jobs where the actor is a party on either side.
	ListForActor(ctx context.Context, actor Actor) ([]Job, error)
	// RatedRatings returns the ratings of every rated job assigned to the worker.
	RatedRatings(ctx context.Context, gigWorkerID string) ([]int, error)
	// Transition loads the job under a row lock, applies the mutation, and
	// persists it. An error from apply rolls the transaction back, so a failed
	// transition leaves the stored job untouched. Concurrent transitions on the
	// same job serialize on the lock.
	Transition(ctx context.Context, id string, apply func(*Job) error) (Job, error)
}

const jobColumns = `
	id, customer_id, customer_wallet,
	locker_location, locker_code, locker_lat, locker_lng,
	package_size,
	delivery_address, delivery_address_plain, delivery_lat, delivery_lng,
	delivery_instructions, distance_km,
	gig_worker_id, gig_worker_wallet, gig_worker_name,
	amount, platform_fee, paid, paid_at,
	status, pickup_code, delivery_code, gig_worker_rating,
	created_at, accepted_at, picked_up_at, delivered_at, updated_at,
	contract_tx_hash, contract_job_id, contract_address, network, chain_id,
	cryptocurrency, token_symbol, amount_crypto`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed job repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, j Job) (Job, error) {
	const insertSQL = `
		INSERT INTO jobs (
			id, customer_id, customer_wallet,
			locker_location, locker_code, locker_lat, locker_lng,
			package_size,
			delivery_address, delivery_address_plain, delivery_lat, delivery_lng,
			delivery_instructions, distance_km,
			amount, platform_fee, paid, status, pickup_code, delivery_code
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8::package_size,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18::job_status,$19,$20)
		RETURNING ` + jobColumns

	var lockerLat, lockerLng, deliveryLat, deliveryLng *float64
	if j.LockerCoords != nil {
		lockerLat, lockerLng = &j.LockerCoords.Lat, &j.LockerCoords.Lng
	}
	if j.DeliveryCoords != nil {
		deliveryLat, deliveryLng = &j.DeliveryCoords.Lat, &j.DeliveryCoords.Lng
	}

	created, err := scanJob(r.pool.QueryRow(ctx, insertSQL,
		j.ID, j.CustomerID, j.CustomerWallet,
		j.LockerLocation, j.LockerCode, lockerLat, lockerLng,
		j.PackageSize,
		j.DeliveryAddress, j.DeliveryAddressPlain, deliveryLat, deliveryLng,
		j.DeliveryInstructions, j.DistanceKm,
		j.Amount, j.PlatformFee, j.Paid, j.Status,
		j.PickupConfirmationCode, j.DeliveryConfirmationCode,
	))
	if err != nil {
		return Job{}, fmt.Errorf("job: insert: %w", err)
	}
	return created, nil
}

func (r *PGRepository) Get(ctx context.Context, id string) (Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, fmt.Errorf("job: get: %w", err)
	}
	return j, nil
}

func (r *PGRepository) List(ctx context.Context, f Filters) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	where := ""
	args := []any{}
	add := func(clause string, arg any) {
		args = append(args, arg)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, len(args))
	}
	if f.Status != "" {
		add("status = $%d::job_status", f.Status)
	}
	if f.CustomerID != "" {
		add("customer_id = $%d", f.CustomerID)
	}
	if f.GigWorkerID != "" {
		add("gig_worker_id = $%d", f.GigWorkerID)
	}
	query += where + ` ORDER BY created_at DESC`

	return r.queryJobs(ctx, query, args...)
}

func (r *PGRepository) ListAvailable(ctx context.Context) ([]Job, error) {
	const query = `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = 'open' AND paid = TRUE
		ORDER BY amount DESC
	`
	return r.queryJobs(ctx, query)
}

func (r *PGRepository) ListForActor(ctx context.Context, actor Actor) ([]Job, error) {
	const query = `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE customer_id = $1 OR customer_wallet = $1 OR gig_worker_id = $1 OR gig_worker_wallet = $1
		ORDER BY created_at DESC
	`
	return r.queryJobs(ctx, query, string(actor))
}

func (r *PGRepository) RatedRatings(ctx context.Context, gigWorkerID string) ([]int, error) {
	const query = `
		SELECT gig_worker_rating
		FROM jobs
		WHERE gig_worker_id = $1 AND gig_worker_rating IS NOT NULL
	`
	rows, err := r.pool.Query(ctx, query, gigWorkerID)
	if err != nil {
		return nil, fmt.Errorf("job: rated ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]int, 0, 8)
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("job: scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("job: iterate ratings: %w", err)
	}
	return ratings, nil
}

func (r *PGRepository) Transition(ctx context.Context, id string, apply func(*Job) error) (Job, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Job{}, fmt.Errorf("job: begin transition: %w", err)
	}
	defer tx.Rollback(ctx)

	j, err := scanJob(tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, fmt.Errorf("job: lock for transition: %w", err)
	}

	if err := apply(&j); err != nil {
		return Job{}, err
	}

	const updateSQL = `
		UPDATE jobs
		SET gig_worker_id = $2,
		    gig_worker_wallet = $3,
		    gig_worker_name = $4,
		    amount = $5,
		    platform_fee = $6,
		    paid = $7,
		    paid_at = $8,
		    status = $9::job_status,
		    gig_worker_rating = $10,
		    accepted_at = $11,
		    picked_up_at = $12,
		    delivered_at = $13,
		    contract_tx_hash = $14,
		    contract_job_id = $15,
		    contract_address = $16,
		    network = $17,
		    chain_id = $18,
		    cryptocurrency = $19,
		    token_symbol = $20,
		    amount_crypto = $21,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, updateSQL,
		j.ID,
		j.GigWorkerID, j.GigWorkerWallet, j.GigWorkerName,
		j.Amount, j.PlatformFee,
		j.Paid, j.PaidAt,
		j.Status, j.GigWorkerRating,
		j.AcceptedAt, j.PickedUpAt, j.DeliveredAt,
		j.ContractTxHash, j.ContractJobID, j.ContractAddress,
		j.Network, j.ChainID, j.Cryptocurrency, j.TokenSymbol, j.AmountCrypto,
	).Scan(&j.UpdatedAt); err != nil {
		return Job{}, fmt.Errorf("job: persist transition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Job{}, fmt.Errorf("job: commit transition: %w", err)
	}
	return j, nil
}

func (r *PGRepository) queryJobs(ctx context.Context, query string, args ...any) ([]Job, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("job: list: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0, 16)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("job: scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("job: iterate: %w", err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (Job, error) {
	var (
		j                    Job
		lockerLat, lockerLng *float64
		delivLat, delivLng   *float64
		plain                *string
		instructions         *string
		distanceKm           *float64
		amountCrypto         decimal.NullDecimal
	)
	err := row.Scan(
		&j.ID, &j.CustomerID, &j.CustomerWallet,
		&j.LockerLocation, &j.LockerCode, &lockerLat, &lockerLng,
		&j.PackageSize,
		&j.DeliveryAddress, &plain, &delivLat, &delivLng,
		&instructions, &distanceKm,
		&j.GigWorkerID, &j.GigWorkerWallet, &j.GigWorkerName,
		&j.Amount, &j.PlatformFee, &j.Paid, &j.PaidAt,
		&j.Status, &j.PickupConfirmationCode, &j.DeliveryConfirmationCode, &j.GigWorkerRating,
		&j.CreatedAt, &j.AcceptedAt, &j.PickedUpAt, &j.DeliveredAt, &j.UpdatedAt,
		&j.ContractTxHash, &j.ContractJobID, &j.ContractAddress, &j.Network, &j.ChainID,
		&j.Cryptocurrency, &j.TokenSymbol, &amountCrypto,
	)
	if err != nil {
		return Job{}, err
	}

	if lockerLat != nil && lockerLng != nil {
		j.LockerCoords = &Coords{Lat: *lockerLat, Lng: *lockerLng}
	}
	if delivLat != nil && delivLng != nil {
		j.DeliveryCoords = &Coords{Lat: *delivLat, Lng: *delivLng}
	}
	if plain != nil {
		j.DeliveryAddressPlain = *plain
	}
	if instructions != nil {
		j.DeliveryInstructions = *instructions
	}
	if distanceKm != nil {
		j.DistanceKm = *distanceKm
	}
	if amountCrypto.Valid {
		j.AmountCrypto = &amountCrypto.Decimal
	}
	return j, nil
}
