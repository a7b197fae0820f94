package job

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestRepository_Integration connects to a real PostgreSQL via DATABASE_URL and
// verifies the repository roundtrip including the locked transition path.
func TestRepository_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'jobs')`).Scan(&exists); err != nil {
		t.Fatalf("check schema: %v", err)
	}
	if !exists {
		t.Skip("database schema missing; apply migrations/ first")
	}

	repo := NewRepository(pool)

	seed := Job{
		ID:                       uuid.NewString(),
		CustomerID:               uuid.NewString(),
		CustomerWallet:           "0x" + uuid.NewString(),
		LockerLocation:           "Syntagma Square Locker",
		LockerCode:               "SYN-001",
		PackageSize:              SizeMedium,
		DeliveryAddress:          DigestAddress("12 Ermou St, Athens"),
		DeliveryAddressPlain:     "12 Ermou St, Athens",
		DeliveryInstructions:     "ring twice",
		DistanceKm:               5,
		Amount:                   decimal.RequireFromString("13.20"),
		PlatformFee:              decimal.RequireFromString("1.32"),
		Status:                   StatusOpen,
		PickupConfirmationCode:   "0042",
		DeliveryConfirmationCode: "0777",
	}

	created, err := repo.Create(ctx, seed)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Errorf("expected createdAt to be populated")
	}

	loaded, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.DeliveryAddressPlain != seed.DeliveryAddressPlain {
		t.Errorf("expected plaintext address roundtrip, got %q", loaded.DeliveryAddressPlain)
	}
	if !loaded.Amount.Equal(seed.Amount) {
		t.Errorf("expected amount %s, got %s", seed.Amount, loaded.Amount)
	}
	if loaded.GigWorkerID != nil {
		t.Errorf("expected empty worker slot")
	}

	if _, err := repo.Get(ctx, uuid.NewString()); err == nil {
		t.Errorf("expected not-found for unknown id")
	}

	byCustomer, err := repo.List(ctx, Filters{CustomerID: seed.CustomerID})
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(byCustomer) != 1 {
		t.Errorf("expected 1 job for customer, got %d", len(byCustomer))
	}

	workerID := uuid.NewString()
	now := time.Now().UTC()
	updated, err := repo.Transition(ctx, created.ID, func(j *Job) error {
		wallet := "0x" + workerID
		name := "Maria"
		j.GigWorkerID = &workerID
		j.GigWorkerWallet = &wallet
		j.GigWorkerName = &name
		j.Status = StatusAccepted
		j.AcceptedAt = &now
		return nil
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Errorf("expected accepted, got %q", updated.Status)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("expected updatedAt to advance")
	}

	mine, err := repo.ListForActor(ctx, Actor(workerID))
	if err != nil {
		t.Fatalf("list for actor: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("expected assigned job in actor listing, got %d", len(mine))
	}

	// An apply error must leave the row untouched.
	sentinel := ErrNotFound
	if _, err := repo.Transition(ctx, created.ID, func(j *Job) error {
		j.Status = StatusCancelled
		return sentinel
	}); err == nil {
		t.Fatalf("expected apply error to propagate")
	}
	reloaded, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != StatusAccepted {
		t.Errorf("expected rollback to keep accepted, got %q", reloaded.Status)
	}
}
