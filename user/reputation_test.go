package user

import (
	"context"
	"errors"
	"testing"
)

type fakeJobRatings struct {
	ratings map[string][]int
	err     error
}

func (f *fakeJobRatings) RatedRatings(ctx context.Context, gigWorkerID string) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ratings[gigWorkerID], nil
}

func seedWorker(t *testing.T, repo *MemoryRepository) User {
	t.Helper()
	wallet := "0xworker"
	username := "maria"
	u, err := repo.Create(context.Background(), CreateParams{
		Email:         "maria@example.com",
		WalletAddress: &wallet,
		Username:      &username,
		AccountType:   AccountGigWorker,
		Role:          RoleGigWorker,
	})
	if err != nil {
		t.Fatalf("seed worker: %v", err)
	}
	return u
}

func TestRecomputeRating_MeanRoundedToTwoDecimals(t *testing.T) {
	repo := NewMemoryRepository()
	seedWorker(t, repo)

	jobs := &fakeJobRatings{ratings: map[string][]int{
		"0xworker": {5, 4, 3},
	}}
	svc := NewReputationService(repo, jobs)

	if err := svc.RecomputeRating(context.Background(), "0xworker"); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	u, err := repo.GetByWallet(context.Background(), "0xworker")
	if err != nil {
		t.Fatalf("reload worker: %v", err)
	}
	if u.Rating != 4.0 {
		t.Errorf("expected rating 4.0, got %v", u.Rating)
	}
}

func TestRecomputeRating_Rounding(t *testing.T) {
	repo := NewMemoryRepository()
	seedWorker(t, repo)

	jobs := &fakeJobRatings{ratings: map[string][]int{
		"0xworker": {5, 4, 4}, // 13/3 = 4.333...
	}}
	svc := NewReputationService(repo, jobs)

	if err := svc.RecomputeRating(context.Background(), "0xworker"); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	u, _ := repo.GetByWallet(context.Background(), "0xworker")
	if u.Rating != 4.33 {
		t.Errorf("expected rating 4.33, got %v", u.Rating)
	}
}

func TestRecomputeRating_NoRatedJobsKeepsCurrent(t *testing.T) {
	repo := NewMemoryRepository()
	seedWorker(t, repo)

	svc := NewReputationService(repo, &fakeJobRatings{})

	if err := svc.RecomputeRating(context.Background(), "0xworker"); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	u, _ := repo.GetByWallet(context.Background(), "0xworker")
	if u.Rating != 5.0 {
		t.Errorf("expected default rating 5.0 to be kept, got %v", u.Rating)
	}
}

func TestRecomputeRating_PropagatesLoadError(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewReputationService(repo, &fakeJobRatings{err: errors.New("boom")})

	if err := svc.RecomputeRating(context.Background(), "0xworker"); err == nil {
		t.Fatalf("expected load error to propagate")
	}
}

func TestIncrementCompleted(t *testing.T) {
	repo := NewMemoryRepository()
	seedWorker(t, repo)
	svc := NewReputationService(repo, &fakeJobRatings{})

	if err := svc.IncrementCompleted(context.Background(), "0xworker"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := svc.IncrementCompleted(context.Background(), "0xworker"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	u, _ := repo.GetByWallet(context.Background(), "0xworker")
	if u.CompletedJobs != 2 {
		t.Errorf("expected 2 completed jobs, got %d", u.CompletedJobs)
	}
}

func TestIncrementCompleted_MissingWorkerIsNoOp(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewReputationService(repo, &fakeJobRatings{})

	if err := svc.IncrementCompleted(context.Background(), "0xghost"); err != nil {
		t.Fatalf("expected missing worker to be tolerated, got %v", err)
	}
}
