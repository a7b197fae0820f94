package user

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// JobRatings is the slice of the job store the aggregator needs: every rating
// ever recorded against the worker.
type JobRatings interface {
	RatedRatings(ctx context.Context, gigWorkerID string) ([]int, error)
}

// ReputationService recomputes worker aggregates from the job history. The
// recompute is full rather than incremental, so concurrent rating submissions
// cannot drift the stored mean.
type ReputationService struct {
	repo Repository
	jobs JobRatings
}

func NewReputationService(repo Repository, jobs JobRatings) *ReputationService {
	return &ReputationService{repo: repo, jobs: jobs}
}

// RecomputeRating pulls every rated job for the worker, averages, rounds to
// two decimals, and writes the result. A worker with no rated jobs keeps
// their current rating.
func (s *ReputationService) RecomputeRating(ctx context.Context, gigWorkerID string) error {
	ratings, err := s.jobs.RatedRatings(ctx, gigWorkerID)
	if err != nil {
		return fmt.Errorf("user: load rated jobs: %w", err)
	}
	if len(ratings) == 0 {
		return nil
	}

	var total int
	for _, r := range ratings {
		total += r
	}
	mean := math.Round(float64(total)/float64(len(ratings))*100) / 100

	return s.repo.SetRating(ctx, gigWorkerID, mean)
}

// IncrementCompleted bumps the worker's completed-jobs counter. A worker
// record that does not exist is tolerated as a no-op.
func (s *ReputationService) IncrementCompleted(ctx context.Context, gigWorkerID string) error {
	if err := s.repo.IncrementCompleted(ctx, gigWorkerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}
