package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"parcelflow/fault"
)

// ReputationSink receives the worker-aggregate side effects of terminal
// transitions. Implemented by the user package. The two writes (job, then
// worker) are not atomic with each other; the aggregate is a full recompute,
// so a stale value self-heals on the next rating event.
type ReputationSink interface {
	IncrementCompleted(ctx context.Context, gigWorkerID string) error
	RecomputeRating(ctx context.Context, gigWorkerID string) error
}

var platformFeeRate = decimal.RequireFromString("0.1")

// Service is the job lifecycle engine: it validates actor identity and current
// state, applies a transition under the repository's row lock, and triggers
// the reputation side effects.
type Service struct {
	repo       Repository
	reputation ReputationSink
	idGen      func() string
	newCode    func() (string, error)
	now        func() time.Time
}

func NewService(repo Repository, reputation ReputationSink) *Service {
	return &Service{
		repo:       repo,
		reputation: reputation,
		idGen:      func() string { return uuid.NewString() },
		newCode:    NewConfirmationCode,
		now:        time.Now,
	}
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

func (s *Service) WithCodeGenerator(gen func() (string, error)) *Service {
	s.newCode = gen
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateParams carries the customer's job submission.
type CreateParams struct {
	CustomerID     string
	CustomerWallet string
	PackageSize    PackageSize
	LockerLocation string
	LockerCode     string
	LockerCoords   *Coords
	// DeliveryAddress is the plaintext destination; it is digested exactly
	// once here, never by the storage layer.
	DeliveryAddress      string
	DeliveryCoords       *Coords
	DeliveryInstructions string
	DistanceKm           float64
	Amount               decimal.Decimal
	// PlatformFee defaults to 10% of Amount when nil.
	PlatformFee *decimal.Decimal
}

// Create opens a new job: status open, unpaid, both confirmation codes freshly
// drawn. Package size defaults to small when omitted.
func (s *Service) Create(ctx context.Context, params CreateParams) (Job, error) {
	switch {
	case params.CustomerID == "" || params.CustomerWallet == "":
		return Job{}, fault.New(fault.Validation, "customer id and wallet required")
	case params.LockerLocation == "" || params.LockerCode == "":
		return Job{}, fault.New(fault.Validation, "locker location and code required")
	case params.DeliveryAddress == "":
		return Job{}, fault.New(fault.Validation, "delivery address required")
	case params.Amount.LessThanOrEqual(decimal.Zero):
		return Job{}, fault.New(fault.Validation, "amount must be positive")
	}

	size := params.PackageSize
	if size == "" {
		size = SizeSmall
	}
	if !ValidSize(size) {
		return Job{}, fault.Newf(fault.Validation, "unknown package size %q", size)
	}

	fee := params.Amount.Mul(platformFeeRate).Round(2)
	if params.PlatformFee != nil {
		fee = *params.PlatformFee
	}

	pickupCode, err := s.newCode()
	if err != nil {
		return Job{}, fault.Wrap(fault.Unexpected, err, "generate pickup code")
	}
	deliveryCode, err := s.newCode()
	if err != nil {
		return Job{}, fault.Wrap(fault.Unexpected, err, "generate delivery code")
	}

	j := Job{
		ID:                       s.idGen(),
		CustomerID:               params.CustomerID,
		CustomerWallet:           params.CustomerWallet,
		LockerLocation:           params.LockerLocation,
		LockerCode:               params.LockerCode,
		LockerCoords:             params.LockerCoords,
		PackageSize:              size,
		DeliveryCoords:           params.DeliveryCoords,
		DeliveryInstructions:     params.DeliveryInstructions,
		DistanceKm:               params.DistanceKm,
		Amount:                   params.Amount,
		PlatformFee:              fee,
		Paid:                     false,
		Status:                   StatusOpen,
		PickupConfirmationCode:   pickupCode,
		DeliveryConfirmationCode: deliveryCode,
	}

	if Digested(params.DeliveryAddress) {
		// Already a digest; the plaintext is unknown and stays empty.
		j.DeliveryAddress = params.DeliveryAddress
	} else {
		j.DeliveryAddressPlain = params.DeliveryAddress
		j.DeliveryAddress = DigestAddress(params.DeliveryAddress)
	}

	created, err := s.repo.Create(ctx, j)
	if err != nil {
		return Job{}, err
	}
	return created, nil
}

// PaymentParams records the settlement the customer reports.
type PaymentParams struct {
	TransactionHash string
	ContractJobID   *string
	ContractAddress *string
	Network         *string
	ChainID         *int64
	Cryptocurrency  *string
	TokenSymbol     *string
	AmountCrypto    *decimal.Decimal
}

// ConfirmPayment flips paid exactly once. The job stays open so workers can
// still accept it.
func (s *Service) ConfirmPayment(ctx context.Context, jobID string, params PaymentParams) (Job, error) {
	if params.TransactionHash == "" {
		return Job{}, fault.New(fault.Validation, "transaction hash required")
	}
	now := s.now()
	return s.repo.Transition(ctx, jobID, func(j *Job) error {
		if j.Paid {
			return fault.New(fault.Conflict, "payment already processed for this job")
		}
		if j.Status != StatusOpen {
			return fault.New(fault.Conflict, "job already processed or cancelled")
		}
		tx := params.TransactionHash
		j.ContractTxHash = &tx
		j.Paid = true
		j.PaidAt = &now
		if params.ContractJobID != nil {
			j.ContractJobID = params.ContractJobID
		}
		if params.ContractAddress != nil {
			j.ContractAddress = params.ContractAddress
		}
		if params.Network != nil {
			j.Network = params.Network
		}
		if params.ChainID != nil {
			j.ChainID = params.ChainID
		}
		if params.Cryptocurrency != nil {
			j.Cryptocurrency = params.Cryptocurrency
		}
		if params.TokenSymbol != nil {
			j.TokenSymbol = params.TokenSymbol
		}
		if params.AmountCrypto != nil {
			j.AmountCrypto = params.AmountCrypto
		}
		return nil
	})
}

// AcceptParams identifies the worker taking the job.
type AcceptParams struct {
	GigWorkerID     string
	GigWorkerWallet string
	GigWorkerName   string
}

// AcceptResult discloses the locker code to the accepting worker; they need it
// to retrieve the package.
type AcceptResult struct {
	Job        Job
	LockerCode string
}

// Accept assigns an open job to a worker. The row lock serializes concurrent
// accepts: the loser observes status != open and gets Conflict. A customer
// cannot take their own job.
func (s *Service) Accept(ctx context.Context, jobID string, params AcceptParams) (AcceptResult, error) {
	if params.GigWorkerID == "" || params.GigWorkerWallet == "" {
		return AcceptResult{}, fault.New(fault.Validation, "gig worker id and wallet required")
	}
	name := params.GigWorkerName
	if name == "" {
		name = "Anonymous Worker"
	}
	now := s.now()
	updated, err := s.repo.Transition(ctx, jobID, func(j *Job) error {
		if j.Status != StatusOpen {
			return fault.New(fault.Conflict, "job is not available")
		}
		if j.CustomerID == params.GigWorkerID || j.CustomerWallet == params.GigWorkerWallet {
			return fault.New(fault.Forbidden, "you cannot accept your own order")
		}
		j.GigWorkerID = &params.GigWorkerID
		j.GigWorkerWallet = &params.GigWorkerWallet
		j.GigWorkerName = &name
		j.Status = StatusAccepted
		j.AcceptedAt = &now
		return nil
	})
	if err != nil {
		return AcceptResult{}, err
	}
	return AcceptResult{Job: updated, LockerCode: updated.LockerCode}, nil
}

// Decline returns an accepted job to the open pool. Only the assigned worker
// may decline; the worker slot and acceptance timestamp are cleared.
func (s *Service) Decline(ctx context.Context, jobID string, actor Actor) (Job, error) {
	if actor == "" {
		return Job{}, fault.New(fault.Validation, "gig worker id required")
	}
	return s.repo.Transition(ctx, jobID, func(j *Job) error {
		if j.Status != StatusAccepted {
			return fault.New(fault.Conflict, "can only decline jobs in accepted status")
		}
		if !actor.IsAssignedWorker(*j) {
			return fault.New(fault.Forbidden, "not assigned to you")
		}
		j.GigWorkerID = nil
		j.GigWorkerWallet = nil
		j.Status = StatusOpen
		j.AcceptedAt = nil
		return nil
	})
}

// PickupResult carries the first-ever disclosure of the plaintext address: the
// assigned worker learns the destination at the moment they hold the package.
type PickupResult struct {
	Job                  Job
	DeliveryAddress      string
	DeliveryInstructions string
}

func (s *Service) ConfirmPickup(ctx context.Context, jobID string, actor Actor) (PickupResult, error) {
	now := s.now()
	updated, err := s.repo.Transition(ctx, jobID, func(j *Job) error {
		if j.Status != StatusAccepted {
			return fault.New(fault.Conflict, "job must be in accepted status")
		}
		if !actor.IsAssignedWorker(*j) {
			return fault.New(fault.Forbidden, "not assigned to you")
		}
		j.Status = StatusPickedUp
		j.PickedUpAt = &now
		return nil
	})
	if err != nil {
		return PickupResult{}, err
	}
	return PickupResult{
		Job:                  updated,
		DeliveryAddress:      updated.DeliveryAddressPlain,
		DeliveryInstructions: updated.DeliveryInstructions,
	}, nil
}

// DeliveryResult reports the worker's payout: amount minus platform fee.
type DeliveryResult struct {
	Job    Job
	Payout decimal.Decimal
}

// ConfirmDelivery closes the handoff. The supplied code must exactly equal the
// stored delivery confirmation code, which the customer hands over at the door.
// On success the worker's completed-jobs counter is incremented.
func (s *Service) ConfirmDelivery(ctx context.Context, jobID string, actor Actor, code string) (DeliveryResult, error) {
	now := s.now()
	updated, err := s.repo.Transition(ctx, jobID, func(j *Job) error {
		if j.Status != StatusPickedUp {
			return fault.New(fault.Conflict, "job must be in picked_up status")
		}
		if !actor.IsAssignedWorker(*j) {
			return fault.New(fault.Forbidden, "not assigned to you")
		}
		if code == "" || !codeMatches(code, j.DeliveryConfirmationCode) {
			return fault.New(fault.Validation, "invalid delivery confirmation code; get this code from the customer")
		}
		j.Status = StatusDelivered
		j.DeliveredAt = &now
		return nil
	})
	if err != nil {
		return DeliveryResult{}, err
	}

	if updated.GigWorkerID != nil {
		if err := s.reputation.IncrementCompleted(ctx, *updated.GigWorkerID); err != nil {
			return DeliveryResult{}, fault.Wrap(fault.Unexpected, err, "update completed jobs")
		}
	}

	return DeliveryResult{Job: updated, Payout: updated.Payout()}, nil
}

// Cancel withdraws an open job. Customers only, and only before acceptance.
// No refund logic: settlement reversal is outside this system.
func (s *Service) Cancel(ctx context.Context, jobID string, actor Actor) (Job, error) {
	return s.repo.Transition(ctx, jobID, func(j *Job) error {
		if string(actor) != j.CustomerID {
			return fault.New(fault.Forbidden, "only the customer may cancel")
		}
		if j.Status != StatusOpen {
			return fault.New(fault.Conflict, "can only cancel jobs that are open")
		}
		j.Status = StatusCancelled
		return nil
	})
}

// Rate records the customer's one-time rating of the worker and triggers a
// full recompute of the worker's aggregate rating.
func (s *Service) Rate(ctx context.Context, jobID string, actor Actor, rating int) (Job, error) {
	if rating < 1 || rating > 5 {
		return Job{}, fault.New(fault.Validation, "rating must be between 1 and 5")
	}
	updated, err := s.repo.Transition(ctx, jobID, func(j *Job) error {
		if !actor.IsCustomer(*j) {
			return fault.New(fault.Forbidden, "only the customer may rate")
		}
		if j.Status != StatusDelivered {
			return fault.New(fault.Conflict, "can only rate delivered jobs")
		}
		if j.GigWorkerRating != nil {
			return fault.New(fault.Conflict, "job already rated")
		}
		j.GigWorkerRating = &rating
		return nil
	})
	if err != nil {
		return Job{}, err
	}

	if updated.GigWorkerID != nil {
		if err := s.reputation.RecomputeRating(ctx, *updated.GigWorkerID); err != nil {
			return Job{}, fault.Wrap(fault.Unexpected, err, "recompute worker rating")
		}
	}
	return updated, nil
}

// Get loads a single job.
func (s *Service) Get(ctx context.Context, id string) (Job, error) {
	return s.repo.Get(ctx, id)
}

// List returns jobs matching the filters, newest first.
func (s *Service) List(ctx context.Context, f Filters) ([]Job, error) {
	if f.Status != "" {
		switch f.Status {
		case StatusOpen, StatusAccepted, StatusPickedUp, StatusDelivered, StatusDisputed, StatusCancelled:
		default:
			return nil, fault.Newf(fault.Validation, "unknown status %q", f.Status)
		}
	}
	return s.repo.List(ctx, f)
}

// ListAvailable returns open, paid jobs for workers to browse, ordered by
// amount descending.
func (s *Service) ListAvailable(ctx context.Context) ([]Job, error) {
	return s.repo.ListAvailable(ctx)
}

// ListForActor returns every job the actor is a party to, on either side.
func (s *Service) ListForActor(ctx context.Context, actor Actor) ([]Job, error) {
	if actor == "" {
		return nil, fault.New(fault.Validation, "user id required")
	}
	return s.repo.ListForActor(ctx, actor)
}
