package job

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a delivery job. Transitions move along a
// single directed path; the only backward edge is accepted -> open on decline.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAccepted  Status = "accepted"
	StatusPickedUp  Status = "picked_up"
	StatusDelivered Status = "delivered"
	StatusDisputed  Status = "disputed"
	StatusCancelled Status = "cancelled"
)

// PackageSize buckets a parcel for pricing.
type PackageSize string

const (
	SizeSmall  PackageSize = "small"
	SizeMedium PackageSize = "medium"
	SizeLarge  PackageSize = "large"
)

// ValidSize reports whether s is a known package size.
func ValidSize(s PackageSize) bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	default:
		return false
	}
}

// Coords is a latitude/longitude pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Job mirrors the jobs table. DeliveryAddress always holds the one-way digest
// of DeliveryAddressPlain; the plaintext leaves the system only through the
// confidentiality projection.
type Job struct {
	ID string

	CustomerID     string
	CustomerWallet string

	LockerLocation string
	LockerCode     string
	LockerCoords   *Coords

	PackageSize PackageSize

	DeliveryAddress      string
	DeliveryAddressPlain string
	DeliveryCoords       *Coords
	DeliveryInstructions string
	DistanceKm           float64

	GigWorkerID     *string
	GigWorkerWallet *string
	GigWorkerName   *string

	Amount      decimal.Decimal
	PlatformFee decimal.Decimal
	Paid        bool
	PaidAt      *time.Time

	Status Status

	PickupConfirmationCode   string
	DeliveryConfirmationCode string

	GigWorkerRating *int

	CreatedAt   time.Time
	AcceptedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	UpdatedAt   time.Time

	// Settlement metadata recorded at payment confirmation. Informational only;
	// on-chain settlement happens outside this system.
	ContractTxHash  *string
	ContractJobID   *string
	ContractAddress *string
	Network         *string
	ChainID         *int64
	Cryptocurrency  *string
	TokenSymbol     *string
	AmountCrypto    *decimal.Decimal
}

// Payout is the gig worker's share once the job is delivered.
func (j Job) Payout() decimal.Decimal {
	return j.Amount.Sub(j.PlatformFee)
}

// Actor is the authenticated requester as the job domain sees it: one opaque
// identifier resolved at the system boundary and compared for equality against
// the stored party fields. It may hold a wallet address or an email-derived id.
type Actor string

// IsCustomer reports whether the actor is the job's customer by id or wallet.
func (a Actor) IsCustomer(j Job) bool {
	if a == "" {
		return false
	}
	return string(a) == j.CustomerID || string(a) == j.CustomerWallet
}

// IsAssignedWorker reports whether the actor occupies the job's worker slot
// by id or wallet. Always false while the slot is empty.
func (a Actor) IsAssignedWorker(j Job) bool {
	if a == "" {
		return false
	}
	if j.GigWorkerID != nil && *j.GigWorkerID == string(a) {
		return true
	}
	if j.GigWorkerWallet != nil && *j.GigWorkerWallet == string(a) {
		return true
	}
	return false
}

// Filters narrows job listings. Zero values match everything.
type Filters struct {
	Status      Status
	CustomerID  string
	GigWorkerID string
}
