package job

import (
	"time"

	"github.com/shopspring/decimal"
)

// View is the boundary representation of a job. The plain delivery address is
// a pointer so that, when withheld, the field is absent from the encoded
// payload rather than blanked.
type View struct {
	ID                       string           `json:"id"`
	CustomerID               string           `json:"customerId"`
	CustomerWallet           string           `json:"customerWallet"`
	LockerLocation           string           `json:"lockerLocation"`
	LockerCode               string           `json:"lockerCode"`
	LockerCoords             *Coords          `json:"lockerCoords,omitempty"`
	PackageSize              PackageSize      `json:"packageSize"`
	DeliveryAddress          string           `json:"deliveryAddress"`
	DeliveryAddressPlain     *string          `json:"deliveryAddressPlain,omitempty"`
	DeliveryCoords           *Coords          `json:"deliveryCoords,omitempty"`
	DeliveryInstructions     string           `json:"deliveryInstructions,omitempty"`
	DistanceKm               float64          `json:"distanceKm"`
	GigWorkerID              *string          `json:"gigWorkerId,omitempty"`
	GigWorkerWallet          *string          `json:"gigWorkerWallet,omitempty"`
	GigWorkerName            *string          `json:"gigWorkerName,omitempty"`
	Amount                   decimal.Decimal  `json:"amount"`
	PlatformFee              decimal.Decimal  `json:"platformFee"`
	Paid                     bool             `json:"paid"`
	PaidAt                   *time.Time       `json:"paidAt,omitempty"`
	Status                   Status           `json:"status"`
	PickupConfirmationCode   string           `json:"pickupConfirmationCode"`
	DeliveryConfirmationCode string           `json:"deliveryConfirmationCode"`
	GigWorkerRating          *int             `json:"gigWorkerRating,omitempty"`
	CreatedAt                time.Time        `json:"createdAt"`
	AcceptedAt               *time.Time       `json:"acceptedAt,omitempty"`
	PickedUpAt               *time.Time       `json:"pickedUpAt,omitempty"`
	DeliveredAt              *time.Time       `json:"deliveredAt,omitempty"`
	ContractTxHash           *string          `json:"contractTxHash,omitempty"`
	ContractJobID            *string          `json:"contractJobId,omitempty"`
	ContractAddress          *string          `json:"contractAddress,omitempty"`
	Network                  *string          `json:"network,omitempty"`
	ChainID                  *int64           `json:"chainId,omitempty"`
	Cryptocurrency           *string          `json:"cryptocurrency,omitempty"`
	TokenSymbol              *string          `json:"tokenSymbol,omitempty"`
	AmountCrypto             *decimal.Decimal `json:"amountCrypto,omitempty"`
}

// addressVisibleTo decides whether the plaintext delivery address may be
// revealed: only the assigned worker, and only once the job is theirs.
func addressVisibleTo(j Job, actor Actor) bool {
	if !actor.IsAssignedWorker(j) {
		return false
	}
	switch j.Status {
	case StatusAccepted, StatusPickedUp, StatusDelivered:
		return true
	default:
		return false
	}
}

// Project builds the representation of j for the given actor, applying the
// address confidentiality rule. The digest form stays visible unconditionally.
func Project(j Job, actor Actor) View {
	v := View{
		ID:                       j.ID,
		CustomerID:               j.CustomerID,
		CustomerWallet:           j.CustomerWallet,
		LockerLocation:           j.LockerLocation,
		LockerCode:               j.LockerCode,
		LockerCoords:             j.LockerCoords,
		PackageSize:              j.PackageSize,
		DeliveryAddress:          j.DeliveryAddress,
		DeliveryCoords:           j.DeliveryCoords,
		DeliveryInstructions:     j.DeliveryInstructions,
		DistanceKm:               j.DistanceKm,
		GigWorkerID:              j.GigWorkerID,
		GigWorkerWallet:          j.GigWorkerWallet,
		GigWorkerName:            j.GigWorkerName,
		Amount:                   j.Amount,
		PlatformFee:              j.PlatformFee,
		Paid:                     j.Paid,
		PaidAt:                   j.PaidAt,
		Status:                   j.Status,
		PickupConfirmationCode:   j.PickupConfirmationCode,
		DeliveryConfirmationCode: j.DeliveryConfirmationCode,
		GigWorkerRating:          j.GigWorkerRating,
		CreatedAt:                j.CreatedAt,
		AcceptedAt:               j.AcceptedAt,
		PickedUpAt:               j.PickedUpAt,
		DeliveredAt:              j.DeliveredAt,
		ContractTxHash:           j.ContractTxHash,
		ContractJobID:            j.ContractJobID,
		ContractAddress:          j.ContractAddress,
		Network:                  j.Network,
		ChainID:                  j.ChainID,
		Cryptocurrency:           j.Cryptocurrency,
		TokenSymbol:              j.TokenSymbol,
		AmountCrypto:             j.AmountCrypto,
	}
	if addressVisibleTo(j, actor) && j.DeliveryAddressPlain != "" {
		plain := j.DeliveryAddressPlain
		v.DeliveryAddressPlain = &plain
	}
	return v
}

// ProjectAll applies Project to every job in the slice.
func ProjectAll(jobs []Job, actor Actor) []View {
	views := make([]View, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, Project(j, actor))
	}
	return views
}
