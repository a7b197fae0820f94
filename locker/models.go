package locker

import "time"

// Status represents a locker's operational state.
type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

// OperatingHours is the daily open/close window, "HH:MM" strings.
type OperatingHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Locker mirrors the lockers table. Jobs reference lockers by code and
// location string only; the job core never checks capacity.
type Locker struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Code           string         `json:"code"`
	Address        string         `json:"address"`
	Lat            float64        `json:"lat"`
	Lng            float64        `json:"lng"`
	Capacity       int            `json:"capacity"`
	AvailableSlots int            `json:"availableSlots"`
	Status         Status         `json:"status"`
	OperatingHours OperatingHours `json:"operatingHours"`
	Features       []string       `json:"features"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// CreateParams contains write parameters for a new locker.
type CreateParams struct {
	Name           string
	Code           string
	Address        string
	Lat            float64
	Lng            float64
	Capacity       int
	OperatingHours *OperatingHours
	Features       []string
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Name           *string
	Address        *string
	Lat            *float64
	Lng            *float64
	Capacity       *int
	AvailableSlots *int
	Status         *Status
	OperatingHours *OperatingHours
	Features       []string
}

// SearchParams narrows locker listings. Radius applies only when all three
// geo fields are set.
type SearchParams struct {
	Status   Status
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
}
