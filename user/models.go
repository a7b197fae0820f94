package user

import "time"

// Role captures which side of the marketplace a user can act on.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleGigWorker Role = "gigworker"
	RoleBoth      Role = "both"
)

// AccountType is the registration-time account choice.
type AccountType string

const (
	AccountCustomer  AccountType = "customer"
	AccountGigWorker AccountType = "gigWorker"
)

// Location is a worker's last reported position.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// User mirrors the users table. A user may authenticate by wallet, by
// email/password, or both; every identifier column is compared as an opaque
// lowercase string.
type User struct {
	ID            string      `json:"id"`
	WalletAddress *string     `json:"walletAddress,omitempty"`
	Username      *string     `json:"username,omitempty"`
	Email         string      `json:"email,omitempty"`
	PasswordHash  *string     `json:"-"`
	AccountType   AccountType `json:"accountType"`
	Role          Role        `json:"role"`
	FirstName     *string     `json:"firstName,omitempty"`
	LastName      *string     `json:"lastName,omitempty"`
	Phone         *string     `json:"phone,omitempty"`
	Rating        float64     `json:"rating"`
	TotalJobs     int         `json:"totalJobs"`
	CompletedJobs int         `json:"completedJobs"`
	IsAvailable   bool        `json:"isAvailable"`
	Location      *Location   `json:"location,omitempty"`
	IsVerified    bool        `json:"isVerified"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// CreateParams contains write parameters for new users.
type CreateParams struct {
	WalletAddress *string
	Username      *string
	Email         string
	PasswordHash  *string
	AccountType   AccountType
	Role          Role
	FirstName     *string
	LastName      *string
	Phone         *string
}
