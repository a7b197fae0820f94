package auth

import "parcelflow/user"

// RegisterRequest carries either email/password registration data or a
// wallet signature; exactly one mode must be populated.
type RegisterRequest struct {
	// Email/password mode.
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	AccountType string `json:"accountType"`

	// Wallet mode.
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
}

// LoginRequest carries email/username+password credentials or a signed nonce.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`

	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
}

// LoginResult bundles the session token and the authenticated user.
type LoginResult struct {
	Token string
	User  user.User
}
