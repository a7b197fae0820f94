package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"parcelflow/fault"
	"parcelflow/user"
)

var (
	// ErrInvalidCredentials signals wrong identifier, password, or signature.
	ErrInvalidCredentials = fault.New(fault.Unauthorized, "invalid credentials")
	// ErrWeakPassword signals the password does not meet requirements.
	ErrWeakPassword = fault.New(fault.Validation, "password must be at least 8 characters")
)

// SignatureVerifier checks that a wallet signed the given message. The real
// implementation recovers the signer from an ECDSA signature; that lives
// outside this system, so the service only depends on the contract.
type SignatureVerifier interface {
	Verify(message, signature, walletAddress string) bool
}

// SimulatedVerifier accepts any non-empty signature. It stands in for on-chain
// signature recovery in development and tests.
type SimulatedVerifier struct{}

func (SimulatedVerifier) Verify(message, signature, walletAddress string) bool {
	return message != "" && signature != "" && walletAddress != ""
}

// UserStore is the slice of the user repository the service needs.
type UserStore interface {
	Create(ctx context.Context, params user.CreateParams) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByWallet(ctx context.Context, wallet string) (user.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (user.User, error)
}

// Service handles authentication business logic.
type Service struct {
	users     UserStore
	verifier  SignatureVerifier
	jwtSecret []byte
	now       func() time.Time
}

// NewService creates a new authentication service.
func NewService(users UserStore, verifier SignatureVerifier, jwtSecret string) *Service {
	return &Service{
		users:     users,
		verifier:  verifier,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Nonce issues a fresh message for a wallet to sign.
func (s *Service) Nonce(walletAddress string) (string, error) {
	if walletAddress == "" {
		return "", fault.New(fault.Validation, "wallet address required")
	}
	return fmt.Sprintf("Sign this message to authenticate with Parcelflow.\n\nNonce: %d", s.now().UnixNano()), nil
}

// Register creates a new account in either mode. Email/password registrations
// get a username derived from the email local part and a pseudo-wallet so
// every user has a wallet-shaped identifier.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (LoginResult, error) {
	switch {
	case req.Email != "" && req.Password != "":
		return s.registerWithPassword(ctx, req)
	case req.WalletAddress != "" && req.Signature != "" && req.Message != "":
		return s.registerWithWallet(ctx, req)
	default:
		return LoginResult{}, fault.New(fault.Validation, "either email/password or wallet authentication required")
	}
}

func (s *Service) registerWithPassword(ctx context.Context, req RegisterRequest) (LoginResult, error) {
	if req.FirstName == "" || req.LastName == "" || req.Phone == "" {
		return LoginResult{}, fault.New(fault.Validation, "first name, last name, email, password, and phone required")
	}
	if len(req.Password) < 8 {
		return LoginResult{}, ErrWeakPassword
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: hash password: %w", err)
	}

	email := strings.ToLower(req.Email)
	username := strings.SplitN(email, "@", 2)[0]
	pseudoWallet, err := newPseudoWallet()
	if err != nil {
		return LoginResult{}, err
	}
	hash := string(passwordHash)

	u, err := s.users.Create(ctx, user.CreateParams{
		WalletAddress: &pseudoWallet,
		Username:      &username,
		Email:         email,
		PasswordHash:  &hash,
		AccountType:   accountType(req.AccountType),
		Role:          roleFor(req.AccountType),
		FirstName:     &req.FirstName,
		LastName:      &req.LastName,
		Phone:         &req.Phone,
	})
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.generateToken(email, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: u}, nil
}

func (s *Service) registerWithWallet(ctx context.Context, req RegisterRequest) (LoginResult, error) {
	if !s.verifier.Verify(req.Message, req.Signature, req.WalletAddress) {
		return LoginResult{}, fault.New(fault.Unauthorized, "invalid signature")
	}

	wallet := strings.ToLower(req.WalletAddress)
	if _, err := s.users.GetByWallet(ctx, wallet); err == nil {
		return LoginResult{}, fault.New(fault.Conflict, "wallet already registered")
	} else if !errors.Is(err, user.ErrNotFound) {
		return LoginResult{}, err
	}

	params := user.CreateParams{
		WalletAddress: &wallet,
		Email:         strings.ToLower(req.Email),
		AccountType:   accountType(req.AccountType),
		Role:          roleFor(req.AccountType),
	}
	if req.FirstName != "" {
		params.FirstName = &req.FirstName
	}
	if req.LastName != "" {
		params.LastName = &req.LastName
	}
	if req.Phone != "" {
		params.Phone = &req.Phone
	}

	u, err := s.users.Create(ctx, params)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.generateToken(wallet, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: u}, nil
}

// Login authenticates in either mode and returns a session token. A wallet
// seen for the first time is registered on the fly, as the source system did.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	switch {
	case (req.Email != "" || req.Username != "") && req.Password != "":
		return s.loginWithPassword(ctx, req)
	case req.WalletAddress != "" && req.Signature != "" && req.Message != "":
		return s.loginWithWallet(ctx, req)
	default:
		return LoginResult{}, fault.New(fault.Validation, "email/password or wallet credentials required")
	}
}

func (s *Service) loginWithPassword(ctx context.Context, req LoginRequest) (LoginResult, error) {
	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}

	u, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if u.PasswordHash == nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.generateToken(u.Email, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: u}, nil
}

func (s *Service) loginWithWallet(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if !s.verifier.Verify(req.Message, req.Signature, req.WalletAddress) {
		return LoginResult{}, fault.New(fault.Unauthorized, "invalid signature")
	}

	wallet := strings.ToLower(req.WalletAddress)
	u, err := s.users.GetByWallet(ctx, wallet)
	if errors.Is(err, user.ErrNotFound) {
		u, err = s.users.Create(ctx, user.CreateParams{
			WalletAddress: &wallet,
			AccountType:   user.AccountCustomer,
			Role:          user.RoleCustomer,
		})
	}
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.generateToken(wallet, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: u}, nil
}

// Me resolves the profile behind an authenticated identifier.
func (s *Service) Me(ctx context.Context, identifier string) (user.User, error) {
	return s.users.FindByIdentifier(ctx, identifier)
}

// VerifyToken validates a session token and returns the opaque identifier it
// was issued for.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fault.Wrap(fault.Unauthorized, err, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fault.New(fault.Unauthorized, "invalid token")
	}
	identifier, ok := claims["sub"].(string)
	if !ok || identifier == "" {
		return "", fault.New(fault.Unauthorized, "invalid subject in token")
	}
	return identifier, nil
}

// generateToken creates a session token bound to the opaque identifier.
func (s *Service) generateToken(identifier string, role user.Role) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  strings.ToLower(identifier),
		"role": string(role),
		"exp":  now.Add(24 * time.Hour).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

func newPseudoWallet() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate pseudo wallet: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}

func accountType(raw string) user.AccountType {
	if user.AccountType(raw) == user.AccountGigWorker {
		return user.AccountGigWorker
	}
	return user.AccountCustomer
}

func roleFor(raw string) user.Role {
	if user.AccountType(raw) == user.AccountGigWorker {
		return user.RoleGigWorker
	}
	return user.RoleCustomer
}
