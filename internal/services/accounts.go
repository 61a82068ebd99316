package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/alienworld1/data-dex/internal/models"
	"github.com/alienworld1/data-dex/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles gateway accounts. Every account is assigned a ledger
// address at registration; the ledger itself never sees emails or passwords.
type AccountService struct {
	db          *storage.DB
	adminEmails map[string]bool
}

// NewAccountService creates a new account service. adminEmails lists accounts
// that act for the platform admin address.
func NewAccountService(db *storage.DB, adminEmails []string) *AccountService {
	set := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		set[e] = true
	}
	return &AccountService{db: db, adminEmails: set}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Token   string `json:"token"`
}

// Register creates a new account with a freshly generated ledger address.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)",
		req.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	address, err := NewAddress()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Address:      address,
		IsAdmin:      s.adminEmails[req.Email],
	}

	_, err = s.db.Pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, address, is_admin)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.PasswordHash, user.Address, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates an account.
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx,
		"SELECT id, email, password_hash, address, is_admin FROM users WHERE email = $1",
		req.Email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Address, &user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &user, nil
}

// GetUser retrieves an account by id.
func (s *AccountService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx,
		"SELECT id, email, address, is_admin, created_at, updated_at FROM users WHERE id = $1",
		userID).Scan(&user.ID, &user.Email, &user.Address, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return &user, nil
}

// NewAddress generates a fresh ledger address: 20 random bytes, hex encoded
// with a 0x prefix.
func NewAddress() (models.Address, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate address: %w", err)
	}
	return "0x" + hex.EncodeToString(raw), nil
}
