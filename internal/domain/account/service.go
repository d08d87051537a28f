// internal/domain/account/service.go
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/order"
	"github.com/your-org/commerce-core/internal/pkg/auth"
)

// Service handles registration, login, token refresh, and guest order
// claims. Login and registration fold the session's guest cart into the
// account's cart as a side effect.
type Service struct {
	repo      Repository
	carts     *cart.Service
	orders    *order.Service
	claims    order.ClaimStore
	passwords *auth.PasswordManager
	tokens    *auth.JWTManager
	config    *config.Config
	logger    *logrus.Logger
}

// NewService creates a new account service
func NewService(repo Repository, carts *cart.Service, orders *order.Service, claims order.ClaimStore, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		repo:      repo,
		carts:     carts,
		orders:    orders,
		claims:    claims,
		passwords: auth.NewPasswordManager(cfg),
		tokens:    auth.NewJWTManager(cfg),
		config:    cfg,
		logger:    logger,
	}
}

// RegisterRequest represents account registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
}

// LoginRequest represents account login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ClaimOrderRequest carries a guest-order claim token together with the
// password for the account that will own the order. For an email that
// already has an account the password must match it.
type ClaimOrderRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Account      *Account          `json:"account"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresIn    int64             `json:"expires_in"`
	CartMerge    *cart.MergeResult `json:"cart_merge,omitempty"`
}

// Register creates a new customer account and signs it in. The guest
// cart bound to sessionID, if any, is merged into the new account's
// cart; a merge failure is logged and does not fail the registration.
func (s *Service) Register(ctx context.Context, req *RegisterRequest, sessionID string) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.recordLogin(ctx, account)
	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"email":      account.Email,
	}).Info("Account registered")

	resp, err := s.issueTokens(account)
	if err != nil {
		return nil, err
	}
	resp.CartMerge = s.mergeCart(ctx, sessionID, account.ID)
	return resp, nil
}

// Login authenticates an account by email and password. Every failure
// mode returns ErrInvalidCredentials so callers cannot probe which
// emails are registered.
func (s *Service) Login(ctx context.Context, req *LoginRequest, sessionID string) (*AuthResponse, error) {
	account, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := s.passwords.VerifyPassword(req.Password, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.recordLogin(ctx, account)

	resp, err := s.issueTokens(account)
	if err != nil {
		return nil, err
	}
	resp.CartMerge = s.mergeCart(ctx, sessionID, account.ID)
	return resp, nil
}

// Refresh exchanges a refresh token for a new access token. Scope and
// permissions are re-resolved from the account, so a permission change
// takes effect at the next refresh without reissuing refresh tokens.
// With rotation enabled a new refresh token replaces the old one.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	account, err := s.repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	resp, err := s.issueTokens(account)
	if err != nil {
		return nil, err
	}
	if !s.config.JWT.RefreshTokenRotation {
		resp.RefreshToken = refreshToken
	}
	return resp, nil
}

// GetByID retrieves an account
func (s *Service) GetByID(ctx context.Context, id uint) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ClaimGuestOrder redeems an order-claim token, attaching the guest
// order to an account with the claim's email. A fresh email gets a new
// account; an existing one must prove ownership with its password.
//
// Password strength is checked before the token is redeemed, because
// redeeming burns the token. A wrong password on an existing account
// burns it too; support re-issues tokens for that case.
func (s *Service) ClaimGuestOrder(ctx context.Context, req *ClaimOrderRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	claim, err := s.claims.Redeem(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.GetByEmail(ctx, claim.Email)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		account = &Account{
			Email:        claim.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			IsActive:     true,
		}
		if err := s.repo.Create(ctx, account); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if !account.IsActive {
			return nil, ErrInvalidCredentials
		}
		if err := s.passwords.VerifyPassword(req.Password, account.PasswordHash); err != nil {
			s.logger.WithFields(logrus.Fields{
				"order_id": claim.OrderID,
				"email":    claim.Email,
			}).Warn("Order claim burned by failed password check")
			return nil, ErrInvalidCredentials
		}
	}

	if err := s.orders.AttachCustomer(ctx, claim.OrderID, account.ID); err != nil {
		return nil, err
	}

	s.recordLogin(ctx, account)
	s.logger.WithFields(logrus.Fields{
		"account_id": account.ID,
		"order_id":   claim.OrderID,
	}).Info("Guest order claimed into account")

	return s.issueTokens(account)
}

// issueTokens mints the access/refresh pair for an authenticated account
func (s *Service) issueTokens(account *Account) (*AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(account.ID, account.Email, account.Scope(), account.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &AuthResponse{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// recordLogin stamps LastLoginAt; the timestamp is advisory and a write
// failure never blocks the sign-in
func (s *Service) recordLogin(ctx context.Context, account *Account) {
	now := time.Now().UTC()
	account.LastLoginAt = &now
	if err := s.repo.Update(ctx, account); err != nil {
		s.logger.WithFields(logrus.Fields{
			"account_id": account.ID,
			"error":      err.Error(),
		}).Warn("Failed to record login time")
	}
}

// mergeCart folds the session's guest cart into the account's cart.
// Merge failures are reported to the caller as a missing merge result,
// never as a failed sign-in.
func (s *Service) mergeCart(ctx context.Context, sessionID string, accountID uint) *cart.MergeResult {
	result, err := s.carts.MergeOnLogin(ctx, sessionID, accountID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Cart merge on login failed")
		return nil
	}
	return result
}
