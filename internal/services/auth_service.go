package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/models"
	"github.com/sphere-events/sphere/internal/repository"
	"github.com/sphere-events/sphere/internal/rift"
)

var (
	// ErrInvalidEmail is returned when the login identifier is not an email address
	ErrInvalidEmail = errors.New("username must be a valid email address")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService bridges local user records with the Rift identity provider.
// Rift is the source of truth; the local table is a mirror kept fresh on
// every login so the rest of the application can join against users directly.
type AuthService struct {
	users    repository.UserRepository
	provider rift.Provider
	logger   *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(users repository.UserRepository, provider rift.Provider, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		provider: provider,
		logger:   logger,
	}
}

// Signup creates an account in Rift and mirrors it locally. Rift's signup
// response carries no session, so a login round trip follows immediately to
// obtain the bearer credential and wallet address.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if !emailPattern.MatchString(req.ExternalID) {
		return nil, ErrInvalidEmail
	}

	if _, err := s.users.GetByExternalID(ctx, req.ExternalID); err == nil {
		return nil, repository.ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	email := req.Email
	if email == "" {
		email = req.ExternalID
	}
	name := req.DisplayName
	if name == "" {
		name = req.ExternalID
	}

	signupResult, err := s.provider.Signup(ctx, rift.SignupParams{
		ExternalID:  req.ExternalID,
		Password:    req.Password,
		Email:       email,
		DisplayName: name,
	})
	if err != nil {
		s.logger.Error("Rift signup failed", zap.String("external_id", req.ExternalID), zap.Error(err))
		return nil, err
	}

	session, err := s.provider.Login(ctx, rift.LoginParams{
		ExternalID: req.ExternalID,
		Password:   req.Password,
	})
	if err != nil {
		s.logger.Error("Rift login after signup failed", zap.String("external_id", req.ExternalID), zap.Error(err))
		return nil, err
	}

	user := &models.User{
		ID:            uuid.New(),
		ExternalID:    req.ExternalID,
		Email:         email,
		Name:          name,
		Role:          models.RoleUser,
		RiftUserID:    signupResult.UserID,
		BearerToken:   session.AccessToken,
		WalletAddress: session.WalletAddress,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User signed up", zap.String("user_id", user.ID.String()))

	return &models.AuthResponse{
		Success:     true,
		User:        user.Public(),
		BearerToken: session.AccessToken,
	}, nil
}

// Login authenticates against Rift and refreshes the local mirror. A missing
// local record is rebuilt from Rift's view of the account rather than treated
// as fatal; an existing record gets its credential and wallet address
// overwritten unconditionally.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if !emailPattern.MatchString(req.ExternalID) {
		return nil, ErrInvalidEmail
	}

	session, err := s.provider.Login(ctx, rift.LoginParams{
		ExternalID: req.ExternalID,
		Password:   req.Password,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByExternalID(ctx, req.ExternalID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		user, err = s.recoverUser(ctx, req.ExternalID, session)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := s.users.UpdateSession(ctx, user.ID, session.AccessToken, session.WalletAddress); err != nil {
			return nil, err
		}
		user.BearerToken = session.AccessToken
		user.WalletAddress = session.WalletAddress
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &models.AuthResponse{
		Success:     true,
		User:        user.Public(),
		BearerToken: session.AccessToken,
	}, nil
}

// ResolveToken turns a bearer credential into the local user holding it.
// Token expiry is delegated entirely to Rift's own session semantics.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	return s.users.GetByBearerToken(ctx, token)
}

// recoverUser rebuilds the local mirror from Rift when the account exists
// upstream but not locally
func (s *AuthService) recoverUser(ctx context.Context, externalID string, session *rift.Session) (*models.User, error) {
	account, err := s.provider.GetUser(ctx, session.AccessToken)
	if err != nil {
		s.logger.Error("Failed to fetch Rift account for recovery", zap.String("external_id", externalID), zap.Error(err))
		return nil, err
	}

	email := account.Email
	if email == "" {
		email = externalID
	}
	accountExternalID := account.ExternalID
	if accountExternalID == "" {
		accountExternalID = externalID
	}

	user := &models.User{
		ID:            uuid.New(),
		ExternalID:    accountExternalID,
		Email:         email,
		Name:          account.DisplayName,
		Role:          models.RoleUser,
		RiftUserID:    account.ID,
		BearerToken:   session.AccessToken,
		WalletAddress: session.WalletAddress,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Recovered local record from Rift", zap.String("user_id", user.ID.String()))
	return user, nil
}
