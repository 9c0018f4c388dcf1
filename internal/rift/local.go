package rift

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LocalProvider is an embedded identity provider used when no RIFT_URL is
// configured. It keeps accounts in the rift_accounts table, hashes passwords
// with bcrypt and mints HS256 access tokens, so the full auth flow works
// offline with the same Provider contract as the hosted service.
type LocalProvider struct {
	db        *sql.DB
	jwtSecret []byte
	jwtExpiry time.Duration
	logger    *zap.Logger
}

// NewLocalProvider creates an embedded provider backed by the given database
func NewLocalProvider(db *sql.DB, jwtSecret string, jwtExpiry time.Duration, logger *zap.Logger) *LocalProvider {
	return &LocalProvider{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
		logger:    logger,
	}
}

// Signup creates a local account. Like the hosted service, it returns no
// session; callers log in afterwards to obtain one.
func (p *LocalProvider) Signup(ctx context.Context, params SignupParams) (*SignupResult, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rift_accounts WHERE external_id = $1)`,
		params.ExternalID,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		p.logger.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	id := uuid.New()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO rift_accounts (id, external_id, email, display_name, hashed_password, wallet_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		params.ExternalID,
		params.Email,
		params.DisplayName,
		string(hashedPassword),
		deriveWalletAddress(params.ExternalID),
		time.Now(),
	)
	if err != nil {
		p.logger.Error("Failed to create account", zap.Error(err))
		return nil, err
	}

	return &SignupResult{UserID: id.String()}, nil
}

// Login verifies the password and mints a fresh access token
func (p *LocalProvider) Login(ctx context.Context, params LoginParams) (*Session, error) {
	var (
		id             uuid.UUID
		hashedPassword string
		walletAddress  string
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT id, hashed_password, wallet_address FROM rift_accounts WHERE external_id = $1`,
		params.ExternalID,
	).Scan(&id, &hashedPassword, &walletAddress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(params.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := p.mintToken(id)
	if err != nil {
		p.logger.Error("Failed to mint access token", zap.Error(err))
		return nil, err
	}

	return &Session{
		AccessToken:   token,
		WalletAddress: walletAddress,
	}, nil
}

// GetUser validates an access token and returns the account behind it
func (p *LocalProvider) GetUser(ctx context.Context, accessToken string) (*Account, error) {
	parsed, err := jwt.Parse(accessToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrAccountNotFound
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrAccountNotFound
	}
	accountID, _ := claims["user_id"].(string)
	if accountID == "" {
		return nil, ErrAccountNotFound
	}

	var account Account
	err = p.db.QueryRowContext(ctx,
		`SELECT id, external_id, email, display_name FROM rift_accounts WHERE id = $1`,
		accountID,
	).Scan(&account.ID, &account.ExternalID, &account.Email, &account.DisplayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return &account, nil
}

func (p *LocalProvider) mintToken(accountID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": accountID.String(),
		"exp":     time.Now().Add(p.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
		"jti":     uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.jwtSecret)
}

// deriveWalletAddress gives each local account a stable pseudo wallet address
func deriveWalletAddress(externalID string) string {
	sum := sha256.Sum256([]byte(externalID))
	return "0x" + hex.EncodeToString(sum[:20])
}
