package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cineverse/internal/metrics"
	"cineverse/internal/models"
	"cineverse/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	FindByID(ctx context.Context, id string) (*models.UserProfile, error)
	Insert(ctx context.Context, u *models.UserProfile) error
	SyncProfile(ctx context.Context, p models.ProfileSync) (*models.UserProfile, error)
	SetRole(ctx context.Context, id, role string) error
}

// Revoker is the token denylist.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims are carried by every access token we issue.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// idTokenClaims is the subset of an identity provider's ID token we read.
type idTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users     UserStore
	revoked   Revoker
	jwtSecret []byte
	ttl       time.Duration

	idpIssuer string
	idpKey    *rsa.PublicKey
}

func NewAuthService(users UserStore, revoked Revoker, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{users: users, revoked: revoked, jwtSecret: []byte(secret), ttl: ttl}
}

// WithIdentityProvider enables federated sign-in with ID tokens signed by
// the PEM encoded RSA key at keyFile.
func (s *AuthService) WithIdentityProvider(issuer, keyFile string) error {
	pem, err := os.ReadFile(keyFile)
	if err != nil {
		return fmt.Errorf("read identity provider key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return fmt.Errorf("parse identity provider key: %w", err)
	}
	s.idpIssuer = issuer
	s.idpKey = key
	return nil
}

// Session is what a successful sign-in returns.
type Session struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      *models.UserProfile `json:"user"`
}

// ================== REGISTER & LOGIN ==================

type RegisterInput struct {
	DisplayName string `json:"displayName" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates a password account. New accounts are always plain users.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &models.UserProfile{
		ID:           primitive.NewObjectID().Hex(),
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		Role:         models.RoleUser,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		metrics.RecordAuthAttempt("password", false)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		metrics.RecordAuthAttempt("password", false)
		return nil, ErrInvalidCredentials
	}

	metrics.RecordAuthAttempt("password", true)
	return s.issue(u)
}

// Federated signs in with an identity provider ID token. The profile is
// created with role user on first sign-in and merged afterwards; the role
// is never taken from the token.
func (s *AuthService) Federated(ctx context.Context, idToken string) (*Session, error) {
	if s.idpKey == nil {
		return nil, ErrFederationDisabled
	}

	var c idTokenClaims
	_, err := jwt.ParseWithClaims(idToken, &c,
		func(*jwt.Token) (any, error) { return s.idpKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.idpIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || c.Subject == "" {
		metrics.RecordAuthAttempt("federated", false)
		return nil, ErrInvalidToken
	}

	p := profileFromIDToken(&c)

	// An account registered with the same email is the same person: merge
	// into it so the unique email index holds and its role is kept.
	if p.Email != "" {
		existing, err := s.users.FindByEmail(ctx, p.Email)
		if err != nil {
			return nil, fmt.Errorf("find profile: %w", err)
		}
		if existing != nil {
			p.ID = existing.ID
		}
	}

	u, err := s.users.SyncProfile(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		metrics.RecordAuthAttempt("federated", false)
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("sync profile: %w", err)
	}
	metrics.RecordAuthAttempt("federated", true)
	return s.issue(u)
}

func profileFromIDToken(c *idTokenClaims) models.ProfileSync {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name, _, _ = strings.Cut(c.Email, "@")
	}
	return models.ProfileSync{
		ID:          c.Subject,
		DisplayName: name,
		Email:       strings.ToLower(c.Email),
		PhotoURL:    c.Picture,
	}
}

func (s *AuthService) issue(u *models.UserProfile) (*Session, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &Session{Token: signed, ExpiresAt: exp.UTC(), User: u}, nil
}

// ================== TOKENS ==================

// Authenticate verifies one of our access tokens and checks it was not
// revoked by a logout.
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(tokenStr, &c,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || c.Subject == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return &c, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, c *Claims) error {
	if c == nil || c.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, c.ID, time.Until(c.ExpiresAt.Time))
}

// ================== PROFILES ==================

func (s *AuthService) Profile(ctx context.Context, uid string) (*models.UserProfile, error) {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// SetRole is the admin-only way to grant or drop admin rights.
func (s *AuthService) SetRole(ctx context.Context, uid, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return ErrInvalidRole
	}
	err := s.users.SetRole(ctx, uid, role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrUserNotFound
	}
	return err
}
