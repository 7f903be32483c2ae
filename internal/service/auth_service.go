package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"socialhub/internal/database"
	"socialhub/internal/mail"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
	"socialhub/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Token issuer and audience checked on every request.
const (
	TokenIssuer   = "socialhub-api"
	TokenAudience = "socialhub-client"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// AuthConfig holds the settings AuthService needs from the application config.
type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	VerificationTTL time.Duration
	PublicBaseURL   string
}

// Claims are the JWT claims issued at login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid subject")
	}
	return uint(id), nil
}

// SignupInput is the registration payload.
type SignupInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService handles registration, login, token revocation and email verification.
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.VerificationTokenRepository
	tx        database.Transactor
	mailer    mail.Sender
	rdb       *redis.Client
	cfg       AuthConfig
	now       func() time.Time
}

// NewAuthService returns a new AuthService. rdb may be nil, which disables revocation.
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.VerificationTokenRepository,
	tx database.Transactor,
	mailer mail.Sender,
	rdb *redis.Client,
	cfg AuthConfig,
) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 48 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tx:        tx,
		mailer:    mailer,
		rdb:       rdb,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Signup registers a user, issues a verification token and mails it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (_ *AuthResult, err error) {
	ctx, end := observability.StartServiceSpan(ctx, "AuthService", "Signup")
	defer func() { end(err) }()

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("User already exists")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	var vt *models.VerificationToken
	err = withinTx(ctx, s.tx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		var err error
		vt, err = s.issueVerificationToken(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sendVerification(ctx, user, vt)

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	observability.RecordEvent("user_signed_up")
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Logout revokes the token identified by claims until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return models.NewValidationError("Token has no ID")
	}
	if s.rdb == nil {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, blacklistKey(claims.ID), "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ParseToken validates signature, issuer, audience, expiry and revocation.
func (s *AuthService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.JWTSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, models.NewUnauthorizedError("Invalid token subject")
	}

	if s.rdb != nil && claims.ID != "" {
		n, err := s.rdb.Exists(ctx, blacklistKey(claims.ID)).Result()
		if err == nil && n > 0 {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}
	return claims, nil
}

// VerifyEmail consumes a verification token and marks its user verified.
// An expired token is deleted and reported as a validation error.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, models.NewValidationError("Verification token is required")
	}

	vt, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if vt.Expired(s.now()) {
		if err := s.tokenRepo.Delete(ctx, vt.ID); err != nil {
			return nil, err
		}
		return nil, models.NewValidationError("Verification token has expired")
	}

	var user *models.User
	err = withinTx(ctx, s.tx, func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, vt.UserID)
		if err != nil {
			return err
		}
		user.EmailVerified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		return s.tokenRepo.DeleteByUser(ctx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResendVerification issues a fresh token for an unverified address.
// Unknown addresses succeed silently so the endpoint does not reveal accounts.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	if user.EmailVerified {
		return models.NewValidationError("Email is already verified")
	}

	var vt *models.VerificationToken
	err = withinTx(ctx, s.tx, func(ctx context.Context) error {
		if err := s.tokenRepo.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		var err error
		vt, err = s.issueVerificationToken(ctx, user.ID)
		return err
	})
	if err != nil {
		return err
	}
	s.sendVerification(ctx, user, vt)
	return nil
}

func (s *AuthService) issueVerificationToken(ctx context.Context, userID uint) (*models.VerificationToken, error) {
	vt := &models.VerificationToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.cfg.VerificationTTL).UTC(),
	}
	if err := s.tokenRepo.Create(ctx, vt); err != nil {
		return nil, err
	}
	return vt, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User, vt *models.VerificationToken) {
	if s.mailer == nil || vt == nil {
		return
	}
	msg := mail.VerificationMessage(user.Email, user.Username, s.cfg.PublicBaseURL, vt.Token)
	if err := s.mailer.Send(ctx, msg); err != nil {
		observability.LogAsyncOperationError(ctx, "send_verification_mail", err, slog.Uint64("user_id", uint64(user.ID)))
	}
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", models.NewInternalError(errors.New("JWT secret not configured"))
	}
	now := s.now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}
