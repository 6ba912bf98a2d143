package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

const (
	minPasswordLength = 6
	defaultResetTTL   = 60 * time.Minute
	resetTokenBytes   = 32
)

// AuthOptions tunes AuthService. Zero values fall back to defaults.
type AuthOptions struct {
	ResetTTL    time.Duration
	FrontendURL string
	BcryptCost  int
}

// AuthService implements signup, login and the password lifecycle.
type AuthService struct {
	repo     ports.UserRepository
	notifier ports.ResetNotifier
	log      zerolog.Logger
	opts     AuthOptions
	now      func() time.Time

	// dummyHash is compared against on unknown emails so a miss costs the
	// same as a wrong password.
	dummyHash []byte
}

func NewAuthService(repo ports.UserRepository, notifier ports.ResetNotifier, log zerolog.Logger, opts AuthOptions) *AuthService {
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = defaultResetTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("storefront-timing-guard"), opts.BcryptCost)
	return &AuthService{
		repo:      repo,
		notifier:  notifier,
		log:       log,
		opts:      opts,
		now:       time.Now,
		dummyHash: dummy,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := domain.NormalizeEmail(in.Email)
	if fullName == "" || email == "" {
		return nil, domain.Invalid("fullName and email are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.Invalid("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		FullName:     fullName,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleCustomer},
		Wishlist:     []domain.WishlistEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Invalid("email and password required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.log.Debug().Msg("login rejected: unknown email")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Debug().Str("user_id", user.ID).Msg("login rejected: password mismatch")
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < minPasswordLength {
		return domain.Invalid("password must be at least %d characters", minPasswordLength)
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("request reset: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("request reset: %w", err)
	}
	expiresAt := s.now().UTC().Add(s.opts.ResetTTL)
	if err := s.repo.SetPasswordReset(ctx, user.ID, hashResetToken(token), expiresAt); err != nil {
		return fmt.Errorf("request reset: store token: %w", err)
	}

	s.notifier.NotifyPasswordReset(ports.PasswordResetNotice{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Link:     s.resetLink(user.ID, token),
	})
	s.log.Info().Str("user_id", user.ID).Time("expires_at", expiresAt).Msg("password reset issued")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, userID, token, newPassword string) error {
	if userID == "" || token == "" {
		return domain.Invalid("invalid request")
	}
	if len(newPassword) < minPasswordLength {
		return domain.Invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("reset password: hash: %w", err)
	}
	if err := s.repo.ConsumePasswordReset(ctx, userID, hashResetToken(token), s.now().UTC(), string(hash)); err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Msg("password reset consumed")
	return nil
}

func (s *AuthService) resetLink(userID, token string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("id", userID)
	return strings.TrimRight(s.opts.FrontendURL, "/") + "/reset-password?" + q.Encode()
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashResetToken is what gets persisted; the raw token only travels in the link.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
