package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/utils/tokens"
	"go.uber.org/zap"
)

const (
	VerificationCodeLength     = 6
	DefaultVerificationCodeTTL = 10 * time.Minute
)

type VerificationService struct {
	userRepo repositories.UserRepositoryImpl
	sender   EmailSender
	appName  string
	ttl      time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      Clock
}

func NewVerificationService(
	userRepo repositories.UserRepositoryImpl,
	sender EmailSender,
	appName string,
	ttl time.Duration,
	m *metrics.Metrics,
	log *zap.Logger,
	now Clock,
) *VerificationService {
	if ttl <= 0 {
		ttl = DefaultVerificationCodeTTL
	}
	return &VerificationService{
		userRepo: userRepo,
		sender:   sender,
		appName:  appName,
		ttl:      ttl,
		metrics:  m,
		log:      log,
		now:      defaultClock(now),
	}
}

// RequestCode stores a fresh code on the account and emails it. Unknown
// addresses succeed without doing anything so callers cannot probe for accounts.
func (s *VerificationService) RequestCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return NewValidationError("email", "is required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		s.log.Info("verification code requested for unknown email")
		return nil
	}

	code, err := tokens.GenerateNumericCode(VerificationCodeLength)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.ttl)
	if err := s.userRepo.SaveVerificationCode(ctx, user.ID, code, expiresAt); err != nil {
		return fmt.Errorf("failed to save verification code: %w", err)
	}

	body := BuildVerificationEmailBody(s.appName, code, int(s.ttl/time.Minute), s.now())
	err = s.sender.SendHTMLEmail(user.Email, fmt.Sprintf("%s - verification code", s.appName), body)
	s.metrics.EmailSent("verification", err)
	if err != nil {
		s.log.Error("failed to send verification code", zap.String("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

func (s *VerificationService) check(ctx context.Context, email, code string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, ErrInvalidCode
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || user.VerificationCode == nil || user.VerificationCodeExpiresAt == nil {
		return nil, ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(*user.VerificationCode), []byte(code)) != 1 {
		return nil, ErrInvalidCode
	}
	if tokens.IsExpired(*user.VerificationCodeExpiresAt, s.now()) {
		return nil, ErrInvalidCode
	}
	return user, nil
}

// VerifyCode checks a code without consuming it.
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string) error {
	_, err := s.check(ctx, email, code)
	return err
}

func (s *VerificationService) ResetPassword(ctx context.Context, email, code, password, confirm string) error {
	user, err := s.check(ctx, email, code)
	if err != nil {
		return err
	}
	if err := validateNewPassword(password, confirm); err != nil {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.userRepo.ClearVerificationCode(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to clear verification code: %w", err)
	}

	s.log.Info("password reset", zap.String("user_id", user.ID))
	return nil
}
