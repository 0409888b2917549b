package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email,max=120"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	InvitationToken string `json:"invitation_token"`
}

type ProfileUpdate struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=120"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type AccountService struct {
	db             *gorm.DB
	userRepo       repositories.UserRepositoryImpl
	invitationRepo repositories.InvitationRepositoryImpl
	sender         EmailSender
	appName        string
	metrics        *metrics.Metrics
	log            *zap.Logger
	now            Clock
}

func NewAccountService(
	db *gorm.DB,
	userRepo repositories.UserRepositoryImpl,
	invitationRepo repositories.InvitationRepositoryImpl,
	sender EmailSender,
	appName string,
	m *metrics.Metrics,
	log *zap.Logger,
	now Clock,
) *AccountService {
	return &AccountService{
		db:             db,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		sender:         sender,
		appName:        appName,
		metrics:        m,
		log:            log,
		now:            defaultClock(now),
	}
}

func (s *AccountService) ensureAvailable(ctx context.Context, users repositories.UserRepositoryImpl, username, email, exceptID string) error {
	if email != "" {
		existing, err := users.FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil && existing.ID != exceptID {
			return ErrEmailRegistered
		}
	}
	if username != "" {
		existing, err := users.FindByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if existing != nil && existing.ID != exceptID {
			return ErrUsernameTaken
		}
	}
	return nil
}

// Register creates a customer account, or an account with the invited role
// when a valid invitation token is supplied. The token is consumed in the
// same transaction that creates the user.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return nil, NewValidationError("", "username and email are required")
	}
	if err := validateNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: req.Password,
		Role:     models.RoleCustomer,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		var invitation *models.Invitation
		if req.InvitationToken != "" {
			invitations := s.invitationRepo.WithTx(tx)
			inv, err := invitations.FindByToken(ctx, req.InvitationToken)
			if err != nil {
				return err
			}
			if inv == nil || !inv.IsValidAt(s.now()) {
				return ErrInvalidInvitation
			}
			if inv.Email != email {
				return NewValidationError("email", "must match the invited address")
			}
			invitation = inv
			user.Role = inv.Role
		}

		if err := s.ensureAvailable(ctx, users, username, email, ""); err != nil {
			return err
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}

		if invitation != nil {
			consumed, err := s.invitationRepo.WithTx(tx).MarkUsed(ctx, invitation.ID)
			if err != nil {
				return err
			}
			if !consumed {
				return ErrInvalidInvitation
			}
		}
		return nil
	})
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) || errors.Is(err, ErrInvalidInvitation) ||
			errors.Is(err, ErrEmailRegistered) || errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", user.Role))

	mailErr := s.sender.SendHTMLEmail(user.Email, fmt.Sprintf("Welcome to %s", s.appName), BuildWelcomeEmailBody(s.appName, user.Username, s.now()))
	s.metrics.EmailSent("welcome", mailErr)
	if mailErr != nil {
		s.log.Warn("failed to send welcome email", zap.String("user_id", user.ID), zap.Error(mailErr))
	}
	return user, nil
}

// CreateAdmin bootstraps an administrator without an invitation.
func (s *AccountService) CreateAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return nil, NewValidationError("", "username and email are required")
	}
	if err := validateNewPassword(password, password); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, s.userRepo, username, email, ""); err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Email: email, Password: password, Role: models.RoleAdmin}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, nil
}

func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		s.metrics.AuthAttempt(false)
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !PasswordMatches(user.Password, password) {
		s.metrics.AuthAttempt(false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.AuthAttempt(true)
	return user, nil
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var username, email string
	if update.Username != nil {
		username = strings.TrimSpace(*update.Username)
		if username == "" {
			return nil, NewValidationError("username", "must not be empty")
		}
	}
	if update.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*update.Email))
		if email == "" {
			return nil, NewValidationError("email", "must not be empty")
		}
	}
	if err := s.ensureAvailable(ctx, s.userRepo, username, email, user.ID); err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !PasswordMatches(user.Password, req.CurrentPassword) {
		return NewValidationError("current_password", "is incorrect")
	}
	if err := validateNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *AccountService) ListUsers(ctx context.Context, page, perPage int) ([]models.User, repositories.Pagination, error) {
	users, pagination, err := s.userRepo.List(ctx, page, perPage)
	if err != nil {
		return nil, repositories.Pagination{}, fmt.Errorf("failed to list users: %w", err)
	}
	return users, pagination, nil
}

func (s *AccountService) UserStats(ctx context.Context) (repositories.UserStats, error) {
	stats, err := s.userRepo.Stats(ctx)
	if err != nil {
		return repositories.UserStats{}, fmt.Errorf("failed to compute user stats: %w", err)
	}
	return stats, nil
}
