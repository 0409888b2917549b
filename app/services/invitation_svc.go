package services

import (
	"context"
	"errors"
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
	InvitationTokenBytes = 32
	DefaultInvitationTTL = 7 * 24 * time.Hour
)

type InviteRequest struct {
	Email   string `json:"email" validate:"required,email,max=120"`
	Role    string `json:"role" validate:"omitempty,oneof=admin customer"`
	Message string `json:"message" validate:"max=1000"`
}

type InvitationService struct {
	invitationRepo repositories.InvitationRepositoryImpl
	userRepo       repositories.UserRepositoryImpl
	sender         EmailSender
	appName        string
	appURL         string
	ttl            time.Duration
	metrics        *metrics.Metrics
	log            *zap.Logger
	now            Clock
}

func NewInvitationService(
	invitationRepo repositories.InvitationRepositoryImpl,
	userRepo repositories.UserRepositoryImpl,
	sender EmailSender,
	appName, appURL string,
	ttl time.Duration,
	m *metrics.Metrics,
	log *zap.Logger,
	now Clock,
) *InvitationService {
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		sender:         sender,
		appName:        appName,
		appURL:         strings.TrimRight(appURL, "/"),
		ttl:            ttl,
		metrics:        m,
		log:            log,
		now:            defaultClock(now),
	}
}

func (s *InvitationService) RegistrationLink(token string) string {
	return fmt.Sprintf("%s/register/%s", s.appURL, token)
}

// Issue creates an invitation and emails its link. The invitation is
// discarded again when the email cannot be delivered.
func (s *InvitationService) Issue(ctx context.Context, req InviteRequest) (*models.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, NewValidationError("email", "is required")
	}
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.IsValidRole(role) {
		return nil, NewValidationError("role", "must be admin or customer")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailRegistered
	}

	now := s.now()
	pending, err := s.invitationRepo.FindPendingByEmail(ctx, email, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending != nil {
		return nil, ErrInvitationPending
	}

	token, err := tokens.GenerateURLSafe(InvitationTokenBytes)
	if err != nil {
		return nil, err
	}

	invitation := &models.Invitation{
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	body := BuildInvitationEmailBody(s.appName, role, s.RegistrationLink(token), req.Message, invitation.ExpiresAt)
	err = s.sender.SendHTMLEmail(email, fmt.Sprintf("Invitation to join %s", s.appName), body)
	s.metrics.EmailSent("invitation", err)
	if err != nil {
		s.log.Error("failed to send invitation email", zap.String("email", email), zap.Error(err))
		if delErr := s.invitationRepo.Delete(ctx, invitation.ID); delErr != nil {
			s.log.Error("failed to discard undelivered invitation", zap.String("invitation_id", invitation.ID), zap.Error(delErr))
		}
		if errors.Is(err, ErrEmailDelivery) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	s.metrics.InvitationIssued()
	s.log.Info("invitation issued", zap.String("email", email), zap.String("role", role))
	return invitation, nil
}

// Validate returns the invitation behind token when it can still be redeemed.
func (s *InvitationService) Validate(ctx context.Context, token string) (*models.Invitation, error) {
	if token == "" {
		return nil, ErrInvalidInvitation
	}
	invitation, err := s.invitationRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}
	if invitation == nil || !invitation.IsValidAt(s.now()) {
		return nil, ErrInvalidInvitation
	}
	return invitation, nil
}

func (s *InvitationService) List(ctx context.Context, page, perPage int) ([]models.Invitation, repositories.Pagination, error) {
	invitations, pagination, err := s.invitationRepo.List(ctx, page, perPage)
	if err != nil {
		return nil, repositories.Pagination{}, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, pagination, nil
}

func (s *InvitationService) Revoke(ctx context.Context, id string) error {
	if err := s.invitationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}
	return nil
}
