package repositories

import (
	"context"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"gorm.io/gorm"
)

type InvitationRepositoryImpl interface {
	WithTx(tx *gorm.DB) InvitationRepositoryImpl
	Create(ctx context.Context, invitation *models.Invitation) error
	FindByToken(ctx context.Context, token string) (*models.Invitation, error)
	FindPendingByEmail(ctx context.Context, email string, now time.Time) (*models.Invitation, error)
	MarkUsed(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, perPage int) ([]models.Invitation, Pagination, error)
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepositoryImpl {
	return &invitationRepository{db}
}

func (r *invitationRepository) WithTx(tx *gorm.DB) InvitationRepositoryImpl {
	return &invitationRepository{tx}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return firstOrNil[models.Invitation](r.db.WithContext(ctx), "token = ?", token)
}

func (r *invitationRepository) FindPendingByEmail(ctx context.Context, email string, now time.Time) (*models.Invitation, error) {
	return firstOrNil[models.Invitation](r.db.WithContext(ctx), "email = ? AND used = ? AND expires_at > ?", email, false, now)
}

// MarkUsed flips used only when it is still false and reports whether this call did it.
func (r *invitationRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Invitation{}, "id = ?", id).Error
}

func (r *invitationRepository) List(ctx context.Context, page, perPage int) ([]models.Invitation, Pagination, error) {
	page, perPage = NormalizePage(page, perPage)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Invitation{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var invitations []models.Invitation
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset(page, perPage)).
		Find(&invitations).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return invitations, NewPagination(page, perPage, total), nil
}
