package affiliates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
)

// Repository handles affiliate commission persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to commission operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx persists a commission row inside the transaction.
func (r *Repository) CreateTx(tx *gorm.DB, commission *models.AffiliateCommission) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if commission == nil {
		return fmt.Errorf("commission is required")
	}
	return tx.Create(commission).Error
}

// ListByAffiliate returns the affiliate's commissions, newest first.
func (r *Repository) ListByAffiliate(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateCommission, error) {
	var rows []models.AffiliateCommission
	if err := r.db.WithContext(ctx).
		Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumAccruedCents totals the affiliate's unpaid commissions per currency.
func (r *Repository) SumAccruedCents(ctx context.Context, affiliateID uuid.UUID, currency enums.Currency) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.AffiliateCommission{}).
		Select("COALESCE(SUM(commission_cents), 0)").
		Where("affiliate_id = ? AND currency = ? AND status = ?", affiliateID, currency, enums.CommissionStatusAccrued).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// MarkPaid settles a commission.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.AffiliateCommission{}).
		Where("id = ? AND status = ?", id, enums.CommissionStatusAccrued).
		Update("status", enums.CommissionStatusPaid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
