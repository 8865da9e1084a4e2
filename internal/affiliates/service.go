// Package affiliates accrues and reports referral commissions for orders
// an affiliate places on behalf of a client.
package affiliates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/config"
	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
)

type commissionRepository interface {
	CreateTx(tx *gorm.DB, commission *models.AffiliateCommission) error
	ListByAffiliate(ctx context.Context, affiliateID uuid.UUID) ([]models.AffiliateCommission, error)
	SumAccruedCents(ctx context.Context, affiliateID uuid.UUID, currency enums.Currency) (int64, error)
}

// CommissionDTO is the public projection of a commission row.
type CommissionDTO struct {
	ID              uuid.UUID              `json:"id"`
	OrderID         uuid.UUID              `json:"order_id"`
	Rate            string                 `json:"rate"`
	BaseCents       int                    `json:"base_cents"`
	CommissionCents int                    `json:"commission_cents"`
	Currency        enums.Currency         `json:"currency"`
	Status          enums.CommissionStatus `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
}

// SummaryDTO aggregates an affiliate's standing.
type SummaryDTO struct {
	Commissions     []CommissionDTO `json:"commissions"`
	AccruedUSDCents int64           `json:"accrued_usd_cents"`
	AccruedCUPCents int64           `json:"accrued_cup_cents"`
}

// Service accrues and reports commissions.
type Service interface {
	AccrueTx(tx *gorm.DB, affiliateID, orderID uuid.UUID, subtotalCents int64, currency enums.Currency) (*models.AffiliateCommission, error)
	Summary(ctx context.Context, affiliateID uuid.UUID) (*SummaryDTO, error)
}

type service struct {
	repo commissionRepository
	rate decimal.Decimal
}

// NewService builds an affiliate service; the commission rate comes from
// configuration and is parsed once at startup.
func NewService(repo commissionRepository, cfg config.AffiliateConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	rate, err := decimal.NewFromString(cfg.CommissionRate)
	if err != nil {
		return nil, fmt.Errorf("invalid commission rate %q: %w", cfg.CommissionRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("commission rate %s out of range [0,1]", rate)
	}
	return &service{repo: repo, rate: rate}, nil
}

// AccrueTx records the commission for an affiliate sale inside the order's
// transaction. The commission is rate x subtotal, rounded to the nearest
// cent; the applied rate is stored so later rate changes never rewrite
// history.
func (s *service) AccrueTx(tx *gorm.DB, affiliateID, orderID uuid.UUID, subtotalCents int64, currency enums.Currency) (*models.AffiliateCommission, error) {
	if subtotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal cannot be negative")
	}
	commissionCents := s.rate.
		Mul(decimal.NewFromInt(subtotalCents)).
		Round(0).
		IntPart()

	commission := &models.AffiliateCommission{
		OrderID:         orderID,
		AffiliateID:     affiliateID,
		Rate:            s.rate.String(),
		BaseCents:       int(subtotalCents),
		CommissionCents: int(commissionCents),
		Currency:        currency,
		Status:          enums.CommissionStatusAccrued,
	}
	if err := s.repo.CreateTx(tx, commission); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create commission")
	}
	return commission, nil
}

func (s *service) Summary(ctx context.Context, affiliateID uuid.UUID) (*SummaryDTO, error) {
	rows, err := s.repo.ListByAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
	}
	usd, err := s.repo.SumAccruedCents(ctx, affiliateID, enums.CurrencyUSD)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum usd commissions")
	}
	cup, err := s.repo.SumAccruedCents(ctx, affiliateID, enums.CurrencyCUP)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum cup commissions")
	}

	summary := &SummaryDTO{
		Commissions:     make([]CommissionDTO, 0, len(rows)),
		AccruedUSDCents: usd,
		AccruedCUPCents: cup,
	}
	for _, row := range rows {
		summary.Commissions = append(summary.Commissions, CommissionDTO{
			ID:              row.ID,
			OrderID:         row.OrderID,
			Rate:            row.Rate,
			BaseCents:       row.BaseCents,
			CommissionCents: row.CommissionCents,
			Currency:        row.Currency,
			Status:          row.Status,
			CreatedAt:       row.CreatedAt,
		})
	}
	return summary, nil
}
