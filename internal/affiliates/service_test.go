package affiliates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/config"
	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
)

type stubCommissionRepo struct {
	rows []models.AffiliateCommission
}

func (r *stubCommissionRepo) CreateTx(_ *gorm.DB, commission *models.AffiliateCommission) error {
	commission.ID = uuid.New()
	r.rows = append(r.rows, *commission)
	return nil
}

func (r *stubCommissionRepo) ListByAffiliate(_ context.Context, affiliateID uuid.UUID) ([]models.AffiliateCommission, error) {
	var out []models.AffiliateCommission
	for _, row := range r.rows {
		if row.AffiliateID == affiliateID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *stubCommissionRepo) SumAccruedCents(_ context.Context, affiliateID uuid.UUID, currency enums.Currency) (int64, error) {
	var total int64
	for _, row := range r.rows {
		if row.AffiliateID == affiliateID && row.Currency == currency && row.Status == enums.CommissionStatusAccrued {
			total += int64(row.CommissionCents)
		}
	}
	return total, nil
}

func TestAccrueAppliesConfiguredRate(t *testing.T) {
	t.Parallel()

	repo := &stubCommissionRepo{}
	svc, err := NewService(repo, config.AffiliateConfig{CommissionRate: "0.10"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	affiliate := uuid.New()
	commission, err := svc.AccrueTx(&gorm.DB{}, affiliate, uuid.New(), 18000, enums.CurrencyUSD)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if commission.CommissionCents != 1800 {
		t.Fatalf("expected 1800 cents on 18000 at 10%%, got %d", commission.CommissionCents)
	}
	if commission.Rate != "0.1" {
		t.Fatalf("expected stored rate 0.1, got %s", commission.Rate)
	}
}

func TestAccrueRoundsHalfUp(t *testing.T) {
	t.Parallel()

	repo := &stubCommissionRepo{}
	svc, err := NewService(repo, config.AffiliateConfig{CommissionRate: "0.10"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	// 0.10 x 1255 = 125.5, rounds to 126.
	commission, err := svc.AccrueTx(&gorm.DB{}, uuid.New(), uuid.New(), 1255, enums.CurrencyUSD)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if commission.CommissionCents != 126 {
		t.Fatalf("expected 126 cents, got %d", commission.CommissionCents)
	}
}

func TestNewServiceRejectsBadRate(t *testing.T) {
	t.Parallel()

	if _, err := NewService(&stubCommissionRepo{}, config.AffiliateConfig{CommissionRate: "abc"}); err == nil {
		t.Fatal("expected error for malformed rate")
	}
	if _, err := NewService(&stubCommissionRepo{}, config.AffiliateConfig{CommissionRate: "1.5"}); err == nil {
		t.Fatal("expected error for rate above 1")
	}
}

func TestSummarySplitsByCurrency(t *testing.T) {
	t.Parallel()

	repo := &stubCommissionRepo{}
	svc, err := NewService(repo, config.AffiliateConfig{CommissionRate: "0.10"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	affiliate := uuid.New()
	if _, err := svc.AccrueTx(&gorm.DB{}, affiliate, uuid.New(), 10000, enums.CurrencyUSD); err != nil {
		t.Fatalf("accrue usd: %v", err)
	}
	if _, err := svc.AccrueTx(&gorm.DB{}, affiliate, uuid.New(), 50000, enums.CurrencyCUP); err != nil {
		t.Fatalf("accrue cup: %v", err)
	}

	summary, err := svc.Summary(context.Background(), affiliate)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.AccruedUSDCents != 1000 || summary.AccruedCUPCents != 5000 {
		t.Fatalf("expected 1000 USD / 5000 CUP, got %d / %d", summary.AccruedUSDCents, summary.AccruedCUPCents)
	}
	if len(summary.Commissions) != 2 {
		t.Fatalf("expected 2 commissions, got %d", len(summary.Commissions))
	}
}
