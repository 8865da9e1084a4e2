package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
)

// Repository handles cart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to cart operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActiveByUser loads the user's active cart with its lines.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	var cart models.CartRecord
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateActive opens a fresh active cart for the user.
func (r *Repository) CreateActive(ctx context.Context, userID uuid.UUID, currency enums.Currency) (*models.CartRecord, error) {
	cart := models.CartRecord{
		UserID:   userID,
		Status:   enums.CartStatusActive,
		Currency: currency,
	}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// SetCurrency updates the cart's currency. Only meaningful while empty.
func (r *Repository) SetCurrency(ctx context.Context, cartID uuid.UUID, currency enums.Currency) error {
	return r.db.WithContext(ctx).Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Update("currency", currency).Error
}

// GetLineForUpdateTx loads the aggregated line for a product with a row
// lock, so concurrent adds for the same product serialize on it.
func (r *Repository) GetLineForUpdateTx(tx *gorm.DB, cartID, productID uuid.UUID) (*models.CartLine, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var line models.CartLine
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// SaveLineTx inserts or updates the aggregated line inside the transaction.
func (r *Repository) SaveLineTx(tx *gorm.DB, line *models.CartLine) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if line == nil {
		return fmt.Errorf("line is required")
	}
	return tx.Save(line).Error
}

// DeleteLine removes a product's line. Missing lines are a no-op.
func (r *Repository) DeleteLine(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartLine{}).Error
}

// DeleteAllLines empties the cart.
func (r *Repository) DeleteAllLines(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartLine{}).Error
}

// ListLines returns the cart's lines ordered by insertion time.
func (r *Repository) ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// MarkConvertedTx flips the cart to converted inside the transaction.
func (r *Repository) MarkConvertedTx(tx *gorm.DB, cartID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	res := tx.Model(&models.CartRecord{}).
		Where("id = ? AND status = ?", cartID, enums.CartStatusActive).
		Update("status", enums.CartStatusConverted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
