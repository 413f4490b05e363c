// services/balance_service.go
package services

import (
	"errors"
	"fmt"

	"crypto-wallet-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BalanceService struct {
	DB     *gorm.DB
	Tokens *TokenService
}

func NewBalanceService(db *gorm.DB, tokens *TokenService) *BalanceService {
	return &BalanceService{DB: db, Tokens: tokens}
}

// creditBalance applies a token/USD increment to the (user, token) balance
// row, creating it on first credit. Increments run as SQL expressions so
// approvals for the same user compose under concurrency. Callers must pass
// the surrounding transaction.
func creditBalance(tx *gorm.DB, userID, tokenConfigID string, tokenAmount, usdAmount decimal.Decimal) error {
	res := tx.Model(&models.UserBalance{}).
		Where("user_id = ? AND token_config_id = ?", userID, tokenConfigID).
		Updates(map[string]interface{}{
			"balance":   gorm.Expr("balance + ?", tokenAmount),
			"usd_value": gorm.Expr("usd_value + ?", usdAmount),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to credit balance: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	row := &models.UserBalance{
		ID:            uuid.NewString(),
		UserID:        userID,
		TokenConfigID: tokenConfigID,
		Balance:       tokenAmount,
		USDValue:      usdAmount,
	}
	if err := tx.Create(row).Error; err != nil {
		// A concurrent first credit may have created the row between the
		// update and here; the unique index surfaces that and the caller's
		// transaction retries or fails whole.
		return fmt.Errorf("failed to create balance row: %w", err)
	}
	return nil
}

// GetBalance returns the current balance row for a user/token pair, or a
// zero-valued balance if none exists yet. Reads never create rows.
func (s *BalanceService) GetBalance(userID, tokenConfigID string) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := s.DB.Where("user_id = ? AND token_config_id = ?", userID, tokenConfigID).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserBalance{
			UserID:        userID,
			TokenConfigID: tokenConfigID,
			Balance:       decimal.Zero,
			USDValue:      decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return &balance, nil
}

// GetTransactions returns all ledger entries for a user, newest first.
func (s *BalanceService) GetTransactions(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// --- Handlers ---

// GetTokenBalance handles GET /api/user/token/balance
func (s *BalanceService) GetTokenBalance(c *fiber.Ctx) error {
	user, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	native, err := s.Tokens.NativeToken(s.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "no native token configured"})
	}

	balance, err := s.GetBalance(user.ID, native.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{
		"balance":  balance.Balance,
		"usdValue": balance.USDValue,
	})
}

// ListTransactions handles GET /api/transactions
func (s *BalanceService) ListTransactions(c *fiber.Ctx) error {
	user, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	transactions, err := s.GetTransactions(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(transactions)
}
