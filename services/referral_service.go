// services/referral_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"crypto-wallet-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var commissionRate = decimal.RequireFromString(models.ReferralCommissionRate)

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// AccrueCommission posts the referrer's one-time commission for a referred
// user's approved deposit. It must be called inside the approval transaction
// so the earning, balance credit and ledger entry commit (or roll back) with
// the status flip; the terminal-state rule on the deposit guarantees it runs
// at most once per deposit.
//
// Registration is expected to reject self-referrals upstream; if a violating
// row slips through anyway we log and skip rather than credit the depositor.
func (s *ReferralService) AccrueCommission(tx *gorm.DB, deposit *models.DepositRequest, depositor *models.WalletUser, priceUSD decimal.Decimal) error {
	if depositor.ReferredBy == nil || *depositor.ReferredBy == "" {
		return nil
	}
	code := *depositor.ReferredBy

	var referrer models.WalletUser
	if err := tx.First(&referrer, "referral_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Weak reference: the code may point at a user this mirror has
			// not seen. Skip rather than fail the approval.
			log.Printf("⚠️ [REFERRAL] No user holds referral code %q, skipping accrual for deposit %s", code, deposit.ID)
			return nil
		}
		return fmt.Errorf("failed to resolve referrer: %w", err)
	}
	if referrer.ID == depositor.ID {
		log.Printf("⚠️ [REFERRAL] Self-referral by user %s on deposit %s, skipping accrual", depositor.ID, deposit.ID)
		return nil
	}

	earningsAmount := deposit.Amount.Mul(commissionRate)

	earning := &models.ReferralEarning{
		ID:             uuid.NewString(),
		ReferrerID:     referrer.ID,
		ReferredUserID: depositor.ID,
		DepositID:      deposit.ID,
		DepositAmount:  deposit.Amount,
		EarningsAmount: earningsAmount,
	}
	if err := tx.Create(earning).Error; err != nil {
		return fmt.Errorf("failed to record referral earning: %w", err)
	}

	// Commission is credited at the same price the deposit itself was
	// converted with.
	tokenAmount := earningsAmount.DivRound(priceUSD, 8)
	if err := creditBalance(tx, referrer.ID, deposit.TokenConfigID, tokenAmount, earningsAmount); err != nil {
		return err
	}

	entry := &models.Transaction{
		ID:            uuid.NewString(),
		UserID:        referrer.ID,
		TokenConfigID: deposit.TokenConfigID,
		Type:          models.TransactionTypeReceive,
		Amount:        tokenAmount,
		Status:        models.TransactionStatusConfirmed,
		Description:   fmt.Sprintf("Referral commission from %s's approved deposit", depositor.Username),
		ReferenceID:   &earning.ID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record referral transaction: %w", err)
	}

	log.Printf("💸 [REFERRAL] %s earned %s USD from %s's deposit %s",
		referrer.Username, earningsAmount.StringFixed(2), depositor.Username, deposit.ID)
	return nil
}

// EarningsForUser returns a referrer's commission history, newest first.
func (s *ReferralService) EarningsForUser(userID string) ([]models.ReferralEarning, error) {
	var earnings []models.ReferralEarning
	if err := s.DB.Where("referrer_id = ?", userID).
		Order("created_at DESC").
		Find(&earnings).Error; err != nil {
		return nil, fmt.Errorf("failed to list referral earnings: %w", err)
	}
	return earnings, nil
}

// ListMyEarnings handles GET /api/user/referral-earnings
func (s *ReferralService) ListMyEarnings(c *fiber.Ctx) error {
	user, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	earnings, err := s.EarningsForUser(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(earnings)
}
