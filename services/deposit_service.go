// services/deposit_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"crypto-wallet-system/models"
	"crypto-wallet-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Error taxonomy surfaced by the wallet core. Handlers map these onto HTTP
// status codes via errorStatus.
var (
	ErrValidation             = errors.New("validation failed")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidStateTransition = errors.New("invalid deposit state transition")
	ErrDepositNotFound        = errors.New("deposit not found")
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrDepositNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidStateTransition):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

type DepositService struct {
	DB        *gorm.DB
	Tokens    *TokenService
	Referrals *ReferralService
}

func NewDepositService(db *gorm.DB, tokens *TokenService, referrals *ReferralService) *DepositService {
	return &DepositService{DB: db, Tokens: tokens, Referrals: referrals}
}

// CreateDepositRequest records a user's claim of having sent funds. The
// request starts pending with no balance or transaction side effects.
func (s *DepositService) CreateDepositRequest(user *models.WalletUser, amount decimal.Decimal, transactionHash, paymentMethod string) (*models.DepositRequest, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	}
	if transactionHash == "" {
		return nil, fmt.Errorf("%w: transaction_hash is required", ErrValidation)
	}

	native, err := s.Tokens.NativeToken(s.DB)
	if err != nil {
		return nil, err
	}

	deposit := &models.DepositRequest{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		TokenConfigID:   native.ID,
		Amount:          amount,
		TransactionHash: transactionHash,
		PaymentMethod:   paymentMethod,
		Status:          models.DepositStatusPending,
	}
	if err := s.DB.Create(deposit).Error; err != nil {
		log.Printf("DB Error creating deposit request: %v", err)
		return nil, fmt.Errorf("failed to create deposit request: %w", err)
	}
	return deposit, nil
}

// SetDepositStatus moves a deposit out of pending. Only admins may call it;
// approved and rejected are terminal, so only the first caller to observe
// pending wins — everyone else gets ErrInvalidStateTransition and no row is
// touched. On approval the balance credit, transaction append and referral
// accrual all commit in the same database transaction as the status flip, so
// a failed credit leaves the deposit pending.
func (s *DepositService) SetDepositStatus(depositID string, newStatus models.DepositStatus, adminNotes string, actingAdmin *models.WalletUser) (*models.DepositRequest, error) {
	if actingAdmin == nil || !actingAdmin.IsAdmin {
		return nil, fmt.Errorf("%w: admin privileges required", ErrUnauthorized)
	}
	if newStatus != models.DepositStatusApproved && newStatus != models.DepositStatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}

	var deposit models.DepositRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Compare-and-swap keyed on the current status. Under concurrent
		// admin retries the row lock taken here serializes callers; losers
		// see RowsAffected == 0.
		res := tx.Model(&models.DepositRequest{}).
			Where("id = ? AND status = ?", depositID, models.DepositStatusPending).
			Updates(map[string]interface{}{
				"status":      newStatus,
				"admin_notes": adminNotes,
				"reviewed_by": actingAdmin.ID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update deposit status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var existing models.DepositRequest
			if err := tx.First(&existing, "id = ?", depositID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrDepositNotFound
				}
				return fmt.Errorf("failed to look up deposit: %w", err)
			}
			return fmt.Errorf("%w: deposit is already %s", ErrInvalidStateTransition, existing.Status)
		}

		if err := tx.First(&deposit, "id = ?", depositID).Error; err != nil {
			return fmt.Errorf("failed to reload deposit: %w", err)
		}

		if newStatus == models.DepositStatusRejected {
			// Rejection carries no ledger side effects.
			return nil
		}

		var owner models.WalletUser
		if err := tx.First(&owner, "id = ?", deposit.UserID).Error; err != nil {
			return fmt.Errorf("failed to load deposit owner: %w", err)
		}

		// Conversion uses the token price in effect at approval time, not
		// at deposit-creation time.
		price, err := s.Tokens.CurrentPrice(tx, deposit.TokenConfigID)
		if err != nil {
			return err
		}
		tokenAmount := deposit.Amount.DivRound(price, 8)

		if err := creditBalance(tx, deposit.UserID, deposit.TokenConfigID, tokenAmount, deposit.Amount); err != nil {
			return err
		}

		entry := &models.Transaction{
			ID:            uuid.NewString(),
			UserID:        deposit.UserID,
			TokenConfigID: deposit.TokenConfigID,
			Type:          models.TransactionTypeDeposit,
			Amount:        tokenAmount,
			Status:        models.TransactionStatusConfirmed,
			Description:   "Deposit approved",
			ReferenceID:   &deposit.ID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record deposit transaction: %w", err)
		}

		if owner.ReferredBy != nil && *owner.ReferredBy != "" {
			if err := s.Referrals.AccrueCommission(tx, &deposit, &owner, price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [DEPOSIT] %s set to %s by admin %s", deposit.ID, newStatus, actingAdmin.Username)
	return &deposit, nil
}

// ApproveDeposit and RejectDeposit are API-ergonomics wrappers; they share
// SetDepositStatus's contract.
func (s *DepositService) ApproveDeposit(depositID, adminNotes string, actingAdmin *models.WalletUser) (*models.DepositRequest, error) {
	return s.SetDepositStatus(depositID, models.DepositStatusApproved, adminNotes, actingAdmin)
}

func (s *DepositService) RejectDeposit(depositID, adminNotes string, actingAdmin *models.WalletUser) (*models.DepositRequest, error) {
	return s.SetDepositStatus(depositID, models.DepositStatusRejected, adminNotes, actingAdmin)
}

func depositResponse(d *models.DepositRequest) fiber.Map {
	return fiber.Map{
		"id":              d.ID,
		"userId":          d.UserID,
		"amount":          d.Amount.StringFixed(8),
		"transactionHash": d.TransactionHash,
		"paymentMethod":   d.PaymentMethod,
		"screenshotUrl":   d.ScreenshotURL,
		"status":          d.Status,
		"adminNotes":      d.AdminNotes,
		"createdAt":       d.CreatedAt,
		"updatedAt":       d.UpdatedAt,
	}
}

// --- Handlers ---

// CreateDeposit handles POST /api/deposits
func (s *DepositService) CreateDeposit(c *fiber.Ctx) error {
	user, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Amount          decimal.Decimal `json:"amount"`
		TransactionHash string          `json:"transactionHash"`
		PaymentMethod   string          `json:"paymentMethod"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	deposit, err := s.CreateDepositRequest(user, req.Amount, req.TransactionHash, req.PaymentMethod)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(depositResponse(deposit))
}

// ListMyDeposits handles GET /api/deposits
func (s *DepositService) ListMyDeposits(c *fiber.Ctx) error {
	user, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	var deposits []models.DepositRequest
	if err := s.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&deposits).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(deposits)
}

// ListPendingDeposits handles GET /api/admin/deposits
func (s *DepositService) ListPendingDeposits(c *fiber.Ctx) error {
	admin, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}
	if !admin.IsAdmin {
		return respondError(c, fmt.Errorf("%w: admin privileges required", ErrUnauthorized))
	}

	var deposits []models.DepositRequest
	if err := s.DB.Where("status = ?", models.DepositStatusPending).
		Order("created_at DESC").
		Find(&deposits).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(deposits)
}

// UpdateDepositStatus handles PUT /api/admin/deposits/:id
func (s *DepositService) UpdateDepositStatus(c *fiber.Ctx) error {
	admin, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Status     models.DepositStatus `json:"status"`
		AdminNotes string               `json:"adminNotes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	deposit, err := s.SetDepositStatus(c.Params("id"), req.Status, req.AdminNotes, admin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(depositResponse(deposit))
}

// ApproveDepositHandler handles POST /api/admin/deposits/:id/approve
func (s *DepositService) ApproveDepositHandler(c *fiber.Ctx) error {
	return s.transitionHandler(c, models.DepositStatusApproved)
}

// RejectDepositHandler handles POST /api/admin/deposits/:id/reject
func (s *DepositService) RejectDepositHandler(c *fiber.Ctx) error {
	return s.transitionHandler(c, models.DepositStatusRejected)
}

func (s *DepositService) transitionHandler(c *fiber.Ctx, target models.DepositStatus) error {
	admin, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		AdminNotes string `json:"adminNotes"`
	}
	// Body is optional for the convenience endpoints.
	_ = c.BodyParser(&req)

	deposit, err := s.SetDepositStatus(c.Params("id"), target, req.AdminNotes, admin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(depositResponse(deposit))
}

// UploadScreenshot handles POST /api/deposits/:id/screenshot. Owners may
// attach proof-of-payment to a still-pending request; the image goes to R2.
func (s *DepositService) UploadScreenshot(c *fiber.Ctx) error {
	user, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	var deposit models.DepositRequest
	if err := s.DB.First(&deposit, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, ErrDepositNotFound)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if deposit.UserID != user.ID {
		return respondError(c, fmt.Errorf("%w: not your deposit", ErrUnauthorized))
	}
	if deposit.Status != models.DepositStatusPending {
		return respondError(c, fmt.Errorf("%w: screenshots can only be attached while pending", ErrInvalidStateTransition))
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "screenshot file is required"})
	}

	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := fmt.Sprintf("deposits/%s%s", deposit.ID, ext)
	var url string
	if utils.R2Enabled() {
		url, err = utils.UploadFileToR2(fileHeader, key)
	} else {
		// Local fallback for environments without object storage configured
		err = utils.SaveFile(fileHeader, utils.GetUploadPath(key))
		url = "/uploads/" + key
	}
	if err != nil {
		log.Printf("❌ [DEPOSIT] Screenshot upload failed for %s: %v", deposit.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store screenshot"})
	}

	if err := s.DB.Model(&deposit).
		Where("id = ? AND status = ?", deposit.ID, models.DepositStatusPending).
		Update("screenshot_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	deposit.ScreenshotURL = url
	return c.JSON(depositResponse(&deposit))
}
