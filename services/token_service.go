// services/token_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"crypto-wallet-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TokenService struct {
	DB *gorm.DB
}

func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{DB: db}
}

// NativeToken returns the token deposit credits are denominated in.
func (s *TokenService) NativeToken(tx *gorm.DB) (*models.TokenConfig, error) {
	var token models.TokenConfig
	if err := tx.Where("is_native = ? AND is_active = ?", true, true).
		First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no native token configured")
		}
		return nil, fmt.Errorf("failed to load native token: %w", err)
	}
	return &token, nil
}

// CurrentPrice returns the newest recorded USD price for a token. Approval
// crediting depends on this; a token with no usable price fails the whole
// approval transaction.
func (s *TokenService) CurrentPrice(tx *gorm.DB, tokenConfigID string) (decimal.Decimal, error) {
	var price models.TokenPrice
	err := tx.Where("token_config_id = ?", tokenConfigID).
		Order("fetched_at DESC").
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, fmt.Errorf("no price recorded for token %s", tokenConfigID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load token price: %w", err)
	}
	if !price.PriceUSD.IsPositive() {
		return decimal.Zero, fmt.Errorf("unusable price %s for token %s", price.PriceUSD, tokenConfigID)
	}
	return price.PriceUSD, nil
}

// RecordPrice appends a price observation for a token.
func (s *TokenService) RecordPrice(tokenConfigID string, priceUSD decimal.Decimal, source string) (*models.TokenPrice, error) {
	if !priceUSD.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	price := &models.TokenPrice{
		ID:            uuid.NewString(),
		TokenConfigID: tokenConfigID,
		PriceUSD:      priceUSD,
		Source:        source,
		FetchedAt:     time.Now(),
	}
	if err := s.DB.Create(price).Error; err != nil {
		return nil, fmt.Errorf("failed to record token price: %w", err)
	}
	return price, nil
}

// --- Handlers ---

// ListTokens handles GET /api/tokens
func (s *TokenService) ListTokens(c *fiber.Ctx) error {
	var tokens []models.TokenConfig
	if err := s.DB.Where("is_active = ?", true).Find(&tokens).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(tokens)
}

// CreateToken handles POST /api/admin/tokens
func (s *TokenService) CreateToken(c *fiber.Ctx) error {
	admin, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}
	if !admin.IsAdmin {
		return respondError(c, fmt.Errorf("%w: admin privileges required", ErrUnauthorized))
	}

	var req struct {
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Decimals int    `json:"decimals"`
		IsNative bool   `json:"isNative"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Symbol == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "symbol and name are required"})
	}
	if req.Decimals == 0 {
		req.Decimals = 8
	}

	token := &models.TokenConfig{
		ID:       uuid.NewString(),
		Symbol:   req.Symbol,
		Name:     req.Name,
		Decimals: req.Decimals,
		IsNative: req.IsNative,
		IsActive: true,
	}
	if err := s.DB.Create(token).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}
	return c.Status(fiber.StatusCreated).JSON(token)
}

// SetTokenPrice handles POST /api/admin/tokens/:id/price — manual override
// alongside the price feed worker.
func (s *TokenService) SetTokenPrice(c *fiber.Ctx) error {
	admin, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}
	if !admin.IsAdmin {
		return respondError(c, fmt.Errorf("%w: admin privileges required", ErrUnauthorized))
	}

	var token models.TokenConfig
	if err := s.DB.First(&token, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "token not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		PriceUSD decimal.Decimal `json:"priceUsd"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	price, err := s.RecordPrice(token.ID, req.PriceUSD, "admin")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(price)
}
