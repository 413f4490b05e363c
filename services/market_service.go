// services/market_service.go
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

type MarketService struct {
	DB *gorm.DB
}

func NewMarketService(db *gorm.DB) *MarketService {
	return &MarketService{DB: db}
}

// ListNFTs handles GET /market/nfts
func (s *MarketService) ListNFTs(c *fiber.Ctx) error {
	var listings []models.NFTListing
	query := s.DB.Where("is_active = ?", true)
	if collection := c.Query("collection"); collection != "" {
		query = query.Where("collection = ?", collection)
	}
	if err := query.Order("created_at DESC").Limit(100).Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(listings)
}

// CreateNFT handles POST /api/admin/market/nfts
func (s *MarketService) CreateNFT(c *fiber.Ctx) error {
	admin, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}
	if !admin.IsAdmin {
		return respondError(c, fmt.Errorf("%w: admin privileges required", ErrUnauthorized))
	}

	var req struct {
		Name       string          `json:"name"`
		Collection string          `json:"collection"`
		ImageURL   string          `json:"imageUrl"`
		PriceUSD   decimal.Decimal `json:"priceUsd"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	listing := &models.NFTListing{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Collection: req.Collection,
		ImageURL:   req.ImageURL,
		PriceUSD:   req.PriceUSD,
		IsActive:   true,
	}
	if err := s.DB.Create(listing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create listing"})
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// ListMemes handles GET /market/memes
func (s *MarketService) ListMemes(c *fiber.Ctx) error {
	var memes []models.MemeItem
	if err := s.DB.Order("upvotes DESC, created_at DESC").Limit(100).Find(&memes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(memes)
}

// CreateMeme handles POST /api/market/memes
func (s *MarketService) CreateMeme(c *fiber.Ctx) error {
	user, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Title    string `json:"title"`
		ImageURL string `json:"imageUrl"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" || req.ImageURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and imageUrl are required"})
	}

	meme := &models.MemeItem{
		ID:       uuid.NewString(),
		Title:    req.Title,
		ImageURL: req.ImageURL,
		PostedBy: &user.ID,
	}
	if err := s.DB.Create(meme).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create meme"})
	}
	return c.Status(fiber.StatusCreated).JSON(meme)
}

// UpvoteMeme handles POST /market/memes/:id/upvote
func (s *MarketService) UpvoteMeme(c *fiber.Ctx) error {
	res := s.DB.Model(&models.MemeItem{}).
		Where("id = ?", c.Params("id")).
		Update("upvotes", gorm.Expr("upvotes + 1"))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "meme not found"})
	}

	var meme models.MemeItem
	if err := s.DB.First(&meme, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "meme not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(meme)
}
