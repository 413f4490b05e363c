// services/news_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"crypto-wallet-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type NewsService struct {
	DB *gorm.DB
}

func NewNewsService(db *gorm.DB) *NewsService {
	return &NewsService{DB: db}
}

// ListPublished handles GET /news
func (s *NewsService) ListPublished(c *fiber.Ctx) error {
	var articles []models.NewsArticle
	if err := s.DB.Where("published = ?", true).
		Order("published_at DESC").
		Limit(50).
		Find(&articles).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(articles)
}

// GetBySlug handles GET /news/:slug
func (s *NewsService) GetBySlug(c *fiber.Ctx) error {
	var article models.NewsArticle
	if err := s.DB.Where("slug = ? AND published = ?", c.Params("slug"), true).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "article not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(article)
}

// CreateArticle handles POST /api/admin/news
func (s *NewsService) CreateArticle(c *fiber.Ctx) error {
	admin, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}
	if !admin.IsAdmin {
		return respondError(c, fmt.Errorf("%w: admin privileges required", ErrUnauthorized))
	}

	var req struct {
		Title    string `json:"title"`
		Excerpt  string `json:"excerpt"`
		Body     string `json:"body"`
		CoverURL string `json:"coverUrl"`
		Publish  bool   `json:"publish"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	article := &models.NewsArticle{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Slug:      slug.Make(req.Title),
		Excerpt:   req.Excerpt,
		Body:      req.Body,
		CoverURL:  req.CoverURL,
		Published: req.Publish,
	}
	if req.Publish {
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := s.DB.Create(article).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create article"})
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// PublishArticle handles POST /api/admin/news/:id/publish
func (s *NewsService) PublishArticle(c *fiber.Ctx) error {
	admin, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}
	if !admin.IsAdmin {
		return respondError(c, fmt.Errorf("%w: admin privileges required", ErrUnauthorized))
	}

	var article models.NewsArticle
	if err := s.DB.First(&article, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "article not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	now := time.Now()
	if err := s.DB.Model(&article).Updates(map[string]interface{}{
		"published":    true,
		"published_at": now,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to publish article"})
	}
	return c.JSON(article)
}
