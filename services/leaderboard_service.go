// services/leaderboard_service.go
package services

import (
	"fmt"
	"time"

	"crypto-wallet-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// Recompute rebuilds the leaderboard wholesale from approved deposits. The
// entries carry no ledger authority, so a wipe-and-insert inside one
// transaction is enough.
func (s *LeaderboardService) Recompute() error {
	var rows []struct {
		UserID   string
		Username string
		Total    decimal.Decimal
		Cnt      int64
	}
	err := s.DB.Raw(`
		SELECT d.user_id AS user_id, u.username AS username,
		       SUM(d.amount) AS total, COUNT(*) AS cnt
		FROM deposit_requests d
		JOIN wallet_users u ON u.id = d.user_id
		WHERE d.status = ?
		GROUP BY d.user_id, u.username
		ORDER BY total DESC
		LIMIT 100`, models.DepositStatusApproved).Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate deposits: %w", err)
	}

	now := time.Now()
	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, models.LeaderboardEntry{
			ID:                uuid.NewString(),
			UserID:            row.UserID,
			Username:          row.Username,
			Rank:              i + 1,
			TotalDepositedUSD: row.Total,
			DepositCount:      row.Cnt,
			ComputedAt:        now,
		})
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear leaderboard: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to write leaderboard: %w", err)
		}
		return nil
	})
}

// ListTop handles GET /leaderboard
func (s *LeaderboardService) ListTop(c *fiber.Ctx) error {
	var entries []models.LeaderboardEntry
	if err := s.DB.Order("rank ASC").Limit(100).Find(&entries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	p := message.NewPrinter(language.English)
	out := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		usd, _ := e.TotalDepositedUSD.Float64()
		out = append(out, fiber.Map{
			"rank":              e.Rank,
			"userId":            e.UserID,
			"username":          e.Username,
			"totalDepositedUsd": e.TotalDepositedUSD,
			"display":           p.Sprintf("$%.2f", usd),
			"depositCount":      e.DepositCount,
			"computedAt":        e.ComputedAt,
		})
	}
	return c.JSON(out)
}
