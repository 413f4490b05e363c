// services/users.go
package services

import (
	"errors"
	"fmt"

	"crypto-wallet-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// currentUser resolves the authenticated caller from the user context the
// gateway middleware attached. The mirror row is the authority for the admin
// flag and referral linkage; a header with no mirrored user is treated as
// unauthenticated (the sync worker has not seen them yet).
func currentUser(c *fiber.Ctx, db *gorm.DB) (*models.WalletUser, error) {
	externalID, _ := c.Locals("user_id").(string)
	if externalID == "" {
		return nil, fmt.Errorf("%w: missing user context", ErrUnauthorized)
	}

	var user models.WalletUser
	if err := db.First(&user, "external_user_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user %s", ErrUnauthorized, externalID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsBanned {
		return nil, fmt.Errorf("%w: account is banned", ErrUnauthorized)
	}
	return &user, nil
}

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// GetProfile handles GET /api/user/profile
func (s *UserService) GetProfile(c *fiber.Ctx) error {
	user, err := currentUser(c, s.DB)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
