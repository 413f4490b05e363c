// handlers/wallet.go
package handlers

import (
	"crypto-wallet-system/middleware"
	"crypto-wallet-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, deposits *services.DepositService, balances *services.BalanceService, referrals *services.ReferralService, users *services.UserService) {
	// 🔐 Everything under /api requires user context from the Gateway
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Post("/deposits", deposits.CreateDeposit)
	secured.Get("/deposits", deposits.ListMyDeposits)
	secured.Post("/deposits/:id/screenshot", deposits.UploadScreenshot)

	secured.Get("/user/token/balance", balances.GetTokenBalance)
	secured.Get("/transactions", balances.ListTransactions)
	secured.Get("/user/referral-earnings", referrals.ListMyEarnings)
	secured.Get("/user/profile", users.GetProfile)

	// Admin surface — authorization is enforced against the mirrored user
	// row inside the services, not just the role header
	secured.Get("/admin/deposits", deposits.ListPendingDeposits)
	secured.Put("/admin/deposits/:id", deposits.UpdateDepositStatus)
	secured.Post("/admin/deposits/:id/approve", deposits.ApproveDepositHandler)
	secured.Post("/admin/deposits/:id/reject", deposits.RejectDepositHandler)
}

func SetupTokenRoutes(app *fiber.App, tokens *services.TokenService) {
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Get("/tokens", tokens.ListTokens)
	secured.Post("/admin/tokens", tokens.CreateToken)
	secured.Post("/admin/tokens/:id/price", tokens.SetTokenPrice)
}
