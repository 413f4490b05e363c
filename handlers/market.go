// handlers/market.go
package handlers

import (
	"crypto-wallet-system/middleware"
	"crypto-wallet-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMarketRoutes(app *fiber.App, market *services.MarketService, news *services.NewsService, leaderboard *services.LeaderboardService) {
	// 🔓 Public browse routes — no user context, but still behind Gateway auth
	app.Get("/market/nfts", market.ListNFTs)
	app.Get("/market/memes", market.ListMemes)
	app.Post("/market/memes/:id/upvote", market.UpvoteMeme)
	app.Get("/news", news.ListPublished)
	app.Get("/news/:slug", news.GetBySlug)
	app.Get("/leaderboard", leaderboard.ListTop)

	// 🔐 Secured routes — require user context
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Post("/market/memes", market.CreateMeme)
	secured.Post("/admin/market/nfts", market.CreateNFT)
	secured.Post("/admin/news", news.CreateArticle)
	secured.Post("/admin/news/:id/publish", news.PublishArticle)
}
