// workers/price_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"crypto-wallet-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceQuote is one observation from the external price feed.
type PriceQuote struct {
	Symbol   string          `json:"symbol"`
	PriceUSD decimal.Decimal `json:"price_usd"`
}

// PriceFeedClient polls the external price feed and appends TokenPrice rows
// for the tokens this wallet knows about. Prices are observations, never
// mutations of existing rows — the approval path reads the newest one.
type PriceFeedClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewPriceFeedClient(db *gorm.DB, baseURL, serviceToken string, httpClient *http.Client) *PriceFeedClient {
	return &PriceFeedClient{
		BaseURL:    baseURL,
		Token:      serviceToken,
		HTTPClient: httpClient,
		DB:         db,
	}
}

func (c *PriceFeedClient) GetQuotes(ctx context.Context) ([]PriceQuote, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/prices", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse price feed URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call price feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("price feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Prices []PriceQuote `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode price feed response: %w", err)
	}
	return response.Prices, nil
}

// PollPrices runs until ctx is cancelled, recording one TokenPrice row per
// known token per poll.
func PollPrices(ctx context.Context, client *PriceFeedClient, pollInterval time.Duration) {
	log.Println("Starting price feed polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Price feed polling stopped.")
			return
		case <-ticker.C:
			quotes, err := client.GetQuotes(ctx)
			if err != nil {
				log.Printf("❌ Error polling price feed: %v", err)
				continue
			}
			if len(quotes) == 0 {
				continue
			}

			var tokens []models.TokenConfig
			if err := client.DB.Where("is_active = ?", true).Find(&tokens).Error; err != nil {
				log.Printf("❌ Error loading token configs: %v", err)
				continue
			}
			bySymbol := make(map[string]string, len(tokens))
			for _, t := range tokens {
				bySymbol[t.Symbol] = t.ID
			}

			now := time.Now()
			rows := make([]models.TokenPrice, 0, len(quotes))
			for _, q := range quotes {
				tokenID, ok := bySymbol[q.Symbol]
				if !ok || !q.PriceUSD.IsPositive() {
					continue
				}
				rows = append(rows, models.TokenPrice{
					ID:            uuid.NewString(),
					TokenConfigID: tokenID,
					PriceUSD:      q.PriceUSD,
					Source:        "feed",
					FetchedAt:     now,
				})
			}
			if len(rows) == 0 {
				continue
			}

			if err := client.DB.Create(&rows).Error; err != nil {
				log.Printf("❌ Error recording token prices: %v", err)
				continue
			}
			log.Printf("📥 Recorded %d token price(s) from feed", len(rows))
		}
	}
}
