// workers/user_sync_worker.go
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

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredUserFromIdentity matches the JSON response from the identity
// service's change feed.
type MirroredUserFromIdentity struct {
	ID            string     `json:"id"`
	ExternalID    string     `json:"external_id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	WalletAddress *string    `json:"wallet_address,omitempty"`
	ReferralCode  string     `json:"referral_code"`
	ReferredBy    *string    `json:"referred_by,omitempty"` // referral code of the inviter
	IsAdmin       bool       `json:"is_admin"`
	IsBanned      bool       `json:"is_banned"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GetUserChangesResponse is the top-level structure of the identity service response.
type GetUserChangesResponse struct {
	Users []MirroredUserFromIdentity `json:"users"`
}

// UserSyncWorker mirrors identity-service users into wallet_users. The
// mirror is the local authority for admin flags and referral linkage; the
// ledger never calls the identity service on a request path.
type UserSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewUserSyncWorker(db *gorm.DB, identityBaseURL, endpointPath, serviceToken string, httpClient *http.Client) *UserSyncWorker {
	return &UserSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      identityBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   httpClient,
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting User Sync Worker (identity-service → wallet_users)…")
	go w.run(ctx)
}

func (w *UserSyncWorker) run(ctx context.Context) {
	// Initial sync backfills from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial user sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ User sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ User Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local mirror.
func (w *UserSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM wallet_users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches user changes from the identity service and upserts the
// local wallet_users mirror.
func (w *UserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid identity service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to identity service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("identity service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetUserChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode identity service response: %w", err)
	}

	if len(response.Users) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d user(s) from identity service…", len(response.Users))

	mirrors := make([]models.WalletUser, 0, len(response.Users))
	for _, u := range response.Users {
		mirrors = append(mirrors, models.WalletUser{
			ID:             u.ID,
			ExternalUserID: u.ExternalID,
			Username:       u.Username,
			Email:          u.Email,
			WalletAddress:  u.WalletAddress,
			ReferralCode:   u.ReferralCode,
			ReferredBy:     u.ReferredBy,
			IsAdmin:        u.IsAdmin,
			IsBanned:       u.IsBanned,
			LastSeen:       u.LastSeen,
		})
	}

	err = w.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "email", "wallet_address", "referral_code",
			"referred_by", "is_admin", "is_banned", "last_seen", "updated_at",
		}),
	}).Create(&mirrors).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user mirrors: %w", err)
	}

	log.Printf("[SYNC] ✅ Upserted %d user mirror(s)", len(mirrors))
	return nil
}
