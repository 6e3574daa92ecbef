// workers/profile_sync_worker.go
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

	"volunteer-hub-system/models"
	"volunteer-hub-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileFromDirectory matches the JSON response from the profile service.
type ProfileFromDirectory struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	Role       string    `json:"role,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the profile service response.
type GetProfileChangesResponse struct {
	Profiles []ProfileFromDirectory `json:"profiles"`
}

// VolunteerProfileSyncWorker pulls volunteer profile changes from the profile
// service and upserts them into the local users table. Point totals are never
// touched here; they belong to the points service.
type VolunteerProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewVolunteerProfileSyncWorker(db *gorm.DB, profileServiceBaseURL, endpointPath, serviceToken string) *VolunteerProfileSyncWorker {
	return &VolunteerProfileSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      profileServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *VolunteerProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Volunteer Profile Sync Worker (profile-service → users)…")
	go w.run(ctx)
}

func (w *VolunteerProfileSyncWorker) run(ctx context.Context) {
	// Initial sync backfills from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Volunteer Profile Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local users table.
func (w *VolunteerProfileSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *VolunteerProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
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
		return fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}
	if len(response.Profiles) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d profile(s) from profile service…", len(response.Profiles))

	var upsertCount, errorCount int
	for _, profile := range response.Profiles {
		role := profile.Role
		if role == "" {
			role = models.RoleVolunteer
		}
		localUser := models.User{
			ID:             uuid.NewString(),
			ExternalUserID: profile.ExternalID,
			Username:       profile.Username,
			Email:          profile.Email,
			Department:     profile.Department,
			Role:           role,
			IsActive:       profile.IsActive,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "email", "department", "role", "is_active", "updated_at",
			}),
		}).Create(&localUser).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert user (external_id=%q, username=%q): %v",
				profile.ExternalID, profile.Username, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d profile(s) (%d upserted, %d errors)",
		len(response.Profiles), upsertCount, errorCount)
	return nil
}
