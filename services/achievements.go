package services

import (
	"errors"
	"fmt"

	"volunteer-hub-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EvaluationResult reports one achievement evaluation pass. Per-achievement
// failures are collected here instead of propagating, so the triggering
// action (attendance confirmation, manual award) never fails on gamification
// bookkeeping.
type EvaluationResult struct {
	Awarded []models.AchievementCode `json:"awarded"`
	Errors  []error                  `json:"-"`
}

func (r EvaluationResult) PartialFailure() bool {
	return len(r.Errors) > 0
}

type AchievementService struct {
	DB    *gorm.DB
	Stats *StatsService
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db, Stats: NewStatsService(db)}
}

// statisticFor maps a code to the statistic it is measured against. The
// catalog row's Threshold column is the single target value; an unknown code
// surfaces as an evaluation error rather than silently passing.
func statisticFor(code models.AchievementCode, stats *VolunteerStats) (float64, error) {
	switch code {
	case models.CodeHours50, models.CodeHours100:
		return stats.TotalHours, nil
	case models.CodeShifts10, models.CodeShifts25:
		return float64(stats.CompletedShifts), nil
	case models.CodeWeekendWarrior:
		return float64(stats.WeekendShifts), nil
	case models.CodeNightOwl:
		return float64(stats.NightShifts), nil
	case models.CodeMedicalHero:
		return float64(stats.MedicalShifts), nil
	case models.CodeEarlyBird:
		return float64(stats.EarlyShifts), nil
	case models.CodeLoyalMember:
		return float64(stats.LongestStreak), nil
	default:
		return 0, fmt.Errorf("no evaluator for achievement code %q", code)
	}
}

// CheckAndAward scans the active catalog against the user's current
// statistics and awards every newly satisfied achievement. Safe to re-run:
// the UserAchievement insert ignores conflicts, and the points reward is only
// granted when the insert actually added a row.
func (s *AchievementService) CheckAndAward(userID string) EvaluationResult {
	var result EvaluationResult

	stats, err := s.Stats.ComputeForUser(userID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("stats aggregation failed: %w", err))
		return result
	}

	var catalog []models.Achievement
	if err := s.DB.Where("is_active = ?", true).Order("code ASC").Find(&catalog).Error; err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("failed to load achievement catalog: %w", err))
		return result
	}

	var earnedIDs []string
	if err := s.DB.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &earnedIDs).Error; err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("failed to load earned achievements: %w", err))
		return result
	}
	earned := make(map[string]bool, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = true
	}

	for i := range catalog {
		ach := &catalog[i]
		if earned[ach.ID] {
			continue
		}
		value, err := statisticFor(ach.Code, stats)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		if value < ach.Threshold {
			continue
		}
		newly, err := s.award(userID, ach)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to award %s: %w", ach.Code, err))
			continue
		}
		if newly {
			result.Awarded = append(result.Awarded, ach.Code)
		}
	}

	return result
}

// award inserts the UserAchievement row and, when it is genuinely new, the
// ACHIEVEMENT ledger row plus totals recompute — one transaction, so a user
// can never hold the achievement without the reward points or vice versa.
func (s *AchievementService) award(userID string, ach *models.Achievement) (bool, error) {
	newly := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		ua := models.UserAchievement{
			ID:            uuid.NewString(),
			UserID:        userID,
			AchievementID: ach.ID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&ua)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already earned, possibly by a concurrent evaluation.
			return nil
		}
		newly = true

		if ach.PointsReward <= 0 {
			return nil
		}
		entry := models.VolunteerPoint{
			ID:          uuid.NewString(),
			UserID:      userID,
			Points:      ach.PointsReward,
			Reason:      models.ReasonAchievement,
			Description: fmt.Sprintf("Achievement unlocked: %s", ach.Name),
		}
		entry.SetSource(models.AchievementSource(ach.ID))
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return recomputeTotalsTx(tx, userID)
	})
	return newly, err
}

// ListForUser returns the user's earned achievements with catalog data.
func (s *AchievementService) ListForUser(userID string) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := s.DB.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&rows).Error
	return rows, err
}

// MarkNotified flags one earned achievement as surfaced to the user.
func (s *AchievementService) MarkNotified(userID, userAchievementID string) error {
	res := s.DB.Model(&models.UserAchievement{}).
		Where("id = ? AND user_id = ?", userAchievementID, userID).
		Update("notified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SeedCatalog inserts the default achievement catalog, skipping codes that
// already exist.
func SeedCatalog(db *gorm.DB) error {
	for _, ach := range models.DefaultAchievements {
		var existing models.Achievement
		err := db.Where("code = ?", ach.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		ach.ID = uuid.NewString()
		ach.IsActive = true
		if err := db.Create(&ach).Error; err != nil {
			return fmt.Errorf("failed to seed achievement %s: %w", ach.Code, err)
		}
	}
	return nil
}
