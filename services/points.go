package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"volunteer-hub-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsConfig holds the award constants. Defaults can be overridden per
// request through the settings table (see LoadPointsConfig).
type PointsConfig struct {
	PointsPerHour     int
	WeekendMultiplier float64
	NightMultiplier   float64
	MedicalMultiplier float64
	MaxManualPoints   int
}

var DefaultPointsConfig = PointsConfig{
	PointsPerHour:     10,
	WeekendMultiplier: 1.5,
	NightMultiplier:   1.25,
	MedicalMultiplier: 1.5,
	MaxManualPoints:   10000,
}

var ErrInvalidManualPoints = errors.New("manual award points must be between 1 and the configured maximum")

// AwardOutcome reports what a single award operation did, including the
// result of the achievement evaluation pass that followed it. Evaluation
// failures live inside Evaluation and never fail the award itself.
type AwardOutcome struct {
	PointsAwarded int              `json:"points_awarded"`
	LedgerRows    int              `json:"ledger_rows"`
	Evaluation    EvaluationResult `json:"evaluation"`
}

type PointsService struct {
	DB     *gorm.DB
	Config PointsConfig
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{DB: db, Config: DefaultPointsConfig}
}

// WithConfig returns a copy of the service bound to the given config. Used by
// handlers that resolve per-request overrides from the settings cache.
func (s *PointsService) WithConfig(cfg PointsConfig) *PointsService {
	return &PointsService{DB: s.DB, Config: cfg}
}

// AwardForShift records the point-earning events for one attended shift:
// a base row of floor(hours × PointsPerHour) plus one independent bonus row
// per qualifier (weekend, night, medical). Bonuses are additive on the base,
// never compounded against each other, so each stays auditable as its own
// ledger line. Awards nothing when the volunteer did not attend or credited
// hours are zero.
func (s *PointsService) AwardForShift(user *models.User, shift *models.Shift, participation *models.ParticipationRequest) (AwardOutcome, error) {
	var outcome AwardOutcome

	if participation.Shift == nil {
		participation.Shift = shift
	}
	if !participation.Attended {
		return outcome, nil
	}
	hours := participation.CreditedHours()
	if hours <= 0 {
		return outcome, nil
	}

	base := int(hours * float64(s.Config.PointsPerHour))
	if base <= 0 {
		return outcome, nil
	}

	mission := shift.Mission
	if mission == nil && shift.MissionID != "" {
		var m models.Mission
		if err := s.DB.First(&m, "id = ?", shift.MissionID).Error; err == nil {
			mission = &m
		}
	}

	src := models.ParticipationSource(participation.ID)

	entries := []models.VolunteerPoint{
		s.newEntry(user.ID, base, models.ReasonShiftCompleted,
			fmt.Sprintf("Completed shift (%.1f hours)", hours), src),
	}
	if shift.IsWeekend() {
		if bonus := bonusPoints(base, s.Config.WeekendMultiplier); bonus > 0 {
			entries = append(entries, s.newEntry(user.ID, bonus, models.ReasonWeekendBonus, "Weekend shift bonus", src))
		}
	}
	if shift.IsNight() {
		if bonus := bonusPoints(base, s.Config.NightMultiplier); bonus > 0 {
			entries = append(entries, s.newEntry(user.ID, bonus, models.ReasonNightBonus, "Night shift bonus", src))
		}
	}
	if mission != nil && mission.IsMedical() {
		if bonus := bonusPoints(base, s.Config.MedicalMultiplier); bonus > 0 {
			entries = append(entries, s.newEntry(user.ID, bonus, models.ReasonMedicalBonus, "Medical mission bonus", src))
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return recomputeTotalsTx(tx, user.ID)
	})
	if err != nil {
		return AwardOutcome{}, fmt.Errorf("failed to record shift award: %w", err)
	}

	for _, e := range entries {
		outcome.PointsAwarded += e.Points
	}
	outcome.LedgerRows = len(entries)
	outcome.Evaluation = NewAchievementService(s.DB).CheckAndAward(user.ID)
	logEvaluation(user.ID, outcome.Evaluation)
	return outcome, nil
}

// AwardManual inserts a single MANUAL ledger row entered by an admin.
func (s *PointsService) AwardManual(user *models.User, points int, description string) (AwardOutcome, error) {
	var outcome AwardOutcome

	if points <= 0 || points > s.Config.MaxManualPoints {
		return outcome, ErrInvalidManualPoints
	}

	entry := s.newEntry(user.ID, points, models.ReasonManual, description, nil)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return recomputeTotalsTx(tx, user.ID)
	})
	if err != nil {
		return outcome, fmt.Errorf("failed to record manual award: %w", err)
	}

	outcome.PointsAwarded = points
	outcome.LedgerRows = 1
	outcome.Evaluation = NewAchievementService(s.DB).CheckAndAward(user.ID)
	logEvaluation(user.ID, outcome.Evaluation)
	return outcome, nil
}

// RecomputeTotals rebuilds the user's denormalized point totals from the
// ledger. Used directly by the nightly reconciliation job; award paths call
// the transactional helper instead.
func (s *PointsService) RecomputeTotals(userID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return recomputeTotalsTx(tx, userID)
	})
}

// GetLedger returns a user's ledger rows, newest first.
func (s *PointsService) GetLedger(userID string, limit int) ([]models.VolunteerPoint, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []models.VolunteerPoint
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (s *PointsService) newEntry(userID string, points int, reason models.PointReason, description string, src *models.PointSource) models.VolunteerPoint {
	entry := models.VolunteerPoint{
		ID:          uuid.NewString(),
		UserID:      userID,
		Points:      points,
		Reason:      reason,
		Description: description,
	}
	entry.SetSource(src)
	return entry
}

// bonusPoints computes one bonus row off the base award: base × (multiplier − 1),
// floored. Returns 0 when the bonus rounds away.
func bonusPoints(base int, multiplier float64) int {
	if multiplier <= 1 {
		return 0
	}
	return int(float64(base) * (multiplier - 1))
}

// recomputeTotalsTx sets total_points and monthly_points in one atomic UPDATE
// with scalar SUM subqueries, so concurrent awards to the same user cannot
// lose each other's rows in the denormalized sums.
func recomputeTotalsTx(tx *gorm.DB, userID string) error {
	start := monthStart(time.Now())
	return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"total_points": gorm.Expr(
			"(SELECT COALESCE(SUM(points), 0) FROM volunteer_points WHERE user_id = ?)", userID),
		"monthly_points": gorm.Expr(
			"(SELECT COALESCE(SUM(points), 0) FROM volunteer_points WHERE user_id = ? AND created_at >= ?)", userID, start),
	}).Error
}

// monthStart returns the first instant of the calendar month containing t,
// in t's location (server-local clock).
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func logEvaluation(userID string, result EvaluationResult) {
	for _, code := range result.Awarded {
		log.Printf("🏅 Achievement awarded: %s → %s", code, userID)
	}
	for _, err := range result.Errors {
		log.Printf("⚠️ Achievement evaluation error for %s: %v", userID, err)
	}
}
