package services

import (
	"volunteer-hub-system/models"

	"gorm.io/gorm"
)

// LargeTeamSize is the approved-participant count at which a shift counts as
// a large-team shift.
const LargeTeamSize = 10

// VolunteerStats is the flat metrics record derived from a user's
// participation history. Hour and shift-type counters only include APPROVED
// requests with confirmed attendance; the streak is computed over request
// statuses in submission order regardless of attendance.
type VolunteerStats struct {
	TotalHours      float64 `json:"total_hours"`
	CompletedShifts int     `json:"completed_shifts"`
	WeekendShifts   int     `json:"weekend_shifts"`
	NightShifts     int     `json:"night_shifts"`
	MedicalShifts   int     `json:"medical_shifts"`
	EarlyShifts     int     `json:"early_shifts"`
	LargeTeamShifts int     `json:"large_team_shifts"`
	LongestStreak   int     `json:"longest_streak"`
}

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// ComputeForUser derives the user's statistics fresh from source rows. No
// caching, O(n) in the user's participation count.
func (s *StatsService) ComputeForUser(userID string) (*VolunteerStats, error) {
	var requests []models.ParticipationRequest
	err := s.DB.Preload("Shift").Preload("Shift.Mission").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	stats := &VolunteerStats{}
	var completedShiftIDs []string
	run := 0
	for _, req := range requests {
		// Streak over submission order: a cancellation resets the run,
		// PENDING/REJECTED are skipped without resetting it.
		switch req.Status {
		case models.ParticipationApproved:
			run++
			if run > stats.LongestStreak {
				stats.LongestStreak = run
			}
		case models.ParticipationCanceled:
			run = 0
		}

		if req.Status != models.ParticipationApproved || !req.Attended {
			continue
		}

		stats.TotalHours += req.CreditedHours()
		stats.CompletedShifts++

		shift := req.Shift
		if shift == nil {
			continue
		}
		completedShiftIDs = append(completedShiftIDs, shift.ID)
		if shift.IsWeekend() {
			stats.WeekendShifts++
		}
		if shift.IsNight() {
			stats.NightShifts++
		}
		if shift.IsEarly() {
			stats.EarlyShifts++
		}
		if shift.Mission != nil && shift.Mission.IsMedical() {
			stats.MedicalShifts++
		}
	}

	if len(completedShiftIDs) > 0 {
		var crowded []string
		err := s.DB.Model(&models.ParticipationRequest{}).
			Select("shift_id").
			Where("shift_id IN ? AND status = ?", completedShiftIDs, models.ParticipationApproved).
			Group("shift_id").
			Having("COUNT(id) >= ?", LargeTeamSize).
			Pluck("shift_id", &crowded).Error
		if err != nil {
			return nil, err
		}
		stats.LargeTeamShifts = len(crowded)
	}

	return stats, nil
}
