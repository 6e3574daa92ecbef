package services

import (
	"fmt"
	"testing"
	"time"

	"volunteer-hub-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeForUser_EmptyHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	user := seedUser(t, db, "ana")

	stats, err := svc.ComputeForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, &VolunteerStats{}, stats)
}

func TestComputeForUser_ShiftTypeCounters(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	user := seedUser(t, db, "bea")

	weekend := seedShift(t, db, "Logistics", saturdayMorning, 4)
	night := seedShift(t, db, "Logistics", saturdayNight, 4) // weekend AND night
	early := seedShift(t, db, "Logistics", mondayEarly, 2)
	medical := seedShift(t, db, "Medical Support", mondayMorning, 3)

	for i, shift := range []*models.Shift{weekend, night, early, medical} {
		seedParticipation(t, db, user.ID, shift, models.ParticipationApproved, true,
			mondayMorning.AddDate(0, 0, -10+i))
	}

	stats, err := svc.ComputeForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.CompletedShifts)
	assert.InDelta(t, 13.0, stats.TotalHours, 0.001)
	assert.Equal(t, 2, stats.WeekendShifts)
	assert.Equal(t, 1, stats.NightShifts)
	assert.Equal(t, 1, stats.EarlyShifts)
	assert.Equal(t, 1, stats.MedicalShifts)
	assert.Equal(t, 0, stats.LargeTeamShifts)
}

func TestComputeForUser_CountersRequireAttendance(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	user := seedUser(t, db, "cleo")

	attended := seedShift(t, db, "Logistics", saturdayMorning, 4)
	noShow := seedShift(t, db, "Logistics", saturdayNight, 4)
	pending := seedShift(t, db, "Medical Support", mondayMorning, 3)

	seedParticipation(t, db, user.ID, attended, models.ParticipationApproved, true,
		mondayMorning.AddDate(0, 0, -3))
	seedParticipation(t, db, user.ID, noShow, models.ParticipationApproved, false,
		mondayMorning.AddDate(0, 0, -2))
	seedParticipation(t, db, user.ID, pending, models.ParticipationPending, false,
		mondayMorning.AddDate(0, 0, -1))

	stats, err := svc.ComputeForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedShifts)
	assert.InDelta(t, 4.0, stats.TotalHours, 0.001)
	assert.Equal(t, 1, stats.WeekendShifts)
	assert.Equal(t, 0, stats.NightShifts)
	assert.Equal(t, 0, stats.MedicalShifts)
	// The no-show still extends the streak, attendance does not factor in.
	assert.Equal(t, 2, stats.LongestStreak)
}

func TestComputeForUser_StreakResetsOnCancellation(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	user := seedUser(t, db, "dara")

	// Submission order: A A P A C A A A. Pending is skipped without
	// breaking the run, the cancellation resets it.
	statuses := []string{
		models.ParticipationApproved,
		models.ParticipationApproved,
		models.ParticipationPending,
		models.ParticipationApproved,
		models.ParticipationCanceled,
		models.ParticipationApproved,
		models.ParticipationApproved,
		models.ParticipationApproved,
	}
	for i, status := range statuses {
		shift := seedShift(t, db, "Logistics", mondayMorning.AddDate(0, 0, i*7), 2)
		seedParticipation(t, db, user.ID, shift, status, false,
			mondayMorning.AddDate(0, 0, i))
	}

	stats, err := svc.ComputeForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.LongestStreak)
}

func TestComputeForUser_ActualHoursOverrideSchedule(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	user := seedUser(t, db, "elio")

	shift := seedShift(t, db, "Logistics", mondayMorning, 4)
	req := seedParticipation(t, db, user.ID, shift, models.ParticipationApproved, true,
		mondayMorning.AddDate(0, 0, -3))
	require.NoError(t, db.Model(req).Update("actual_hours", 2.5).Error)

	stats, err := svc.ComputeForUser(user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, stats.TotalHours, 0.001)
}

func TestComputeForUser_ActualTimestampsOverrideSchedule(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	user := seedUser(t, db, "finn")

	shift := seedShift(t, db, "Logistics", mondayMorning, 4)
	req := seedParticipation(t, db, user.ID, shift, models.ParticipationApproved, true,
		mondayMorning.AddDate(0, 0, -3))
	start := mondayMorning
	end := mondayMorning.Add(90 * time.Minute)
	require.NoError(t, db.Model(req).Updates(map[string]interface{}{
		"actual_start": start,
		"actual_end":   end,
	}).Error)

	stats, err := svc.ComputeForUser(user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, stats.TotalHours, 0.001)
}

func TestComputeForUser_LargeTeamShift(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)
	user := seedUser(t, db, "gwen")

	crowded := seedShift(t, db, "Logistics", mondayMorning, 4)
	quiet := seedShift(t, db, "Logistics", mondayMorning.AddDate(0, 0, 7), 4)

	seedParticipation(t, db, user.ID, crowded, models.ParticipationApproved, true,
		mondayMorning.AddDate(0, 0, -5))
	seedParticipation(t, db, user.ID, quiet, models.ParticipationApproved, true,
		mondayMorning.AddDate(0, 0, -4))

	// Nine more approved volunteers bring the crowded shift to the
	// large-team threshold. Rejected requests do not count toward it.
	for i := 0; i < LargeTeamSize-1; i++ {
		other := seedUser(t, db, fmt.Sprintf("helper-%d", i))
		seedParticipation(t, db, other.ID, crowded, models.ParticipationApproved, false,
			mondayMorning.AddDate(0, 0, -5))
		seedParticipation(t, db, other.ID, quiet, models.ParticipationRejected, false,
			mondayMorning.AddDate(0, 0, -4))
	}

	stats, err := svc.ComputeForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LargeTeamShifts)
}
