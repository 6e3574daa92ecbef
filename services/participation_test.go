package services

import (
	"testing"

	"volunteer-hub-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	db := newTestDB(t)
	svc := NewParticipationService(db, NewPointsService(db))
	user := seedUser(t, db, "oda")

	shift := seedShift(t, db, "Logistics", mondayMorning, 4)
	require.NoError(t, db.Model(&models.Mission{}).
		Where("id = ?", shift.MissionID).
		Update("status", models.MissionStatusPublished).Error)

	req, err := svc.Apply(user.ID, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationPending, req.Status)

	// Duplicate while the first is still pending.
	_, err = svc.Apply(user.ID, shift.ID)
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	// A canceled request frees the user to apply again.
	_, err = svc.Cancel(req.ID, user.ID)
	require.NoError(t, err)
	_, err = svc.Apply(user.ID, shift.ID)
	assert.NoError(t, err)
}

func TestApply_MissionMustBePublished(t *testing.T) {
	db := newTestDB(t)
	svc := NewParticipationService(db, NewPointsService(db))
	user := seedUser(t, db, "pia")

	closed := seedShift(t, db, "Logistics", mondayMorning, 4)
	_, err := svc.Apply(user.ID, closed.ID)
	assert.ErrorIs(t, err, ErrMissionNotOpen)

	draft := seedShift(t, db, "Logistics", mondayMorning, 4)
	require.NoError(t, db.Model(&models.Mission{}).
		Where("id = ?", draft.MissionID).
		Update("status", models.MissionStatusDraft).Error)
	_, err = svc.Apply(user.ID, draft.ID)
	assert.ErrorIs(t, err, ErrMissionNotOpen)
}

func TestApprove_EnforcesCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := NewParticipationService(db, NewPointsService(db))

	shift := seedShift(t, db, "Logistics", mondayMorning, 4)
	require.NoError(t, db.Model(&models.Shift{}).
		Where("id = ?", shift.ID).
		Update("max_capacity", 1).Error)

	first := seedParticipation(t, db, seedUser(t, db, "quin").ID, shift,
		models.ParticipationPending, false, mondayMorning.AddDate(0, 0, -2))
	second := seedParticipation(t, db, seedUser(t, db, "rhea").ID, shift,
		models.ParticipationPending, false, mondayMorning.AddDate(0, 0, -1))

	approved, err := svc.Approve(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationApproved, approved.Status)

	_, err = svc.Approve(second.ID)
	assert.ErrorIs(t, err, ErrShiftFull)

	// Approval is only valid from PENDING.
	_, err = svc.Approve(first.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestRejectAndCancel(t *testing.T) {
	db := newTestDB(t)
	svc := NewParticipationService(db, NewPointsService(db))
	user := seedUser(t, db, "sam")
	shift := seedShift(t, db, "Logistics", mondayMorning, 4)

	rejected := seedParticipation(t, db, user.ID, shift,
		models.ParticipationPending, false, mondayMorning.AddDate(0, 0, -2))
	req, err := svc.Reject(rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationRejected, req.Status)

	// Rejected requests cannot be canceled.
	_, err = svc.Cancel(rejected.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotCancelable)

	// Locked-in attendance blocks cancellation outright.
	locked := seedParticipation(t, db, user.ID,
		seedShift(t, db, "Logistics", saturdayMorning, 4),
		models.ParticipationApproved, true, mondayMorning.AddDate(0, 0, -1))
	_, err = svc.Cancel(locked.ID, user.ID)
	assert.ErrorIs(t, err, ErrAttendanceLockedIn)

	// Only the owner can cancel.
	stranger := seedUser(t, db, "tess")
	pending := seedParticipation(t, db, user.ID,
		seedShift(t, db, "Logistics", mondayEarly, 2),
		models.ParticipationPending, false, mondayMorning)
	_, err = svc.Cancel(pending.ID, stranger.ID)
	assert.Error(t, err)
}

func TestConfirmAttendance_AwardsPoints(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedCatalog(db))
	svc := NewParticipationService(db, NewPointsService(db))
	user := seedUser(t, db, "ursa")

	shift := seedShift(t, db, "Logistics", saturdayMorning, 5)
	req := seedParticipation(t, db, user.ID, shift, models.ParticipationApproved, false,
		mondayMorning.AddDate(0, 0, -3))

	confirmed, outcome, err := svc.ConfirmAttendance(req.ID, true, nil)
	require.NoError(t, err)
	assert.True(t, confirmed.Attended)
	// 5h Saturday shift: 50 base + 25 weekend bonus.
	assert.Equal(t, 75, outcome.PointsAwarded)
	assert.False(t, outcome.Evaluation.PartialFailure())

	reloaded := reloadUser(t, db, user.ID)
	assert.Equal(t, 75, reloaded.TotalPoints)

	// Attendance is final.
	_, _, err = svc.ConfirmAttendance(req.ID, true, nil)
	assert.ErrorIs(t, err, ErrAttendanceLockedIn)
}

func TestConfirmAttendance_NoShowAwardsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewParticipationService(db, NewPointsService(db))
	user := seedUser(t, db, "vera")

	shift := seedShift(t, db, "Logistics", mondayMorning, 4)
	req := seedParticipation(t, db, user.ID, shift, models.ParticipationApproved, false,
		mondayMorning.AddDate(0, 0, -3))

	confirmed, outcome, err := svc.ConfirmAttendance(req.ID, false, nil)
	require.NoError(t, err)
	assert.False(t, confirmed.Attended)
	assert.Zero(t, outcome.PointsAwarded)
	assert.Empty(t, ledgerRows(t, db, user.ID))
}

func TestConfirmAttendance_ActualHoursOverride(t *testing.T) {
	db := newTestDB(t)
	svc := NewParticipationService(db, NewPointsService(db))
	user := seedUser(t, db, "wim")

	shift := seedShift(t, db, "Logistics", mondayMorning, 4)
	req := seedParticipation(t, db, user.ID, shift, models.ParticipationApproved, false,
		mondayMorning.AddDate(0, 0, -3))

	hours := 2.0
	_, outcome, err := svc.ConfirmAttendance(req.ID, true, &hours)
	require.NoError(t, err)
	assert.Equal(t, 20, outcome.PointsAwarded)
}

func TestConfirmAttendance_Guards(t *testing.T) {
	db := newTestDB(t)
	svc := NewParticipationService(db, NewPointsService(db))
	user := seedUser(t, db, "xen")

	// Pending request on a closed mission.
	pending := seedParticipation(t, db, user.ID,
		seedShift(t, db, "Logistics", mondayMorning, 4),
		models.ParticipationPending, false, mondayMorning.AddDate(0, 0, -2))
	_, _, err := svc.ConfirmAttendance(pending.ID, true, nil)
	assert.ErrorIs(t, err, ErrNotApproved)

	// Approved request on a mission that is still open.
	open := seedShift(t, db, "Logistics", mondayMorning, 4)
	require.NoError(t, db.Model(&models.Mission{}).
		Where("id = ?", open.MissionID).
		Update("status", models.MissionStatusPublished).Error)
	approved := seedParticipation(t, db, user.ID, open,
		models.ParticipationApproved, false, mondayMorning.AddDate(0, 0, -1))
	_, _, err = svc.ConfirmAttendance(approved.ID, true, nil)
	assert.ErrorIs(t, err, ErrMissionNotClosed)
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewParticipationService(db, NewPointsService(db))
	user := seedUser(t, db, "yael")

	older := seedParticipation(t, db, user.ID,
		seedShift(t, db, "Logistics", mondayMorning, 4),
		models.ParticipationApproved, false, mondayMorning.AddDate(0, 0, -5))
	newer := seedParticipation(t, db, user.ID,
		seedShift(t, db, "Logistics", saturdayMorning, 4),
		models.ParticipationPending, false, mondayMorning.AddDate(0, 0, -1))

	requests, err := svc.ListForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, newer.ID, requests[0].ID)
	assert.Equal(t, older.ID, requests[1].ID)
	assert.NotNil(t, requests[0].Shift)
}
