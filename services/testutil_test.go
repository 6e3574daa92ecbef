package services

import (
	"fmt"
	"testing"
	"time"

	"volunteer-hub-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Mission{},
		&models.Shift{},
		&models.ParticipationRequest{},
		&models.VolunteerPoint{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Setting{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		ID:             uuid.NewString(),
		ExternalUserID: uuid.NewString(),
		Username:       username,
		Role:           models.RoleVolunteer,
		IsActive:       true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// seedShift creates a closed mission with one shift of the given start and
// duration. The returned shift carries the mission pointer, matching what the
// award path sees after preloading.
func seedShift(t *testing.T, db *gorm.DB, category string, start time.Time, hours float64) *models.Shift {
	t.Helper()
	mission := &models.Mission{
		ID:        uuid.NewString(),
		Title:     "Mission " + uuid.NewString()[:8],
		Slug:      uuid.NewString(),
		Category:  category,
		Status:    models.MissionStatusClosed,
		StartDate: start.AddDate(0, 0, -1),
		EndDate:   start.AddDate(0, 0, 1),
	}
	require.NoError(t, db.Create(mission).Error)

	shift := &models.Shift{
		ID:        uuid.NewString(),
		MissionID: mission.ID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(hours * float64(time.Hour))),
	}
	require.NoError(t, db.Create(shift).Error)
	shift.Mission = mission
	return shift
}

// seedParticipation inserts a request directly, bypassing the application
// flow, for fixtures that predate the scenario under test.
func seedParticipation(t *testing.T, db *gorm.DB, userID string, shift *models.Shift, status string, attended bool, createdAt time.Time) *models.ParticipationRequest {
	t.Helper()
	req := &models.ParticipationRequest{
		ID:       uuid.NewString(),
		UserID:   userID,
		ShiftID:  shift.ID,
		Status:   status,
		Attended: attended,
	}
	req.CreatedAt = createdAt
	require.NoError(t, db.Create(req).Error)
	req.Shift = shift
	return req
}

// Fixed reference times: 2025-06-07 was a Saturday, 2025-06-09 a Monday.
var (
	saturdayMorning = time.Date(2025, 6, 7, 10, 0, 0, 0, time.Local)
	saturdayNight   = time.Date(2025, 6, 7, 23, 0, 0, 0, time.Local)
	mondayMorning   = time.Date(2025, 6, 9, 10, 0, 0, 0, time.Local)
	mondayEarly     = time.Date(2025, 6, 9, 7, 0, 0, 0, time.Local)
)

func ledgerRows(t *testing.T, db *gorm.DB, userID string) []models.VolunteerPoint {
	t.Helper()
	var rows []models.VolunteerPoint
	require.NoError(t, db.Where("user_id = ?", userID).Order("created_at ASC").Find(&rows).Error)
	return rows
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	return &u
}

// ledgerSum recomputes the ledger total independently of the denormalized
// caches, for invariant assertions.
func ledgerSum(t *testing.T, db *gorm.DB, userID string) int {
	t.Helper()
	var sum int
	require.NoError(t, db.Model(&models.VolunteerPoint{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&sum).Error)
	return sum
}
