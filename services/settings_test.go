package services

import (
	"testing"

	"volunteer-hub-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCache_ReadThrough(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Setting{Key: "greeting", Value: "hello"}).Error)

	cache := NewSettingsCache(db)
	assert.Equal(t, "hello", cache.Get("greeting", "fallback"))
	assert.Equal(t, "fallback", cache.Get("missing", "fallback"))

	// Later writes to the table are not seen within the same request.
	require.NoError(t, db.Model(&models.Setting{}).
		Where("key = ?", "greeting").
		Update("value", "changed").Error)
	assert.Equal(t, "hello", cache.Get("greeting", "fallback"))
}

func TestSettingsCache_TypedGetters(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Setting{Key: "limit", Value: "25"}).Error)
	require.NoError(t, db.Create(&models.Setting{Key: "rate", Value: "1.75"}).Error)
	require.NoError(t, db.Create(&models.Setting{Key: "garbage", Value: "abc"}).Error)

	cache := NewSettingsCache(db)
	assert.Equal(t, 25, cache.GetInt("limit", 1))
	assert.InDelta(t, 1.75, cache.GetFloat("rate", 1.0), 0.001)
	assert.Equal(t, 7, cache.GetInt("garbage", 7))
	assert.InDelta(t, 2.5, cache.GetFloat("garbage", 2.5), 0.001)
}

func TestSettingsCache_SetWritesThrough(t *testing.T) {
	db := newTestDB(t)
	cache := NewSettingsCache(db)

	require.NoError(t, cache.Set(SettingPointsPerHour, "12"))
	require.NoError(t, cache.Set(SettingPointsPerHour, "15"))

	var stored models.Setting
	require.NoError(t, db.First(&stored, "key = ?", SettingPointsPerHour).Error)
	assert.Equal(t, "15", stored.Value)
	assert.Equal(t, 15, cache.GetInt(SettingPointsPerHour, 1))
}

func TestLoadPointsConfig_AppliesOverrides(t *testing.T) {
	db := newTestDB(t)
	cache := NewSettingsCache(db)
	require.NoError(t, cache.Set(SettingPointsPerHour, "20"))
	require.NoError(t, cache.Set(SettingWeekendMultiplier, "2.0"))

	cfg := LoadPointsConfig(cache)
	assert.Equal(t, 20, cfg.PointsPerHour)
	assert.InDelta(t, 2.0, cfg.WeekendMultiplier, 0.001)
	// Untouched knobs keep their defaults.
	assert.InDelta(t, DefaultPointsConfig.NightMultiplier, cfg.NightMultiplier, 0.001)
	assert.Equal(t, DefaultPointsConfig.MaxManualPoints, cfg.MaxManualPoints)

	assert.Equal(t, DefaultPointsConfig, LoadPointsConfig(nil))
}

func TestLoadPointsConfig_DrivesAward(t *testing.T) {
	db := newTestDB(t)
	cache := NewSettingsCache(db)
	require.NoError(t, cache.Set(SettingPointsPerHour, "20"))

	points := NewPointsService(db).WithConfig(LoadPointsConfig(cache))
	user := seedUser(t, db, "zoe")
	shift := seedShift(t, db, "Logistics", mondayMorning, 3)
	req := seedParticipation(t, db, user.ID, shift, models.ParticipationApproved, true,
		mondayMorning.AddDate(0, 0, -1))

	outcome, err := points.AwardForShift(user, shift, req)
	require.NoError(t, err)
	assert.Equal(t, 60, outcome.PointsAwarded)
}
