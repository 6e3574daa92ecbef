package services

import (
	"errors"
	"strconv"

	"volunteer-hub-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settings keys with per-request override support.
const (
	SettingPointsPerHour     = "points_per_hour"
	SettingWeekendMultiplier = "weekend_multiplier"
	SettingNightMultiplier   = "night_multiplier"
	SettingMedicalMultiplier = "medical_multiplier"
	SettingMaxManualPoints   = "max_manual_points"
)

// SettingsCache is a read-through cache over the settings table. One instance
// is built per request by the settings middleware and threaded through
// handlers via c.Locals — it must not be shared across requests.
type SettingsCache struct {
	db     *gorm.DB
	values map[string]string
}

func NewSettingsCache(db *gorm.DB) *SettingsCache {
	return &SettingsCache{db: db, values: make(map[string]string)}
}

// Get returns the setting value, falling back when the key is missing or the
// lookup fails. The first read of a key hits the database; repeats within the
// request are served from the cache.
func (c *SettingsCache) Get(key, fallback string) string {
	if v, ok := c.values[key]; ok {
		return v
	}
	var setting models.Setting
	err := c.db.First(&setting, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback
		}
		c.values[key] = fallback
		return fallback
	}
	c.values[key] = setting.Value
	return setting.Value
}

func (c *SettingsCache) GetInt(key string, fallback int) int {
	raw := c.Get(key, strconv.Itoa(fallback))
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return fallback
}

func (c *SettingsCache) GetFloat(key string, fallback float64) float64 {
	raw := c.Get(key, strconv.FormatFloat(fallback, 'f', -1, 64))
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return fallback
}

// Set writes through to the settings table and updates the request cache.
func (c *SettingsCache) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	err := c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return err
	}
	c.values[key] = value
	return nil
}

// LoadPointsConfig resolves the award constants for this request, applying
// settings-table overrides on top of the defaults.
func LoadPointsConfig(cache *SettingsCache) PointsConfig {
	cfg := DefaultPointsConfig
	if cache == nil {
		return cfg
	}
	cfg.PointsPerHour = cache.GetInt(SettingPointsPerHour, cfg.PointsPerHour)
	cfg.WeekendMultiplier = cache.GetFloat(SettingWeekendMultiplier, cfg.WeekendMultiplier)
	cfg.NightMultiplier = cache.GetFloat(SettingNightMultiplier, cfg.NightMultiplier)
	cfg.MedicalMultiplier = cache.GetFloat(SettingMedicalMultiplier, cfg.MedicalMultiplier)
	cfg.MaxManualPoints = cache.GetInt(SettingMaxManualPoints, cfg.MaxManualPoints)
	return cfg
}
