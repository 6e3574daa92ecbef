package models

import "time"

// AchievementCode is the closed set of achievement rules. Each code is
// evaluated against exactly one statistic; the catalog row's Threshold column
// holds the target value.
type AchievementCode string

const (
	CodeHours50        AchievementCode = "hours_50"
	CodeHours100       AchievementCode = "hours_100"
	CodeShifts10       AchievementCode = "shifts_10"
	CodeShifts25       AchievementCode = "shifts_25"
	CodeWeekendWarrior AchievementCode = "weekend_warrior"
	CodeNightOwl       AchievementCode = "night_owl"
	CodeMedicalHero    AchievementCode = "medical_hero"
	CodeEarlyBird      AchievementCode = "early_bird"
	CodeLoyalMember    AchievementCode = "loyal_member"
)

// Achievement is a static catalog entry, not user-scoped.
type Achievement struct {
	ID           string          `gorm:"primaryKey;type:uuid" json:"id"`
	Code         AchievementCode `gorm:"uniqueIndex;not null;type:varchar(32)" json:"code"`
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `json:"description"`
	Threshold    float64         `gorm:"not null" json:"threshold"`
	PointsReward int             `gorm:"not null" json:"points_reward"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement records that a user earned an achievement. At most one row
// per (user, achievement) pair, enforced by the unique index and an
// insert-ignore-conflict write.
type UserAchievement struct {
	ID            string       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string       `gorm:"not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID string       `gorm:"not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	EarnedAt      time.Time    `gorm:"autoCreateTime" json:"earned_at"`
	Notified      bool         `gorm:"default:false" json:"notified"`
}

// DefaultAchievements is the seed catalog. Seeding is idempotent by code.
var DefaultAchievements = []Achievement{
	{
		Code:         CodeHours50,
		Name:         "Dedicated Helper",
		Description:  "Volunteered for 50 hours",
		Threshold:    50,
		PointsReward: 100,
	},
	{
		Code:         CodeHours100,
		Name:         "Centurion",
		Description:  "Volunteered for 100 hours",
		Threshold:    100,
		PointsReward: 250,
	},
	{
		Code:         CodeShifts10,
		Name:         "Regular",
		Description:  "Completed 10 shifts",
		Threshold:    10,
		PointsReward: 50,
	},
	{
		Code:         CodeShifts25,
		Name:         "Veteran",
		Description:  "Completed 25 shifts",
		Threshold:    25,
		PointsReward: 150,
	},
	{
		Code:         CodeWeekendWarrior,
		Name:         "Weekend Warrior",
		Description:  "Completed 5 weekend shifts",
		Threshold:    5,
		PointsReward: 75,
	},
	{
		Code:         CodeNightOwl,
		Name:         "Night Owl",
		Description:  "Completed 5 night shifts",
		Threshold:    5,
		PointsReward: 75,
	},
	{
		Code:         CodeMedicalHero,
		Name:         "Medical Hero",
		Description:  "Completed 5 medical mission shifts",
		Threshold:    5,
		PointsReward: 100,
	},
	{
		Code:         CodeEarlyBird,
		Name:         "Early Bird",
		Description:  "Completed 5 early-morning shifts",
		Threshold:    5,
		PointsReward: 50,
	},
	{
		Code:         CodeLoyalMember,
		Name:         "Loyal Member",
		Description:  "10 approved participations in a row",
		Threshold:    10,
		PointsReward: 100,
	},
}
