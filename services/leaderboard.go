package services

import (
	"math"

	"volunteer-hub-system/models"

	"gorm.io/gorm"
)

const (
	PeriodAll     = "all"
	PeriodMonthly = "monthly"
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// RankInfo is one user's position in the leaderboard.
type RankInfo struct {
	Rank       int    `json:"rank"`
	Total      int    `json:"total"`
	Percentile int    `json:"percentile"`
	Points     int    `json:"points"`
	Period     string `json:"period"`
}

func metricColumn(period string) string {
	if period == PeriodMonthly {
		return "monthly_points"
	}
	return "total_points"
}

// GetTopVolunteers orders active users by the period metric, ties broken by
// id ascending so the ordering is deterministic.
func (s *LeaderboardService) GetTopVolunteers(limit int, period string) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	col := metricColumn(period)
	var users []models.User
	err := s.DB.Where("is_active = ?", true).
		Order(col + " DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// GetUserRank computes competition ranking: rank = number of active users
// with a strictly greater metric + 1, so tied users share a rank and the next
// distinct value skips ranks.
func (s *LeaderboardService) GetUserRank(user *models.User, period string) (*RankInfo, error) {
	if period != PeriodMonthly {
		period = PeriodAll
	}
	metric := user.TotalPoints
	if period == PeriodMonthly {
		metric = user.MonthlyPoints
	}
	col := metricColumn(period)

	var higher int64
	if err := s.DB.Model(&models.User{}).
		Where("is_active = ?", true).
		Where(col+" > ?", metric).
		Count(&higher).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := s.DB.Model(&models.User{}).
		Where("is_active = ?", true).
		Count(&total).Error; err != nil {
		return nil, err
	}

	info := &RankInfo{
		Rank:   int(higher) + 1,
		Total:  int(total),
		Points: metric,
		Period: period,
	}
	if total > 0 {
		info.Percentile = int(math.Round(float64(total-int64(info.Rank)+1) / float64(total) * 100))
	}
	return info, nil
}
