package models

import (
	"strings"
	"time"
)

const (
	MissionStatusDraft     = "DRAFT"
	MissionStatusPublished = "PUBLISHED"
	MissionStatusClosed    = "CLOSED"
)

// medicalKeyword marks a mission as medical for bonus-point purposes when it
// appears (case-insensitive) in the mission's category or title.
const medicalKeyword = "medical"

type Mission struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	Category    string    `gorm:"index" json:"category"`
	Status      string    `gorm:"type:varchar(16);default:'DRAFT';index" json:"status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`

	Shifts []Shift `gorm:"foreignKey:MissionID" json:"shifts,omitempty"`

	Timestamps
}

// IsMedical reports whether shifts of this mission qualify for the medical bonus.
func (m *Mission) IsMedical() bool {
	return strings.Contains(strings.ToLower(m.Category), medicalKeyword) ||
		strings.Contains(strings.ToLower(m.Title), medicalKeyword)
}

// Shift is one time-bounded unit of work inside a mission.
type Shift struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	MissionID   string    `gorm:"index;not null" json:"mission_id"`
	Mission     *Mission  `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	Title       string    `json:"title"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	MaxCapacity *int      `json:"max_capacity,omitempty"`

	Timestamps
}

// ScheduledHours is the planned duration of the shift in hours.
func (s *Shift) ScheduledHours() float64 {
	if !s.EndTime.After(s.StartTime) {
		return 0
	}
	return s.EndTime.Sub(s.StartTime).Hours()
}

// IsWeekend reports whether the shift starts on a Saturday or Sunday.
func (s *Shift) IsWeekend() bool {
	wd := s.StartTime.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsNight reports whether the shift starts at 22:00 or later, or before 06:00.
func (s *Shift) IsNight() bool {
	h := s.StartTime.Hour()
	return h >= 22 || h < 6
}

// IsEarly reports whether the shift starts in the early morning (06:00–07:59).
// Night starts are excluded so a shift never counts as both.
func (s *Shift) IsEarly() bool {
	h := s.StartTime.Hour()
	return h >= 6 && h < 8
}
