package models

import "time"

const (
	ParticipationPending  = "PENDING"
	ParticipationApproved = "APPROVED"
	ParticipationRejected = "REJECTED"
	ParticipationCanceled = "CANCELED"
)

// ParticipationRequest links a volunteer to a shift. Attendance fields are
// only written once the mission is CLOSED; after that the row is treated as
// final by the points and statistics services.
type ParticipationRequest struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"index;not null" json:"user_id"`
	User    *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ShiftID string `gorm:"index;not null" json:"shift_id"`
	Shift   *Shift `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`

	Status   string `gorm:"type:varchar(16);default:'PENDING';index" json:"status"`
	Attended bool   `gorm:"default:false" json:"attended"`

	// Optional overrides recorded at attendance confirmation.
	ActualHours *float64   `json:"actual_hours,omitempty"`
	ActualStart *time.Time `json:"actual_start,omitempty"`
	ActualEnd   *time.Time `json:"actual_end,omitempty"`

	Timestamps
}

// CreditedHours is the hours value used for point calculations and hour
// statistics: actual_hours when recorded, else the actual start/end override,
// else the scheduled shift duration. Always zero when the volunteer did not
// attend.
func (p *ParticipationRequest) CreditedHours() float64 {
	if !p.Attended {
		return 0
	}
	if p.ActualHours != nil && *p.ActualHours > 0 {
		return *p.ActualHours
	}
	if p.ActualStart != nil && p.ActualEnd != nil && p.ActualEnd.After(*p.ActualStart) {
		return p.ActualEnd.Sub(*p.ActualStart).Hours()
	}
	if p.Shift != nil {
		return p.Shift.ScheduledHours()
	}
	return 0
}
