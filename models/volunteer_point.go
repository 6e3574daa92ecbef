package models

import "time"

type PointReason string

const (
	ReasonShiftCompleted PointReason = "SHIFT_COMPLETED"
	ReasonWeekendBonus   PointReason = "WEEKEND_BONUS"
	ReasonNightBonus     PointReason = "NIGHT_BONUS"
	ReasonMedicalBonus   PointReason = "MEDICAL_BONUS"
	ReasonAchievement    PointReason = "ACHIEVEMENT"
	ReasonManual         PointReason = "MANUAL"
)

// PointSourceType closes the set of entities a ledger row may reference.
type PointSourceType string

const (
	SourceParticipation PointSourceType = "participation"
	SourceAchievement   PointSourceType = "achievement"
)

// PointSource is a tagged reference to the record that produced a ledger row.
type PointSource struct {
	Type PointSourceType
	ID   string
}

func ParticipationSource(id string) *PointSource {
	return &PointSource{Type: SourceParticipation, ID: id}
}

func AchievementSource(id string) *PointSource {
	return &PointSource{Type: SourceAchievement, ID: id}
}

// VolunteerPoint is one immutable ledger row. Rows are only ever inserted;
// the user's denormalized totals are recomputed from the full ledger after
// each award rather than patched incrementally.
type VolunteerPoint struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string      `gorm:"index;not null" json:"user_id"`
	Points      int         `gorm:"not null" json:"points"`
	Reason      PointReason `gorm:"type:varchar(24);not null;index" json:"reason"`
	Description string      `json:"description"`

	SourceType *PointSourceType `gorm:"type:varchar(24)" json:"source_type,omitempty"`
	SourceID   *string          `gorm:"type:uuid" json:"source_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// SetSource attaches a tagged source reference to the row.
func (v *VolunteerPoint) SetSource(src *PointSource) {
	if src == nil {
		return
	}
	v.SourceType = &src.Type
	v.SourceID = &src.ID
}
