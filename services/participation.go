package services

import (
	"errors"
	"fmt"

	"volunteer-hub-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMissionNotOpen     = errors.New("mission is not accepting applications")
	ErrMissionNotClosed   = errors.New("attendance can only be confirmed on a closed mission")
	ErrShiftFull          = errors.New("shift has reached its capacity")
	ErrAlreadyApplied     = errors.New("an application for this shift already exists")
	ErrNotPending         = errors.New("request is not pending")
	ErrNotApproved        = errors.New("request is not approved")
	ErrNotCancelable      = errors.New("request can no longer be canceled")
	ErrAttendanceLockedIn = errors.New("attendance has already been confirmed")
)

type ParticipationService struct {
	DB     *gorm.DB
	Points *PointsService
}

func NewParticipationService(db *gorm.DB, points *PointsService) *ParticipationService {
	return &ParticipationService{DB: db, Points: points}
}

// Apply creates a PENDING request for the user on the shift. The capacity
// check counts APPROVED requests only, so pending applications can exceed
// capacity and be filtered at approval time.
func (s *ParticipationService) Apply(userID, shiftID string) (*models.ParticipationRequest, error) {
	var shift models.Shift
	if err := s.DB.Preload("Mission").First(&shift, "id = ?", shiftID).Error; err != nil {
		return nil, err
	}
	if shift.Mission == nil || shift.Mission.Status != models.MissionStatusPublished {
		return nil, ErrMissionNotOpen
	}

	var existing int64
	err := s.DB.Model(&models.ParticipationRequest{}).
		Where("user_id = ? AND shift_id = ? AND status IN ?", userID, shiftID,
			[]string{models.ParticipationPending, models.ParticipationApproved}).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyApplied
	}

	req := &models.ParticipationRequest{
		ID:      uuid.NewString(),
		UserID:  userID,
		ShiftID: shiftID,
		Status:  models.ParticipationPending,
	}
	if err := s.DB.Create(req).Error; err != nil {
		return nil, fmt.Errorf("failed to create participation request: %w", err)
	}
	return req, nil
}

// Approve moves a PENDING request to APPROVED, enforcing shift capacity.
func (s *ParticipationService) Approve(requestID string) (*models.ParticipationRequest, error) {
	var req models.ParticipationRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Shift").First(&req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if req.Status != models.ParticipationPending {
			return ErrNotPending
		}
		if req.Shift != nil && req.Shift.MaxCapacity != nil {
			var approved int64
			if err := tx.Model(&models.ParticipationRequest{}).
				Where("shift_id = ? AND status = ?", req.ShiftID, models.ParticipationApproved).
				Count(&approved).Error; err != nil {
				return err
			}
			if approved >= int64(*req.Shift.MaxCapacity) {
				return ErrShiftFull
			}
		}
		req.Status = models.ParticipationApproved
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Reject moves a PENDING request to REJECTED.
func (s *ParticipationService) Reject(requestID string) (*models.ParticipationRequest, error) {
	var req models.ParticipationRequest
	if err := s.DB.First(&req, "id = ?", requestID).Error; err != nil {
		return nil, err
	}
	if req.Status != models.ParticipationPending {
		return nil, ErrNotPending
	}
	req.Status = models.ParticipationRejected
	if err := s.DB.Save(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Cancel lets the owning volunteer withdraw a PENDING or APPROVED request.
// Not allowed once attendance is locked in.
func (s *ParticipationService) Cancel(requestID, userID string) (*models.ParticipationRequest, error) {
	var req models.ParticipationRequest
	if err := s.DB.First(&req, "id = ? AND user_id = ?", requestID, userID).Error; err != nil {
		return nil, err
	}
	if req.Attended {
		return nil, ErrAttendanceLockedIn
	}
	if req.Status != models.ParticipationPending && req.Status != models.ParticipationApproved {
		return nil, ErrNotCancelable
	}
	req.Status = models.ParticipationCanceled
	if err := s.DB.Save(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ConfirmAttendance finalizes attendance on an APPROVED request of a CLOSED
// mission and, when attended, awards points. A failed gamification pass is
// reported inside the outcome and never fails the confirmation itself.
func (s *ParticipationService) ConfirmAttendance(requestID string, attended bool, actualHours *float64) (*models.ParticipationRequest, AwardOutcome, error) {
	var outcome AwardOutcome

	var req models.ParticipationRequest
	err := s.DB.Preload("User").Preload("Shift").Preload("Shift.Mission").
		First(&req, "id = ?", requestID).Error
	if err != nil {
		return nil, outcome, err
	}
	if req.Status != models.ParticipationApproved {
		return nil, outcome, ErrNotApproved
	}
	if req.Shift == nil || req.Shift.Mission == nil || req.Shift.Mission.Status != models.MissionStatusClosed {
		return nil, outcome, ErrMissionNotClosed
	}
	if req.Attended {
		return nil, outcome, ErrAttendanceLockedIn
	}

	req.Attended = attended
	if actualHours != nil && *actualHours > 0 {
		req.ActualHours = actualHours
	}
	if err := s.DB.Save(&req).Error; err != nil {
		return nil, outcome, fmt.Errorf("failed to record attendance: %w", err)
	}

	if attended && req.User != nil {
		outcome, err = s.Points.AwardForShift(req.User, req.Shift, &req)
		if err != nil {
			// Attendance stays confirmed even when the award fails.
			outcome.Evaluation.Errors = append(outcome.Evaluation.Errors, err)
		}
	}
	return &req, outcome, nil
}

// ListForUser returns the user's requests, newest first.
func (s *ParticipationService) ListForUser(userID string) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	err := s.DB.Preload("Shift").Preload("Shift.Mission").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListForShift returns every request on a shift for the admin review screen.
func (s *ParticipationService) ListForShift(shiftID string) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	err := s.DB.Preload("User").
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}
