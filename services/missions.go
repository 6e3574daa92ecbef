package services

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	"volunteer-hub-system/models"
	"volunteer-hub-system/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type MissionService struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewMissionService(db *gorm.DB) *MissionService {
	return &MissionService{DB: db, validate: validator.New()}
}

// CreateMission creates a new draft mission (Admin only).
func (s *MissionService) CreateMission(c *fiber.Ctx) error {
	var req struct {
		Title       string    `json:"title" validate:"required,max=255"`
		Description string    `json:"description"`
		Category    string    `json:"category" validate:"max=100"`
		StartDate   time.Time `json:"start_date" validate:"required"`
		EndDate     time.Time `json:"end_date" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !req.EndDate.After(req.StartDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be after start_date"})
	}

	mission := &models.Mission{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        s.uniqueSlug(req.Title),
		Description: req.Description,
		Category:    req.Category,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      models.MissionStatusDraft,
	}
	if err := s.DB.Create(mission).Error; err != nil {
		log.Printf("DB Error creating mission: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create mission"})
	}
	return c.Status(fiber.StatusCreated).JSON(mission)
}

// uniqueSlug derives a URL slug from the title, suffixing a counter on collision.
func (s *MissionService) uniqueSlug(title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		s.DB.Model(&models.Mission{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// UpdateMission applies partial updates to a draft or published mission.
func (s *MissionService) UpdateMission(c *fiber.Ctx) error {
	id := c.Params("id")
	var mission models.Mission
	if err := s.DB.First(&mission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if mission.Status == models.MissionStatusClosed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Closed missions cannot be edited"})
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Category    *string    `json:"category"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title != nil {
		mission.Title = *req.Title
	}
	if req.Description != nil {
		mission.Description = *req.Description
	}
	if req.Category != nil {
		mission.Category = *req.Category
	}
	if req.StartDate != nil {
		mission.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		mission.EndDate = *req.EndDate
	}
	if err := s.DB.Save(&mission).Error; err != nil {
		log.Printf("DB Error updating mission: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update mission"})
	}
	return c.JSON(mission)
}

// PublishMission opens a draft mission for applications.
func (s *MissionService) PublishMission(c *fiber.Ctx) error {
	return s.transition(c, models.MissionStatusDraft, models.MissionStatusPublished)
}

// CloseMission closes a published mission; attendance confirmation becomes
// available and applications stop.
func (s *MissionService) CloseMission(c *fiber.Ctx) error {
	return s.transition(c, models.MissionStatusPublished, models.MissionStatusClosed)
}

func (s *MissionService) transition(c *fiber.Ctx, from, to string) error {
	id := c.Params("id")
	var mission models.Mission
	if err := s.DB.First(&mission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if mission.Status != from {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("mission must be %s to move to %s", from, to),
		})
	}
	mission.Status = to
	if err := s.DB.Save(&mission).Error; err != nil {
		log.Printf("DB Error on mission %s → %s: %v", from, to, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update mission status"})
	}
	log.Printf("✅ Mission %s moved %s → %s", mission.Slug, from, to)
	return c.JSON(mission)
}

// GetAllMissions lists missions with shifts. Volunteers only see published
// and closed missions; admins also see drafts via ?status=.
func (s *MissionService) GetAllMissions(c *fiber.Ctx) error {
	query := s.DB.Preload("Shifts", func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time ASC")
	})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status IN ?", []string{models.MissionStatusPublished, models.MissionStatusClosed})
	}

	var missions []models.Mission
	if err := query.Order("start_date ASC").Find(&missions).Error; err != nil {
		log.Printf("ERROR fetching missions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch missions"})
	}
	return c.JSON(missions)
}

// GetMission fetches one mission by id or slug.
func (s *MissionService) GetMission(c *fiber.Ctx) error {
	key := c.Params("id")
	var mission models.Mission
	err := s.DB.Preload("Shifts", func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time ASC")
	}).Where("id = ? OR slug = ?", key, key).First(&mission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(mission)
}

// AddShift attaches a shift to a mission (Admin only).
func (s *MissionService) AddShift(c *fiber.Ctx) error {
	missionID := c.Params("id")
	var mission models.Mission
	if err := s.DB.First(&mission, "id = ?", missionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if mission.Status == models.MissionStatusClosed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot add shifts to a closed mission"})
	}

	var req struct {
		Title       string    `json:"title" validate:"max=255"`
		StartTime   time.Time `json:"start_time" validate:"required"`
		EndTime     time.Time `json:"end_time" validate:"required"`
		MaxCapacity *int      `json:"max_capacity" validate:"omitempty,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !req.EndTime.After(req.StartTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}

	shift := &models.Shift{
		ID:          uuid.NewString(),
		MissionID:   mission.ID,
		Title:       req.Title,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxCapacity: req.MaxCapacity,
	}
	if err := s.DB.Create(shift).Error; err != nil {
		log.Printf("DB Error creating shift: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create shift"})
	}
	return c.Status(fiber.StatusCreated).JSON(shift)
}

// ExportParticipations streams a CSV of every participation request on the
// mission. With ?upload=true the sheet is also archived to object storage and
// the public URL returned instead.
func (s *MissionService) ExportParticipations(c *fiber.Ctx) error {
	missionID := c.Params("id")
	var mission models.Mission
	if err := s.DB.First(&mission, "id = ?", missionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var requests []models.ParticipationRequest
	err := s.DB.Preload("User").Preload("Shift").
		Joins("JOIN shifts ON shifts.id = participation_requests.shift_id").
		Where("shifts.mission_id = ?", missionID).
		Order("participation_requests.created_at ASC").
		Find(&requests).Error
	if err != nil {
		log.Printf("DB Error exporting mission %s: %v", missionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load participations"})
	}

	var buf bytes.Buffer
	if err := utils.WriteParticipationCSV(&buf, requests); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build CSV"})
	}

	if c.Query("upload") == "true" {
		key := fmt.Sprintf("exports/%s-%s.csv", mission.Slug, time.Now().Format("20060102-150405"))
		url, err := utils.UploadBytesToR2(buf.Bytes(), key, "text/csv")
		if err != nil {
			log.Printf("R2 upload failed for export %s: %v", key, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to archive export"})
		}
		return c.JSON(fiber.Map{"url": url, "rows": len(requests)})
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", mission.Slug+".csv"))
	return c.Send(buf.Bytes())
}

// CloseExpiredMissions moves published missions past their end date to
// CLOSED. Called by the scheduler.
func (s *MissionService) CloseExpiredMissions() (int, error) {
	res := s.DB.Model(&models.Mission{}).
		Where("status = ? AND end_date < ?", models.MissionStatusPublished, time.Now()).
		Update("status", models.MissionStatusClosed)
	return int(res.RowsAffected), res.Error
}
