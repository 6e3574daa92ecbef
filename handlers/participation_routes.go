// handlers/participation_routes.go
package handlers

import (
	"errors"

	"volunteer-hub-system/middleware"
	"volunteer-hub-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupParticipationRoutes(app *fiber.App, participation *services.ParticipationService) {
	validate := validator.New()

	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Post("/shifts/:id/apply", func(c *fiber.Ctx) error {
		user, err := currentUser(c, participation.DB)
		if err != nil {
			return userLookupError(c, err)
		}
		req, applyErr := participation.Apply(user.ID, c.Params("id"))
		if applyErr != nil {
			return participationError(c, applyErr)
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	})

	securedGroup.Post("/participations/:id/cancel", func(c *fiber.Ctx) error {
		user, err := currentUser(c, participation.DB)
		if err != nil {
			return userLookupError(c, err)
		}
		req, cancelErr := participation.Cancel(c.Params("id"), user.ID)
		if cancelErr != nil {
			return participationError(c, cancelErr)
		}
		return c.JSON(req)
	})

	securedGroup.Get("/participations", func(c *fiber.Ctx) error {
		user, err := currentUser(c, participation.DB)
		if err != nil {
			return userLookupError(c, err)
		}
		requests, listErr := participation.ListForUser(user.ID)
		if listErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch participations"})
		}
		return c.JSON(requests)
	})

	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Get("/shifts/:id/participations", func(c *fiber.Ctx) error {
		requests, err := participation.ListForShift(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch participations"})
		}
		return c.JSON(requests)
	})

	adminGroup.Post("/participations/:id/approve", func(c *fiber.Ctx) error {
		req, err := participation.Approve(c.Params("id"))
		if err != nil {
			return participationError(c, err)
		}
		return c.JSON(req)
	})

	adminGroup.Post("/participations/:id/reject", func(c *fiber.Ctx) error {
		req, err := participation.Reject(c.Params("id"))
		if err != nil {
			return participationError(c, err)
		}
		return c.JSON(req)
	})

	adminGroup.Post("/participations/:id/attendance", func(c *fiber.Ctx) error {
		var body struct {
			Attended    bool     `json:"attended"`
			ActualHours *float64 `json:"actual_hours" validate:"omitempty,gt=0,lte=24"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := validate.Struct(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		cfg := services.LoadPointsConfig(middleware.SettingsFrom(c))
		svc := services.NewParticipationService(participation.DB, participation.Points.WithConfig(cfg))
		req, outcome, err := svc.ConfirmAttendance(c.Params("id"), body.Attended, body.ActualHours)
		if err != nil {
			return participationError(c, err)
		}

		response := fiber.Map{
			"participation":  req,
			"points_awarded": outcome.PointsAwarded,
			"ledger_rows":    outcome.LedgerRows,
			"achievements":   outcome.Evaluation.Awarded,
		}
		if outcome.Evaluation.PartialFailure() {
			response["gamification_incomplete"] = true
		}
		return c.JSON(response)
	})
}

// participationError maps service sentinels onto HTTP statuses.
func participationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, services.ErrMissionNotOpen),
		errors.Is(err, services.ErrMissionNotClosed),
		errors.Is(err, services.ErrNotPending),
		errors.Is(err, services.ErrNotApproved),
		errors.Is(err, services.ErrNotCancelable),
		errors.Is(err, services.ErrAttendanceLockedIn):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrShiftFull),
		errors.Is(err, services.ErrAlreadyApplied):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "operation failed",
			"cause": err.Error(),
		})
	}
}
