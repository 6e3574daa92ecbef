// handlers/gamification_routes.go
package handlers

import (
	"errors"
	"strconv"

	"volunteer-hub-system/middleware"
	"volunteer-hub-system/models"
	"volunteer-hub-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupGamificationRoutes(app *fiber.App, points *services.PointsService, stats *services.StatsService, achievements *services.AchievementService, leaderboard *services.LeaderboardService) {
	validate := validator.New()

	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// Leaderboard is read-only and visible to every authenticated volunteer.
	securedGroup.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		period := c.Query("period", services.PeriodAll)

		users, err := leaderboard.GetTopVolunteers(limit, period)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch leaderboard",
				"cause": err.Error(),
			})
		}

		entries := make([]fiber.Map, 0, len(users))
		for i, u := range users {
			pointsValue := u.TotalPoints
			if period == services.PeriodMonthly {
				pointsValue = u.MonthlyPoints
			}
			entries = append(entries, fiber.Map{
				"position":   i + 1,
				"user_id":    u.ID,
				"username":   u.Username,
				"department": u.Department,
				"points":     pointsValue,
			})
		}
		return c.JSON(fiber.Map{
			"period":  period,
			"entries": entries,
		})
	})

	securedGroup.Get("/user/rank", func(c *fiber.Ctx) error {
		user, err := currentUser(c, points.DB)
		if err != nil {
			return userLookupError(c, err)
		}
		period := c.Query("period", services.PeriodAll)
		info, rankErr := leaderboard.GetUserRank(user, period)
		if rankErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute rank",
				"cause": rankErr.Error(),
			})
		}
		return c.JSON(info)
	})

	securedGroup.Get("/user/stats", func(c *fiber.Ctx) error {
		user, err := currentUser(c, points.DB)
		if err != nil {
			return userLookupError(c, err)
		}
		volunteerStats, statsErr := stats.ComputeForUser(user.ID)
		if statsErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute statistics",
				"cause": statsErr.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"user_id":        user.ID,
			"total_points":   user.TotalPoints,
			"monthly_points": user.MonthlyPoints,
			"stats":          volunteerStats,
		})
	})

	securedGroup.Get("/user/points", func(c *fiber.Ctx) error {
		user, err := currentUser(c, points.DB)
		if err != nil {
			return userLookupError(c, err)
		}
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		ledger, ledgerErr := points.GetLedger(user.ID, limit)
		if ledgerErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch point history",
				"cause": ledgerErr.Error(),
			})
		}
		return c.JSON(ledger)
	})

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		user, err := currentUser(c, points.DB)
		if err != nil {
			return userLookupError(c, err)
		}
		earned, listErr := achievements.ListForUser(user.ID)
		if listErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch achievements",
				"cause": listErr.Error(),
			})
		}

		var response []fiber.Map
		for _, ua := range earned {
			entry := fiber.Map{
				"id":        ua.ID,
				"earned_at": ua.EarnedAt,
				"notified":  ua.Notified,
			}
			if ua.Achievement != nil {
				entry["code"] = ua.Achievement.Code
				entry["name"] = ua.Achievement.Name
				entry["description"] = ua.Achievement.Description
				entry["points_reward"] = ua.Achievement.PointsReward
			}
			response = append(response, entry)
		}
		return c.JSON(response)
	})

	securedGroup.Post("/user/achievements/:id/notified", func(c *fiber.Ctx) error {
		user, err := currentUser(c, points.DB)
		if err != nil {
			return userLookupError(c, err)
		}
		if err := achievements.MarkNotified(user.ID, c.Params("id")); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "achievement not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mark achievement"})
		}
		return c.JSON(fiber.Map{"message": "marked as notified"})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Post("/points/grant", func(c *fiber.Ctx) error {
		var req struct {
			UserID      string `json:"user_id" validate:"required,uuid"`
			Points      int    `json:"points" validate:"required,min=1"`
			Description string `json:"description" validate:"max=255"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		var user models.User
		if err := points.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		cfg := services.LoadPointsConfig(middleware.SettingsFrom(c))
		outcome, err := points.WithConfig(cfg).AwardManual(&user, req.Points, req.Description)
		if err != nil {
			if errors.Is(err, services.ErrInvalidManualPoints) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "manual award failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message": "points granted successfully",
			"user_id": req.UserID,
			"outcome": outcome,
		})
	})

	adminGroup.Get("/users/:id/points", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		ledger, err := points.GetLedger(c.Params("id"), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch ledger"})
		}
		return c.JSON(ledger)
	})

	adminGroup.Get("/achievements", func(c *fiber.Ctx) error {
		var catalog []models.Achievement
		if err := achievements.DB.Order("code ASC").Find(&catalog).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch catalog"})
		}
		return c.JSON(catalog)
	})

	adminGroup.Patch("/achievements/:id", func(c *fiber.Ctx) error {
		var req struct {
			IsActive     *bool    `json:"is_active"`
			PointsReward *int     `json:"points_reward" validate:"omitempty,min=0"`
			Threshold    *float64 `json:"threshold" validate:"omitempty,gt=0"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		var ach models.Achievement
		if err := achievements.DB.First(&ach, "id = ?", c.Params("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "achievement not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		if req.IsActive != nil {
			ach.IsActive = *req.IsActive
		}
		if req.PointsReward != nil {
			ach.PointsReward = *req.PointsReward
		}
		if req.Threshold != nil {
			ach.Threshold = *req.Threshold
		}
		if err := achievements.DB.Save(&ach).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update achievement"})
		}
		return c.JSON(ach)
	})

	adminGroup.Put("/settings/:key", func(c *fiber.Ctx) error {
		var req struct {
			Value string `json:"value" validate:"required,max=255"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		cache := middleware.SettingsFrom(c)
		if cache == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "settings cache unavailable"})
		}
		if err := cache.Set(c.Params("key"), req.Value); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store setting"})
		}
		return c.JSON(fiber.Map{"key": c.Params("key"), "value": req.Value})
	})
}

// currentUser resolves the gateway-forwarded external user id to the local
// volunteer record.
func currentUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	externalID, _ := c.Locals("user_id").(string)
	var user models.User
	if err := db.First(&user, "external_user_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// userLookupError maps a currentUser failure onto the response.
func userLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "volunteer record not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching user"})
}
