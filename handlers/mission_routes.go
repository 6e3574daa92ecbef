// handlers/mission_routes.go
package handlers

import (
	"volunteer-hub-system/middleware"
	"volunteer-hub-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMissionRoutes(app *fiber.App, missionService *services.MissionService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/missions", missionService.GetAllMissions)
	securedGroup.Get("/missions/:id", missionService.GetMission)

	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Post("/missions", missionService.CreateMission)
	adminGroup.Patch("/missions/:id", missionService.UpdateMission)
	adminGroup.Post("/missions/:id/publish", missionService.PublishMission)
	adminGroup.Post("/missions/:id/close", missionService.CloseMission)
	adminGroup.Post("/missions/:id/shifts", missionService.AddShift)
	adminGroup.Get("/missions/:id/export", missionService.ExportParticipations)
}
