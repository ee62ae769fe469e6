package routes

import (
	"form-builder/controllers"
	"form-builder/logger"

	"github.com/gofiber/fiber/v2"
)

func SetupMenuRoutes(router fiber.Router, log *logger.Logger) {
	menuController := controllers.NewMenuController(log)

	api := router.Group("/menus")

	api.Get("/tree", menuController.GetMenuTree)
	api.Post("/reorder", menuController.ReorderMenus)
	api.Get("/:id", menuController.GetMenuByID)
	api.Get("/:id/history", menuController.GetMenuHistory)
	api.Post("/", menuController.CreateMenu)
	api.Put("/:id", menuController.UpdateMenu)
	api.Delete("/:id", menuController.DeleteMenu)
	api.Post("/:id/move", menuController.MoveMenu)
}
