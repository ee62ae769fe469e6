package routes

import (
	"form-builder/controllers"
	"form-builder/logger"
	"form-builder/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFormRoutes(router fiber.Router, log *logger.Logger, notifier services.ResponseNotifier) {
	formController := controllers.NewFormController(log, notifier)

	forms := router.Group("/forms")
	forms.Get("/", formController.GetAllForms)
	forms.Post("/", formController.CreateForm)
	forms.Get("/:id", formController.GetFormByID)
	forms.Put("/:id", formController.UpdateForm)
	forms.Delete("/:id", formController.DeleteForm)
	forms.Post("/:id/responses", formController.SubmitResponse)
	forms.Get("/:id/responses", formController.GetFormResponses)
	forms.Get("/:id/responses/export", formController.ExportResponses)

	responses := router.Group("/responses")
	responses.Get("/:id", formController.GetResponseByID)
	responses.Delete("/:id", formController.DeleteResponse)
}
