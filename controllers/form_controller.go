package controllers

import (
	"encoding/json"
	"fmt"
	"form-builder/controllers/helpers"
	"form-builder/logger"
	"form-builder/middleware"
	"form-builder/models"
	"form-builder/services"

	"github.com/gofiber/fiber/v2"
)

type FormController struct {
	Log      *logger.Logger
	Notifier services.ResponseNotifier
}

func NewFormController(log *logger.Logger, notifier services.ResponseNotifier) *FormController {
	return &FormController{Log: log, Notifier: notifier}
}

func (fc *FormController) registry(ctx *fiber.Ctx) *services.Registry {
	return services.NewRegistry(middleware.DB(ctx), fc.Log, fc.Notifier)
}

func (fc *FormController) GetAllForms(ctx *fiber.Ctx) error {
	forms, err := fc.registry(ctx).Forms.List(ctx.UserContext(), models.FormStatus(ctx.Query("status")))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, forms, "")
}

func (fc *FormController) GetFormByID(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	form, err := fc.registry(ctx).Forms.Get(ctx.UserContext(), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, form, "")
}

func (fc *FormController) CreateForm(ctx *fiber.Ctx) error {
	var input services.CreateFormInput
	if err := ctx.BodyParser(&input); err != nil {
		return helpers.BadRequest(ctx, "Invalid input: "+err.Error())
	}
	form, err := fc.registry(ctx).Forms.Create(ctx.UserContext(), input, middleware.Actor(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, form, "Form created successfully")
}

func (fc *FormController) UpdateForm(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input services.UpdateFormInput
	if err := ctx.BodyParser(&input); err != nil {
		return helpers.BadRequest(ctx, "Invalid input: "+err.Error())
	}
	form, err := fc.registry(ctx).Forms.Update(ctx.UserContext(), id, input, middleware.Actor(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, form, "Form updated successfully")
}

func (fc *FormController) DeleteForm(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	if err := fc.registry(ctx).Forms.Delete(ctx.UserContext(), id); err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, nil, "Form deleted successfully")
}

type submitRequest struct {
	Answers json.RawMessage `json:"answers"`
}

func (fc *FormController) SubmitResponse(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input submitRequest
	if err := ctx.BodyParser(&input); err != nil {
		return helpers.BadRequest(ctx, "Invalid input: "+err.Error())
	}
	resp, err := fc.registry(ctx).Responses.Submit(ctx.UserContext(), id, input.Answers, middleware.Actor(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, resp, "Response submitted successfully")
}

func (fc *FormController) GetFormResponses(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	responses, err := fc.registry(ctx).Responses.List(ctx.UserContext(), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, responses, "")
}

func (fc *FormController) ExportResponses(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	f, err := fc.registry(ctx).Responses.ExportXLSX(ctx.UserContext(), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		fc.Log.Error("xlsx export failed", "form_id", id.String(), "error", err)
		return helpers.Fail(ctx, err)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="form-%s-responses.xlsx"`, id))
	return ctx.Send(buf.Bytes())
}

func (fc *FormController) GetResponseByID(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	resp, err := fc.registry(ctx).Responses.Get(ctx.UserContext(), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, resp, "")
}

func (fc *FormController) DeleteResponse(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	if err := fc.registry(ctx).Responses.Delete(ctx.UserContext(), id); err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, nil, "Response deleted successfully")
}
