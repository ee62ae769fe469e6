package controllers

import (
	"form-builder/apperr"
	"form-builder/controllers/helpers"
	"form-builder/logger"
	"form-builder/middleware"
	"form-builder/services"
	"form-builder/types"

	"github.com/gofiber/fiber/v2"
)

type MenuController struct {
	Log *logger.Logger
}

func NewMenuController(log *logger.Logger) *MenuController {
	return &MenuController{Log: log}
}

func (mc *MenuController) service(ctx *fiber.Ctx) *services.MenuService {
	return services.NewRegistry(middleware.DB(ctx), mc.Log, nil).Menus
}

// parseID reads a snowflake id route param.
func parseID(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	id, err := types.ParseSnowflakeID(ctx.Params(name))
	if err != nil {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

func (mc *MenuController) GetMenuTree(ctx *fiber.Ctx) error {
	tree, err := mc.service(ctx).GetMenuTree(ctx.UserContext())
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, tree, "")
}

func (mc *MenuController) GetMenuByID(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	menu, err := mc.service(ctx).GetMenuWithChildren(ctx.UserContext(), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, menu, "")
}

func (mc *MenuController) CreateMenu(ctx *fiber.Ctx) error {
	var input services.CreateMenuInput
	if err := ctx.BodyParser(&input); err != nil {
		return helpers.BadRequest(ctx, "Invalid input: "+err.Error())
	}
	menu, err := mc.service(ctx).CreateMenu(ctx.UserContext(), input, middleware.Actor(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.Created(ctx, menu, "Menu created successfully")
}

func (mc *MenuController) UpdateMenu(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input services.UpdateMenuInput
	if err := ctx.BodyParser(&input); err != nil {
		return helpers.BadRequest(ctx, "Invalid input: "+err.Error())
	}
	menu, err := mc.service(ctx).UpdateMenu(ctx.UserContext(), id, input, middleware.Actor(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, menu, "Menu updated successfully")
}

func (mc *MenuController) DeleteMenu(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	if err := mc.service(ctx).DeleteMenu(ctx.UserContext(), id, middleware.Actor(ctx)); err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, nil, "Menu deleted successfully")
}

type reorderRequest struct {
	ParentID *types.SnowflakeID  `json:"parentId"`
	MenuIDs  []types.SnowflakeID `json:"menuIds"`
}

func (mc *MenuController) ReorderMenus(ctx *fiber.Ctx) error {
	var input reorderRequest
	if err := ctx.BodyParser(&input); err != nil {
		return helpers.BadRequest(ctx, "Invalid input: "+err.Error())
	}
	menus, err := mc.service(ctx).ReorderMenus(ctx.UserContext(), input.ParentID, input.MenuIDs, middleware.Actor(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, menus, "Menus reordered successfully")
}

type moveRequest struct {
	NewParentID *types.SnowflakeID `json:"newParentId"`
}

func (mc *MenuController) MoveMenu(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	var input moveRequest
	if err := ctx.BodyParser(&input); err != nil {
		return helpers.BadRequest(ctx, "Invalid input: "+err.Error())
	}
	menu, err := mc.service(ctx).MoveMenu(ctx.UserContext(), id, input.NewParentID, middleware.Actor(ctx))
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, menu, "Menu moved successfully")
}

func (mc *MenuController) GetMenuHistory(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	entries, err := mc.service(ctx).GetMenuHistory(ctx.UserContext(), id)
	if err != nil {
		return helpers.Fail(ctx, err)
	}
	return helpers.OK(ctx, entries, "")
}
