package services

import (
	"form-builder/logger"
	"form-builder/repositories"

	"gorm.io/gorm"
)

// Registry wires the services of one tenant database. Services hold no
// state beyond their repositories, so building one per request is cheap.
type Registry struct {
	Menus     *MenuService
	Forms     *FormService
	Responses *ResponseService
}

func NewRegistry(db *gorm.DB, log *logger.Logger, notifier ResponseNotifier) *Registry {
	menuRepo := repositories.NewMenuRepository(db)
	formRepo := repositories.NewFormRepository(db)
	forms := NewFormService(formRepo, menuRepo, log)
	return &Registry{
		Menus:     NewMenuService(menuRepo, forms, log),
		Forms:     forms,
		Responses: NewResponseService(formRepo, repositories.NewResponseRepository(db), notifier, log),
	}
}
