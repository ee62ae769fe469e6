package services

import (
	"context"
	"errors"
	"form-builder/apperr"
	"form-builder/logger"
	"form-builder/models"
	"form-builder/repositories"
	"form-builder/types"
	"strings"

	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxTreeDepth bounds recursion so a corrupted parent chain fails fast.
const maxTreeDepth = 64

const historyTypeMenu = "menu"

// FormChecker reports whether a form exists.
type FormChecker interface {
	Exists(ctx context.Context, id types.SnowflakeID) (bool, error)
}

type CreateMenuInput struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Icon        string             `json:"icon"`
	Type        models.MenuType    `json:"type" validate:"required"`
	Config      *models.MenuConfig `json:"config" validate:"required"`
	ParentID    *types.SnowflakeID `json:"parentId"`
	Permissions []string           `json:"permissions"`
	Roles       []string           `json:"roles"`
	Status      models.MenuStatus  `json:"status"`
}

// UpdateMenuInput is a partial update. Order and parent are absent on
// purpose: they only change through ReorderMenus and MoveMenu.
type UpdateMenuInput struct {
	Title       *string            `json:"title" validate:"omitempty,max=255"`
	Icon        *string            `json:"icon"`
	Type        *models.MenuType   `json:"type"`
	Config      *models.MenuConfig `json:"config"`
	Permissions *[]string          `json:"permissions"`
	Roles       *[]string          `json:"roles"`
	Status      *models.MenuStatus `json:"status"`
}

// MenuService owns the menu forest: tree reads plus the structural
// mutations that keep it acyclic and ordered.
type MenuService struct {
	repo  *repositories.MenuRepository
	forms FormChecker
	log   *logger.Logger
}

func NewMenuService(repo *repositories.MenuRepository, forms FormChecker, log *logger.Logger) *MenuService {
	return &MenuService{repo: repo, forms: forms, log: log.With("service", "MenuService")}
}

// GetMenuTree returns every root menu with its descendants attached.
func (s *MenuService) GetMenuTree(ctx context.Context) ([]*models.Menu, error) {
	var roots []*models.Menu
	err := s.repo.Transaction(ctx, func(repo *repositories.MenuRepository) error {
		var err error
		roots, err = repo.FindByParent(ctx, nil)
		if err != nil {
			return err
		}
		for _, root := range roots {
			if err := loadChildren(ctx, repo, root, 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("menu.tree", nil, err)
	}
	if roots == nil {
		roots = []*models.Menu{}
	}
	return roots, nil
}

// GetMenuWithChildren returns one menu with its whole subtree.
func (s *MenuService) GetMenuWithChildren(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	var menu *models.Menu
	err := s.repo.Transaction(ctx, func(repo *repositories.MenuRepository) error {
		var err error
		menu, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return loadChildren(ctx, repo, menu, 1)
	})
	if err != nil {
		return nil, s.fail("menu.get", &id, err)
	}
	return menu, nil
}

func loadChildren(ctx context.Context, repo *repositories.MenuRepository, node *models.Menu, depth int) error {
	if depth > maxTreeDepth {
		return errTreeTooDeep
	}
	children, err := repo.FindByParent(ctx, &node.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := loadChildren(ctx, repo, child, depth+1); err != nil {
			return err
		}
	}
	if children == nil {
		children = []*models.Menu{}
	}
	node.Children = children
	return nil
}

var errTreeTooDeep = errors.New("menu tree exceeds maximum depth")

// CreateMenu validates input and appends the new menu to the end of its
// sibling group.
func (s *MenuService) CreateMenu(ctx context.Context, in CreateMenuInput, actor string) (*models.Menu, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.MenuStatusActive
	}
	if !in.Status.Valid() {
		return nil, apperr.Validation("status must be one of active, archived")
	}
	if err := s.validateConfig(ctx, in.Type, in.Config); err != nil {
		return nil, err
	}

	menu := &models.Menu{
		Title:       in.Title,
		Icon:        in.Icon,
		Type:        in.Type,
		Config:      datatypes.NewJSONType(*in.Config),
		ParentID:    in.ParentID,
		Permissions: stringSet(in.Permissions),
		Roles:       stringSet(in.Roles),
		Status:      in.Status,
		CreatedBy:   actor,
		UpdatedBy:   actor,
	}

	err := s.repo.Transaction(ctx, func(repo *repositories.MenuRepository) error {
		if in.ParentID != nil {
			if _, err := repo.FindByIDForUpdate(ctx, *in.ParentID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("parent menu", *in.ParentID)
				}
				return err
			}
		}

		maxOrder, err := repo.MaxOrder(ctx, in.ParentID)
		if err != nil {
			return err
		}
		menu.MenuOrder = maxOrder + 1

		if err := repo.Create(ctx, menu); err != nil {
			return err
		}
		return repositories.InsertTransactionHistory(ctx, repo.DB, menu.ID.String(), "created", historyTypeMenu,
			map[string]interface{}{"title": menu.Title, "parentId": menu.ParentID, "order": menu.MenuOrder}, actor)
	})
	if err != nil {
		return nil, s.fail("menu.create", in.ParentID, err)
	}

	menu.Children = []*models.Menu{}
	return menu, nil
}

// UpdateMenu applies a partial update to the non-structural fields.
func (s *MenuService) UpdateMenu(ctx context.Context, id types.SnowflakeID, in UpdateMenuInput, actor string) (*models.Menu, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail("menu.update", &id, err)
	}

	fields := map[string]interface{}{"updated_by": actor}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation("title is required")
		}
		fields["title"] = title
	}
	if in.Icon != nil {
		fields["icon"] = *in.Icon
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("status must be one of active, archived")
		}
		fields["status"] = *in.Status
	}
	if in.Permissions != nil {
		fields["permissions"] = stringSet(*in.Permissions)
	}
	if in.Roles != nil {
		fields["roles"] = stringSet(*in.Roles)
	}

	if in.Type != nil || in.Config != nil {
		typ := current.Type
		if in.Type != nil {
			typ = *in.Type
		}
		cfg := current.Config.Data()
		if in.Config != nil {
			cfg = *in.Config
		}
		if err := s.validateConfig(ctx, typ, &cfg); err != nil {
			return nil, err
		}
		fields["type"] = typ
		fields["config"] = datatypes.NewJSONType(cfg)
	}

	err = s.repo.Transaction(ctx, func(repo *repositories.MenuRepository) error {
		if err := repo.Update(ctx, id, fields); err != nil {
			return err
		}
		return repositories.InsertTransactionHistory(ctx, repo.DB, id.String(), "updated", historyTypeMenu, changedKeys(fields), actor)
	})
	if err != nil {
		return nil, s.fail("menu.update", &id, err)
	}
	return s.GetMenuWithChildren(ctx, id)
}

// DeleteMenu removes a leaf menu. Menus with children are never deleted.
func (s *MenuService) DeleteMenu(ctx context.Context, id types.SnowflakeID, actor string) error {
	err := s.repo.Transaction(ctx, func(repo *repositories.MenuRepository) error {
		menu, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		count, err := repo.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validation("cannot delete menu with children")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return repositories.InsertTransactionHistory(ctx, repo.DB, id.String(), "deleted", historyTypeMenu,
			map[string]interface{}{"title": menu.Title, "parentId": menu.ParentID}, actor)
	})
	return s.fail("menu.delete", &id, err)
}

// ReorderMenus rewrites the order of a whole sibling group in one
// transaction. menuIDs must list exactly the current children of
// parentID; a nil parent addresses the root group.
func (s *MenuService) ReorderMenus(ctx context.Context, parentID *types.SnowflakeID, menuIDs []types.SnowflakeID, actor string) ([]*models.Menu, error) {
	if len(menuIDs) == 0 {
		return nil, apperr.Validation("menuIds must be a non-empty array")
	}
	wanted := slices.Clone(menuIDs)
	slices.Sort(wanted)
	if len(slices.Compact(wanted)) != len(menuIDs) {
		return nil, apperr.Validation("menuIds must not contain duplicates")
	}

	var siblings []*models.Menu
	err := s.repo.Transaction(ctx, func(repo *repositories.MenuRepository) error {
		if parentID != nil {
			if _, err := repo.FindByIDForUpdate(ctx, *parentID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("parent menu", *parentID)
				}
				return err
			}
		}

		current, err := repo.ChildIDs(ctx, parentID)
		if err != nil {
			return err
		}
		slices.Sort(current)
		if !slices.Equal(current, wanted) {
			return apperr.Validation("menuIds must list exactly the children of the parent menu")
		}

		if err := repo.SetOrders(ctx, menuIDs); err != nil {
			return err
		}
		ref := "root"
		if parentID != nil {
			ref = parentID.String()
		}
		if err := repositories.InsertTransactionHistory(ctx, repo.DB, ref, "reordered", historyTypeMenu,
			map[string]interface{}{"menuIds": menuIDs}, actor); err != nil {
			return err
		}

		siblings, err = repo.FindByParent(ctx, parentID)
		return err
	})
	if err != nil {
		return nil, s.fail("menu.reorder", parentID, err)
	}
	return siblings, nil
}

// MoveMenu re-parents id under newParentID (nil for root), appending it
// to the new sibling group. The cycle check and the write share one
// transaction, and both rows are locked where the dialect allows it.
func (s *MenuService) MoveMenu(ctx context.Context, id types.SnowflakeID, newParentID *types.SnowflakeID, actor string) (*models.Menu, error) {
	err := s.repo.Transaction(ctx, func(repo *repositories.MenuRepository) error {
		menu, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if newParentID != nil {
			if *newParentID == id {
				return apperr.Validation("cannot move menu to one of its children")
			}
			if _, err := repo.FindByIDForUpdate(ctx, *newParentID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("parent menu", *newParentID)
				}
				return err
			}
			descendant, err := isDescendant(ctx, repo, id, *newParentID)
			if err != nil {
				return err
			}
			if descendant {
				return apperr.Validation("cannot move menu to one of its children")
			}
		}

		if sameParent(menu.ParentID, newParentID) {
			return nil
		}

		maxOrder, err := repo.MaxOrder(ctx, newParentID)
		if err != nil {
			return err
		}
		var parentVal interface{}
		if newParentID != nil {
			parentVal = *newParentID
		}
		if err := repo.Update(ctx, id, map[string]interface{}{
			"parent_id":  parentVal,
			"menu_order": maxOrder + 1,
			"updated_by": actor,
		}); err != nil {
			return err
		}
		return repositories.InsertTransactionHistory(ctx, repo.DB, id.String(), "moved", historyTypeMenu,
			map[string]interface{}{"from": menu.ParentID, "to": newParentID, "order": maxOrder + 1}, actor)
	})
	if err != nil {
		return nil, s.fail("menu.move", &id, err)
	}
	return s.GetMenuWithChildren(ctx, id)
}

// isDescendant walks the subtree under rootID depth first and reports
// whether target is in it.
func isDescendant(ctx context.Context, repo *repositories.MenuRepository, rootID, target types.SnowflakeID) (bool, error) {
	visited := map[types.SnowflakeID]bool{rootID: true}
	var walk func(id types.SnowflakeID, depth int) (bool, error)
	walk = func(id types.SnowflakeID, depth int) (bool, error) {
		if depth > maxTreeDepth {
			return false, errTreeTooDeep
		}
		children, err := repo.ChildIDs(ctx, &id)
		if err != nil {
			return false, err
		}
		for _, child := range children {
			if child == target {
				return true, nil
			}
		}
		for _, child := range children {
			if visited[child] {
				return false, errTreeTooDeep
			}
			visited[child] = true
			found, err := walk(child, depth+1)
			if err != nil || found {
				return found, err
			}
		}
		return false, nil
	}
	return walk(rootID, 1)
}

// GetMenuHistory lists the audit entries recorded for a menu.
func (s *MenuService) GetMenuHistory(ctx context.Context, id types.SnowflakeID) ([]models.TransactionHistory, error) {
	entries, err := repositories.ListTransactionHistory(ctx, s.repo.DB, historyTypeMenu, id.String())
	if err != nil {
		return nil, s.fail("menu.history", &id, err)
	}
	if entries == nil {
		entries = []models.TransactionHistory{}
	}
	return entries, nil
}

func (s *MenuService) validateConfig(ctx context.Context, typ models.MenuType, cfg *models.MenuConfig) error {
	if !typ.Valid() {
		return apperr.Validation("type must be one of STATIC, DYNAMIC, FORM")
	}
	if cfg == nil {
		return apperr.Validation("config is required")
	}

	switch typ {
	case models.MenuTypeStatic:
		if cfg.Static == nil || strings.TrimSpace(cfg.Static.Route) == "" {
			return apperr.Validation("config.static.route is required for STATIC menus")
		}
	case models.MenuTypeDynamic:
		if cfg.Dynamic == nil || strings.TrimSpace(cfg.Dynamic.DataSource) == "" {
			return apperr.Validation("config.dynamic.dataSource is required for DYNAMIC menus")
		}
	case models.MenuTypeForm:
		if cfg.Form == nil || cfg.Form.FormID == 0 {
			return apperr.Validation("config.form.formId is required for FORM menus")
		}
		exists, err := s.forms.Exists(ctx, cfg.Form.FormID)
		if err != nil {
			return s.fail("menu.validate", &cfg.Form.FormID, err)
		}
		if !exists {
			return apperr.Validation("form %s does not exist", cfg.Form.FormID)
		}
	}
	return nil
}

// fail maps repository errors onto the error taxonomy. Errors already
// in the taxonomy pass through untouched.
func (s *MenuService) fail(op string, id *types.SnowflakeID, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && id != nil {
		return apperr.NotFound("menu", *id)
	}

	target := ""
	if id != nil {
		target = id.String()
	}
	s.log.Error("menu operation failed", "op", op, "id", target, "error", err)
	return apperr.Internal(op, err)
}

func sameParent(a, b *types.SnowflakeID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// stringSet trims, drops empties and de-duplicates while keeping the
// first-seen order.
func stringSet(in []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func changedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "updated_by" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
