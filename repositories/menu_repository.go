package repositories

import (
	"context"
	"form-builder/models"
	"form-builder/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(DB *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: DB}
}

// WithTx returns a repository bound to tx.
func (r *MenuRepository) WithTx(tx *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: tx}
}

// Transaction runs fn with a repository bound to a single transaction.
func (r *MenuRepository) Transaction(ctx context.Context, fn func(repo *MenuRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// siblingScope filters by parent; a nil parent selects the root group.
func siblingScope(parentID *types.SnowflakeID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if parentID == nil {
			return db.Where("parent_id IS NULL")
		}
		return db.Where("parent_id = ?", *parentID)
	}
}

// FindByID returns gorm.ErrRecordNotFound when the menu does not exist.
func (r *MenuRepository) FindByID(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	var menu models.Menu
	if err := r.DB.WithContext(ctx).First(&menu, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

// FindByIDForUpdate is FindByID with a row lock on dialects that have one.
func (r *MenuRepository) FindByIDForUpdate(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	q := r.DB.WithContext(ctx)
	switch r.DB.Dialector.Name() {
	case "postgres", "mysql":
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var menu models.Menu
	if err := q.First(&menu, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

// FindByParent lists a sibling group in display order.
func (r *MenuRepository) FindByParent(ctx context.Context, parentID *types.SnowflakeID) ([]*models.Menu, error) {
	var menus []*models.Menu
	err := r.DB.WithContext(ctx).
		Scopes(siblingScope(parentID)).
		Order("menu_order asc").
		Order("created_at asc").
		Find(&menus).Error
	if err != nil {
		return nil, err
	}
	return menus, nil
}

// ChildIDs lists the ids of a sibling group in display order.
func (r *MenuRepository) ChildIDs(ctx context.Context, parentID *types.SnowflakeID) ([]types.SnowflakeID, error) {
	var ids []types.SnowflakeID
	err := r.DB.WithContext(ctx).
		Model(&models.Menu{}).
		Scopes(siblingScope(parentID)).
		Order("menu_order asc").
		Pluck("id", &ids).Error
	return ids, err
}

// MaxOrder returns the highest order in a sibling group, or -1 when the
// group is empty.
func (r *MenuRepository) MaxOrder(ctx context.Context, parentID *types.SnowflakeID) (int, error) {
	var maxOrder int
	err := r.DB.WithContext(ctx).
		Model(&models.Menu{}).
		Scopes(siblingScope(parentID)).
		Select("COALESCE(MAX(menu_order), -1)").
		Scan(&maxOrder).Error
	return maxOrder, err
}

func (r *MenuRepository) CountChildren(ctx context.Context, id types.SnowflakeID) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.Menu{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}

// CountByForm counts menus whose FORM config points at formID.
func (r *MenuRepository) CountByForm(ctx context.Context, formID types.SnowflakeID) (int64, error) {
	var menus []models.Menu
	if err := r.DB.WithContext(ctx).
		Where("type = ?", models.MenuTypeForm).
		Find(&menus).Error; err != nil {
		return 0, err
	}
	var count int64
	for _, m := range menus {
		if cfg := m.Config.Data(); cfg.Form != nil && cfg.Form.FormID == formID {
			count++
		}
	}
	return count, nil
}

func (r *MenuRepository) Create(ctx context.Context, menu *models.Menu) error {
	return r.DB.WithContext(ctx).Create(menu).Error
}

// Update writes the given columns only.
func (r *MenuRepository) Update(ctx context.Context, id types.SnowflakeID, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).
		Model(&models.Menu{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SetOrders writes order = index for every id; callers wrap it in a
// transaction.
func (r *MenuRepository) SetOrders(ctx context.Context, ids []types.SnowflakeID) error {
	for i, id := range ids {
		if err := r.DB.WithContext(ctx).
			Model(&models.Menu{}).
			Where("id = ?", id).
			Update("menu_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *MenuRepository) Delete(ctx context.Context, id types.SnowflakeID) error {
	return r.DB.WithContext(ctx).Delete(&models.Menu{}, "id = ?", id).Error
}
