package repositories

import (
	"context"
	"form-builder/models"
	"form-builder/types"

	"gorm.io/gorm"
)

type FormRepository struct {
	DB *gorm.DB
}

func NewFormRepository(DB *gorm.DB) *FormRepository {
	return &FormRepository{DB: DB}
}

func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	return r.DB.WithContext(ctx).Create(form).Error
}

func (r *FormRepository) GetByID(ctx context.Context, id types.SnowflakeID) (*models.Form, error) {
	var form models.Form
	if err := r.DB.WithContext(ctx).First(&form, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *FormRepository) Exists(ctx context.Context, id types.SnowflakeID) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Form{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// GetAll lists forms newest first; an empty status lists every form.
func (r *FormRepository) GetAll(ctx context.Context, status models.FormStatus) ([]models.Form, error) {
	q := r.DB.WithContext(ctx).Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	forms := []models.Form{}
	err := q.Find(&forms).Error
	return forms, err
}

func (r *FormRepository) Update(ctx context.Context, id types.SnowflakeID, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&models.Form{}).Where("id = ?", id).Updates(fields).Error
}

func (r *FormRepository) Delete(ctx context.Context, id types.SnowflakeID) error {
	return r.DB.WithContext(ctx).Delete(&models.Form{}, "id = ?", id).Error
}

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(DB *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: DB}
}

func (r *ResponseRepository) Create(ctx context.Context, resp *models.FormResponse) error {
	return r.DB.WithContext(ctx).Create(resp).Error
}

func (r *ResponseRepository) GetByID(ctx context.Context, id types.SnowflakeID) (*models.FormResponse, error) {
	var resp models.FormResponse
	if err := r.DB.WithContext(ctx).First(&resp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByForm lists responses of one form in submission order.
func (r *ResponseRepository) GetByForm(ctx context.Context, formID types.SnowflakeID) ([]models.FormResponse, error) {
	responses := []models.FormResponse{}
	err := r.DB.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("submitted_at asc").
		Order("id asc").
		Find(&responses).Error
	return responses, err
}

func (r *ResponseRepository) Delete(ctx context.Context, id types.SnowflakeID) error {
	return r.DB.WithContext(ctx).Delete(&models.FormResponse{}, "id = ?", id).Error
}
