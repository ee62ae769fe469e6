package services

import (
	"context"
	"encoding/json"
	"errors"
	"form-builder/apperr"
	"form-builder/logger"
	"form-builder/models"
	"form-builder/repositories"
	"form-builder/types"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateFormInput struct {
	Name         string            `json:"name" validate:"required,max=255"`
	Description  string            `json:"description"`
	Fields       json.RawMessage   `json:"fields"`
	Settings     json.RawMessage   `json:"settings"`
	Styling      json.RawMessage   `json:"styling"`
	Status       models.FormStatus `json:"status"`
	NotifyEmails []string          `json:"notifyEmails" validate:"omitempty,dive,email"`
}

type UpdateFormInput struct {
	Name         *string            `json:"name" validate:"omitempty,max=255"`
	Description  *string            `json:"description"`
	Fields       json.RawMessage    `json:"fields"`
	Settings     json.RawMessage    `json:"settings"`
	Styling      json.RawMessage    `json:"styling"`
	Status       *models.FormStatus `json:"status"`
	NotifyEmails *[]string          `json:"notifyEmails" validate:"omitempty,dive,email"`
}

// MenuReferences counts FORM menus that point at a form.
type MenuReferences interface {
	CountByForm(ctx context.Context, formID types.SnowflakeID) (int64, error)
}

type FormService struct {
	repo  *repositories.FormRepository
	menus MenuReferences
	log   *logger.Logger
}

func NewFormService(repo *repositories.FormRepository, menus MenuReferences, log *logger.Logger) *FormService {
	return &FormService{repo: repo, menus: menus, log: log.With("service", "FormService")}
}

func (s *FormService) Create(ctx context.Context, in CreateFormInput, actor string) (*models.Form, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.FormStatusDraft
	}
	if !in.Status.Valid() {
		return nil, apperr.Validation("status must be one of draft, published, archived")
	}

	fields, err := jsonDoc("fields", in.Fields, '[', "[]")
	if err != nil {
		return nil, err
	}
	settings, err := jsonDoc("settings", in.Settings, '{', "{}")
	if err != nil {
		return nil, err
	}
	styling, err := jsonDoc("styling", in.Styling, '{', "{}")
	if err != nil {
		return nil, err
	}

	form := &models.Form{
		Name:         in.Name,
		Description:  in.Description,
		Fields:       fields,
		Settings:     settings,
		Styling:      styling,
		Status:       in.Status,
		NotifyEmails: stringSet(in.NotifyEmails),
		CreatedBy:    actor,
		UpdatedBy:    actor,
	}
	if err := s.repo.Create(ctx, form); err != nil {
		return nil, s.fail("form.create", nil, err)
	}
	return form, nil
}

func (s *FormService) Get(ctx context.Context, id types.SnowflakeID) (*models.Form, error) {
	form, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("form.get", &id, err)
	}
	return form, nil
}

func (s *FormService) List(ctx context.Context, status models.FormStatus) ([]models.Form, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("status must be one of draft, published, archived")
	}
	forms, err := s.repo.GetAll(ctx, status)
	if err != nil {
		return nil, s.fail("form.list", nil, err)
	}
	return forms, nil
}

// Exists implements FormChecker for the menu service.
func (s *FormService) Exists(ctx context.Context, id types.SnowflakeID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *FormService) Update(ctx context.Context, id types.SnowflakeID, in UpdateFormInput, actor string) (*models.Form, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, s.fail("form.update", &id, err)
	}

	fields := map[string]interface{}{"updated_by": actor}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name is required")
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("status must be one of draft, published, archived")
		}
		fields["status"] = *in.Status
	}
	if in.NotifyEmails != nil {
		fields["notify_emails"] = stringSet(*in.NotifyEmails)
	}
	for _, doc := range []struct {
		column string
		raw    json.RawMessage
		open   byte
	}{
		{"fields", in.Fields, '['},
		{"settings", in.Settings, '{'},
		{"styling", in.Styling, '{'},
	} {
		if t := strings.TrimSpace(string(doc.raw)); t == "" || t == "null" {
			continue
		}
		v, err := jsonDoc(doc.column, doc.raw, doc.open, "")
		if err != nil {
			return nil, err
		}
		fields[doc.column] = v
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, s.fail("form.update", &id, err)
	}
	return s.Get(ctx, id)
}

// Delete removes a form unless a FORM menu still points at it.
func (s *FormService) Delete(ctx context.Context, id types.SnowflakeID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.fail("form.delete", &id, err)
	}
	refs, err := s.menus.CountByForm(ctx, id)
	if err != nil {
		return s.fail("form.delete", &id, err)
	}
	if refs > 0 {
		return apperr.Validation("cannot delete form referenced by %d menu(s)", refs)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail("form.delete", &id, err)
	}
	return nil
}

func (s *FormService) fail(op string, id *types.SnowflakeID, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && id != nil {
		return apperr.NotFound("form", *id)
	}
	target := ""
	if id != nil {
		target = id.String()
	}
	s.log.Error("form operation failed", "op", op, "id", target, "error", err)
	return apperr.Internal(op, err)
}

// jsonDoc checks that raw is a JSON document opening with open ('[' or
// '{'). Empty input yields def.
func jsonDoc(name string, raw json.RawMessage, open byte, def string) (datatypes.JSON, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return datatypes.JSON(def), nil
	}
	if trimmed[0] != open || !json.Valid([]byte(trimmed)) {
		kind := "an object"
		if open == '[' {
			kind = "an array"
		}
		return nil, apperr.Validation("%s must be %s", name, kind)
	}
	return datatypes.JSON(trimmed), nil
}
