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
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResponseNotifier is told about every accepted submission.
type ResponseNotifier interface {
	NotifyResponse(form *models.Form, resp *models.FormResponse) error
}

type ResponseService struct {
	forms    *repositories.FormRepository
	repo     *repositories.ResponseRepository
	notifier ResponseNotifier
	log      *logger.Logger
	now      func() time.Time
}

// NewResponseService accepts a nil notifier when mail is not configured.
func NewResponseService(forms *repositories.FormRepository, repo *repositories.ResponseRepository, notifier ResponseNotifier, log *logger.Logger) *ResponseService {
	return &ResponseService{
		forms:    forms,
		repo:     repo,
		notifier: notifier,
		log:      log.With("service", "ResponseService"),
		now:      time.Now,
	}
}

// Submit stores answers for a published form.
func (s *ResponseService) Submit(ctx context.Context, formID types.SnowflakeID, answers json.RawMessage, actor string) (*models.FormResponse, error) {
	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		return nil, s.fail("response.submit", "form", &formID, err)
	}
	if form.Status != models.FormStatusPublished {
		return nil, apperr.Validation("form %s is not accepting responses", formID)
	}

	trimmed := strings.TrimSpace(string(answers))
	if trimmed == "" || trimmed[0] != '{' || !json.Valid([]byte(trimmed)) {
		return nil, apperr.Validation("answers must be an object")
	}

	resp := &models.FormResponse{
		FormID:      formID,
		Answers:     datatypes.JSON(trimmed),
		SubmittedBy: actor,
		SubmittedAt: s.now(),
	}
	if err := s.repo.Create(ctx, resp); err != nil {
		return nil, s.fail("response.submit", "form", &formID, err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyResponse(form, resp); err != nil {
			s.log.Warn("response notification failed", "form_id", formID.String(), "response_id", resp.ID.String(), "error", err)
		}
	}
	return resp, nil
}

func (s *ResponseService) Get(ctx context.Context, id types.SnowflakeID) (*models.FormResponse, error) {
	resp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("response.get", "response", &id, err)
	}
	return resp, nil
}

func (s *ResponseService) List(ctx context.Context, formID types.SnowflakeID) ([]models.FormResponse, error) {
	if _, err := s.forms.GetByID(ctx, formID); err != nil {
		return nil, s.fail("response.list", "form", &formID, err)
	}
	responses, err := s.repo.GetByForm(ctx, formID)
	if err != nil {
		return nil, s.fail("response.list", "form", &formID, err)
	}
	return responses, nil
}

func (s *ResponseService) Delete(ctx context.Context, id types.SnowflakeID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.fail("response.delete", "response", &id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail("response.delete", "response", &id, err)
	}
	return nil
}

func (s *ResponseService) fail(op, entity string, id *types.SnowflakeID, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && id != nil {
		return apperr.NotFound(entity, *id)
	}
	target := ""
	if id != nil {
		target = id.String()
	}
	s.log.Error("response operation failed", "op", op, "id", target, "error", err)
	return apperr.Internal(op, err)
}
