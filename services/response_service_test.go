package services

import (
	"context"
	"encoding/json"
	"errors"
	"form-builder/apperr"
	"form-builder/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	calls int
	err   error
}

func (n *recordingNotifier) NotifyResponse(form *models.Form, resp *models.FormResponse) error {
	n.calls++
	return n.err
}

func publishedForm(t *testing.T, reg *Registry) *models.Form {
	t.Helper()
	form, err := reg.Forms.Create(context.Background(), CreateFormInput{Name: "Contact", Status: models.FormStatusPublished}, "tester")
	require.NoError(t, err)
	return form
}

func TestSubmitResponse(t *testing.T) {
	notifier := &recordingNotifier{}
	reg, _ := newTestRegistry(t, notifier)
	ctx := context.Background()
	form := publishedForm(t, reg)

	resp, err := reg.Responses.Submit(ctx, form.ID, json.RawMessage(` {"email":"a@example.com"} `), "alice")
	require.NoError(t, err)
	assert.Equal(t, form.ID, resp.FormID)
	assert.Equal(t, "alice", resp.SubmittedBy)
	assert.JSONEq(t, `{"email":"a@example.com"}`, string(resp.Answers))
	assert.Equal(t, 1, notifier.calls)

	got, err := reg.Responses.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)
}

func TestSubmitResponseRejected(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	draft, err := reg.Forms.Create(ctx, CreateFormInput{Name: "draft"}, "tester")
	require.NoError(t, err)
	_, err = reg.Responses.Submit(ctx, draft.ID, json.RawMessage(`{}`), "alice")
	assert.True(t, apperr.IsValidation(err))

	form := publishedForm(t, reg)
	for _, answers := range []string{``, `[]`, `"x"`, `{"a":`} {
		_, err = reg.Responses.Submit(ctx, form.ID, json.RawMessage(answers), "alice")
		assert.True(t, apperr.IsValidation(err), "answers %q", answers)
	}

	_, err = reg.Responses.Submit(ctx, 8080, json.RawMessage(`{}`), "alice")
	require.True(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "form")
}

func TestSubmitSurvivesNotifierFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	reg, _ := newTestRegistry(t, notifier)
	form := publishedForm(t, reg)

	resp, err := reg.Responses.Submit(context.Background(), form.ID, json.RawMessage(`{}`), "alice")
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, 1, notifier.calls)
}

func TestListAndDeleteResponses(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()
	form := publishedForm(t, reg)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, who := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		reg.Responses.now = func() time.Time { return at }
		_, err := reg.Responses.Submit(ctx, form.ID, json.RawMessage(`{}`), who)
		require.NoError(t, err)
	}

	list, err := reg.Responses.List(ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{list[0].SubmittedBy, list[1].SubmittedBy, list[2].SubmittedBy})

	require.NoError(t, reg.Responses.Delete(ctx, list[1].ID))
	list, err = reg.Responses.List(ctx, form.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.True(t, apperr.IsNotFound(reg.Responses.Delete(ctx, 1)))
	_, err = reg.Responses.Get(ctx, 1)
	assert.True(t, apperr.IsNotFound(err))
	_, err = reg.Responses.List(ctx, 1)
	assert.True(t, apperr.IsNotFound(err))
}

func TestExportXLSX(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()
	form := publishedForm(t, reg)

	reg.Responses.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	first, err := reg.Responses.Submit(ctx, form.ID, json.RawMessage(`{"name":"Ann","tags":["a","b"]}`), "alice")
	require.NoError(t, err)
	reg.Responses.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	_, err = reg.Responses.Submit(ctx, form.ID, json.RawMessage(`{"agree":true,"name":"Bo"}`), "bob")
	require.NoError(t, err)

	f, err := reg.Responses.ExportXLSX(ctx, form.ID)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "submitted_by", "submitted_at", "agree", "name", "tags"}, rows[0])
	assert.Equal(t, []string{first.ID.String(), "alice", "2026-03-01T09:00:00Z", "", "Ann", `["a","b"]`}, rows[1])
	assert.Equal(t, "bob", rows[2][1])
	assert.Equal(t, "Bo", rows[2][4])

	_, err = reg.Responses.ExportXLSX(ctx, 999)
	assert.True(t, apperr.IsNotFound(err))
}
