package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type formJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func TestFormLifecycle(t *testing.T) {
	app := newTestApp(t, openTestDB(t))

	status, env := call(t, app, http.MethodPost, "/api/forms", map[string]interface{}{
		"name":   "Contact",
		"fields": []map[string]string{{"name": "email", "type": "text"}},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var form formJSON
	require.NoError(t, json.Unmarshal(env.Data, &form))
	assert.Equal(t, "draft", form.Status)

	status, env = call(t, app, http.MethodPost, "/api/forms/"+form.ID+"/responses", map[string]interface{}{
		"answers": map[string]string{"email": "a@example.com"},
	})
	assert.Equal(t, http.StatusBadRequest, status, "draft forms do not accept responses")
	assert.False(t, env.Success)

	status, env = call(t, app, http.MethodPut, "/api/forms/"+form.ID, map[string]interface{}{"status": "published"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = call(t, app, http.MethodPost, "/api/forms/"+form.ID+"/responses", map[string]interface{}{
		"answers": map[string]string{"email": "a@example.com"},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	status, env = call(t, app, http.MethodGet, "/api/forms/"+form.ID+"/responses", nil)
	require.Equal(t, http.StatusOK, status)
	var responses []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &responses))
	assert.Len(t, responses, 1)

	status, _ = call(t, app, http.MethodGet, "/api/responses/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodGet, "/api/forms?status=published", nil)
	require.Equal(t, http.StatusOK, status)
	var forms []formJSON
	require.NoError(t, json.Unmarshal(env.Data, &forms))
	require.Len(t, forms, 1)
	assert.Equal(t, "Contact", forms[0].Name)

	status, _ = call(t, app, http.MethodDelete, "/api/responses/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodDelete, "/api/forms/"+form.ID, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, "/api/forms/"+form.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestExportResponsesEndpoint(t *testing.T) {
	app := newTestApp(t, openTestDB(t))

	status, env := call(t, app, http.MethodPost, "/api/forms", map[string]interface{}{"name": "Poll", "status": "published"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var form formJSON
	require.NoError(t, json.Unmarshal(env.Data, &form))

	status, env = call(t, app, http.MethodPost, "/api/forms/"+form.ID+"/responses", map[string]interface{}{
		"answers": map[string]string{"choice": "yes"},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/forms/"+form.ID+"/responses/export", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "form-"+form.ID+"-responses.xlsx")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Responses")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "submitted_by", "submitted_at", "choice"}, rows[0])
	assert.Equal(t, "yes", rows[1][3])
}
