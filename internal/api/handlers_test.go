package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaddistributor/internal/config"
	"leaddistributor/internal/distribute"
	"leaddistributor/internal/ingest"
	"leaddistributor/internal/logging"
	"leaddistributor/internal/services"
	"leaddistributor/pkg/models"
)

type memTaskStore struct {
	tasks []*models.Task
}

func (m *memTaskStore) Create(_ context.Context, task *models.Task) error {
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *memTaskStore) Get(_ context.Context, id string) (*models.Task, error) {
	for _, task := range m.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTaskStore) ListUploadTasks(context.Context) ([]*models.Task, error) {
	var tagged []*models.Task
	for _, task := range m.tasks {
		if task.Provenance != nil {
			tagged = append(tagged, task)
		}
	}
	return tagged, nil
}

func (m *memTaskStore) ListByFileName(_ context.Context, fileName string) ([]*models.Task, error) {
	var tasks []*models.Task
	for _, task := range m.tasks {
		if task.Provenance != nil && task.Provenance.FileName == fileName {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (m *memTaskStore) UpdateStatus(_ context.Context, id string, status models.TaskStatus) error {
	task, err := m.Get(context.Background(), id)
	if err != nil {
		return err
	}
	task.Status = status
	return nil
}

type memAgentDirectory struct {
	agents []models.Agent
}

func (m *memAgentDirectory) ListActive(context.Context) ([]models.Agent, error) {
	var active []models.Agent
	for _, a := range m.agents {
		if a.Active {
			active = append(active, a)
		}
	}
	return active, nil
}
func (m *memAgentDirectory) List(context.Context) ([]models.Agent, error) { return m.agents, nil }
func (m *memAgentDirectory) Create(_ context.Context, a *models.Agent) error {
	m.agents = append(m.agents, *a)
	return nil
}

func newTestHandler(store *memTaskStore, agents *memAgentDirectory) (*Handler, *echo.Echo) {
	logger := logging.NewNop()
	pipeline := ingest.NewPipeline(store, agents, distribute.RoundRobin{}, logger)
	reports := services.NewReportService(store, agents)
	h := NewHandler(pipeline, reports, agents, store, logger, config.DefaultMaxUploadBytes)

	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))
	return h, e
}

func activeAgents() *memAgentDirectory {
	return &memAgentDirectory{agents: []models.Agent{
		{ID: "a1", Name: "Alice", Email: "alice@example.com", Active: true},
		{ID: "a2", Name: "Bruno", Email: "bruno@example.com", Active: true},
	}}
}

func multipartUpload(t *testing.T, fileName, contentType, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + fileName + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func doRequest(e *echo.Echo, method, target, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const validCSV = "FirstName,Phone,Notes\nAna,5550001,vip\nBen,5550002,\nCara,5550003,\n"

func TestSubmitUploadSuccess(t *testing.T) {
	store := &memTaskStore{}
	_, e := newTestHandler(store, activeAgents())

	body, ct := multipartUpload(t, "contacts.csv", "text/csv", validCSV,
		map[string]string{"uploadedBy": "ops@example.com"})
	rec := doRequest(e, http.MethodPost, "/api/v1/uploads", ct, body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "3 tasks")

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summary models.UploadSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 3, summary.TotalTasks)
	assert.Equal(t, 2, summary.AgentsCount)
	assert.Equal(t, "contacts.csv", summary.FileName)

	assert.Len(t, store.tasks, 3)
	assert.Equal(t, "ops@example.com", store.tasks[0].AssignedBy)
}

func TestSubmitUploadNoFile(t *testing.T) {
	_, e := newTestHandler(&memTaskStore{}, activeAgents())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("uploadedBy", "ops"))
	require.NoError(t, writer.Close())

	rec := doRequest(e, http.MethodPost, "/api/v1/uploads", writer.FormDataContentType(), &body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "no file")
}

func TestSubmitUploadUnsupportedMediaType(t *testing.T) {
	store := &memTaskStore{}
	_, e := newTestHandler(store, activeAgents())

	body, ct := multipartUpload(t, "report.pdf", "application/pdf", "%PDF-1.4", nil)
	rec := doRequest(e, http.MethodPost, "/api/v1/uploads", ct, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "unsupported media type")
	assert.Empty(t, store.tasks)
}

func TestSubmitUploadValidationFailure(t *testing.T) {
	store := &memTaskStore{}
	_, e := newTestHandler(store, activeAgents())

	body, ct := multipartUpload(t, "contacts.csv", "text/csv",
		"FirstName,Notes\nAna,\n", nil)
	rec := doRequest(e, http.MethodPost, "/api/v1/uploads", ct, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, strings.ToLower(strings.Join(resp.Errors, " ")), "phone")
	assert.Empty(t, store.tasks)
}

func TestSubmitUploadNoActiveAgents(t *testing.T) {
	store := &memTaskStore{}
	_, e := newTestHandler(store, &memAgentDirectory{})

	body, ct := multipartUpload(t, "contacts.csv", "text/csv", validCSV, nil)
	rec := doRequest(e, http.MethodPost, "/api/v1/uploads", ct, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "no active agents")
	assert.Empty(t, store.tasks)
}

func TestUploadHistoryEndpoint(t *testing.T) {
	store := &memTaskStore{}
	_, e := newTestHandler(store, activeAgents())

	body, ct := multipartUpload(t, "contacts.csv", "text/csv", validCSV, nil)
	rec := doRequest(e, http.MethodPost, "/api/v1/uploads", ct, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/uploads/history", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var reports []models.UploadReport
	require.NoError(t, json.Unmarshal(data, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "contacts.csv", reports[0].FileName)
	assert.Equal(t, 3, reports[0].TotalTasks)
	assert.Equal(t, 0.0, reports[0].CompletionRate)
}

func TestUploadTasksEndpoint(t *testing.T) {
	store := &memTaskStore{}
	_, e := newTestHandler(store, activeAgents())

	body, ct := multipartUpload(t, "contacts.csv", "text/csv", validCSV, nil)
	require.Equal(t, http.StatusOK, doRequest(e, http.MethodPost, "/api/v1/uploads", ct, body).Code)

	rec := doRequest(e, http.MethodGet, "/api/v1/uploads/contacts.csv/tasks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal(data, &tasks))
	assert.Len(t, tasks, 3)
}

func TestListAgentsEndpoint(t *testing.T) {
	_, e := newTestHandler(&memTaskStore{}, activeAgents())

	rec := doRequest(e, http.MethodGet, "/api/v1/agents", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)
}

func TestUpdateTaskStatus(t *testing.T) {
	store := &memTaskStore{tasks: []*models.Task{
		{ID: "t1", Title: "Contact Ana", AgentID: "a1", Status: models.TaskStatusPending},
	}}
	_, e := newTestHandler(store, activeAgents())

	body := bytes.NewBufferString(`{"status":"in-progress"}`)
	rec := doRequest(e, http.MethodPatch, "/api/v1/tasks/t1/status", echo.MIMEApplicationJSON, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.TaskStatusInProgress, store.tasks[0].Status)

	// illegal transition after completion
	store.tasks[0].Status = models.TaskStatusCompleted
	body = bytes.NewBufferString(`{"status":"pending"}`)
	rec = doRequest(e, http.MethodPatch, "/api/v1/tasks/t1/status", echo.MIMEApplicationJSON, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown status value
	body = bytes.NewBufferString(`{"status":"done"}`)
	rec = doRequest(e, http.MethodPatch, "/api/v1/tasks/t1/status", echo.MIMEApplicationJSON, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown task id
	body = bytes.NewBufferString(`{"status":"cancelled"}`)
	rec = doRequest(e, http.MethodPatch, "/api/v1/tasks/missing/status", echo.MIMEApplicationJSON, body)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	_, e := newTestHandler(&memTaskStore{}, activeAgents())
	rec := doRequest(e, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
