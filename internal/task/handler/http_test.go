package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	projectdomain "github.com/ShodmonX/taskflow-backend/internal/project/domain"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
	"github.com/ShodmonX/taskflow-backend/internal/task/domain"
	"github.com/ShodmonX/taskflow-backend/internal/task/service"
)

const (
	orgID          = "6f1c2a44-5d1e-4a55-9a57-0a6b1c2d3e4f"
	projectID      = "9d2e3f40-1a2b-4c3d-8e4f-5a6b7c8d9e0f"
	otherProjectID = "c3d4e5f6-a7b8-4c9d-9e0f-1a2b3c4d5e6f"
)

type stubService struct {
	created []service.CreateInput
	filters []domain.Filter
	err     error
}

var created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func (s *stubService) Create(ctx context.Context, requesterID string, in service.CreateInput) (*domain.Task, error) {
	s.created = append(s.created, in)
	if s.err != nil {
		return nil, s.err
	}
	status := domain.Status(in.Status)
	if status == "" {
		status = domain.StatusTodo
	}
	return &domain.Task{ID: "t1", OrgID: in.OrgID, ProjectID: in.ProjectID, Title: in.Title, Status: status, CreatedBy: requesterID, CreatedAt: created}, nil
}

func (s *stubService) List(ctx context.Context, requesterID string, f domain.Filter) (*domain.Page, error) {
	s.filters = append(s.filters, f)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Page{
		Items: []*domain.Task{{ID: "t1", OrgID: f.OrgID, ProjectID: projectID, Title: "Ship", Status: domain.StatusDone, CreatedAt: created}},
		Total: 7, Limit: f.Limit, Offset: f.Offset,
	}, nil
}

func serve(svc TaskService, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/orgs/{org_id}", New(svc).OrgRoutes)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithIdentity(req.Context(), "u1", "jti"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateTask(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, http.MethodPost, "/orgs/"+orgID+"/projects/"+projectID+"/tasks", `{"title":"Write docs"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"t1","org_id":"`+orgID+`","project_id":"`+projectID+`","title":"Write docs","description":null,"status":"TODO","created_by":"u1","created_at":"2026-03-01T09:00:00Z"}`, rec.Body.String())
	assert.Equal(t, service.CreateInput{OrgID: orgID, ProjectID: projectID, Title: "Write docs"}, svc.created[0])

	rec = serve(svc, http.MethodPost, "/orgs/"+orgID+"/projects/"+projectID+"/tasks", `{"title":"W"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTask_ProjectElsewhere(t *testing.T) {
	rec := serve(&stubService{err: projectdomain.ErrProjectNotInOrg}, http.MethodPost, "/orgs/"+orgID+"/projects/"+otherProjectID+"/tasks", `{"title":"Write docs"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasks(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, http.MethodGet, "/orgs/"+orgID+"/tasks?project_id="+projectID+"&status=DONE&limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Filter{OrgID: orgID, ProjectID: projectID, Status: domain.StatusDone, Limit: 5, Offset: 10}, svc.filters[0])
	assert.JSONEq(t, `{"items":[{"id":"t1","org_id":"`+orgID+`","project_id":"`+projectID+`","title":"Ship","description":null,"status":"DONE","created_by":null,"created_at":"2026-03-01T09:00:00Z"}],"limit":5,"offset":10,"total":7}`, rec.Body.String())
}

func TestListTasks_Defaults(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, http.MethodGet, "/orgs/"+orgID+"/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Filter{OrgID: orgID, Limit: 20}, svc.filters[0])
}

func TestListTasks_BadPaging(t *testing.T) {
	for _, q := range []string{"limit=0", "limit=101", "limit=abc", "offset=-1"} {
		svc := &stubService{}
		rec := serve(svc, http.MethodGet, "/orgs/"+orgID+"/tasks?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Empty(t, svc.filters, q)
	}
}

func TestMalformedIDs(t *testing.T) {
	tests := []struct {
		name, method, path, body, message string
	}{
		{"create bad org", http.MethodPost, "/orgs/o1/projects/" + projectID + "/tasks", `{"title":"Write docs"}`, "invalid org_id"},
		{"create bad project", http.MethodPost, "/orgs/" + orgID + "/projects/p1/tasks", `{"title":"Write docs"}`, "invalid project_id"},
		{"list bad org", http.MethodGet, "/orgs/1/tasks", "", "invalid org_id"},
		{"list bad project filter", http.MethodGet, "/orgs/" + orgID + "/tasks?project_id=p1", "", "invalid project_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			rec := serve(svc, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body httpx.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
			assert.Empty(t, svc.created)
			assert.Empty(t, svc.filters)
		})
	}
}
