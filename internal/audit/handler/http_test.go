package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShodmonX/taskflow-backend/internal/audit/domain"
	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	"github.com/ShodmonX/taskflow-backend/internal/platform/rbac"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
)

const orgID = "6f1c2a44-5d1e-4a55-9a57-0a6b1c2d3e4f"

type memberships map[string]membershipdomain.Role

func (m memberships) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error) {
	role, ok := m[orgID+"/"+userID]
	if !ok {
		return nil, nil
	}
	return &membershipdomain.Membership{UserID: userID, OrgID: orgID, Role: role}, nil
}

type stubLister struct {
	gotLimit, gotOffset int
	items               []*domain.AuditLog
}

func (s *stubLister) ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]*domain.AuditLog, error) {
	s.gotLimit, s.gotOffset = limit, offset
	return s.items, nil
}

func newRouter(logs Lister) http.Handler {
	guard := rbac.NewGuard(memberships{
		orgID + "/admin":  membershipdomain.RoleAdmin,
		orgID + "/member": membershipdomain.RoleMember,
	})
	r := chi.NewRouter()
	r.Route("/orgs/{org_id}", New(logs, guard).OrgRoutes)
	return r
}

func get(h http.Handler, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), userID, "jti"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestList(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	logs := &stubLister{items: []*domain.AuditLog{
		{ID: "a1", OrgID: orgID, UserID: "admin", Action: "create", Resource: "project", IP: "203.0.113.7", CreatedAt: created},
	}}
	h := newRouter(logs)

	rec := get(h, "/orgs/"+orgID+"/audit-logs?limit=10&offset=5", "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, logs.gotLimit)
	assert.Equal(t, 5, logs.gotOffset)

	var body struct {
		Items  []domain.AuditLog `json:"items"`
		Limit  int               `json:"limit"`
		Offset int               `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "create", body.Items[0].Action)
	assert.Equal(t, 10, body.Limit)
}

func TestList_Defaults(t *testing.T) {
	logs := &stubLister{}
	rec := get(newRouter(logs), "/orgs/"+orgID+"/audit-logs", "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultLimit, logs.gotLimit)
	assert.Equal(t, 0, logs.gotOffset)
	assert.JSONEq(t, `{"items":[],"limit":50,"offset":0}`, rec.Body.String())
}

func TestList_Forbidden(t *testing.T) {
	h := newRouter(&stubLister{})
	assert.Equal(t, http.StatusForbidden, get(h, "/orgs/"+orgID+"/audit-logs", "member").Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/orgs/"+orgID+"/audit-logs", "stranger").Code)
}

func TestList_BadPaging(t *testing.T) {
	h := newRouter(&stubLister{})
	assert.Equal(t, http.StatusBadRequest, get(h, "/orgs/"+orgID+"/audit-logs?limit=0", "admin").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/orgs/"+orgID+"/audit-logs?limit=201", "admin").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/orgs/"+orgID+"/audit-logs?offset=-1", "admin").Code)
}

func TestList_MalformedOrgID(t *testing.T) {
	logs := &stubLister{}
	rec := get(newRouter(logs), "/orgs/o1/audit-logs", "admin")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid org_id", body.Message)
	assert.Zero(t, logs.gotLimit)
}
