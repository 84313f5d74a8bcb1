package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShodmonX/taskflow-backend/internal/audit"
	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	"github.com/ShodmonX/taskflow-backend/internal/platform/rbac"
	"github.com/ShodmonX/taskflow-backend/internal/project/domain"
)

type roles map[string]membershipdomain.Role // key org/user

func (r roles) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error) {
	role, ok := r[orgID+"/"+userID]
	if !ok {
		return nil, nil
	}
	return &membershipdomain.Membership{UserID: userID, OrgID: orgID, Role: role}, nil
}

type memProjects struct {
	m map[string]*domain.Project
}

func (r *memProjects) Create(ctx context.Context, p *domain.Project) error {
	r.m[p.ID] = p
	return nil
}

func (r *memProjects) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.m[id], nil
}

func (r *memProjects) ListByOrg(ctx context.Context, orgID string) ([]*domain.Project, error) {
	out := []*domain.Project{}
	for _, p := range r.m {
		if p.OrgID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProjects) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := r.m[id]
	delete(r.m, id)
	return ok, nil
}

type memAudit struct {
	events []string
}

func (a *memAudit) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	a.events = append(a.events, orgID+" "+userID+" "+action+" "+resource+" "+metadata)
}

func newService() (*Service, *memProjects, *memAudit) {
	repo := &memProjects{m: map[string]*domain.Project{}}
	guard := rbac.NewGuard(roles{
		"o1/owner":  membershipdomain.RoleOwner,
		"o1/admin":  membershipdomain.RoleAdmin,
		"o1/member": membershipdomain.RoleMember,
	})
	a := &memAudit{}
	return New(repo, guard, a), repo, a
}

func TestCreate_ManageRolesOnly(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "o1", "admin", " Roadmap ", "Q3")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap", p.Name)
	assert.Equal(t, "admin", p.CreatedBy)
	assert.Contains(t, repo.m, p.ID)

	_, err = svc.Create(ctx, "o1", "member", "Roadmap", "")
	assert.ErrorIs(t, err, rbac.ErrInsufficientRole)

	_, err = svc.Create(ctx, "o1", "stranger", "Roadmap", "")
	assert.ErrorIs(t, err, rbac.ErrNotAMember)
}

func TestList_AnyMember(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	_, err := svc.Create(ctx, "o1", "owner", "Roadmap", "")
	require.NoError(t, err)

	list, err := svc.List(ctx, "o1", "member")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.List(ctx, "o1", "stranger")
	assert.ErrorIs(t, err, rbac.ErrNotAMember)
}

func TestDelete(t *testing.T) {
	svc, repo, a := newService()
	ctx := context.Background()
	p, err := svc.Create(ctx, "o1", "owner", "Roadmap", "")
	require.NoError(t, err)

	err = svc.Delete(ctx, "missing", "owner")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	err = svc.Delete(ctx, p.ID, "member")
	assert.ErrorIs(t, err, rbac.ErrInsufficientRole)
	assert.Contains(t, repo.m, p.ID)

	require.NoError(t, svc.Delete(ctx, p.ID, "admin"))
	assert.NotContains(t, repo.m, p.ID)
	require.Len(t, a.events, 1)
	assert.Equal(t, `o1 admin `+audit.ActionDelete+` `+audit.ResourceProject+` {"project_id":"`+p.ID+`"}`, a.events[0])
}

func TestDelete_UnknownProjectBeforeRoleCheck(t *testing.T) {
	svc, _, _ := newService()
	err := svc.Delete(context.Background(), "missing", "stranger")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
