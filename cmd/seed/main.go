// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/config"
	"github.com/ShodmonX/taskflow-backend/internal/db"
	identitydomain "github.com/ShodmonX/taskflow-backend/internal/identity/domain"
	identityrepo "github.com/ShodmonX/taskflow-backend/internal/identity/repository"
	membershipdomain "github.com/ShodmonX/taskflow-backend/internal/membership/domain"
	membershiprepo "github.com/ShodmonX/taskflow-backend/internal/membership/repository"
	organizationdomain "github.com/ShodmonX/taskflow-backend/internal/organization/domain"
	organizationrepo "github.com/ShodmonX/taskflow-backend/internal/organization/repository"
	"github.com/ShodmonX/taskflow-backend/internal/platform/logging"
	projectdomain "github.com/ShodmonX/taskflow-backend/internal/project/domain"
	projectrepo "github.com/ShodmonX/taskflow-backend/internal/project/repository"
	"github.com/ShodmonX/taskflow-backend/internal/security"
	taskdomain "github.com/ShodmonX/taskflow-backend/internal/task/domain"
	taskrepo "github.com/ShodmonX/taskflow-backend/internal/task/repository"
	userdomain "github.com/ShodmonX/taskflow-backend/internal/user/domain"
	userrepo "github.com/ShodmonX/taskflow-backend/internal/user/repository"
)

const (
	devUserEmail     = "dev@example.com"
	memberEmail      = "member@example.com"
	devPassword      = "password123"
	devUserID        = "00000000-0000-4000-8000-000000000001"
	devUser2ID       = "00000000-0000-4000-8000-000000000002"
	devOrgID         = "00000000-0000-4000-8000-000000000101"
	devMembershipID  = "00000000-0000-4000-8000-000000000201"
	devMembership2ID = "00000000-0000-4000-8000-000000000202"
	devProjectID     = "00000000-0000-4000-8000-000000000301"
)

var devTasks = []struct {
	id, title string
	status    taskdomain.Status
}{
	{"00000000-0000-4000-8000-000000000401", "Write onboarding guide", taskdomain.StatusTodo},
	{"00000000-0000-4000-8000-000000000402", "Set up CI pipeline", taskdomain.StatusInProgress},
	{"00000000-0000-4000-8000-000000000403", "Create project board", taskdomain.StatusDone},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.Env).Named("seed")
	defer logger.Sync() //nolint:errcheck

	if err := seed(context.Background(), cfg); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed applied", zap.String("login", devUserEmail))
}

func seed(ctx context.Context, cfg *config.Config) error {
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := userrepo.NewPostgresRepository(pool)
	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if existing != nil {
		fmt.Println("Seed already applied (dev@example.com exists). Skipping.")
		return nil
	}

	hasher := security.NewHasherWithAlgo(cfg.PasswordHashAlgo, cfg.BcryptCost)
	passwordHash, err := hasher.Hash(devPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()

	accounts := identityrepo.NewAccounts(pool)
	for _, u := range []*userdomain.User{
		{ID: devUserID, Email: devUserEmail, Username: "dev", IsActive: true, IsVerified: true, CreatedAt: now, UpdatedAt: now},
		{ID: devUser2ID, Email: memberEmail, Username: "member", IsActive: true, CreatedAt: now, UpdatedAt: now},
	} {
		cred := &identitydomain.Credential{UserID: u.ID, PasswordHash: passwordHash, UpdatedAt: now}
		if err := accounts.CreateAccount(ctx, u, cred); err != nil {
			return fmt.Errorf("create user %s: %w", u.Email, err)
		}
	}

	org := &organizationdomain.Org{ID: devOrgID, Name: "Acme Dev", CreatedBy: devUserID, CreatedAt: now}
	owner := &membershipdomain.Membership{ID: devMembershipID, UserID: devUserID, OrgID: devOrgID, Role: membershipdomain.RoleOwner, CreatedAt: now}
	if err := organizationrepo.NewCreator(pool).CreateWithOwner(ctx, org, owner); err != nil {
		return fmt.Errorf("create org: %w", err)
	}
	if err := membershiprepo.NewPostgresRepository(pool).CreateMembership(ctx, &membershipdomain.Membership{
		ID: devMembership2ID, UserID: devUser2ID, OrgID: devOrgID, Role: membershipdomain.RoleMember, CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("create member membership: %w", err)
	}

	if err := projectrepo.NewPostgresRepository(pool).Create(ctx, &projectdomain.Project{
		ID:          devProjectID,
		OrgID:       devOrgID,
		Name:        "Launch",
		Description: "Sample project created by the seed command",
		CreatedBy:   devUserID,
		CreatedAt:   now,
	}); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	tasks := taskrepo.NewPostgresRepository(pool)
	for i, t := range devTasks {
		if err := tasks.Create(ctx, &taskdomain.Task{
			ID:        t.id,
			OrgID:     devOrgID,
			ProjectID: devProjectID,
			Title:     t.title,
			Status:    t.status,
			CreatedBy: devUserID,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}); err != nil {
			return fmt.Errorf("create task %q: %w", t.title, err)
		}
	}
	return nil
}
