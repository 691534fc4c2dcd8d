package db

import (
	"context"
	defError "errors"
	"strings"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/template"
	"file-lifecycle-manager/internal/user"
	"file-lifecycle-manager/internal/workflow"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Department{},
		&domain.User{},
		&domain.UserDepartmentRole{},
		&domain.File{},
		&domain.WorkflowTemplate{},
		&domain.WorkflowTemplateLevel{},
		&domain.WorkflowLevel{},
		&domain.WorkflowParticipant{},
		&domain.AuditTrailEntry{},
		&domain.Daak{},
	)
}

const seedPassword = "password123"

// SeedUser is one development account and its role in the seed department.
type SeedUser struct {
	Name  string
	Email string
	Role  workflow.Role
}

// SeedUsers has one account per role.
func SeedUsers() []SeedUser {
	roles := workflow.Roles()
	users := make([]SeedUser, 0, len(roles))
	for _, r := range roles {
		users = append(users, SeedUser{
			Name:  r.String(),
			Email: emailFor(r),
			Role:  r,
		})
	}
	return users
}

func emailFor(r workflow.Role) string {
	return strings.ReplaceAll(strings.ToLower(r.String()), " ", ".") + "@flm.local"
}

// SeedTemplate is the global default chain used when a department has none.
func SeedTemplate() *domain.WorkflowTemplate {
	return &domain.WorkflowTemplate{
		Name:     "Default approval",
		IsActive: true,
		Levels: []domain.WorkflowTemplateLevel{
			{Level: 1, Role: workflow.RoleClerk.String(), AuthorityLevel: workflow.AuthorityOf(workflow.RoleClerk)},
			{Level: 2, Role: workflow.RoleUnderSecretary.String(), AuthorityLevel: workflow.AuthorityOf(workflow.RoleUnderSecretary)},
		},
	}
}

// SeedData seeds the database with initial data (for development only)
func SeedData(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	dept := domain.Department{Name: "General Administration", Code: "GA"}
	if err := db.WithContext(ctx).Where(domain.Department{Code: dept.Code}).FirstOrCreate(&dept).Error; err != nil {
		return err
	}

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)

	for _, su := range SeedUsers() {
		u, err := userRepo.FindByEmail(ctx, su.Email)
		if defError.Is(err, gorm.ErrRecordNotFound) {
			u = &domain.User{Name: su.Name, Email: su.Email, Password: seedPassword}
			if err := userService.Register(ctx, u); err != nil {
				return err
			}
			log.Info().Str("email", su.Email).Msg("created seed user")
		} else if err != nil {
			return err
		}

		if _, err := userRepo.UpsertRole(ctx, u.ID, dept.ID, su.Role.String()); err != nil {
			return err
		}
	}

	var globals int64
	if err := db.WithContext(ctx).Model(&domain.WorkflowTemplate{}).
		Where("department_id IS NULL AND file_type = ''").
		Count(&globals).Error; err != nil {
		return err
	}
	if globals == 0 {
		if err := template.NewRepository(db).Create(ctx, SeedTemplate()); err != nil {
			return err
		}
		log.Info().Msg("created global default workflow template")
	}

	return nil
}
