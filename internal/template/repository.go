package template

import (
	"context"

	"file-lifecycle-manager/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	// FindCandidates returns the active templates that may apply to a file of
	// the department: its own templates and the global ones.
	FindCandidates(ctx context.Context, departmentID uint64) ([]domain.WorkflowTemplate, error)
	ListForDepartment(ctx context.Context, departmentID uint64) ([]domain.WorkflowTemplate, error)
	Create(ctx context.Context, tpl *domain.WorkflowTemplate) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func orderedLevels(db *gorm.DB) *gorm.DB {
	return db.Order("level ASC")
}

func (r *RepositoryImpl) FindCandidates(ctx context.Context, departmentID uint64) ([]domain.WorkflowTemplate, error) {
	var templates []domain.WorkflowTemplate
	err := r.db.WithContext(ctx).
		Preload("Levels", orderedLevels).
		Where("is_active = ?", true).
		Where("department_id = ? OR department_id IS NULL", departmentID).
		Order("id DESC").
		Find(&templates).Error
	return templates, err
}

func (r *RepositoryImpl) ListForDepartment(ctx context.Context, departmentID uint64) ([]domain.WorkflowTemplate, error) {
	var templates []domain.WorkflowTemplate
	err := r.db.WithContext(ctx).
		Preload("Levels", orderedLevels).
		Where("department_id = ?", departmentID).
		Order("id ASC").
		Find(&templates).Error
	return templates, err
}

// Create stores the template and its levels in one transaction.
func (r *RepositoryImpl) Create(ctx context.Context, tpl *domain.WorkflowTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		levels := tpl.Levels
		tpl.Levels = nil
		if err := tx.Create(tpl).Error; err != nil {
			return err
		}
		for i := range levels {
			levels[i].TemplateID = tpl.ID
		}
		if len(levels) > 0 {
			if err := tx.Create(&levels).Error; err != nil {
				return err
			}
		}
		tpl.Levels = levels
		return nil
	})
}
