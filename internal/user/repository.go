package user

import (
	"context"
	defError "errors"

	"file-lifecycle-manager/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	// FindRole returns "" and no error when the user holds no role in the department.
	FindRole(ctx context.Context, userID, departmentID uint64) (string, error)
	UpsertRole(ctx context.Context, userID, departmentID uint64, role string) (*domain.UserDepartmentRole, error)
	ListRoles(ctx context.Context, userID uint64) ([]domain.UserDepartmentRole, error)
}

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new user repository
func NewRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindRole(ctx context.Context, userID, departmentID uint64) (string, error) {
	var row domain.UserDepartmentRole
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND department_id = ?", userID, departmentID).
		First(&row).Error
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Role, nil
}

// UpsertRole sets the user's single role in the department.
func (r *UserRepositoryImpl) UpsertRole(ctx context.Context, userID, departmentID uint64, role string) (*domain.UserDepartmentRole, error) {
	row := &domain.UserDepartmentRole{
		UserID:       userID,
		DepartmentID: departmentID,
		Role:         role,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "department_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *UserRepositoryImpl) ListRoles(ctx context.Context, userID uint64) ([]domain.UserDepartmentRole, error) {
	var rows []domain.UserDepartmentRole
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("department_id ASC").
		Find(&rows).Error
	return rows, err
}
