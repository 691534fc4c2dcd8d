package user

import (
	"context"
	defError "errors"
	"fmt"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
	"file-lifecycle-manager/internal/workflow"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service defines the interface for user business logic
type Service interface {
	Register(ctx context.Context, user *domain.User) error
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
	RoleOf(ctx context.Context, userID, departmentID uint64) (workflow.Role, bool, error)
	ListRoles(ctx context.Context, userID uint64) ([]domain.UserDepartmentRole, error)
	AssignRole(ctx context.Context, requesterID, departmentID, targetUserID uint64, role string) (*domain.UserDepartmentRole, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
}

// NewService creates a new user service
func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register hashes the password and stores a new active user.
func (s *DefaultService) Register(ctx context.Context, user *domain.User) error {
	_, err := s.repository.FindByEmail(ctx, user.Email)
	if err != nil && !defError.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		return errors.UnprocessableEntity("User already registered", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Invalid password", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	return s.repository.Create(ctx, user)
}

func (s *DefaultService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repository.FindByEmail(ctx, email)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Unauthorized("Invalid email or password", err)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password", err)
	}

	return user, nil
}

func (s *DefaultService) GetUserByID(ctx context.Context, id uint64) (*domain.User, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("User not found", err)
		}
		return nil, err
	}
	return user, nil
}

// RoleOf reports the user's role in the department. A stored role string
// outside the known set is still a held role, with authority 0.
func (s *DefaultService) RoleOf(ctx context.Context, userID, departmentID uint64) (workflow.Role, bool, error) {
	raw, err := s.repository.FindRole(ctx, userID, departmentID)
	if err != nil {
		return "", false, err
	}
	if raw == "" {
		return "", false, nil
	}
	return workflow.Role(raw), true, nil
}

func (s *DefaultService) ListRoles(ctx context.Context, userID uint64) ([]domain.UserDepartmentRole, error) {
	return s.repository.ListRoles(ctx, userID)
}

// AssignRole lets a department Admin set another user's role in that department.
func (s *DefaultService) AssignRole(ctx context.Context, requesterID, departmentID, targetUserID uint64, role string) (*domain.UserDepartmentRole, error) {
	parsed, ok := workflow.ParseRole(role)
	if !ok {
		return nil, errors.BadRequest(fmt.Sprintf("Unknown role %q", role), nil)
	}

	requesterRole, has, err := s.RoleOf(ctx, requesterID, departmentID)
	if err != nil {
		return nil, err
	}
	if !has || requesterRole != workflow.RoleAdmin {
		return nil, errors.Forbidden("Only a department Admin can assign roles", nil)
	}

	if _, err := s.GetUserByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	return s.repository.UpsertRole(ctx, targetUserID, departmentID, parsed.String())
}
