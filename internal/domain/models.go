package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Department struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Code      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User represents a user in the system
type User struct {
	ID           uint64
	Name         string
	Email        string `gorm:"uniqueIndex"`
	Password     string `gorm:"-"` // input only, not stored in db
	PasswordHash string
	TokenVersion uint64 `gorm:"default:0"`
	IsActive     bool   `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser represents a user without sensitive information
type SafeUser struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// ToSafeUser converts a User to a SafeUser
func (u *User) ToSafeUser() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
	}
}

// UserDepartmentRole is the role a user holds inside one department.
type UserDepartmentRole struct {
	ID           uint64 `gorm:"primaryKey"`
	UserID       uint64 `gorm:"uniqueIndex:idx_user_department;not null"`
	DepartmentID uint64 `gorm:"uniqueIndex:idx_user_department;not null"`
	Role         string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type File struct {
	ID           uint64    `json:"id"`
	FileNumber   string    `json:"file_number" gorm:"index"`
	Subject      string    `json:"subject"`
	FileType     string    `json:"file_type" gorm:"index"`
	DepartmentID uint64    `json:"department_id" gorm:"index;not null"`
	CreatedByID  uint64    `json:"created_by_id" gorm:"index;not null"`
	CurrentState FileState `json:"current_state" gorm:"type:varchar(16);not null;default:DRAFT"`
	CurrentLevel int       `json:"current_level" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WorkflowTemplate is an ordered approval chain. DepartmentID nil and an
// empty FileType make the template a default at the matching scope.
type WorkflowTemplate struct {
	ID           uint64                  `json:"id"`
	Name         string                  `json:"name"`
	DepartmentID *uint64                 `json:"department_id" gorm:"index"`
	FileType     string                  `json:"file_type" gorm:"index"`
	IsActive     bool                    `json:"is_active" gorm:"default:true"`
	Levels       []WorkflowTemplateLevel `json:"levels" gorm:"foreignKey:TemplateID"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

type WorkflowTemplateLevel struct {
	ID             uint64 `json:"id"`
	TemplateID     uint64 `json:"template_id" gorm:"uniqueIndex:idx_template_level;not null"`
	Level          int    `json:"level" gorm:"uniqueIndex:idx_template_level;not null"`
	Role           string `json:"role" gorm:"not null"`
	AuthorityLevel int    `json:"authority_level"`
}

// WorkflowLevel is the per-file instance of one template level.
type WorkflowLevel struct {
	ID                uint64      `json:"id"`
	FileID            uint64      `json:"file_id" gorm:"uniqueIndex:idx_file_level;not null"`
	Level             int         `json:"level" gorm:"uniqueIndex:idx_file_level;not null"`
	RoleRequired      string      `json:"role_required" gorm:"not null"`
	AuthorityRequired int         `json:"authority_required"`
	Status            LevelStatus `json:"status" gorm:"type:varchar(16);not null"`
	SkipReason        *string     `json:"skip_reason,omitempty"`
	CompletedByID     *uint64     `json:"completed_by_id,omitempty"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`
	Remarks           *string     `json:"remarks,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// WorkflowParticipant is an append-only record of one approval-class action.
type WorkflowParticipant struct {
	ID           uint64    `json:"id"`
	FileID       uint64    `json:"file_id" gorm:"index;not null"`
	Level        int       `json:"level"`
	Role         string    `json:"role"`
	DepartmentID uint64    `json:"department_id"`
	Action       Action    `json:"action" gorm:"type:varchar(16)"`
	ActorID      uint64    `json:"actor_id"`
	Remarks      string    `json:"remarks"`
	ActedAt      time.Time `json:"acted_at"`
}

// AuditMetadata is the structured part of an audit entry.
type AuditMetadata struct {
	FromState       FileState `json:"from_state"`
	ToState         FileState `json:"to_state"`
	FromLevel       int       `json:"from_level"`
	ToLevel         int       `json:"to_level"`
	PerformedByRole string    `json:"performed_by_role"`
	SkipReason      string    `json:"skip_reason,omitempty"`
	DaakID          uint64    `json:"daak_id,omitempty"`
}

// AuditTrailEntry is append-only; one per workflow action and per skipped level.
type AuditTrailEntry struct {
	ID            uint64                            `json:"id"`
	FileID        uint64                            `json:"file_id" gorm:"index;not null"`
	Action        Action                            `json:"action" gorm:"type:varchar(16)"`
	PerformedByID uint64                            `json:"performed_by_id"`
	PerformedAt   time.Time                         `json:"performed_at" gorm:"index"`
	Details       string                            `json:"details"`
	Metadata      datatypes.JSONType[AuditMetadata] `json:"metadata"`
	IPAddress     *string                           `json:"ip_address,omitempty"`
}

// Daak is an inward or outward letter in the correspondence register.
type Daak struct {
	ID              uint64        `json:"id"`
	ReferenceNumber string        `json:"reference_number" gorm:"uniqueIndex;not null"`
	Direction       DaakDirection `json:"direction" gorm:"type:varchar(8);not null"`
	Subject         string        `json:"subject"`
	Correspondent   string        `json:"correspondent"`
	DepartmentID    uint64        `json:"department_id" gorm:"index;not null"`
	FileID          *uint64       `json:"file_id,omitempty" gorm:"index"`
	ReceivedOrSent  time.Time     `json:"received_or_sent"`
	CreatedByID     uint64        `json:"created_by_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
