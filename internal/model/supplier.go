package model

import "github.com/google/uuid"

// Supplier is a project-scoped vendor record referenced by purchase orders.
type Supplier struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id" validate:"uuid_required"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email     string    `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
}
