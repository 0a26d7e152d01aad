package model

// Project is the tenant boundary. Every other entity belongs to exactly one
// project, and an inactive project rejects all operations.
type Project struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Slug     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug" validate:"required"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}
