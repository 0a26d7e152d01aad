package repository

import (
	"go-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(project *model.Project, owner *model.ProjectMember) error
	FindByID(id uuid.UUID) (*model.Project, error)
	FindMember(projectID, userID uuid.UUID) (*model.ProjectMember, error)
	MembershipsByUser(userID uuid.UUID) ([]model.ProjectMember, error)
	Members(projectID uuid.UUID) ([]model.ProjectMember, error)
	CreateMember(member *model.ProjectMember) error
	SaveMember(member *model.ProjectMember) error
	CountActiveOwners(projectID uuid.UUID) (int64, error)
}

type projectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db}
}

// Create persists the project together with its initial owner membership.
func (r *projectRepo) Create(project *model.Project, owner *model.ProjectMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		owner.ProjectID = project.ID
		return tx.Create(owner).Error
	})
}

func (r *projectRepo) FindByID(id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) FindMember(projectID, userID uuid.UUID) (*model.ProjectMember, error) {
	var member model.ProjectMember
	err := r.db.First(&member, "project_id = ? AND user_id = ?", projectID, userID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *projectRepo) MembershipsByUser(userID uuid.UUID) ([]model.ProjectMember, error) {
	var members []model.ProjectMember
	err := r.db.Preload("Project").Where("user_id = ? AND is_active = ?", userID, true).Find(&members).Error
	return members, err
}

func (r *projectRepo) Members(projectID uuid.UUID) ([]model.ProjectMember, error) {
	var members []model.ProjectMember
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&members).Error
	return members, err
}

func (r *projectRepo) CreateMember(member *model.ProjectMember) error {
	return r.db.Create(member).Error
}

func (r *projectRepo) SaveMember(member *model.ProjectMember) error {
	return r.db.Save(member).Error
}

func (r *projectRepo) CountActiveOwners(projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND role = ? AND is_active = ?", projectID, model.RoleOwner, true).
		Count(&count).Error
	return count, err
}
